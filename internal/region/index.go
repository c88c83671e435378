package region

import (
	"zipstate/pkg/domain"
	dErrors "zipstate/pkg/domain-errors"
)

// TableEntry binds one state to its code rules. The order of entries in a
// table is the visiting order of FindRegion, so a given table snapshot
// resolves deterministically even if two states' rules were to overlap.
type TableEntry struct {
	State domain.State
	Rules []CodeRule
}

// Index is a frozen bidirectional mapping between states and code rules.
//
// Invariants:
//   - every entry names a valid state, exactly once
//   - every entry carries at least one valid rule
//   - immutable after construction; safe for concurrent readers with no
//     synchronization
type Index struct {
	label   string
	entries []TableEntry
	byState map[domain.State][]CodeRule
}

// NewIndex builds an index from a rule table. The label names the code
// domain ("postal code", "area code") in error messages. Tables are
// validated entry by entry; any defect aborts construction, since a
// malformed table is a programming error, not a runtime condition.
//
// Errors: CodeInvariantViolation for an empty table, an invalid or
// duplicated state, an entry without rules, or a rule with invalid
// bounds.
func NewIndex(label string, table []TableEntry) (*Index, error) {
	if label == "" {
		label = "code"
	}
	if len(table) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "rule table cannot be empty")
	}

	entries := make([]TableEntry, 0, len(table))
	byState := make(map[domain.State][]CodeRule, len(table))
	for _, entry := range table {
		if !entry.State.IsValid() {
			return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "rule table names unknown state %q", string(entry.State))
		}
		if _, dup := byState[entry.State]; dup {
			return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "rule table repeats state %s", entry.State)
		}
		if len(entry.Rules) == 0 {
			return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "state %s has no rules", entry.State)
		}

		rules := make([]CodeRule, 0, len(entry.Rules))
		for _, rule := range entry.Rules {
			if err := validateBound(rule.start, "start"); err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "state "+entry.State.String())
			}
			if rule.kind == KindRange {
				if err := validateBound(rule.end, "end"); err != nil {
					return nil, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "state "+entry.State.String())
				}
			}
			rules = append(rules, rule)
		}

		entries = append(entries, TableEntry{State: entry.State, Rules: rules})
		byState[entry.State] = rules
	}

	return &Index{label: label, entries: entries, byState: byState}, nil
}

// FindRegion resolves a digit code to the state that issued it. Entries
// are visited in table order and the first state with any matching rule
// wins.
//
// Errors: CodeNotFound when no rule matches; the message carries the
// probed code in brackets. Callers decide whether an unmapped code is a
// failure or simply an unknown region; it is never mapped to a default
// state here.
func (ix *Index) FindRegion(code string) (domain.State, error) {
	for _, entry := range ix.entries {
		for _, rule := range entry.Rules {
			if rule.Matches(code) {
				return entry.State, nil
			}
		}
	}
	return "", dErrors.Newf(dErrors.CodeNotFound, "no state for %s [%s] could be found", ix.label, code)
}

// RulesForRegion returns the rules issued to a state, in authoring order.
// The returned slice is a copy; callers cannot mutate the index.
//
// Errors: CodeNotFound when the state has no entry in the table. The
// canonical tables cover every enumerated state, so this only fires for
// custom tables.
func (ix *Index) RulesForRegion(state domain.State) ([]CodeRule, error) {
	rules, ok := ix.byState[state]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "no %s rules for state [%s] could be found", ix.label, string(state))
	}
	out := make([]CodeRule, len(rules))
	copy(out, rules)
	return out, nil
}

// States returns every state in the table, in visiting order.
func (ix *Index) States() []domain.State {
	states := make([]domain.State, len(ix.entries))
	for i, entry := range ix.entries {
		states[i] = entry.State
	}
	return states
}

// Size returns the number of states in the table.
func (ix *Index) Size() int {
	return len(ix.entries)
}

// Label returns the code domain name used in error messages.
func (ix *Index) Label() string {
	return ix.label
}
