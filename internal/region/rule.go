// Package region implements the region-resolution engine: prefix and
// lexicographic-range matching of digit codes against per-state rule
// tables, with bidirectional lookup between codes and states.
package region

import (
	"strings"

	dErrors "zipstate/pkg/domain-errors"
)

// endPadWidth is the normalization width for range upper bounds. Nine
// digits covers the longest code in either domain (a ZIP+4 digit string),
// so "715" as an upper bound absorbs "71599999".
const endPadWidth = 9

// RuleKind discriminates the two matcher variants.
type RuleKind string

const (
	KindPrefix RuleKind = "prefix"
	KindRange  RuleKind = "range"
)

// CodeRule is an immutable matcher for digit codes: either a prefix rule
// (the code starts with Start) or a range rule (the code falls between
// Start and the padded End). The two variants are a tagged pair, not an
// interface hierarchy; a rule is a range rule iff an end bound was
// supplied at construction.
//
// Invariants:
//   - Start is non-empty digit text
//   - End, when present, is non-empty digit text
//   - the zero value matches nothing
type CodeRule struct {
	kind  RuleKind
	start string
	end   string
}

// NewPrefixRule constructs a rule matching any code that begins with start.
//
// Errors: returns CodeInvariantViolation when start is empty or contains
// non-digit text. A malformed rule is a table-authoring defect, fatal at
// build time.
func NewPrefixRule(start string) (CodeRule, error) {
	if err := validateBound(start, "start"); err != nil {
		return CodeRule{}, err
	}
	return CodeRule{kind: KindPrefix, start: start}, nil
}

// NewRangeRule constructs a rule matching any code between start and end,
// with end right-padded per the normalization rule. The bounds may have
// different lengths; they are never reordered.
//
// Errors: returns CodeInvariantViolation when either bound is empty or
// contains non-digit text.
func NewRangeRule(start, end string) (CodeRule, error) {
	if err := validateBound(start, "start"); err != nil {
		return CodeRule{}, err
	}
	if err := validateBound(end, "end"); err != nil {
		return CodeRule{}, err
	}
	return CodeRule{kind: KindRange, start: start, end: end}, nil
}

// Matches reports whether code satisfies this rule. A code that is empty
// or not pure digit text never matches; code validity is a construction
// concern of the value-object layer, not a match-time error.
//
// Range matching is lexicographic on the digit strings as-is: only the
// end bound is padded (with '9' to width 9), never the start and never
// the probed code. A range rule additionally matches any code prefixed by
// its start bound, mirroring how the canonical tables were authored;
// short-prefix states encoded as ranges depend on it.
func (r CodeRule) Matches(code string) bool {
	if !isDigitText(code) {
		return false
	}

	switch r.kind {
	case KindPrefix:
		return strings.HasPrefix(code, r.start)
	case KindRange:
		adjustedEnd := padEnd(r.end)
		inRange := code >= r.start && code <= adjustedEnd
		return inRange || strings.HasPrefix(code, r.start)
	default:
		return false
	}
}

// Kind returns the variant tag.
func (r CodeRule) Kind() RuleKind {
	return r.kind
}

// Start returns the lower bound or prefix.
func (r CodeRule) Start() string {
	return r.start
}

// End returns the unpadded upper bound, or the empty string for prefix
// rules.
func (r CodeRule) End() string {
	return r.end
}

// String returns a display descriptor: "59" for a prefix rule, "700-715"
// for a range rule.
func (r CodeRule) String() string {
	if r.kind == KindRange {
		return r.start + "-" + r.end
	}
	return r.start
}

// padEnd right-pads a range upper bound with '9' out to the normalization
// width. Bounds already at or past the width are returned unchanged.
func padEnd(end string) string {
	if len(end) >= endPadWidth {
		return end
	}
	return end + strings.Repeat("9", endPadWidth-len(end))
}

func validateBound(bound, field string) error {
	if bound == "" {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "rule %s cannot be empty", field)
	}
	if !isDigitText(bound) {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "rule %s %q must be digit text", field, bound)
	}
	return nil
}

func isDigitText(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
