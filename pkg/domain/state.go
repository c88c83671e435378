package domain

import (
	"encoding/json"
	"sort"
	"strings"

	dErrors "zipstate/pkg/domain-errors"
)

// State is a domain value that identifies a US state or federal district.
// Invariant: the value must be one of the two-letter USPS codes below.
//
// Usage: construct via ParseState at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type State string

// Supported states, 50 states plus the District of Columbia.
const (
	StateAlabama       State = "AL"
	StateAlaska        State = "AK"
	StateArizona       State = "AZ"
	StateArkansas      State = "AR"
	StateCalifornia    State = "CA"
	StateColorado      State = "CO"
	StateConnecticut   State = "CT"
	StateDelaware      State = "DE"
	StateDC            State = "DC"
	StateFlorida       State = "FL"
	StateGeorgia       State = "GA"
	StateHawaii        State = "HI"
	StateIdaho         State = "ID"
	StateIllinois      State = "IL"
	StateIndiana       State = "IN"
	StateIowa          State = "IA"
	StateKansas        State = "KS"
	StateKentucky      State = "KY"
	StateLouisiana     State = "LA"
	StateMaine         State = "ME"
	StateMaryland      State = "MD"
	StateMassachusetts State = "MA"
	StateMichigan      State = "MI"
	StateMinnesota     State = "MN"
	StateMississippi   State = "MS"
	StateMissouri      State = "MO"
	StateMontana       State = "MT"
	StateNebraska      State = "NE"
	StateNevada        State = "NV"
	StateNewHampshire  State = "NH"
	StateNewJersey     State = "NJ"
	StateNewMexico     State = "NM"
	StateNewYork       State = "NY"
	StateNorthCarolina State = "NC"
	StateNorthDakota   State = "ND"
	StateOhio          State = "OH"
	StateOklahoma      State = "OK"
	StateOregon        State = "OR"
	StatePennsylvania  State = "PA"
	StateRhodeIsland   State = "RI"
	StateSouthCarolina State = "SC"
	StateSouthDakota   State = "SD"
	StateTennessee     State = "TN"
	StateTexas         State = "TX"
	StateUtah          State = "UT"
	StateVermont       State = "VT"
	StateVirginia      State = "VA"
	StateWashington    State = "WA"
	StateWestVirginia  State = "WV"
	StateWisconsin     State = "WI"
	StateWyoming       State = "WY"
)

// stateNames is the single source of truth for valid states and their
// display names.
var stateNames = map[State]string{
	StateAlabama:       "Alabama",
	StateAlaska:        "Alaska",
	StateArizona:       "Arizona",
	StateArkansas:      "Arkansas",
	StateCalifornia:    "California",
	StateColorado:      "Colorado",
	StateConnecticut:   "Connecticut",
	StateDelaware:      "Delaware",
	StateDC:            "District of Columbia",
	StateFlorida:       "Florida",
	StateGeorgia:       "Georgia",
	StateHawaii:        "Hawaii",
	StateIdaho:         "Idaho",
	StateIllinois:      "Illinois",
	StateIndiana:       "Indiana",
	StateIowa:          "Iowa",
	StateKansas:        "Kansas",
	StateKentucky:      "Kentucky",
	StateLouisiana:     "Louisiana",
	StateMaine:         "Maine",
	StateMaryland:      "Maryland",
	StateMassachusetts: "Massachusetts",
	StateMichigan:      "Michigan",
	StateMinnesota:     "Minnesota",
	StateMississippi:   "Mississippi",
	StateMissouri:      "Missouri",
	StateMontana:       "Montana",
	StateNebraska:      "Nebraska",
	StateNevada:        "Nevada",
	StateNewHampshire:  "New Hampshire",
	StateNewJersey:     "New Jersey",
	StateNewMexico:     "New Mexico",
	StateNewYork:       "New York",
	StateNorthCarolina: "North Carolina",
	StateNorthDakota:   "North Dakota",
	StateOhio:          "Ohio",
	StateOklahoma:      "Oklahoma",
	StateOregon:        "Oregon",
	StatePennsylvania:  "Pennsylvania",
	StateRhodeIsland:   "Rhode Island",
	StateSouthCarolina: "South Carolina",
	StateSouthDakota:   "South Dakota",
	StateTennessee:     "Tennessee",
	StateTexas:         "Texas",
	StateUtah:          "Utah",
	StateVermont:       "Vermont",
	StateVirginia:      "Virginia",
	StateWashington:    "Washington",
	StateWestVirginia:  "West Virginia",
	StateWisconsin:     "Wisconsin",
	StateWyoming:       "Wyoming",
}

// stateByName maps normalized full names back to their code.
var stateByName = func() map[string]State {
	m := make(map[string]State, len(stateNames))
	for code, name := range stateNames {
		m[normalizeStateName(name)] = code
	}
	return m
}()

// allStates lists every state in display-name order. This is also the
// visiting order of the canonical code tables.
var allStates = func() []State {
	states := make([]State, 0, len(stateNames))
	for code := range stateNames {
		states = append(states, code)
	}
	sort.Slice(states, func(i, j int) bool {
		return stateNames[states[i]] < stateNames[states[j]]
	})
	return states
}()

// ParseState constructs a State from external input. It accepts two-letter
// USPS codes and full display names, case-insensitively.
//
// Errors: returns CodeInvalidInput when the value is empty or unknown; no
// other errors are expected.
func ParseState(s string) (State, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "state cannot be empty")
	}

	if code := State(strings.ToUpper(trimmed)); code.IsValid() {
		return code, nil
	}
	if code, ok := stateByName[normalizeStateName(trimmed)]; ok {
		return code, nil
	}

	return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown state %q", trimmed)
}

// IsValid checks if the state is one of the supported enum values.
func (s State) IsValid() bool {
	_, ok := stateNames[s]
	return ok
}

// Name returns the display name, e.g. "Oregon" for OR. Invalid states
// return the empty string.
func (s State) Name() string {
	return stateNames[s]
}

// String returns the two-letter USPS code.
func (s State) String() string {
	return string(s)
}

// UnmarshalJSON parses a state from its JSON string form, accepting codes
// and full names like ParseState.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "state must be a JSON string")
	}
	parsed, err := ParseState(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// AllStates returns every supported state in display-name order.
func AllStates() []State {
	out := make([]State, len(allStates))
	copy(out, allStates)
	return out
}

func normalizeStateName(name string) string {
	fields := strings.Fields(strings.ToUpper(name))
	return strings.Join(fields, " ")
}
