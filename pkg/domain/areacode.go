package domain

import (
	"encoding/json"
	"strings"

	dErrors "zipstate/pkg/domain-errors"
)

// AreaCode is a three-digit NANP numbering plan area code.
//
// Parsing only enforces shape: "010" is a well-formed AreaCode even though
// no state has it. Whether a code maps to a state is resolution's job, not
// the parser's.
type AreaCode struct {
	digits string
}

// ParseAreaCode constructs an AreaCode from external input. Surrounding
// parentheses and whitespace are stripped, so "(503)" parses.
//
// Errors: returns CodeInvalidInput when the input is not exactly three
// decimal digits after normalization.
func ParseAreaCode(s string) (AreaCode, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(trimmed, "(")
	trimmed = strings.TrimSuffix(trimmed, ")")
	if trimmed == "" {
		return AreaCode{}, dErrors.New(dErrors.CodeInvalidInput, "area code cannot be empty")
	}
	if len(trimmed) != 3 || !isDigits(trimmed) {
		return AreaCode{}, dErrors.Newf(dErrors.CodeInvalidInput, "area code %q must be exactly 3 digits", s)
	}
	return AreaCode{digits: trimmed}, nil
}

// Digits returns the three-digit string used for region matching.
func (a AreaCode) Digits() string {
	return a.digits
}

// IsZero reports whether the area code is the unparsed zero value.
func (a AreaCode) IsZero() bool {
	return a.digits == ""
}

// String returns the three-digit form.
func (a AreaCode) String() string {
	return a.digits
}

// MarshalJSON encodes the area code as its three-digit string.
func (a AreaCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.digits)
}

// UnmarshalJSON parses an area code from its JSON string form.
func (a *AreaCode) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "area code must be a JSON string")
	}
	parsed, err := ParseAreaCode(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
