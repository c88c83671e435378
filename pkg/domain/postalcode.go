package domain

import (
	"encoding/json"
	"strings"

	dErrors "zipstate/pkg/domain-errors"
)

// PostalCode is a US ZIP or ZIP+4 code.
// Invariant: five digits, optionally followed by a four-digit extension.
//
// Usage: construct via ParsePostalCode at trust boundaries. The zero value
// is not a valid postal code.
type PostalCode struct {
	zip5  string
	plus4 string
}

// ParsePostalCode constructs a PostalCode from external input. Accepted
// forms: "97205", "97205-1234", "972051234". A single dash between the
// base and the extension is stripped.
//
// Errors: returns CodeInvalidInput when the input is not 5 or 9 decimal
// digits after normalization.
func ParsePostalCode(s string) (PostalCode, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return PostalCode{}, dErrors.New(dErrors.CodeInvalidInput, "postal code cannot be empty")
	}

	digits := trimmed
	if i := strings.IndexByte(trimmed, '-'); i >= 0 {
		digits = trimmed[:i] + trimmed[i+1:]
	}
	if !isDigits(digits) {
		return PostalCode{}, dErrors.Newf(dErrors.CodeInvalidInput, "postal code %q must contain only digits", trimmed)
	}

	switch len(digits) {
	case 5:
		return PostalCode{zip5: digits}, nil
	case 9:
		return PostalCode{zip5: digits[:5], plus4: digits[5:]}, nil
	default:
		return PostalCode{}, dErrors.Newf(dErrors.CodeInvalidInput, "postal code %q must be 5 or 9 digits", trimmed)
	}
}

// Zip5 returns the five-digit base code.
func (p PostalCode) Zip5() string {
	return p.zip5
}

// Plus4 returns the four-digit extension, or the empty string when absent.
func (p PostalCode) Plus4() string {
	return p.plus4
}

// Digits returns the concatenated digit string used for region matching:
// "59999-9999" yields "599999999".
func (p PostalCode) Digits() string {
	return p.zip5 + p.plus4
}

// IsZero reports whether the postal code is the unparsed zero value.
func (p PostalCode) IsZero() bool {
	return p.zip5 == ""
}

// String returns the display form, with a dash before the extension when
// one is present.
func (p PostalCode) String() string {
	if p.plus4 == "" {
		return p.zip5
	}
	return p.zip5 + "-" + p.plus4
}

// MarshalJSON encodes the postal code as its display form.
func (p PostalCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON parses a postal code from its JSON string form.
func (p *PostalCode) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "postal code must be a JSON string")
	}
	parsed, err := ParsePostalCode(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// isDigits reports whether s is non-empty ASCII decimal digit text.
func isDigits(s string) bool {
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
