package domain

import (
	"encoding/json"
	"strings"

	"github.com/nyaruka/phonenumbers"

	dErrors "zipstate/pkg/domain-errors"
)

// defaultPhoneRegion is assumed for inputs without a country prefix.
const defaultPhoneRegion = "US"

// PhoneNumber is a ten-digit NANP telephone number.
// Invariant: the national significant number has exactly ten digits, so an
// area code can always be extracted.
//
// Usage: construct via ParsePhoneNumber at trust boundaries. Free-form
// input is accepted: "(503) 555-0123", "+1 503 555 0123", "5035550123".
type PhoneNumber struct {
	e164     string
	national string
}

// ParsePhoneNumber constructs a PhoneNumber from external input.
//
// Possibility, not carrier validity, is enforced: numbers in unassigned
// exchanges still parse, because the region tables answer "which state
// issued this code", not "is this line in service".
//
// Errors: returns CodeInvalidInput when the input cannot be parsed or is
// not a possible ten-digit NANP number.
func ParsePhoneNumber(s string) (PhoneNumber, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return PhoneNumber{}, dErrors.New(dErrors.CodeInvalidInput, "phone number cannot be empty")
	}

	num, err := phonenumbers.Parse(trimmed, defaultPhoneRegion)
	if err != nil {
		return PhoneNumber{}, dErrors.Newf(dErrors.CodeInvalidInput, "phone number %q could not be parsed", trimmed)
	}
	if !phonenumbers.IsPossibleNumber(num) {
		return PhoneNumber{}, dErrors.Newf(dErrors.CodeInvalidInput, "phone number %q is not a possible number", trimmed)
	}
	if num.GetCountryCode() != 1 {
		return PhoneNumber{}, dErrors.Newf(dErrors.CodeInvalidInput, "phone number %q is outside the NANP", trimmed)
	}

	national := phonenumbers.GetNationalSignificantNumber(num)
	if len(national) != 10 {
		return PhoneNumber{}, dErrors.Newf(dErrors.CodeInvalidInput, "phone number %q is not a ten-digit NANP number", trimmed)
	}

	return PhoneNumber{
		e164:     phonenumbers.Format(num, phonenumbers.E164),
		national: national,
	}, nil
}

// AreaCode returns the numbering plan area code, the first three digits of
// the national significant number.
func (p PhoneNumber) AreaCode() AreaCode {
	if p.IsZero() {
		return AreaCode{}
	}
	return AreaCode{digits: p.national[:3]}
}

// E164 returns the number in E.164 form, e.g. "+15035550123".
func (p PhoneNumber) E164() string {
	return p.e164
}

// National returns the ten-digit national significant number.
func (p PhoneNumber) National() string {
	return p.national
}

// IsZero reports whether the phone number is the unparsed zero value.
func (p PhoneNumber) IsZero() bool {
	return p.national == ""
}

// String returns the E.164 form.
func (p PhoneNumber) String() string {
	return p.e164
}

// MarshalJSON encodes the phone number in E.164 form.
func (p PhoneNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.e164)
}

// UnmarshalJSON parses a phone number from its JSON string form.
func (p *PhoneNumber) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "phone number must be a JSON string")
	}
	parsed, err := ParsePhoneNumber(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
