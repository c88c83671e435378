package domain

import (
	"encoding/json"
	"strings"

	dErrors "zipstate/pkg/domain-errors"
)

// Address is an immutable US mailing address. Construct via AddressBuilder
// so every Address in the system has passed the same validation.
type Address struct {
	line1      string
	line2      string
	city       string
	state      State
	postalCode PostalCode
	country    Country
}

// Line1 returns the first street line.
func (a Address) Line1() string { return a.line1 }

// Line2 returns the second street line, or the empty string.
func (a Address) Line2() string { return a.line2 }

// City returns the city.
func (a Address) City() string { return a.city }

// State returns the state.
func (a Address) State() State { return a.state }

// PostalCode returns the postal code.
func (a Address) PostalCode() PostalCode { return a.postalCode }

// Country returns the country.
func (a Address) Country() Country { return a.country }

// String returns a single-line display form.
func (a Address) String() string {
	parts := []string{a.line1}
	if a.line2 != "" {
		parts = append(parts, a.line2)
	}
	parts = append(parts, a.city, a.state.String()+" "+a.postalCode.String(), a.country.String())
	return strings.Join(parts, ", ")
}

// addressJSON is the wire form of an Address.
type addressJSON struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// MarshalJSON encodes the address field by field, value objects in their
// string forms.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(addressJSON{
		Line1:      a.line1,
		Line2:      a.line2,
		City:       a.city,
		State:      a.state.String(),
		PostalCode: a.postalCode.String(),
		Country:    a.country.String(),
	})
}

// UnmarshalJSON decodes and validates an address through the builder, so
// JSON input cannot bypass construction rules.
func (a *Address) UnmarshalJSON(data []byte) error {
	var raw addressJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "address must be a JSON object")
	}
	built, err := NewAddressBuilder().
		Line1(raw.Line1).
		Line2(raw.Line2).
		City(raw.City).
		State(raw.State).
		PostalCode(raw.PostalCode).
		Country(raw.Country).
		Build()
	if err != nil {
		return err
	}
	*a = *built
	return nil
}

// AddressBuilder assembles an Address from free-form parts. Zero or more
// setters, then Build; violations are collected so the caller sees every
// problem at once instead of the first.
type AddressBuilder struct {
	line1      string
	line2      string
	city       string
	state      string
	postalCode string
	country    string
}

// NewAddressBuilder returns an empty builder.
func NewAddressBuilder() *AddressBuilder {
	return &AddressBuilder{}
}

// Line1 sets the first street line.
func (b *AddressBuilder) Line1(s string) *AddressBuilder {
	b.line1 = strings.TrimSpace(s)
	return b
}

// Line2 sets the optional second street line.
func (b *AddressBuilder) Line2(s string) *AddressBuilder {
	b.line2 = strings.TrimSpace(s)
	return b
}

// City sets the city.
func (b *AddressBuilder) City(s string) *AddressBuilder {
	b.city = strings.TrimSpace(s)
	return b
}

// State sets the state, as a code or full name.
func (b *AddressBuilder) State(s string) *AddressBuilder {
	b.state = strings.TrimSpace(s)
	return b
}

// PostalCode sets the postal code in any accepted form.
func (b *AddressBuilder) PostalCode(s string) *AddressBuilder {
	b.postalCode = strings.TrimSpace(s)
	return b
}

// Country sets the country; empty means US.
func (b *AddressBuilder) Country(s string) *AddressBuilder {
	b.country = strings.TrimSpace(s)
	return b
}

// Build validates the collected parts and returns the Address.
//
// Errors: returns a single CodeValidation error aggregating every
// violation. The returned Address is nil on error.
func (b *AddressBuilder) Build() (*Address, error) {
	var v dErrors.Violations

	if b.line1 == "" {
		v.Add("line1 is required")
	}
	if b.city == "" {
		v.Add("city is required")
	}

	var state State
	if b.state == "" {
		v.Add("state is required")
	} else if parsed, err := ParseState(b.state); err != nil {
		v.Addf("unknown state %q", b.state)
	} else {
		state = parsed
	}

	var postal PostalCode
	if b.postalCode == "" {
		v.Add("postal_code is required")
	} else if parsed, err := ParsePostalCode(b.postalCode); err != nil {
		v.Addf("invalid postal_code %q", b.postalCode)
	} else {
		postal = parsed
	}

	country, err := ParseCountry(b.country)
	if err != nil {
		v.Addf("unsupported country %q", b.country)
	}

	if err := v.Load(); err != nil {
		return nil, err
	}

	return &Address{
		line1:      b.line1,
		line2:      b.line2,
		city:       b.city,
		state:      state,
		postalCode: postal,
		country:    country,
	}, nil
}
