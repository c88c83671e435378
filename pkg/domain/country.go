package domain

import (
	"strings"

	dErrors "zipstate/pkg/domain-errors"
)

// Country identifies the country an address belongs to. Only NANP
// countries relevant to the shipped region tables are enumerated.
type Country string

const (
	CountryUS Country = "US"
	CountryCA Country = "CA"
	CountryMX Country = "MX"
)

var countryNames = map[Country]string{
	CountryUS: "United States",
	CountryCA: "Canada",
	CountryMX: "Mexico",
}

// ParseCountry constructs a Country from external input. The empty string
// defaults to US, matching the domain the canonical tables cover.
func ParseCountry(s string) (Country, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return CountryUS, nil
	}
	c := Country(strings.ToUpper(trimmed))
	if !c.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unsupported country %q", trimmed)
	}
	return c, nil
}

// IsValid checks if the country is one of the supported enum values.
func (c Country) IsValid() bool {
	_, ok := countryNames[c]
	return ok
}

// Name returns the display name, e.g. "United States".
func (c Country) Name() string {
	return countryNames[c]
}

// String returns the ISO 3166-1 alpha-2 code.
func (c Country) String() string {
	return string(c)
}
