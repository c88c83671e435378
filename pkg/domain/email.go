package domain

import (
	"encoding/json"
	"net/mail"
	"strings"

	dErrors "zipstate/pkg/domain-errors"
)

// EmailAddress is a parsed RFC 5322 address with a lowercased domain.
type EmailAddress struct {
	local  string
	domain string
}

// ParseEmailAddress constructs an EmailAddress from external input.
// Display names ("Ada <ada@example.com>") are rejected; only the bare
// addr-spec form is accepted.
func ParseEmailAddress(s string) (EmailAddress, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return EmailAddress{}, dErrors.New(dErrors.CodeInvalidInput, "email address cannot be empty")
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Name != "" || addr.Address != trimmed {
		return EmailAddress{}, dErrors.Newf(dErrors.CodeInvalidInput, "invalid email address %q", trimmed)
	}

	at := strings.LastIndexByte(addr.Address, '@')
	return EmailAddress{
		local:  addr.Address[:at],
		domain: strings.ToLower(addr.Address[at+1:]),
	}, nil
}

// Local returns the part before the '@'.
func (e EmailAddress) Local() string {
	return e.local
}

// Domain returns the lowercased part after the '@'.
func (e EmailAddress) Domain() string {
	return e.domain
}

// IsZero reports whether the address is the unparsed zero value.
func (e EmailAddress) IsZero() bool {
	return e.domain == ""
}

// String returns local@domain.
func (e EmailAddress) String() string {
	if e.IsZero() {
		return ""
	}
	return e.local + "@" + e.domain
}

// MarshalJSON encodes the address as local@domain.
func (e EmailAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// UnmarshalJSON parses an email address from its JSON string form.
func (e *EmailAddress) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "email address must be a JSON string")
	}
	parsed, err := ParseEmailAddress(raw)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
