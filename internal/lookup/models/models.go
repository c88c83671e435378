// Package models holds the request and response shapes of the resolution
// service.
package models

import (
	"time"

	"zipstate/internal/region"
	"zipstate/pkg/domain"
)

// CodeDomain identifies which code space a lookup ran against.
type CodeDomain string

const (
	DomainPostal   CodeDomain = "postal"
	DomainAreaCode CodeDomain = "area_code"
	DomainPhone    CodeDomain = "phone"
)

// IsValid checks if the code domain is one of the supported enum values.
func (d CodeDomain) IsValid() bool {
	switch d {
	case DomainPostal, DomainAreaCode, DomainPhone:
		return true
	}
	return false
}

// Resolution is the outcome of one successful code lookup. For phone lookups
// Code carries the area code derived from the number and PhoneNumber the
// E.164 form it was derived from.
type Resolution struct {
	Domain      CodeDomain          `json:"domain"`
	Code        string              `json:"code"`
	State       domain.State        `json:"state"`
	StateName   string              `json:"state_name"`
	Rule        *CodeRuleDescriptor `json:"matched_rule,omitempty"`
	PhoneNumber string              `json:"phone_number,omitempty"`
}

// CodeRuleDescriptor is the external view of one code rule.
type CodeRuleDescriptor struct {
	Kind    string `json:"kind"`
	Start   string `json:"start"`
	End     string `json:"end,omitempty"`
	Display string `json:"display"`
}

// DescribeRule converts an index rule into its external descriptor.
func DescribeRule(rule region.CodeRule) CodeRuleDescriptor {
	d := CodeRuleDescriptor{
		Kind:    string(rule.Kind()),
		Start:   rule.Start(),
		Display: rule.String(),
	}
	if rule.Kind() == region.KindRange {
		d.End = rule.End()
	}
	return d
}

// BatchItem is one code to resolve in a batch request.
type BatchItem struct {
	Domain CodeDomain `json:"domain"`
	Code   string     `json:"code"`
}

// BatchResult is the per-item outcome of a batch resolution. Error carries
// the failure message for items that did not resolve; the batch itself never
// fails on individual items.
type BatchResult struct {
	Domain    CodeDomain   `json:"domain"`
	Code      string       `json:"code"`
	State     domain.State `json:"state,omitempty"`
	StateName string       `json:"state_name,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// Resolved reports whether the item mapped to a state.
func (r BatchResult) Resolved() bool {
	return r.Error == ""
}

// AddressValidation reports whether an address's postal code agrees with its
// state. ExpectedState is the state the postal code actually resolves to,
// when it resolves at all.
type AddressValidation struct {
	Address       domain.Address `json:"address"`
	Consistent    bool           `json:"consistent"`
	ExpectedState domain.State   `json:"expected_state,omitempty"`
	Reason        string         `json:"reason,omitempty"`
}

// Miss records one code that no rule matched. ClientIP is stored anonymized
// and UserAgent summarized; misses feed operator review, never the rule
// tables themselves.
type Miss struct {
	ID         int64      `json:"id,omitempty"`
	Domain     CodeDomain `json:"domain"`
	Code       string     `json:"code"`
	RequestID  string     `json:"request_id,omitempty"`
	ClientIP   string     `json:"client_ip,omitempty"`
	UserAgent  string     `json:"user_agent,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}
