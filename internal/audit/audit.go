// Package audit captures who resolved what. Events are emitted from the
// lookup and key management services and fan out to an in-memory store or a
// Kafka topic depending on deployment.
package audit

import (
	"context"
	"time"
)

// Action identifies the operation that produced an audit event.
type Action string

const (
	ActionPostalLookup    Action = "postal_lookup"
	ActionAreaCodeLookup  Action = "area_code_lookup"
	ActionPhoneLookup     Action = "phone_lookup"
	ActionBatchResolve    Action = "batch_resolve"
	ActionAddressValidate Action = "address_validate"
	ActionRulesListed     Action = "rules_listed"
	ActionKeyIssued       Action = "key_issued"
	ActionKeyRevoked      Action = "key_revoked"
	ActionTokenExchanged  Action = "token_exchanged"
	ActionRateLimited     Action = "rate_limited"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
//
// ClientIP is expected to be anonymized and UserAgent summarized before the
// event reaches a publisher; nothing below this type re-checks that.
type Event struct {
	Timestamp  time.Time `json:"ts"`
	Action     Action    `json:"action"`
	Domain     string    `json:"domain,omitempty"`
	Code       string    `json:"code,omitempty"`
	State      string    `json:"state,omitempty"`
	Outcome    string    `json:"outcome,omitempty"`
	Caller     string    `json:"caller,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	ClientIP   string    `json:"client_ip,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	APIVersion string    `json:"api_version,omitempty"`
}

// Outcomes recorded on lookup events.
const (
	OutcomeResolved = "resolved"
	OutcomeMiss     = "miss"
	OutcomeInvalid  = "invalid"
)

// Publisher accepts events for delivery. Emit must be safe for concurrent
// use; implementations decide whether delivery is synchronous.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
	Close() error
}

// Store persists events and serves the admin listing endpoints.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
