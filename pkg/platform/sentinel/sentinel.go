// Package sentinel defines the factual errors stores report. Services own
// the translation into coded domain errors; handlers never see these.
package sentinel

import "errors"

// Store facts, not validation failures. A store that cannot find a row
// returns ErrNotFound; one asked to insert a prefix that already exists
// returns ErrAlreadyUsed. Input validation belongs to pkg/domain-errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
)
