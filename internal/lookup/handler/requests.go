package handler

import (
	"zipstate/internal/lookup/models"
	"zipstate/pkg/domain"
	dErrors "zipstate/pkg/domain-errors"
)

// BatchRequest carries the codes to resolve. Size and per-item checks are
// the service's concern; the request only rejects an empty list.
type BatchRequest struct {
	Items []models.BatchItem `json:"items"`
}

func (r *BatchRequest) Validate() error {
	if len(r.Items) == 0 {
		return dErrors.New(dErrors.CodeValidation, "items cannot be empty")
	}
	return nil
}

// AddressValidateRequest mirrors the address builder's fields.
type AddressValidateRequest struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country,omitempty"`

	address domain.Address
}

// Validate builds the address, aggregating every field violation into one
// validation error.
func (r *AddressValidateRequest) Validate() error {
	addr, err := domain.NewAddressBuilder().
		Line1(r.Line1).
		Line2(r.Line2).
		City(r.City).
		State(r.State).
		PostalCode(r.PostalCode).
		Country(r.Country).
		Build()
	if err != nil {
		return err
	}
	r.address = *addr
	return nil
}

// Address returns the built address. Only meaningful after Validate
// succeeds.
func (r *AddressValidateRequest) Address() domain.Address {
	return r.address
}
