package domain

import (
	dErrors "zipstate/pkg/domain-errors"
)

// APIVersion is the version segment a request was routed under, "v1" today.
// Route groups stamp it into the request context and audit events carry it
// so recorded lookups can be matched to the contract they were served under.
type APIVersion string

const APIVersionV1 APIVersion = "v1"

var knownVersions = []APIVersion{APIVersionV1}

// ParseAPIVersion validates a version segment from external input.
//
// Errors: returns CodeInvalidInput for versions this server does not serve.
func ParseAPIVersion(s string) (APIVersion, error) {
	for _, v := range knownVersions {
		if APIVersion(s) == v {
			return v, nil
		}
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown API version %q", s)
}

func (v APIVersion) String() string {
	return string(v)
}

// IsNil reports whether no version middleware ran for the request.
func (v APIVersion) IsNil() bool {
	return v == ""
}
