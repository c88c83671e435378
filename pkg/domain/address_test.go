package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "zipstate/pkg/domain-errors"
)

func TestAddressBuilder(t *testing.T) {
	t.Run("builds a complete address", func(t *testing.T) {
		addr, err := NewAddressBuilder().
			Line1("1234 SW Morrison St").
			Line2("Suite 500").
			City("Portland").
			State("Oregon").
			PostalCode("97205").
			Build()
		require.NoError(t, err)

		assert.Equal(t, "1234 SW Morrison St", addr.Line1())
		assert.Equal(t, "Suite 500", addr.Line2())
		assert.Equal(t, "Portland", addr.City())
		assert.Equal(t, StateOregon, addr.State())
		assert.Equal(t, "97205", addr.PostalCode().String())
		assert.Equal(t, CountryUS, addr.Country(), "country defaults to US")
	})

	t.Run("aggregates every violation", func(t *testing.T) {
		_, err := NewAddressBuilder().
			State("ZZ").
			PostalCode("123").
			Build()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		msg := err.Error()
		for _, want := range []string{"line1 is required", "city is required", `unknown state "ZZ"`, `invalid postal_code "123"`} {
			assert.True(t, strings.Contains(msg, want), "missing %q in %q", want, msg)
		}
	})

	t.Run("rejects unsupported country", func(t *testing.T) {
		_, err := NewAddressBuilder().
			Line1("1 Main St").
			City("Springfield").
			State("IL").
			PostalCode("62701").
			Country("FR").
			Build()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("trims whitespace", func(t *testing.T) {
		addr, err := NewAddressBuilder().
			Line1("  1 Main St ").
			City(" Helena ").
			State(" MT ").
			PostalCode(" 59601 ").
			Build()
		require.NoError(t, err)
		assert.Equal(t, "1 Main St", addr.Line1())
		assert.Equal(t, StateMontana, addr.State())
	})
}

func TestAddress_JSON(t *testing.T) {
	addr, err := NewAddressBuilder().
		Line1("600 Congress Ave").
		City("Austin").
		State("TX").
		PostalCode("78701-1234").
		Build()
	require.NoError(t, err)

	out, err := json.Marshal(addr)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"line1": "600 Congress Ave",
		"city": "Austin",
		"state": "TX",
		"postal_code": "78701-1234",
		"country": "US"
	}`, string(out))

	var back Address
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, *addr, back)

	t.Run("unmarshal enforces builder validation", func(t *testing.T) {
		var bad Address
		err := json.Unmarshal([]byte(`{"line1":"","city":"","state":"TX","postal_code":"78701"}`), &bad)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
