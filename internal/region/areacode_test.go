package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zipstate/pkg/domain"
	dErrors "zipstate/pkg/domain-errors"
)

func TestAreaCodeIndex_Scenarios(t *testing.T) {
	ix := AreaCodeIndex()

	t.Run("known codes resolve", func(t *testing.T) {
		for _, tc := range []struct {
			code string
			want domain.State
		}{
			{"202", domain.StateDC},
			{"406", domain.StateMontana},
			{"503", domain.StateOregon},
			{"541", domain.StateOregon},
			{"907", domain.StateAlaska},
			{"212", domain.StateNewYork},
			{"308", domain.StateNebraska},
		} {
			got, err := ix.FindRegion(tc.code)
			require.NoError(t, err, "code %s", tc.code)
			assert.Equal(t, tc.want, got, "code %s", tc.code)
		}
	})

	t.Run("010 is unmapped", func(t *testing.T) {
		_, err := ix.FindRegion("010")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
		assert.Equal(t, "no state for area code [010] could be found", err.Error())
	})

	t.Run("unassigned NANP code is unmapped", func(t *testing.T) {
		_, err := ix.FindRegion("211")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// TestAreaCodeTable_ProbeBack enforces the same canonical-table property
// as the postal side: every code resolves back to the state it was
// listed under.
func TestAreaCodeTable_ProbeBack(t *testing.T) {
	ix := AreaCodeIndex()
	require.Equal(t, 51, ix.Size(), "canonical table covers 50 states plus DC")

	for _, state := range ix.States() {
		rules, err := ix.RulesForRegion(state)
		require.NoError(t, err)
		require.NotEmpty(t, rules)

		for _, rule := range rules {
			assert.Equal(t, KindPrefix, rule.Kind(), "area code rules are exact prefixes")
			got, err := ix.FindRegion(rule.Start())
			require.NoError(t, err, "code %s", rule.Start())
			assert.Equal(t, state, got, "code %s listed under %s resolved to %s", rule.Start(), state, got)
		}
	}
}

// TestAreaCodeTable_NoDuplicates asserts each code is issued to exactly
// one state; a duplicate would make resolution order-dependent.
func TestAreaCodeTable_NoDuplicates(t *testing.T) {
	seen := make(map[string]domain.State)
	for _, entry := range AreaCodeTable() {
		for _, rule := range entry.Rules {
			if prev, dup := seen[rule.Start()]; dup {
				t.Errorf("area code %s issued to both %s and %s", rule.Start(), prev, entry.State)
			}
			seen[rule.Start()] = entry.State
		}
	}
}

func TestAreaCodeIndex_Singleton(t *testing.T) {
	assert.Same(t, AreaCodeIndex(), AreaCodeIndex())
	assert.NotSame(t, AreaCodeIndex(), PostalIndex())
}
