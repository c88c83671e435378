package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "zipstate/pkg/domain-errors"
)

// TestParseState_Invariants validates the parsing invariant:
// "States must be drawn from the fixed 50-states-plus-DC enumeration".
func TestParseState_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseState("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects unknown code", func(t *testing.T) {
		_, err := ParseState("ZZ")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects territories outside the table", func(t *testing.T) {
		_, err := ParseState("PR")
		require.Error(t, err)
	})

	t.Run("accepts USPS code", func(t *testing.T) {
		st, err := ParseState("OR")
		require.NoError(t, err)
		assert.Equal(t, StateOregon, st)
	})

	t.Run("accepts lowercase code", func(t *testing.T) {
		st, err := ParseState("mt")
		require.NoError(t, err)
		assert.Equal(t, StateMontana, st)
	})

	t.Run("accepts full name", func(t *testing.T) {
		st, err := ParseState("New Hampshire")
		require.NoError(t, err)
		assert.Equal(t, StateNewHampshire, st)
	})

	t.Run("accepts shouting full name", func(t *testing.T) {
		st, err := ParseState("ALABAMA")
		require.NoError(t, err)
		assert.Equal(t, StateAlabama, st)
	})

	t.Run("normalizes interior whitespace", func(t *testing.T) {
		st, err := ParseState("  district   of  columbia ")
		require.NoError(t, err)
		assert.Equal(t, StateDC, st)
	})
}

func TestState_Name(t *testing.T) {
	assert.Equal(t, "Oregon", StateOregon.Name())
	assert.Equal(t, "District of Columbia", StateDC.Name())
	assert.Equal(t, "", State("ZZ").Name())
}

func TestAllStates(t *testing.T) {
	states := AllStates()
	require.Len(t, states, 51)

	// Display-name order: Alabama first, Wyoming last.
	assert.Equal(t, StateAlabama, states[0])
	assert.Equal(t, StateWyoming, states[len(states)-1])

	t.Run("every state parses back", func(t *testing.T) {
		for _, st := range states {
			byCode, err := ParseState(st.String())
			require.NoError(t, err)
			assert.Equal(t, st, byCode)

			byName, err := ParseState(st.Name())
			require.NoError(t, err)
			assert.Equal(t, st, byName)
		}
	})

	t.Run("caller cannot mutate the canonical order", func(t *testing.T) {
		states[0] = StateWyoming
		assert.Equal(t, StateAlabama, AllStates()[0])
	})
}

func TestState_JSON(t *testing.T) {
	t.Run("marshals as the code", func(t *testing.T) {
		out, err := json.Marshal(StateOregon)
		require.NoError(t, err)
		assert.Equal(t, `"OR"`, string(out))
	})

	t.Run("unmarshal validates", func(t *testing.T) {
		var st State
		require.NoError(t, json.Unmarshal([]byte(`"montana"`), &st))
		assert.Equal(t, StateMontana, st)

		err := json.Unmarshal([]byte(`"ZZ"`), &st)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
