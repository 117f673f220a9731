package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/appconfig/internal/errors"
)

func TestEnvelope_String(t *testing.T) {
	assert.Equal(t, "12_AbC=", Envelope{Version: 12, Payload: "AbC="}.String())
}

func TestParse(t *testing.T) {
	t.Run("Success_SplitsOnFirstSeparator", func(t *testing.T) {
		env, err := Parse("3_abc_def")
		require.NoError(t, err)
		assert.Equal(t, uint(3), env.Version)
		assert.Equal(t, "abc_def", env.Payload)
	})

	t.Run("Success_RoundTrip", func(t *testing.T) {
		original := Envelope{Version: 7, Payload: "Zm9vYmFy"}
		env, err := Parse(original.String())
		require.NoError(t, err)
		assert.Equal(t, original, env)
	})

	malformed := map[string]string{
		"Error_MissingSeparator": "12abc",
		"Error_EmptyVersion":     "_abc",
		"Error_ZeroVersion":      "0_abc",
		"Error_NegativeVersion":  "-1_abc",
		"Error_TextVersion":      "v1_abc",
		"Error_EmptyPayload":     "1_",
		"Error_Empty":            "",
	}
	for name, input := range malformed {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(input)
			assert.ErrorIs(t, err, ErrMalformed)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			assert.Equal(t, CodeEnvelopeMalformed, apperrors.CodeOf(err))
		})
	}
}
