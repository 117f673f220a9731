package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	keyDomain "github.com/allisson/appconfig/internal/key/domain"
)

func TestValues_Select(t *testing.T) {
	values := Values{
		"PUBLIC_KEY_LENGTH": float64(24),
		"PAGE_SIZE":         "50",
		"RATIO":             "0.75",
		"FEATURE_X":         "yes",
		"DISABLED":          float64(0),
		"ROTATE_UNIT":       "M",
		"ROTATE_UNIT_LONG":  "Week",
		"ENV":               "Production",
		"NAME":              float64(7),
		"FRACTION":          1.5,
	}

	t.Run("Success_ConvertsEachKind", func(t *testing.T) {
		selected, err := values.Select(
			Field{Name: "PUBLIC_KEY_LENGTH", Kind: KindInt},
			Field{Name: "PAGE_SIZE", Kind: KindInt},
			Field{Name: "RATIO", Kind: KindFloat},
			Field{Name: "FEATURE_X", Kind: KindBool},
			Field{Name: "DISABLED", Kind: KindBool},
			Field{Name: "ROTATE_UNIT", Kind: KindDurationUnit},
			Field{Name: "ROTATE_UNIT_LONG", Kind: KindDurationUnit},
			Field{Name: "ENV", Kind: KindEnum, Allowed: []string{"production", "staging"}},
			Field{Name: "NAME", Kind: KindString},
		)
		require.NoError(t, err)

		assert.Equal(t, Values{
			"PUBLIC_KEY_LENGTH": 24,
			"PAGE_SIZE":         50,
			"RATIO":             0.75,
			"FEATURE_X":         true,
			"DISABLED":          false,
			"ROTATE_UNIT":       keyDomain.UnitMonth,
			"ROTATE_UNIT_LONG":  keyDomain.UnitWeek,
			"ENV":               "production",
			"NAME":              "7",
		}, selected)
	})

	t.Run("Success_OptionalMissing", func(t *testing.T) {
		selected, err := values.Select(
			Field{Name: "PAGE_SIZE", Kind: KindInt},
			Field{Name: "TIMEOUT", Kind: KindInt, Optional: true},
		)
		require.NoError(t, err)
		assert.Equal(t, Values{"PAGE_SIZE": 50}, selected)
	})

	t.Run("Error_RequiredMissing", func(t *testing.T) {
		_, err := values.Select(Field{Name: "TIMEOUT", Kind: KindInt})
		assert.ErrorIs(t, err, ErrPropertyInvalid)
		assert.Contains(t, err.Error(), "TIMEOUT")
	})

	t.Run("Error_NotAnInteger", func(t *testing.T) {
		_, err := values.Select(Field{Name: "FRACTION", Kind: KindInt})
		assert.ErrorIs(t, err, ErrPropertyInvalid)
	})

	t.Run("Error_UnknownEnumValue", func(t *testing.T) {
		_, err := values.Select(Field{Name: "ENV", Kind: KindEnum, Allowed: []string{"staging"}})
		assert.ErrorIs(t, err, ErrPropertyInvalid)
	})

	t.Run("Error_UnknownDurationUnit", func(t *testing.T) {
		_, err := values.Select(Field{Name: "ENV", Kind: KindDurationUnit})
		assert.ErrorIs(t, err, ErrPropertyInvalid)
	})
}

func TestValues_Int(t *testing.T) {
	values := Values{"PUBLIC_KEY_LENGTH": "32", "BROKEN": "abc"}

	length, err := values.Int("PUBLIC_KEY_LENGTH")
	require.NoError(t, err)
	assert.Equal(t, 32, length)

	_, err = values.Int("BROKEN")
	assert.ErrorIs(t, err, ErrPropertyInvalid)
}
