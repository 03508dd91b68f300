package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidPhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"ten digits", "9876543210", true},
		{"eleven digits", "98765432101", true},
		{"twelve digits", "987654321012", true},
		{"nine digits", "987654321", false},
		{"thirteen digits", "9876543210123", false},
		{"empty", "", false},
		{"letters", "98765abcde", false},
		{"punctuated", "98765-43210", false},
		{"spaced", "98765 43210", false},
		{"plus prefix", "+919876543210", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidPhone(tt.input))
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("01-03-2025")
	require.NoError(t, err)
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, "March", d.Month().String())
	assert.Equal(t, 1, d.Day())

	for _, bad := range []string{"2025-03-01", "1-3-2025", "32-01-2025", "aa-bb-cccc", ""} {
		_, err := ParseDate(bad)
		assert.Error(t, err, "input %q should be rejected", bad)
	}
}

func TestRequiredText(t *testing.T) {
	trimmed, ok := RequiredText("  Asha Rao  ")
	require.True(t, ok)
	assert.Equal(t, "Asha Rao", trimmed)

	_, ok = RequiredText("   ")
	assert.False(t, ok)
}
