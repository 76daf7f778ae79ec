package money

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"50000000", "50000000"},
		{"50,000,000", "50000000"},
		{" UGX 2,000,000 ", "2000000"},
		{"ugx1500.50", "1500.5"},
		{"USh 750", "750"},
		{"0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "UGX", "abc", "12x", "-500"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseAmount(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, in, ve.Value)
		})
	}
}

func TestParsePositive(t *testing.T) {
	_, err := ParsePositive("monthly income", "0")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "monthly income")

	d, err := ParsePositive("monthly income", "2,000,000")
	require.NoError(t, err)
	assert.Equal(t, int64(2000000), d.IntPart())
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"50000000", "UGX 50,000,000"},
		{"999", "UGX 999"},
		{"1234.5", "UGX 1,234.50"},
		{"0", "UGX 0"},
		{"-2500", "UGX -2,500"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestPercent(t *testing.T) {
	ratio := decimal.NewFromInt(50000000).Div(decimal.NewFromInt(24000000))
	assert.Equal(t, "208.3%", Percent(ratio))
	assert.Equal(t, "100.0%", Percent(decimal.NewFromInt(1)))
}
