package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, "0.13", Round(decimal.RequireFromString("0.125")).StringFixed(2))
	assert.Equal(t, "-0.13", Round(decimal.RequireFromString("-0.125")).StringFixed(2))
	assert.Equal(t, "2.50", Round(decimal.RequireFromString("2.5")).StringFixed(2))
}

func TestPercent(t *testing.T) {
	got := Percent(decimal.NewFromInt(250), decimal.RequireFromString("0.1"))
	assert.True(t, got.Equal(decimal.RequireFromString("0.25")), got.String())
}

func TestPaiseConversion(t *testing.T) {
	assert.True(t, FromPaise(29100).Equal(decimal.NewFromInt(291)))
	assert.Equal(t, int64(29100), ToPaise(decimal.NewFromInt(291)))
	assert.Equal(t, int64(1235), ToPaise(decimal.RequireFromString("12.345")))
}

func TestFormatINR(t *testing.T) {
	cases := map[string]string{
		"0":          "0.00",
		"291":        "291.00",
		"1234.5":     "1,234.50",
		"123456":     "1,23,456.00",
		"12345678.9": "1,23,45,678.90",
		"-100000":    "-1,00,000.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatINR(decimal.RequireFromString(in)), in)
	}
}

func TestIsWholePaise(t *testing.T) {
	for _, raw := range []string{"291", "291.00", "290.99", "0.01", "10.500"} {
		assert.True(t, IsWholePaise(decimal.RequireFromString(raw)), raw)
	}
	for _, raw := range []string{"290.999", "0.001", "290.99995"} {
		assert.False(t, IsWholePaise(decimal.RequireFromString(raw)), raw)
	}
}

func TestFormatKeepsTwoPlaces(t *testing.T) {
	assert.Equal(t, "291.00", Format(decimal.NewFromInt(291)))
	assert.Equal(t, "0.13", Format(decimal.RequireFromString("0.125")))
	assert.Equal(t, "-5.50", Format(decimal.RequireFromString("-5.5")))
}
