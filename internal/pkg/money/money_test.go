package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1"},
		{"2749.995", "2750"},
		{"0", "0"},
		{"-1.005", "-1.01"},
	}
	for _, c := range cases {
		got := Round(MustParse(c.in))
		assert.True(t, got.Equal(MustParse(c.want)), "Round(%s) = %s, want %s", c.in, got, c.want)
	}
}

func TestPercentAndRate(t *testing.T) {
	assert.True(t, Percent(MustParse("100000"), MustParse("6")).Equal(MustParse("6000")))
	assert.True(t, Percent(MustParse("1000"), MustParse("12.5")).Equal(MustParse("125")))
	assert.True(t, Rate(MustParse("100000"), MustParse("0.015")).Equal(MustParse("1500")))
}

func TestMinMaxClamp(t *testing.T) {
	a, b := MustParse("1080"), MustParse("6000")
	assert.True(t, Min(a, b).Equal(a))
	assert.True(t, Max(a, b).Equal(b))
	assert.True(t, ClampZero(MustParse("-5")).IsZero())
	assert.True(t, ClampZero(MustParse("5")).Equal(MustParse("5")))
}

func TestSum(t *testing.T) {
	assert.True(t, Sum().IsZero())
	assert.True(t, Sum(MustParse("0.1"), MustParse("0.2")).Equal(MustParse("0.3")))

	m := map[string]decimal.Decimal{"House": MustParse("5000"), "Commuter": MustParse("2000.50")}
	assert.True(t, SumMap(m).Equal(MustParse("7000.50")))
}

func TestParse(t *testing.T) {
	d, err := Parse(" 57000.25 ")
	require.NoError(t, err)
	assert.True(t, d.Equal(MustParse("57000.25")))

	_, err = Parse("")
	assert.Error(t, err)

	_, err = Parse("abc")
	assert.Error(t, err)

	assert.Panics(t, func() { MustParse("x") })
}
