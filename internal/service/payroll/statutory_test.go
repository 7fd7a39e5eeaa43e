package payroll

import (
	"testing"

	"github.com/csm-garage/backoffice-go/internal/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, money.MustParse(want).Equal(got), "want %s, got %s", want, got.StringFixed(2))
}

func TestStatutoryCalculator_PAYE(t *testing.T) {
	calc := NewStatutoryCalculator()

	tests := []struct {
		taxable string
		want    string
	}{
		{"0", "0"},
		{"-500", "0"},
		{"24000", "0"},
		{"30000", "1500"},
		{"32333", "2083.25"},
		{"53497.50", "8432.60"},
		{"94670", "20784.35"},
		{"500000", "142383.35"},
		{"1000000", "309883.35"},
	}
	for _, tt := range tests {
		t.Run(tt.taxable, func(t *testing.T) {
			assertAmount(t, tt.want, calc.PAYE(money.MustParse(tt.taxable)))
		})
	}
}

func TestStatutoryCalculator_PAYEIsMonotone(t *testing.T) {
	calc := NewStatutoryCalculator()

	prev := decimal.Zero
	for income := int64(0); income <= 1_200_000; income += 7_500 {
		tax := calc.PAYE(decimal.NewFromInt(income))
		assert.False(t, tax.IsNegative(), "negative tax at %d", income)
		assert.True(t, tax.GreaterThanOrEqual(prev), "tax decreased at %d", income)
		prev = tax
	}
}

func TestStatutoryCalculator_Compute(t *testing.T) {
	calc := NewStatutoryCalculator()

	b := calc.Compute(decimal.NewFromInt(100000))
	assertAmount(t, "1080", b.Pension)
	assertAmount(t, "2750", b.Health)
	assertAmount(t, "1500", b.Housing)
	assertAmount(t, "94670", b.Taxable)
	assertAmount(t, "20784.35", b.PAYE)
	assertAmount(t, "26114.35", b.Total())

	low := calc.Compute(decimal.NewFromInt(8000))
	assertAmount(t, "480", low.Pension)
	assertAmount(t, "300", low.Health)
	assertAmount(t, "120", low.Housing)
	assertAmount(t, "0", low.PAYE)

	mid := calc.Compute(decimal.NewFromInt(57000))
	assertAmount(t, "1080", mid.Pension)
	assertAmount(t, "1567.50", mid.Health)
	assertAmount(t, "855", mid.Housing)
	assertAmount(t, "53497.50", mid.Taxable)
	assertAmount(t, "8432.60", mid.PAYE)
}

func TestStatutoryCalculator_ComputeNonPositiveGross(t *testing.T) {
	calc := NewStatutoryCalculator()

	for _, gross := range []int64{0, -100} {
		b := calc.Compute(decimal.NewFromInt(gross))
		assert.True(t, b.Gross.IsZero())
		assert.True(t, b.Pension.IsZero())
		assert.True(t, b.Housing.IsZero())
		assert.True(t, b.Taxable.IsZero())
		assert.True(t, b.PAYE.IsZero())
		assert.Equal(t, "300.00", b.Health.StringFixed(2))
		assert.Equal(t, "300.00", b.Total().StringFixed(2))
	}
}

func TestStatutoryCalculator_HealthFloorKeepsTaxableNonNegative(t *testing.T) {
	b := NewStatutoryCalculator().Compute(decimal.NewFromInt(200))

	assert.Equal(t, "12.00", b.Pension.StringFixed(2))
	assert.Equal(t, "300.00", b.Health.StringFixed(2))
	assert.Equal(t, "3.00", b.Housing.StringFixed(2))
	assert.True(t, b.Taxable.IsZero())
	assert.True(t, b.PAYE.IsZero())
}
