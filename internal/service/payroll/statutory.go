package payroll

import (
	"github.com/csm-garage/backoffice-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// TaxBand taxes up to Width of income at Rate percent. A zero Width is the
// open-ended top band.
type TaxBand struct {
	Width decimal.Decimal
	Rate  decimal.Decimal
}

var (
	payeBands = []TaxBand{
		{Width: decimal.NewFromInt(24000), Rate: decimal.NewFromInt(10)},
		{Width: decimal.NewFromInt(8333), Rate: decimal.NewFromInt(25)},
		{Width: decimal.NewFromInt(467667), Rate: decimal.NewFromInt(30)},
		{Width: decimal.NewFromInt(300000), Rate: decimal.RequireFromString("32.5")},
		{Width: decimal.Zero, Rate: decimal.NewFromInt(35)},
	}

	personalRelief = decimal.NewFromInt(2400)

	pensionRate = decimal.NewFromInt(6)
	pensionCap  = decimal.NewFromInt(1080)
	healthRate  = decimal.RequireFromString("2.75")
	healthFloor = decimal.NewFromInt(300)
	housingRate = decimal.RequireFromString("1.5")
)

// StatutoryBreakdown holds the statutory amounts for one gross pay.
type StatutoryBreakdown struct {
	Gross   decimal.Decimal
	Pension decimal.Decimal // NSSF
	Health  decimal.Decimal // SHIF
	Housing decimal.Decimal // AHL
	Taxable decimal.Decimal
	PAYE    decimal.Decimal
}

// Total is the sum of every statutory deduction.
func (b StatutoryBreakdown) Total() decimal.Decimal {
	return money.Sum(b.Pension, b.Health, b.Housing, b.PAYE)
}

type StatutoryCalculator struct {
}

func NewStatutoryCalculator() *StatutoryCalculator {
	return &StatutoryCalculator{}
}

// PAYE returns income tax on monthly taxable income after personal relief.
func (c *StatutoryCalculator) PAYE(taxable decimal.Decimal) decimal.Decimal {
	remaining := money.ClampZero(taxable)
	tax := decimal.Zero

	for _, band := range payeBands {
		if !remaining.IsPositive() {
			break
		}
		portion := remaining
		if !band.Width.IsZero() {
			portion = money.Min(remaining, band.Width)
		}
		tax = tax.Add(money.Percent(portion, band.Rate))
		remaining = remaining.Sub(portion)
	}

	return money.Round(money.ClampZero(tax.Sub(personalRelief)))
}

// Compute derives pension, health and housing levies from gross and taxes the
// remainder. Negative gross counts as zero; health keeps its floor even then.
// Taxable never drops below zero.
func (c *StatutoryCalculator) Compute(gross decimal.Decimal) StatutoryBreakdown {
	gross = money.ClampZero(gross)

	pension := money.Round(money.Min(money.Percent(gross, pensionRate), pensionCap))
	health := money.Round(money.Max(money.Percent(gross, healthRate), healthFloor))
	housing := money.Round(money.Percent(gross, housingRate))
	taxable := money.Round(money.ClampZero(gross.Sub(money.Sum(pension, health, housing))))

	return StatutoryBreakdown{
		Gross:   money.Round(gross),
		Pension: pension,
		Health:  health,
		Housing: housing,
		Taxable: taxable,
		PAYE:    c.PAYE(taxable),
	}
}
