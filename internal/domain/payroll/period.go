package payroll

import (
	"fmt"
	"time"

	"github.com/csm-garage/backoffice-go/internal/pkg/validator"
)

// Period is a calendar month.
type Period struct {
	Year  int
	Month time.Month
}

func ParsePeriod(s string) (Period, error) {
	t, ok := validator.IsValidMonth(s)
	if !ok {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// Start is midnight UTC on the first day of the month.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is midnight UTC on the last day of the month.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

// Next is the first day of the following month.
func (p Period) Next() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Contains compares by calendar date, ignoring time of day and zone.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

// String renders "2025-04".
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Label renders "April 2025".
func (p Period) Label() string {
	return p.Start().Format("January 2006")
}

// ShortLabel renders "Apr 2025".
func (p Period) ShortLabel() string {
	return p.Start().Format("Jan 2006")
}
