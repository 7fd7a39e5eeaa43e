package payroll

import (
	"context"
	"time"
)

type RemunerationRepository interface {
	Create(ctx context.Context, r Remuneration) (Remuneration, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Remuneration, error)
	// ListEffectiveInPeriod returns remunerations whose effective date falls in [from, to).
	ListEffectiveInPeriod(ctx context.Context, employeeID string, from, to time.Time) ([]Remuneration, error)
}

type DeductionRepository interface {
	Create(ctx context.Context, d Deduction) (Deduction, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Deduction, error)
	// ListActiveInPeriod returns deductions whose window overlaps the month of p.
	ListActiveInPeriod(ctx context.Context, employeeID string, p Period) ([]Deduction, error)
}

// PayrollRepository defines data access methods for stored payroll results.
// Reads take companyID to prevent cross-company access.
type PayrollRepository interface {
	// Upsert replaces every field of the (employee, month, year) row.
	Upsert(ctx context.Context, p Payroll) (Payroll, error)
	GetByID(ctx context.Context, id string, companyID string) (Payroll, error)
	ListByCompanyPeriod(ctx context.Context, companyID string, p Period) ([]Payroll, error)
}
