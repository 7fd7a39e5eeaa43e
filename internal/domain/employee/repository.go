package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	// GetActiveByCompanyID returns active, non-deleted employees ordered by full name.
	GetActiveByCompanyID(ctx context.Context, companyID string) ([]Employee, error)
}
