package company

import "context"

// CompanyRepository is read-only here; companies are managed by the tenancy service.
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (Company, error)
}
