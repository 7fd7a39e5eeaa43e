package commission

import (
	"context"
	"time"
)

type CommissionRepository interface {
	// Settings
	GetSetting(ctx context.Context, employeeID, serviceID string) (Setting, error)
	ListSettingsByEmployee(ctx context.Context, employeeID string) ([]Setting, error)
	ListSettingsForService(ctx context.Context, serviceID string, employeeIDs []string) ([]Setting, error)
	UpsertSetting(ctx context.Context, setting Setting) (Setting, error)

	// Attribution; LockBySaleItem must run inside the recompute transaction.
	LockBySaleItem(ctx context.Context, saleItemID string) ([]Commission, error)
	// DeleteUnpaidBySaleItem leaves settled rows in place.
	DeleteUnpaidBySaleItem(ctx context.Context, saleItemID string) (int64, error)
	Create(ctx context.Context, c Commission) (Commission, error)

	// Payment status
	GetForUpdate(ctx context.Context, id, employeeID string) (Commission, error)
	SetPaid(ctx context.Context, id string, paid bool, datePaid *time.Time) (Commission, error)
	ListByEmployee(ctx context.Context, employeeID string, filter CommissionFilter) ([]Commission, error)

	// Payroll settlement. from is inclusive, to is exclusive, both matched against the sale date.
	LockUnpaidForPeriod(ctx context.Context, employeeID string, from, to time.Time) ([]Commission, error)
	MarkPaid(ctx context.Context, ids []string, at time.Time) (int64, error)
}
