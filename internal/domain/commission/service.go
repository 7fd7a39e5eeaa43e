package commission

import "context"

type CommissionService interface {
	// Settings
	UpsertSetting(ctx context.Context, req UpsertSettingRequest) (SettingResponse, error)
	ListSettings(ctx context.Context, employeeID string) ([]SettingResponse, error)

	// Commissions
	ListCommissions(ctx context.Context, employeeID string, filter CommissionFilter) ([]CommissionResponse, error)
	UpdatePaymentStatus(ctx context.Context, req UpdatePaymentStatusRequest) (UpdatePaymentStatusResponse, error)

	// Assignment changes; each recomputes the item's commissions in the same transaction.
	AssignEmployee(ctx context.Context, saleItemID, employeeID string) (AttributionResponse, error)
	UnassignEmployee(ctx context.Context, saleItemID, employeeID string) (AttributionResponse, error)
	ReplaceAssignments(ctx context.Context, req ReplaceAssignmentsRequest) (AttributionResponse, error)
	Recompute(ctx context.Context, saleItemID string) (AttributionResponse, error)
}
