package sale

import "context"

type SaleRepository interface {
	// Items and assignments
	GetSaleItem(ctx context.Context, id string) (SaleItem, error)
	// LockSaleItem reads the item with FOR UPDATE; it serialises assignment changes per item.
	LockSaleItem(ctx context.Context, id string) (SaleItem, error)
	ListAssignedEmployeeIDs(ctx context.Context, saleItemID string) ([]string, error)
	AddAssignment(ctx context.Context, saleItemID, employeeID string) (bool, error)
	RemoveAssignment(ctx context.Context, saleItemID, employeeID string) (bool, error)
	ReplaceAssignments(ctx context.Context, saleItemID string, employeeIDs []string) error

	// Catalog
	GetService(ctx context.Context, id string) (Service, error)

	// Settlement status. These return the not-found error for missing or deleted
	// documents and for documents of another company.
	MarkSalePaid(ctx context.Context, id, companyID string) error
	MarkInvoicePaid(ctx context.Context, id, companyID string) error
	EnsureSale(ctx context.Context, id, companyID string) error
	EnsureInvoice(ctx context.Context, id, companyID string) error
}
