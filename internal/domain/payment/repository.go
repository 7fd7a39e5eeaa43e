package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentRepository interface {
	Create(ctx context.Context, p Payment) (Payment, error)
	// GetByID ignores soft-deleted payments and payments of other companies.
	GetByID(ctx context.Context, id, companyID string) (Payment, error)
	GetByCheckoutRequestIDForUpdate(ctx context.Context, checkoutRequestID string) (Payment, error)
	ApplyConfirmation(ctx context.Context, id string, amount decimal.Decimal, paidAt time.Time, transactionID, remarks string) (Payment, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	// List is always scoped to filter.CompanyID.
	List(ctx context.Context, filter PaymentFilter) ([]Payment, int64, error)

	// Join rows are get-or-create; the bool is true when a row was inserted.
	LinkInvoice(ctx context.Context, paymentID, invoiceID string) (bool, error)
	LinkSale(ctx context.Context, paymentID, saleID string) (bool, error)
	ListLinkedDocuments(ctx context.Context, paymentID string) (invoiceIDs []string, saleIDs []string, err error)
}
