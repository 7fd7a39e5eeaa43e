package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/csm-garage/backoffice-go/internal/domain/payment"
	"github.com/csm-garage/backoffice-go/internal/domain/sale"
	"github.com/csm-garage/backoffice-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type paymentRepositoryImpl struct {
	db *database.DB
}

func NewPaymentRepository(db *database.DB) payment.PaymentRepository {
	return &paymentRepositoryImpl{db: db}
}

const paymentColumns = `id, company_id, amount_paid, date_paid, payment_method, transaction_id, checkout_request_id,
	remarks, is_deleted, deleted_at, created_at`

func scanPayment(row pgx.Row, p *payment.Payment) error {
	return row.Scan(
		&p.ID, &p.CompanyID, &p.AmountPaid, &p.DatePaid, &p.Method, &p.TransactionID, &p.CheckoutRequestID,
		&p.Remarks, &p.IsDeleted, &p.DeletedAt, &p.CreatedAt,
	)
}

func mapPaymentWriteError(err error) error {
	switch {
	case database.IsUniqueViolation(err, "uk_payment_transaction_id"):
		return payment.ErrDuplicateTransactionID
	case database.IsUniqueViolation(err, "uk_payment_checkout_request_id"):
		return payment.ErrDuplicateCheckout
	}
	return nil
}

func (r *paymentRepositoryImpl) Create(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	if p.DatePaid.IsZero() {
		p.DatePaid = time.Now()
	}

	var created payment.Payment
	err := scanPayment(q.QueryRow(ctx, `
		INSERT INTO payments (company_id, amount_paid, date_paid, payment_method, transaction_id, checkout_request_id, remarks)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+paymentColumns,
		p.CompanyID, p.AmountPaid, p.DatePaid, p.Method, p.TransactionID, p.CheckoutRequestID, p.Remarks,
	), &created)
	if err != nil {
		if mapped := mapPaymentWriteError(err); mapped != nil {
			return payment.Payment{}, mapped
		}
		return payment.Payment{}, fmt.Errorf("failed to create payment: %w", err)
	}
	return created, nil
}

func (r *paymentRepositoryImpl) GetByID(ctx context.Context, id, companyID string) (payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	var p payment.Payment
	err := scanPayment(q.QueryRow(ctx, `
		SELECT `+paymentColumns+` FROM payments WHERE id = $1 AND company_id = $2 AND is_deleted = FALSE
	`, id, companyID), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payment.Payment{}, payment.ErrPaymentNotFound
		}
		return payment.Payment{}, fmt.Errorf("failed to get payment %s: %w", id, err)
	}
	return p, nil
}

func (r *paymentRepositoryImpl) GetByCheckoutRequestIDForUpdate(ctx context.Context, checkoutRequestID string) (payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	var p payment.Payment
	err := scanPayment(q.QueryRow(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE checkout_request_id = $1 AND is_deleted = FALSE
		FOR UPDATE
	`, checkoutRequestID), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payment.Payment{}, payment.ErrPaymentNotFound
		}
		return payment.Payment{}, fmt.Errorf("failed to get payment for checkout %s: %w", checkoutRequestID, err)
	}
	return p, nil
}

func (r *paymentRepositoryImpl) ApplyConfirmation(ctx context.Context, id string, amount decimal.Decimal, paidAt time.Time, transactionID, remarks string) (payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	var p payment.Payment
	err := scanPayment(q.QueryRow(ctx, `
		UPDATE payments SET amount_paid = $2, date_paid = $3, transaction_id = $4, remarks = $5
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING `+paymentColumns,
		id, amount, paidAt, transactionID, remarks,
	), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payment.Payment{}, payment.ErrPaymentNotFound
		}
		if mapped := mapPaymentWriteError(err); mapped != nil {
			return payment.Payment{}, mapped
		}
		return payment.Payment{}, fmt.Errorf("failed to confirm payment %s: %w", id, err)
	}
	return p, nil
}

func (r *paymentRepositoryImpl) SoftDelete(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payments SET is_deleted = TRUE, deleted_at = $2
		WHERE id = $1 AND is_deleted = FALSE
	`, id, at)
	if err != nil {
		return fmt.Errorf("failed to delete payment %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return payment.ErrPaymentNotFound
	}
	return nil
}

func (r *paymentRepositoryImpl) List(ctx context.Context, filter payment.PaymentFilter) ([]payment.Payment, int64, error) {
	q := GetQuerier(ctx, r.db)
	filter.Normalize()

	where := []string{"company_id = $1"}
	args := []interface{}{filter.CompanyID}
	if !filter.IncludeDeleted {
		where = append(where, "is_deleted = FALSE")
	}
	if filter.Method != nil {
		args = append(args, *filter.Method)
		where = append(where, fmt.Sprintf("payment_method = $%d", len(args)))
	}

	whereClause := "WHERE " + strings.Join(where, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM payments "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	rows, err := q.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM payments %s
		ORDER BY date_paid DESC, id
		LIMIT $%d OFFSET $%d
	`, paymentColumns, whereClause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	list := []payment.Payment{}
	for rows.Next() {
		var p payment.Payment
		if err := scanPayment(rows, &p); err != nil {
			return nil, 0, err
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

// ========== LINKS ==========

func (r *paymentRepositoryImpl) LinkInvoice(ctx context.Context, paymentID, invoiceID string) (bool, error) {
	return r.link(ctx, `
		INSERT INTO payment_invoices (payment_id, invoice_id) VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT uk_payment_invoice DO NOTHING
	`, "payment_invoices_invoice_id_fkey", sale.ErrInvoiceNotFound, paymentID, invoiceID)
}

func (r *paymentRepositoryImpl) LinkSale(ctx context.Context, paymentID, saleID string) (bool, error) {
	return r.link(ctx, `
		INSERT INTO payment_sales (payment_id, sale_id) VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT uk_payment_sale DO NOTHING
	`, "payment_sales_sale_id_fkey", sale.ErrSaleNotFound, paymentID, saleID)
}

// link maps a violation of documentFK to errDocument and any other foreign key violation to a missing payment.
func (r *paymentRepositoryImpl) link(ctx context.Context, query, documentFK string, errDocument error, paymentID, documentID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, query, paymentID, documentID)
	if err != nil {
		if database.IsForeignKeyViolation(err, documentFK) {
			return false, errDocument
		}
		if database.IsForeignKeyViolation(err, "") {
			return false, payment.ErrPaymentNotFound
		}
		return false, fmt.Errorf("failed to link payment %s to %s: %w", paymentID, documentID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *paymentRepositoryImpl) ListLinkedDocuments(ctx context.Context, paymentID string) ([]string, []string, error) {
	q := GetQuerier(ctx, r.db)

	invoiceIDs, err := r.collectIDs(ctx, q, `
		SELECT invoice_id FROM payment_invoices WHERE payment_id = $1 ORDER BY created_at, invoice_id
	`, paymentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list linked invoices: %w", err)
	}
	saleIDs, err := r.collectIDs(ctx, q, `
		SELECT sale_id FROM payment_sales WHERE payment_id = $1 ORDER BY created_at, sale_id
	`, paymentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list linked sales: %w", err)
	}
	return invoiceIDs, saleIDs, nil
}

func (r *paymentRepositoryImpl) collectIDs(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]string, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
