package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/csm-garage/backoffice-go/internal/domain/sale"
	"github.com/csm-garage/backoffice-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type saleRepositoryImpl struct {
	db *database.DB
}

func NewSaleRepository(db *database.DB) sale.SaleRepository {
	return &saleRepositoryImpl{db: db}
}

// ========== ITEMS ==========

const saleItemSelect = `
	SELECT si.id, si.sale_id, si.type, si.service_id, si.product_id, si.quantity, si.amount,
		si.tax_rate, si.tax_amount, si.discount_rate, si.discount_amount, si.subtotal, si.total,
		si.created_at, s.company_id, s.date
	FROM sale_items si
	JOIN sales s ON s.id = si.sale_id
	WHERE si.id = $1 AND s.is_deleted = FALSE`

func scanSaleItem(row pgx.Row, item *sale.SaleItem) error {
	return row.Scan(
		&item.ID, &item.SaleID, &item.Type, &item.ServiceID, &item.ProductID, &item.Quantity, &item.Amount,
		&item.TaxRate, &item.TaxAmount, &item.DiscountRate, &item.DiscountAmount, &item.Subtotal, &item.Total,
		&item.CreatedAt, &item.CompanyID, &item.SaleDate,
	)
}

func (r *saleRepositoryImpl) GetSaleItem(ctx context.Context, id string) (sale.SaleItem, error) {
	return r.getSaleItem(ctx, saleItemSelect, id)
}

func (r *saleRepositoryImpl) LockSaleItem(ctx context.Context, id string) (sale.SaleItem, error) {
	return r.getSaleItem(ctx, saleItemSelect+` FOR UPDATE OF si`, id)
}

func (r *saleRepositoryImpl) getSaleItem(ctx context.Context, query, id string) (sale.SaleItem, error) {
	q := GetQuerier(ctx, r.db)

	var item sale.SaleItem
	if err := scanSaleItem(q.QueryRow(ctx, query, id), &item); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sale.SaleItem{}, sale.ErrSaleItemNotFound
		}
		return sale.SaleItem{}, fmt.Errorf("failed to get sale item %s: %w", id, err)
	}
	return item, nil
}

// ========== ASSIGNMENTS ==========

func (r *saleRepositoryImpl) ListAssignedEmployeeIDs(ctx context.Context, saleItemID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT employee_id FROM sale_item_employees
		WHERE sale_item_id = $1
		ORDER BY assigned_at, employee_id
	`, saleItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sale item employees: %w", err)
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

func (r *saleRepositoryImpl) AddAssignment(ctx context.Context, saleItemID, employeeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		INSERT INTO sale_item_employees (sale_item_id, employee_id)
		VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT uk_sale_item_employee DO NOTHING
	`, saleItemID, employeeID)
	if err != nil {
		if database.IsForeignKeyViolation(err, "") {
			return false, sale.ErrSaleItemNotFound
		}
		return false, fmt.Errorf("failed to assign employee: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *saleRepositoryImpl) RemoveAssignment(ctx context.Context, saleItemID, employeeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		DELETE FROM sale_item_employees WHERE sale_item_id = $1 AND employee_id = $2
	`, saleItemID, employeeID)
	if err != nil {
		return false, fmt.Errorf("failed to unassign employee: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *saleRepositoryImpl) ReplaceAssignments(ctx context.Context, saleItemID string, employeeIDs []string) error {
	q := GetQuerier(ctx, r.db)

	// A nil slice encodes as NULL, which would make the NOT ANY filter match nothing.
	if employeeIDs == nil {
		employeeIDs = []string{}
	}

	if _, err := q.Exec(ctx, `
		DELETE FROM sale_item_employees
		WHERE sale_item_id = $1 AND NOT (employee_id = ANY($2::uuid[]))
	`, saleItemID, employeeIDs); err != nil {
		return fmt.Errorf("failed to clear sale item employees: %w", err)
	}

	if len(employeeIDs) == 0 {
		return nil
	}

	if _, err := q.Exec(ctx, `
		INSERT INTO sale_item_employees (sale_item_id, employee_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT ON CONSTRAINT uk_sale_item_employee DO NOTHING
	`, saleItemID, employeeIDs); err != nil {
		return fmt.Errorf("failed to assign sale item employees: %w", err)
	}
	return nil
}

// ========== CATALOG ==========

func (r *saleRepositoryImpl) GetService(ctx context.Context, id string) (sale.Service, error) {
	q := GetQuerier(ctx, r.db)

	var svc sale.Service
	err := q.QueryRow(ctx, `
		SELECT id, company_id, name, price FROM services WHERE id = $1
	`, id).Scan(&svc.ID, &svc.CompanyID, &svc.Name, &svc.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sale.Service{}, sale.ErrServiceNotFound
		}
		return sale.Service{}, fmt.Errorf("failed to get service %s: %w", id, err)
	}
	return svc, nil
}

// ========== SETTLEMENT ==========

func (r *saleRepositoryImpl) MarkSalePaid(ctx context.Context, id, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE sales SET status = $3, updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND is_deleted = FALSE
	`, id, companyID, sale.StatusPaid)
	if err != nil {
		return fmt.Errorf("failed to mark sale %s paid: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return sale.ErrSaleNotFound
	}
	return nil
}

func (r *saleRepositoryImpl) MarkInvoicePaid(ctx context.Context, id, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE invoices SET status = $3, updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND is_deleted = FALSE
	`, id, companyID, sale.StatusPaid)
	if err != nil {
		return fmt.Errorf("failed to mark invoice %s paid: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return sale.ErrInvoiceNotFound
	}
	return nil
}

func (r *saleRepositoryImpl) EnsureSale(ctx context.Context, id, companyID string) error {
	return r.ensure(ctx, `SELECT EXISTS (
		SELECT 1 FROM sales WHERE id = $1 AND company_id = $2 AND is_deleted = FALSE
	)`, id, companyID, sale.ErrSaleNotFound)
}

func (r *saleRepositoryImpl) EnsureInvoice(ctx context.Context, id, companyID string) error {
	return r.ensure(ctx, `SELECT EXISTS (
		SELECT 1 FROM invoices WHERE id = $1 AND company_id = $2 AND is_deleted = FALSE
	)`, id, companyID, sale.ErrInvoiceNotFound)
}

func (r *saleRepositoryImpl) ensure(ctx context.Context, query, id, companyID string, errNotFound error) error {
	q := GetQuerier(ctx, r.db)

	var exists bool
	if err := q.QueryRow(ctx, query, id, companyID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check document %s: %w", id, err)
	}
	if !exists {
		return errNotFound
	}
	return nil
}
