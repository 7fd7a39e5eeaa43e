package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/csm-garage/backoffice-go/internal/domain/commission"
	"github.com/csm-garage/backoffice-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type commissionRepositoryImpl struct {
	db *database.DB
}

func NewCommissionRepository(db *database.DB) commission.CommissionRepository {
	return &commissionRepositoryImpl{db: db}
}

// ========== SETTINGS ==========

func (r *commissionRepositoryImpl) GetSetting(ctx context.Context, employeeID, serviceID string) (commission.Setting, error) {
	q := GetQuerier(ctx, r.db)

	var s commission.Setting
	err := q.QueryRow(ctx, `
		SELECT ecs.id, ecs.employee_id, ecs.service_id, ecs.commission_percentage, ecs.created_at, ecs.updated_at, sv.name
		FROM employee_commission_settings ecs
		JOIN services sv ON sv.id = ecs.service_id
		WHERE ecs.employee_id = $1 AND ecs.service_id = $2
	`, employeeID, serviceID).Scan(
		&s.ID, &s.EmployeeID, &s.ServiceID, &s.Percentage, &s.CreatedAt, &s.UpdatedAt, &s.ServiceName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return commission.Setting{}, commission.ErrSettingNotFound
		}
		return commission.Setting{}, fmt.Errorf("failed to get commission setting: %w", err)
	}
	return s, nil
}

func (r *commissionRepositoryImpl) ListSettingsByEmployee(ctx context.Context, employeeID string) ([]commission.Setting, error) {
	return r.listSettings(ctx, `
		SELECT ecs.id, ecs.employee_id, ecs.service_id, ecs.commission_percentage, ecs.created_at, ecs.updated_at, sv.name
		FROM employee_commission_settings ecs
		JOIN services sv ON sv.id = ecs.service_id
		WHERE ecs.employee_id = $1
		ORDER BY sv.name
	`, employeeID)
}

func (r *commissionRepositoryImpl) ListSettingsForService(ctx context.Context, serviceID string, employeeIDs []string) ([]commission.Setting, error) {
	if len(employeeIDs) == 0 {
		return []commission.Setting{}, nil
	}
	return r.listSettings(ctx, `
		SELECT ecs.id, ecs.employee_id, ecs.service_id, ecs.commission_percentage, ecs.created_at, ecs.updated_at, sv.name
		FROM employee_commission_settings ecs
		JOIN services sv ON sv.id = ecs.service_id
		WHERE ecs.service_id = $1 AND ecs.employee_id = ANY($2::uuid[])
	`, serviceID, employeeIDs)
}

func (r *commissionRepositoryImpl) listSettings(ctx context.Context, query string, args ...interface{}) ([]commission.Setting, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list commission settings: %w", err)
	}
	defer rows.Close()

	settings := []commission.Setting{}
	for rows.Next() {
		var s commission.Setting
		if err := rows.Scan(&s.ID, &s.EmployeeID, &s.ServiceID, &s.Percentage, &s.CreatedAt, &s.UpdatedAt, &s.ServiceName); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (r *commissionRepositoryImpl) UpsertSetting(ctx context.Context, setting commission.Setting) (commission.Setting, error) {
	q := GetQuerier(ctx, r.db)

	var s commission.Setting
	err := q.QueryRow(ctx, `
		INSERT INTO employee_commission_settings (employee_id, service_id, commission_percentage)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT uk_commission_setting_employee_service DO UPDATE SET
			commission_percentage = EXCLUDED.commission_percentage,
			updated_at = NOW()
		RETURNING id, employee_id, service_id, commission_percentage, created_at, updated_at
	`, setting.EmployeeID, setting.ServiceID, setting.Percentage).Scan(
		&s.ID, &s.EmployeeID, &s.ServiceID, &s.Percentage, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return commission.Setting{}, fmt.Errorf("failed to upsert commission setting: %w", err)
	}
	s.ServiceName = setting.ServiceName
	return s, nil
}

// ========== ATTRIBUTION ==========

const commissionColumns = `
	ec.id, ec.employee_id, ec.sale_item_id, ec.commission_amount, ec.paid, ec.date_paid, ec.date_calculated, s.date`

const commissionFrom = `
	FROM employee_commissions ec
	JOIN sale_items si ON si.id = ec.sale_item_id
	JOIN sales s ON s.id = si.sale_id`

func scanCommission(row pgx.Row, c *commission.Commission) error {
	return row.Scan(&c.ID, &c.EmployeeID, &c.SaleItemID, &c.Amount, &c.Paid, &c.DatePaid, &c.DateCalculated, &c.SaleDate)
}

func (r *commissionRepositoryImpl) queryCommissions(ctx context.Context, query string, args ...interface{}) ([]commission.Commission, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query commissions: %w", err)
	}
	defer rows.Close()

	commissions := []commission.Commission{}
	for rows.Next() {
		var c commission.Commission
		if err := scanCommission(rows, &c); err != nil {
			return nil, err
		}
		commissions = append(commissions, c)
	}
	return commissions, rows.Err()
}

func (r *commissionRepositoryImpl) LockBySaleItem(ctx context.Context, saleItemID string) ([]commission.Commission, error) {
	return r.queryCommissions(ctx, `SELECT `+commissionColumns+commissionFrom+`
		WHERE ec.sale_item_id = $1
		ORDER BY ec.employee_id
		FOR UPDATE OF ec
	`, saleItemID)
}

func (r *commissionRepositoryImpl) DeleteUnpaidBySaleItem(ctx context.Context, saleItemID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM employee_commissions WHERE sale_item_id = $1 AND paid = FALSE`, saleItemID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete commissions for sale item %s: %w", saleItemID, err)
	}
	return tag.RowsAffected(), nil
}

func (r *commissionRepositoryImpl) Create(ctx context.Context, c commission.Commission) (commission.Commission, error) {
	q := GetQuerier(ctx, r.db)

	var created commission.Commission
	err := q.QueryRow(ctx, `
		INSERT INTO employee_commissions (employee_id, sale_item_id, commission_amount, paid, date_paid)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, employee_id, sale_item_id, commission_amount, paid, date_paid, date_calculated
	`, c.EmployeeID, c.SaleItemID, c.Amount, c.Paid, c.DatePaid).Scan(
		&created.ID, &created.EmployeeID, &created.SaleItemID, &created.Amount, &created.Paid, &created.DatePaid, &created.DateCalculated,
	)
	if err != nil {
		return commission.Commission{}, fmt.Errorf("failed to create commission: %w", err)
	}
	created.SaleDate = c.SaleDate
	return created, nil
}

// ========== PAYMENT STATUS ==========

func (r *commissionRepositoryImpl) GetForUpdate(ctx context.Context, id, employeeID string) (commission.Commission, error) {
	q := GetQuerier(ctx, r.db)

	var c commission.Commission
	err := scanCommission(q.QueryRow(ctx, `SELECT `+commissionColumns+commissionFrom+`
		WHERE ec.id = $1 AND ec.employee_id = $2
		FOR UPDATE OF ec
	`, id, employeeID), &c)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return commission.Commission{}, commission.ErrCommissionNotFound
		}
		return commission.Commission{}, fmt.Errorf("failed to get commission %s: %w", id, err)
	}
	return c, nil
}

func (r *commissionRepositoryImpl) SetPaid(ctx context.Context, id string, paid bool, datePaid *time.Time) (commission.Commission, error) {
	q := GetQuerier(ctx, r.db)

	var c commission.Commission
	err := q.QueryRow(ctx, `
		UPDATE employee_commissions SET paid = $2, date_paid = $3
		WHERE id = $1
		RETURNING id, employee_id, sale_item_id, commission_amount, paid, date_paid, date_calculated
	`, id, paid, datePaid).Scan(&c.ID, &c.EmployeeID, &c.SaleItemID, &c.Amount, &c.Paid, &c.DatePaid, &c.DateCalculated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return commission.Commission{}, commission.ErrCommissionNotFound
		}
		return commission.Commission{}, fmt.Errorf("failed to update commission %s: %w", id, err)
	}
	return c, nil
}

func (r *commissionRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, filter commission.CommissionFilter) ([]commission.Commission, error) {
	where := []string{"ec.employee_id = $1"}
	args := []interface{}{employeeID}

	if filter.Paid != nil {
		args = append(args, *filter.Paid)
		where = append(where, fmt.Sprintf("ec.paid = $%d", len(args)))
	}
	if filter.Month != nil {
		from := time.Date(filter.Month.Year(), filter.Month.Month(), 1, 0, 0, 0, 0, time.UTC)
		args = append(args, from, from.AddDate(0, 1, 0))
		where = append(where, fmt.Sprintf("s.date >= $%d AND s.date < $%d", len(args)-1, len(args)))
	}

	return r.queryCommissions(ctx, `SELECT `+commissionColumns+commissionFrom+`
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY s.date DESC, ec.date_calculated DESC
	`, args...)
}

// ========== PAYROLL SETTLEMENT ==========

func (r *commissionRepositoryImpl) LockUnpaidForPeriod(ctx context.Context, employeeID string, from, to time.Time) ([]commission.Commission, error) {
	return r.queryCommissions(ctx, `SELECT `+commissionColumns+commissionFrom+`
		WHERE ec.employee_id = $1 AND ec.paid = FALSE
			AND s.is_deleted = FALSE AND s.date >= $2 AND s.date < $3
		ORDER BY ec.id
		FOR UPDATE OF ec
	`, employeeID, from, to)
}

func (r *commissionRepositoryImpl) MarkPaid(ctx context.Context, ids []string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE employee_commissions SET paid = TRUE, date_paid = $2
		WHERE id = ANY($1::uuid[]) AND paid = FALSE
	`, ids, at)
	if err != nil {
		return 0, fmt.Errorf("failed to mark commissions paid: %w", err)
	}
	return tag.RowsAffected(), nil
}
