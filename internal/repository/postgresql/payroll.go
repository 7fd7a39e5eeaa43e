package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/csm-garage/backoffice-go/internal/domain/payroll"
	"github.com/csm-garage/backoffice-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ========== REMUNERATIONS ==========

type remunerationRepositoryImpl struct {
	db *database.DB
}

func NewRemunerationRepository(db *database.DB) payroll.RemunerationRepository {
	return &remunerationRepositoryImpl{db: db}
}

const remunerationColumns = `id, employee_id, remuneration_type, name, amount, currency, effective_date, created_at`

func scanRemuneration(row pgx.Row, rem *payroll.Remuneration) error {
	return row.Scan(&rem.ID, &rem.EmployeeID, &rem.Type, &rem.Name, &rem.Amount, &rem.Currency, &rem.EffectiveDate, &rem.CreatedAt)
}

func (r *remunerationRepositoryImpl) Create(ctx context.Context, rem payroll.Remuneration) (payroll.Remuneration, error) {
	q := GetQuerier(ctx, r.db)

	if rem.Currency == "" {
		rem.Currency = "Ksh"
	}

	var created payroll.Remuneration
	err := scanRemuneration(q.QueryRow(ctx, `
		INSERT INTO employee_remunerations (employee_id, remuneration_type, name, amount, currency, effective_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+remunerationColumns,
		rem.EmployeeID, rem.Type, rem.Name, rem.Amount, rem.Currency, rem.EffectiveDate,
	), &created)
	if err != nil {
		if database.IsUniqueViolation(err, "uk_remuneration_employee_type") {
			return payroll.Remuneration{}, payroll.ErrRemunerationTypeExists
		}
		if database.IsForeignKeyViolation(err, "") {
			return payroll.Remuneration{}, payroll.ErrEmployeeNotFound
		}
		return payroll.Remuneration{}, fmt.Errorf("failed to create remuneration: %w", err)
	}
	return created, nil
}

func (r *remunerationRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]payroll.Remuneration, error) {
	return r.list(ctx, `
		SELECT `+remunerationColumns+` FROM employee_remunerations
		WHERE employee_id = $1
		ORDER BY effective_date DESC, remuneration_type
	`, employeeID)
}

func (r *remunerationRepositoryImpl) ListEffectiveInPeriod(ctx context.Context, employeeID string, from, to time.Time) ([]payroll.Remuneration, error) {
	return r.list(ctx, `
		SELECT `+remunerationColumns+` FROM employee_remunerations
		WHERE employee_id = $1 AND effective_date >= $2 AND effective_date < $3
		ORDER BY remuneration_type, id
	`, employeeID, from, to)
}

func (r *remunerationRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]payroll.Remuneration, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list remunerations: %w", err)
	}
	defer rows.Close()

	list := []payroll.Remuneration{}
	for rows.Next() {
		var rem payroll.Remuneration
		if err := scanRemuneration(rows, &rem); err != nil {
			return nil, err
		}
		list = append(list, rem)
	}
	return list, rows.Err()
}

// ========== DEDUCTIONS ==========

type deductionRepositoryImpl struct {
	db *database.DB
}

func NewDeductionRepository(db *database.DB) payroll.DeductionRepository {
	return &deductionRepositoryImpl{db: db}
}

const deductionColumns = `id, employee_id, deduction_type, amount, reason, effective_month, end_month, created_at`

func scanDeduction(row pgx.Row, d *payroll.Deduction) error {
	return row.Scan(&d.ID, &d.EmployeeID, &d.Type, &d.Amount, &d.Reason, &d.EffectiveMonth, &d.EndMonth, &d.CreatedAt)
}

func (r *deductionRepositoryImpl) Create(ctx context.Context, d payroll.Deduction) (payroll.Deduction, error) {
	q := GetQuerier(ctx, r.db)

	var created payroll.Deduction
	err := scanDeduction(q.QueryRow(ctx, `
		INSERT INTO employee_deductions (employee_id, deduction_type, amount, reason, effective_month, end_month)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+deductionColumns,
		d.EmployeeID, d.Type, d.Amount, d.Reason, d.EffectiveMonth, d.EndMonth,
	), &created)
	if err != nil {
		if database.IsForeignKeyViolation(err, "") {
			return payroll.Deduction{}, payroll.ErrEmployeeNotFound
		}
		if database.IsCheckViolation(err, "chk_deduction_window") {
			return payroll.Deduction{}, payroll.ErrDeductionWindowInvalid
		}
		return payroll.Deduction{}, fmt.Errorf("failed to create deduction: %w", err)
	}
	return created, nil
}

func (r *deductionRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]payroll.Deduction, error) {
	return r.list(ctx, `
		SELECT `+deductionColumns+` FROM employee_deductions
		WHERE employee_id = $1
		ORDER BY effective_month DESC, created_at DESC
	`, employeeID)
}

func (r *deductionRepositoryImpl) ListActiveInPeriod(ctx context.Context, employeeID string, p payroll.Period) ([]payroll.Deduction, error) {
	return r.list(ctx, `
		SELECT `+deductionColumns+` FROM employee_deductions
		WHERE employee_id = $1
			AND effective_month <= $2
			AND (end_month IS NULL OR end_month >= $3)
		ORDER BY deduction_type, created_at, id
	`, employeeID, p.End(), p.Start())
}

func (r *deductionRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]payroll.Deduction, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list deductions: %w", err)
	}
	defer rows.Close()

	list := []payroll.Deduction{}
	for rows.Next() {
		var d payroll.Deduction
		if err := scanDeduction(rows, &d); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// ========== PAYROLL RESULTS ==========

type payrollRepositoryImpl struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepositoryImpl{db: db}
}

const payrollColumns = `
	ep.id, ep.employee_id, ep.payment_month, ep.payment_year, ep.payment_date,
	ep.basic_salary, ep.allowances, ep.bonuses, ep.deductions, ep.gross_pay, ep.net_pay,
	ep.payment_method, ep.account_number, ep.bank_name, ep.transaction_reference, ep.is_paid,
	ep.created_at, ep.updated_at, e.full_name, e.position, e.company_id`

func scanPayroll(row pgx.Row, p *payroll.Payroll) error {
	var allowancesJSON, deductionsJSON []byte
	var month, year int16
	if err := row.Scan(
		&p.ID, &p.EmployeeID, &month, &year, &p.PaymentDate,
		&p.BasicSalary, &allowancesJSON, &p.Bonuses, &deductionsJSON, &p.GrossPay, &p.NetPay,
		&p.PaymentMethod, &p.AccountNumber, &p.BankName, &p.TransactionReference, &p.IsPaid,
		&p.CreatedAt, &p.UpdatedAt, &p.EmployeeName, &p.Position, &p.CompanyID,
	); err != nil {
		return err
	}
	p.PaymentMonth = int(month)
	p.PaymentYear = int(year)

	p.Allowances = map[string]decimal.Decimal{}
	if err := json.Unmarshal(allowancesJSON, &p.Allowances); err != nil {
		return fmt.Errorf("failed to decode allowances: %w", err)
	}
	p.Deductions = map[string]decimal.Decimal{}
	if err := json.Unmarshal(deductionsJSON, &p.Deductions); err != nil {
		return fmt.Errorf("failed to decode deductions: %w", err)
	}
	return nil
}

func encodeBreakdown(m map[string]decimal.Decimal) ([]byte, error) {
	if m == nil {
		m = map[string]decimal.Decimal{}
	}
	return json.Marshal(m)
}

func (r *payrollRepositoryImpl) Upsert(ctx context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	allowancesJSON, err := encodeBreakdown(p.Allowances)
	if err != nil {
		return payroll.Payroll{}, fmt.Errorf("failed to encode allowances: %w", err)
	}
	deductionsJSON, err := encodeBreakdown(p.Deductions)
	if err != nil {
		return payroll.Payroll{}, fmt.Errorf("failed to encode deductions: %w", err)
	}
	if p.PaymentMethod == "" {
		p.PaymentMethod = payroll.PaymentMethodBankTransfer
	}

	query := `
		WITH ep AS (
			INSERT INTO employee_payrolls (
				employee_id, payment_month, payment_year, payment_date,
				basic_salary, allowances, bonuses, deductions, gross_pay, net_pay,
				payment_method, account_number, bank_name, transaction_reference, is_paid
			) VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8::jsonb, $9, $10, $11, $12, $13, $14, $15)
			ON CONFLICT ON CONSTRAINT uk_payroll_employee_period DO UPDATE SET
				payment_date = EXCLUDED.payment_date,
				basic_salary = EXCLUDED.basic_salary,
				allowances = EXCLUDED.allowances,
				bonuses = EXCLUDED.bonuses,
				deductions = EXCLUDED.deductions,
				gross_pay = EXCLUDED.gross_pay,
				net_pay = EXCLUDED.net_pay,
				payment_method = EXCLUDED.payment_method,
				account_number = EXCLUDED.account_number,
				bank_name = EXCLUDED.bank_name,
				transaction_reference = EXCLUDED.transaction_reference,
				is_paid = EXCLUDED.is_paid,
				updated_at = NOW()
			RETURNING *
		)
		SELECT ` + payrollColumns + `
		FROM ep
		JOIN employees e ON e.id = ep.employee_id
	`

	var saved payroll.Payroll
	err = scanPayroll(q.QueryRow(ctx, query,
		p.EmployeeID, p.PaymentMonth, p.PaymentYear, p.PaymentDate,
		p.BasicSalary, string(allowancesJSON), p.Bonuses, string(deductionsJSON), p.GrossPay, p.NetPay,
		p.PaymentMethod, p.AccountNumber, p.BankName, p.TransactionReference, p.IsPaid,
	), &saved)
	if err != nil {
		if database.IsForeignKeyViolation(err, "") {
			return payroll.Payroll{}, payroll.ErrEmployeeNotFound
		}
		return payroll.Payroll{}, fmt.Errorf("failed to upsert payroll: %w", err)
	}
	return saved, nil
}

func (r *payrollRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	var p payroll.Payroll
	err := scanPayroll(q.QueryRow(ctx, `
		SELECT `+payrollColumns+`
		FROM employee_payrolls ep
		JOIN employees e ON e.id = ep.employee_id
		WHERE ep.id = $1 AND e.company_id = $2
	`, id, companyID), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrPayrollNotFound
		}
		return payroll.Payroll{}, fmt.Errorf("failed to get payroll %s: %w", id, err)
	}
	return p, nil
}

func (r *payrollRepositoryImpl) ListByCompanyPeriod(ctx context.Context, companyID string, p payroll.Period) ([]payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+payrollColumns+`
		FROM employee_payrolls ep
		JOIN employees e ON e.id = ep.employee_id
		WHERE e.company_id = $1 AND ep.payment_month = $2 AND ep.payment_year = $3
		ORDER BY e.full_name, ep.id
	`, companyID, int(p.Month), p.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to list payrolls: %w", err)
	}
	defer rows.Close()

	list := []payroll.Payroll{}
	for rows.Next() {
		var pr payroll.Payroll
		if err := scanPayroll(rows, &pr); err != nil {
			return nil, err
		}
		list = append(list, pr)
	}
	return list, rows.Err()
}
