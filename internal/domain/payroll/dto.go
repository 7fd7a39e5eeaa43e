package payroll

import (
	"time"

	"github.com/csm-garage/backoffice-go/internal/pkg/batch"
	"github.com/csm-garage/backoffice-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== RUN DTOs ==========

type RunPayrollRequest struct {
	CompanyID                string `json:"company_id"`
	Month                    string `json:"month"`
	IncludeUnpaidCommissions *bool  `json:"include_unpaid_commissions,omitempty"`
}

func (r *RunPayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CompanyID) {
		errs = append(errs, validator.ValidationError{Field: "company_id", Message: "is required"})
	} else if !validator.IsValidUUID(r.CompanyID) {
		errs = append(errs, validator.ValidationError{Field: "company_id", Message: "must be a valid UUID"})
	}
	if validator.IsEmpty(r.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "is required"})
	} else if _, ok := validator.IsValidMonth(r.Month); !ok {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be in YYYY-MM format"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// IncludeCommissions defaults to true when the flag is omitted.
func (r *RunPayrollRequest) IncludeCommissions() bool {
	return r.IncludeUnpaidCommissions == nil || *r.IncludeUnpaidCommissions
}

// ReportRow is one employee's line in the payroll report.
type ReportRow struct {
	PayrollID      string                     `json:"payroll_id"`
	EmployeeID     string                     `json:"employee_id"`
	EmployeeNumber string                     `json:"employee_number"`
	Name           string                     `json:"name"`
	Position       string                     `json:"position"`
	BasicSalary    decimal.Decimal            `json:"basic_salary"`
	Allowances     map[string]decimal.Decimal `json:"allowances"`
	Bonuses        decimal.Decimal            `json:"bonuses"`
	Commissions    decimal.Decimal            `json:"commissions"`
	Gross          decimal.Decimal            `json:"gross"`
	Pension        decimal.Decimal            `json:"nssf"`
	Health         decimal.Decimal            `json:"shif"`
	Housing        decimal.Decimal            `json:"ahl"`
	TaxableIncome  decimal.Decimal            `json:"taxable_income"`
	PAYE           decimal.Decimal            `json:"paye"`
	Other          decimal.Decimal            `json:"other"`
	Deductions     map[string]decimal.Decimal `json:"deductions"`
	Net            decimal.Decimal            `json:"net"`
}

type Totals struct {
	Gross        decimal.Decimal `json:"gross"`
	Pension      decimal.Decimal `json:"nssf"`
	Health       decimal.Decimal `json:"shif"`
	Housing      decimal.Decimal `json:"ahl"`
	PAYE         decimal.Decimal `json:"paye"`
	Other        decimal.Decimal `json:"other"`
	Net          decimal.Decimal `json:"net"`
	Statutory    decimal.Decimal `json:"total_deductions"`
	AverageGross decimal.Decimal `json:"average_salary"`
}

// Report is what a payroll run hands to the renderer.
type Report struct {
	CompanyID      string          `json:"company_id"`
	CompanyName    string          `json:"company_name"`
	Month          string          `json:"month"`
	MonthName      string          `json:"month_name"`
	MonthShort     string          `json:"month_short"`
	TotalEmployees int             `json:"total_employees"`
	Rows           []ReportRow     `json:"rows"`
	Totals         Totals          `json:"totals"`
	Failures       []batch.Failure `json:"failures"`
	GeneratedAt    time.Time       `json:"generation_date"`
}

// ========== PAYROLL RECORD DTOs ==========

type PayrollResponse struct {
	ID                   string                     `json:"id"`
	EmployeeID           string                     `json:"employee_id"`
	EmployeeName         *string                    `json:"employee_name,omitempty"`
	Position             *string                    `json:"position,omitempty"`
	PaymentMonth         int                        `json:"payment_month"`
	PaymentYear          int                        `json:"payment_year"`
	PaymentDate          string                     `json:"payment_date"`
	BasicSalary          decimal.Decimal            `json:"basic_salary"`
	Allowances           map[string]decimal.Decimal `json:"allowances"`
	Bonuses              decimal.Decimal            `json:"bonuses"`
	Deductions           map[string]decimal.Decimal `json:"deductions"`
	GrossPay             decimal.Decimal            `json:"gross_pay"`
	NetPay               decimal.Decimal            `json:"net_pay"`
	PaymentMethod        string                     `json:"payment_method"`
	AccountNumber        *string                    `json:"account_number,omitempty"`
	BankName             *string                    `json:"bank_name,omitempty"`
	TransactionReference *string                    `json:"transaction_reference,omitempty"`
	IsPaid               bool                       `json:"is_paid"`
}

// PayslipResponse recomputes totals from the stored breakdowns.
type PayslipResponse struct {
	Payroll         PayrollResponse `json:"payroll"`
	MonthName       string          `json:"month_name"`
	TotalAllowances decimal.Decimal `json:"total_allowances"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	GrossSalary     decimal.Decimal `json:"gross_salary"`
	NetSalary       decimal.Decimal `json:"net_salary"`
}

// ========== REMUNERATION DTOs ==========

type CreateRemunerationRequest struct {
	EmployeeID    string          `json:"-"`
	Type          string          `json:"remuneration_type"`
	Name          *string         `json:"name,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency,omitempty"`
	EffectiveDate string          `json:"effective_date"`
}

func (r *CreateRemunerationRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must be a valid UUID"})
	}
	if !validator.IsInSlice(r.Type, RemunerationTypes) {
		errs = append(errs, validator.ValidationError{Field: "remuneration_type", Message: ErrInvalidRemunerationType.Error()})
	}
	if r.Name != nil && len(*r.Name) > 100 {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "must not exceed 100 characters"})
	}
	if r.Amount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be non-negative"})
	}
	if len(r.Currency) > 10 {
		errs = append(errs, validator.ValidationError{Field: "currency", Message: "must not exceed 10 characters"})
	}
	if _, ok := validator.IsValidDate(r.EffectiveDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "effective_date", Message: "must be in YYYY-MM-DD format"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RemunerationResponse struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	Type          string          `json:"remuneration_type"`
	Name          *string         `json:"name,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	EffectiveDate string          `json:"effective_date"`
}

// ========== DEDUCTION DTOs ==========

type CreateDeductionRequest struct {
	EmployeeID     string          `json:"-"`
	Type           string          `json:"deduction_type"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason"`
	EffectiveMonth string          `json:"effective_month"`
	EndMonth       *string         `json:"end_month,omitempty"`
}

func (r *CreateDeductionRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must be a valid UUID"})
	}
	if !validator.IsInSlice(r.Type, DeductionTypes) {
		errs = append(errs, validator.ValidationError{Field: "deduction_type", Message: ErrInvalidDeductionType.Error()})
	}
	if r.Amount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be non-negative"})
	}

	effective, effectiveOK := validator.IsValidMonth(r.EffectiveMonth)
	if !effectiveOK {
		errs = append(errs, validator.ValidationError{Field: "effective_month", Message: "must be in YYYY-MM format"})
	}
	if r.EndMonth != nil {
		end, ok := validator.IsValidMonth(*r.EndMonth)
		switch {
		case !ok:
			errs = append(errs, validator.ValidationError{Field: "end_month", Message: "must be in YYYY-MM format"})
		case effectiveOK && end.Before(effective):
			errs = append(errs, validator.ValidationError{Field: "end_month", Message: ErrDeductionWindowInvalid.Error()})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DeductionResponse struct {
	ID             string          `json:"id"`
	EmployeeID     string          `json:"employee_id"`
	Type           string          `json:"deduction_type"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason"`
	EffectiveMonth string          `json:"effective_month"`
	EndMonth       *string         `json:"end_month,omitempty"`
}
