package payroll

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RemunerationType enum
type RemunerationType string

const (
	RemunerationBasicSalary       RemunerationType = "Basic Salary"
	RemunerationHouseAllowance    RemunerationType = "House Allowance"
	RemunerationCommuterAllowance RemunerationType = "Commuter Allowance"
	RemunerationLeaveAllowance    RemunerationType = "Leave Allowance"
	RemunerationBonus             RemunerationType = "Bonus"
	RemunerationCommission        RemunerationType = "Commission"
	RemunerationOther             RemunerationType = "Other"
)

var RemunerationTypes = []string{
	string(RemunerationBasicSalary),
	string(RemunerationHouseAllowance),
	string(RemunerationCommuterAllowance),
	string(RemunerationLeaveAllowance),
	string(RemunerationBonus),
	string(RemunerationCommission),
	string(RemunerationOther),
}

// Remuneration is a typed pay component effective in the month of EffectiveDate.
type Remuneration struct {
	ID            string
	EmployeeID    string
	Type          RemunerationType
	Name          *string
	Amount        decimal.Decimal
	Currency      string
	EffectiveDate time.Time
	CreatedAt     time.Time
}

// Label is the allowance key used in payroll breakdowns.
func (r Remuneration) Label() string {
	if r.Name != nil && *r.Name != "" {
		return *r.Name
	}
	return string(r.Type)
}

// DeductionType enum
type DeductionType string

const (
	DeductionPenalty DeductionType = "penalty"
	DeductionLoan    DeductionType = "loan"
	DeductionAdvance DeductionType = "advance"
	DeductionOther   DeductionType = "other"
)

var DeductionTypes = []string{
	string(DeductionPenalty),
	string(DeductionLoan),
	string(DeductionAdvance),
	string(DeductionOther),
}

// Label is the capitalised key used in payroll deduction breakdowns, e.g. "Loan".
func (t DeductionType) Label() string {
	if t == "" {
		return ""
	}
	s := string(t)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Deduction is a voluntary deduction applied every month of its window.
// EffectiveMonth and EndMonth are the first day of their months; EndMonth nil means open-ended.
type Deduction struct {
	ID             string
	EmployeeID     string
	Type           DeductionType
	Amount         decimal.Decimal
	Reason         string
	EffectiveMonth time.Time
	EndMonth       *time.Time
	CreatedAt      time.Time
}

// AppliesTo reports whether the deduction window overlaps period.
func (d Deduction) AppliesTo(p Period) bool {
	if d.EffectiveMonth.After(p.End()) {
		return false
	}
	return d.EndMonth == nil || !d.EndMonth.Before(p.Start())
}

// PaymentMethod enum
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
	PaymentMethodCash         PaymentMethod = "cash"
)

// Payroll is the stored result for one employee and one month. One row
// exists per (employee, month, year); reruns overwrite it.
type Payroll struct {
	ID                   string
	EmployeeID           string
	PaymentMonth         int
	PaymentYear          int
	PaymentDate          time.Time
	BasicSalary          decimal.Decimal
	Allowances           map[string]decimal.Decimal
	Bonuses              decimal.Decimal
	Deductions           map[string]decimal.Decimal
	GrossPay             decimal.Decimal
	NetPay               decimal.Decimal
	PaymentMethod        PaymentMethod
	AccountNumber        *string
	BankName             *string
	TransactionReference *string
	IsPaid               bool
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Joined fields
	EmployeeName *string
	Position     *string
	CompanyID    *string
}
