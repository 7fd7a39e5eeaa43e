package employee

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Employee is the payroll-relevant projection of an employee record.
type Employee struct {
	ID            string
	CompanyID     string
	FullName      string
	Position      *string
	Salary        *decimal.Decimal
	Phone         *string
	AccountNumber *string
	BankName      *string
	BankBranch    *string
	IsActive      bool
	IsDeleted     bool
	DeletedAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BaseSalary returns the configured salary, or zero when none is set.
func (e Employee) BaseSalary() decimal.Decimal {
	if e.Salary == nil {
		return decimal.Zero
	}
	return *e.Salary
}

func (e Employee) DisplayName() string {
	return strings.TrimSpace(e.FullName)
}

// Payable reports whether the employee takes part in payroll runs.
func (e Employee) Payable() bool {
	return e.IsActive && !e.IsDeleted
}
