package commission

import (
	"time"

	"github.com/shopspring/decimal"
)

// Setting is an employee's commission percentage for one catalog service.
// The employee and the service must belong to the same company.
type Setting struct {
	ID         string
	EmployeeID string
	ServiceID  string
	Percentage decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Joined fields
	ServiceName *string
}

// Commission is the amount one employee earned on one sale item.
type Commission struct {
	ID             string
	EmployeeID     string
	SaleItemID     string
	Amount         decimal.Decimal
	Paid           bool
	DatePaid       *time.Time
	DateCalculated time.Time

	// Joined fields
	SaleDate *time.Time
}
