package sale

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is shared by sales and invoices.
type Status string

const (
	StatusPending Status = "Pending"
	StatusPaid    Status = "Paid"
)

type ItemType string

const (
	ItemTypeService ItemType = "service"
	ItemTypeProduct ItemType = "product"
)

type Sale struct {
	ID         string
	CompanyID  string
	Date       time.Time
	Status     Status
	IsInvoiced bool
	IsDeleted  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type SaleItem struct {
	ID             string
	SaleID         string
	Type           ItemType
	ServiceID      *string
	ProductID      *string
	Quantity       int
	Amount         decimal.Decimal
	TaxRate        decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountRate   decimal.Decimal
	DiscountAmount decimal.Decimal
	Subtotal       decimal.Decimal
	Total          decimal.Decimal
	CreatedAt      time.Time

	// Joined fields
	CompanyID string
	SaleDate  time.Time
}

// EarnsCommission reports whether the item can attribute commission at all.
func (i SaleItem) EarnsCommission() bool {
	return i.Type == ItemTypeService && i.ServiceID != nil && *i.ServiceID != ""
}

// Service is a catalog entry offered by a company.
type Service struct {
	ID        string
	CompanyID string
	Name      string
	Price     decimal.Decimal
}

type Invoice struct {
	ID            string
	CompanyID     string
	InvoiceNumber string
	Status        Status
	DueDate       *time.Time
	IsDeleted     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
