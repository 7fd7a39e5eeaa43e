package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Method enum
type Method string

const (
	MethodCash         Method = "cash"
	MethodMpesa        Method = "mpesa"
	MethodCard         Method = "card"
	MethodBankTransfer Method = "bank_transfer"
)

var Methods = []string{
	string(MethodCash),
	string(MethodMpesa),
	string(MethodCard),
	string(MethodBankTransfer),
}

// Payment is money received. AmountPaid is nil while a gateway checkout is pending.
type Payment struct {
	ID                string
	CompanyID         string
	AmountPaid        *decimal.Decimal
	DatePaid          time.Time
	Method            Method
	TransactionID     *string
	CheckoutRequestID *string
	Remarks           string
	IsDeleted         bool
	DeletedAt         *time.Time
	CreatedAt         time.Time
}

// Confirmed reports whether the gateway already settled this payment.
func (p Payment) Confirmed() bool {
	return p.TransactionID != nil && *p.TransactionID != "" && p.AmountPaid != nil
}

// GatewayConfirmation is the outcome of a mobile money checkout as reported by the gateway.
type GatewayConfirmation struct {
	CheckoutRequestID string
	Succeeded         bool
	ResultDesc        string
	Amount            decimal.Decimal
	Reference         string
	PaidAt            time.Time
	Phone             string
}
