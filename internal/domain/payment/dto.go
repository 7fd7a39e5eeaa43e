package payment

import (
	"strings"
	"time"

	"github.com/csm-garage/backoffice-go/internal/pkg/batch"
	"github.com/csm-garage/backoffice-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== CREATE / LINK DTOs ==========

// CreatePaymentRequest either creates one payment (Payments empty) or links
// the listed existing payments to the given invoices and sales.
type CreatePaymentRequest struct {
	Invoices       []string         `json:"invoices"`
	Sales          []string         `json:"sales"`
	Payments       []string         `json:"payments"`
	ReceivedAmount *decimal.Decimal `json:"receivedAmount,omitempty"`
	CreateDate     *string          `json:"createDate,omitempty"`
	PaymentMethod  string           `json:"paymentMethod"`
	ReceiptID      *string          `json:"receiptId,omitempty"`
	Reference      *string          `json:"reference,omitempty"`
	Note           string           `json:"note"`
}

func (r *CreatePaymentRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Invoices) == 0 && len(r.Sales) == 0 {
		errs = append(errs, validator.ValidationError{Field: "invoices", Message: ErrNoDocuments.Error()})
	}
	if bad, ok := validator.AllValidUUIDs(r.Invoices); !ok {
		errs = append(errs, validator.ValidationError{Field: "invoices", Message: "contains invalid id " + bad})
	}
	if bad, ok := validator.AllValidUUIDs(r.Sales); !ok {
		errs = append(errs, validator.ValidationError{Field: "sales", Message: "contains invalid id " + bad})
	}
	if bad, ok := validator.AllValidUUIDs(r.Payments); !ok {
		errs = append(errs, validator.ValidationError{Field: "payments", Message: "contains invalid id " + bad})
	}

	if len(r.Payments) == 0 {
		if r.ReceivedAmount == nil || !r.ReceivedAmount.IsPositive() {
			errs = append(errs, validator.ValidationError{Field: "receivedAmount", Message: "must be greater than 0"})
		}
		if !validator.IsInSlice(r.PaymentMethod, Methods) {
			errs = append(errs, validator.ValidationError{Field: "paymentMethod", Message: "must be one of " + strings.Join(Methods, ", ")})
		}
		if r.CreateDate != nil {
			if _, ok := ParseCreateDate(*r.CreateDate); !ok {
				errs = append(errs, validator.ValidationError{Field: "createDate", Message: "must be YYYY-MM-DD or an ISO8601 timestamp"})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// TransactionReference prefers receiptId over reference.
func (r *CreatePaymentRequest) TransactionReference() *string {
	for _, ref := range []*string{r.ReceiptID, r.Reference} {
		if ref != nil && strings.TrimSpace(*ref) != "" {
			v := strings.TrimSpace(*ref)
			return &v
		}
	}
	return nil
}

// ParseCreateDate accepts a plain date or an ISO8601 timestamp.
func ParseCreateDate(s string) (time.Time, bool) {
	if t, ok := validator.IsValidDate(s); ok {
		return t, true
	}
	return validator.IsValidDateTime(s)
}

type LinkRequest struct {
	PaymentID string   `json:"-"`
	Invoices  []string `json:"invoices"`
	Sales     []string `json:"sales"`
}

func (r *LinkRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.PaymentID) {
		errs = append(errs, validator.ValidationError{Field: "payment_id", Message: "must be a valid UUID"})
	}
	if len(r.Invoices) == 0 && len(r.Sales) == 0 {
		errs = append(errs, validator.ValidationError{Field: "invoices", Message: ErrNoDocuments.Error()})
	}
	if bad, ok := validator.AllValidUUIDs(r.Invoices); !ok {
		errs = append(errs, validator.ValidationError{Field: "invoices", Message: "contains invalid id " + bad})
	}
	if bad, ok := validator.AllValidUUIDs(r.Sales); !ok {
		errs = append(errs, validator.ValidationError{Field: "sales", Message: "contains invalid id " + bad})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RegisterCheckoutRequest records a pending mobile money checkout. The
// documents are attached now and settled when the gateway confirms.
type RegisterCheckoutRequest struct {
	CheckoutRequestID string   `json:"checkoutRequestId"`
	Invoices          []string `json:"invoices"`
	Sales             []string `json:"sales"`
	Note              string   `json:"note"`
}

func (r *RegisterCheckoutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CheckoutRequestID) {
		errs = append(errs, validator.ValidationError{Field: "checkoutRequestId", Message: "is required"})
	}
	if bad, ok := validator.AllValidUUIDs(r.Invoices); !ok {
		errs = append(errs, validator.ValidationError{Field: "invoices", Message: "contains invalid id " + bad})
	}
	if bad, ok := validator.AllValidUUIDs(r.Sales); !ok {
		errs = append(errs, validator.ValidationError{Field: "sales", Message: "contains invalid id " + bad})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== RESPONSE DTOs ==========

type PaymentResponse struct {
	ID                string           `json:"id"`
	AmountPaid        *decimal.Decimal `json:"amount_paid"`
	DatePaid          time.Time        `json:"date_paid"`
	PaymentMethod     string           `json:"payment_method"`
	TransactionID     *string          `json:"transaction_id,omitempty"`
	CheckoutRequestID *string          `json:"checkout_request_id,omitempty"`
	Remarks           string           `json:"remarks"`
	IsDeleted         bool             `json:"is_deleted"`
}

// SettlementResponse reports per-document link outcomes.
type SettlementResponse struct {
	Payments        []PaymentResponse `json:"payments"`
	Invoices        *batch.Result     `json:"invoices"`
	Sales           *batch.Result     `json:"sales"`
	MissingPayments []string          `json:"missing_payments"`
	Status          batch.Status      `json:"status"`
}

type PaymentFilter struct {
	CompanyID      string
	Method         *string
	IncludeDeleted bool
	Page           int
	Limit          int
}

// Normalize applies paging defaults.
func (f *PaymentFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type ListPaymentResponse struct {
	Payments   []PaymentResponse `json:"payments"`
	Page       int               `json:"-"`
	Limit      int               `json:"-"`
	TotalItems int64             `json:"-"`
}
