package commission

import (
	"time"

	"github.com/csm-garage/backoffice-go/internal/pkg/batch"
	"github.com/csm-garage/backoffice-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

var maxPercentage = decimal.NewFromInt(100)

// ========== SETTING DTOs ==========

type UpsertSettingRequest struct {
	EmployeeID string          `json:"-"`
	ServiceID  string          `json:"service_id"`
	Percentage decimal.Decimal `json:"commission_percentage"`
}

func (r *UpsertSettingRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must be a valid UUID"})
	}
	if !validator.IsValidUUID(r.ServiceID) {
		errs = append(errs, validator.ValidationError{Field: "service_id", Message: "must be a valid UUID"})
	}
	if r.Percentage.IsNegative() || r.Percentage.GreaterThan(maxPercentage) {
		errs = append(errs, validator.ValidationError{Field: "commission_percentage", Message: "must be between 0 and 100"})
	}
	if r.Percentage.Exponent() < -2 {
		errs = append(errs, validator.ValidationError{Field: "commission_percentage", Message: "must have at most 2 decimal places"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SettingResponse struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employee_id"`
	ServiceID   string          `json:"service_id"`
	ServiceName *string         `json:"service_name,omitempty"`
	Percentage  decimal.Decimal `json:"commission_percentage"`
}

// ========== COMMISSION DTOs ==========

type CommissionFilter struct {
	Paid *bool
	// Month restricts to sales in that month when set (first day of month).
	Month *time.Time
}

type CommissionResponse struct {
	ID             string          `json:"id"`
	EmployeeID     string          `json:"employee_id"`
	SaleItemID     string          `json:"sale_item_id"`
	Amount         decimal.Decimal `json:"commission_amount"`
	Paid           bool            `json:"paid"`
	DatePaid       *time.Time      `json:"date_paid,omitempty"`
	DateCalculated time.Time       `json:"date_calculated"`
	SaleDate       *string         `json:"sale_date,omitempty"`
}

// PaymentStatusUpdate is one entry of a bulk paid/unpaid update.
type PaymentStatusUpdate struct {
	ID   string `json:"id"`
	Paid *bool  `json:"paid"`
}

type UpdatePaymentStatusRequest struct {
	EmployeeID  string                `json:"-"`
	Commissions []PaymentStatusUpdate `json:"commissions"`
}

func (r *UpdatePaymentStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must be a valid UUID"})
	}
	if len(r.Commissions) == 0 {
		errs = append(errs, validator.ValidationError{Field: "commissions", Message: "must be a non-empty list"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdatePaymentStatusResponse struct {
	Success            bool                 `json:"success"`
	UpdatedCount       int                  `json:"updated_count"`
	UpdatedCommissions []CommissionResponse `json:"updated_commissions"`
	Errors             []batch.Failure      `json:"errors"`
	ErrorCount         int                  `json:"error_count"`
	Status             batch.Status         `json:"status"`
}

// ========== ASSIGNMENT DTOs ==========

type ReplaceAssignmentsRequest struct {
	SaleItemID  string   `json:"-"`
	EmployeeIDs []string `json:"employee_ids"`
}

func (r *ReplaceAssignmentsRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.SaleItemID) {
		errs = append(errs, validator.ValidationError{Field: "sale_item_id", Message: "must be a valid UUID"})
	}
	if r.EmployeeIDs == nil {
		errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "is required"})
	}
	if bad, ok := validator.AllValidUUIDs(r.EmployeeIDs); !ok {
		errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "contains invalid id " + bad})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AttributionResponse shows the commission rows of an item after recompute.
type AttributionResponse struct {
	SaleItemID  string               `json:"sale_item_id"`
	EmployeeIDs []string             `json:"employee_ids"`
	Commissions []CommissionResponse `json:"commissions"`
}
