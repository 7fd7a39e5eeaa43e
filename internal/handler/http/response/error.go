package response

import (
	"errors"
	"net/http"

	"github.com/csm-garage/backoffice-go/internal/domain/commission"
	"github.com/csm-garage/backoffice-go/internal/domain/company"
	"github.com/csm-garage/backoffice-go/internal/domain/employee"
	"github.com/csm-garage/backoffice-go/internal/domain/payment"
	"github.com/csm-garage/backoffice-go/internal/domain/payroll"
	"github.com/csm-garage/backoffice-go/internal/domain/sale"
	"github.com/csm-garage/backoffice-go/internal/pkg/jwt"
	"github.com/csm-garage/backoffice-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Not found
	case errors.Is(err, company.ErrCompanyNotFound):
		NotFound(w, "Company not found")
	case errors.Is(err, employee.ErrEmployeeNotFound), errors.Is(err, payroll.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, payroll.ErrNoActiveEmployees):
		NotFound(w, err.Error())
	case errors.Is(err, payroll.ErrNoPayrollGenerated):
		NotFound(w, err.Error())
	case errors.Is(err, payroll.ErrPayrollNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, commission.ErrCommissionNotFound):
		NotFound(w, "Commission not found")
	case errors.Is(err, commission.ErrSettingNotFound):
		NotFound(w, "Commission setting not found")
	case errors.Is(err, payment.ErrPaymentNotFound):
		NotFound(w, "Payment not found")
	case errors.Is(err, sale.ErrSaleItemNotFound):
		NotFound(w, "Sale item not found")
	case errors.Is(err, sale.ErrServiceNotFound):
		NotFound(w, "Service not found")
	case errors.Is(err, sale.ErrSaleNotFound):
		NotFound(w, "Sale not found")
	case errors.Is(err, sale.ErrInvoiceNotFound):
		NotFound(w, "Invoice not found")

	// Tenant scope
	case errors.Is(err, jwt.ErrMissingCompanyClaim):
		Forbidden(w, "Company access required")
	case errors.Is(err, employee.ErrEmployeeCompanyMismatch), errors.Is(err, sale.ErrSaleItemCompanyMismatch):
		Forbidden(w, err.Error())

	// Business rules
	case errors.Is(err, payroll.ErrPayrollRunInProgress):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrRemunerationTypeExists):
		Conflict(w, err.Error())
	case errors.Is(err, commission.ErrCommissionAlreadyPaid):
		Conflict(w, err.Error())
	case errors.Is(err, payment.ErrDuplicateTransactionID), errors.Is(err, payment.ErrDuplicateCheckout):
		Conflict(w, err.Error())
	case errors.Is(err, commission.ErrCompanyMismatch):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, commission.ErrEmployeeNotAssigned):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrDeductionWindowInvalid):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
