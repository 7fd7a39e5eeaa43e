package http

import (
	"encoding/json"
	"net/http"

	"github.com/csm-garage/backoffice-go/internal/domain/payroll"
	"github.com/csm-garage/backoffice-go/internal/handler/http/response"
	"github.com/csm-garage/backoffice-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Runs
	RunPayroll(w http.ResponseWriter, r *http.Request)
	ListPayrolls(w http.ResponseWriter, r *http.Request)
	GetPayslip(w http.ResponseWriter, r *http.Request)

	// Remunerations
	CreateRemuneration(w http.ResponseWriter, r *http.Request)
	ListRemunerations(w http.ResponseWriter, r *http.Request)

	// Deductions
	CreateDeduction(w http.ResponseWriter, r *http.Request)
	ListDeductions(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== RUNS ==========

func (h *payrollHandlerImpl) RunPayroll(w http.ResponseWriter, r *http.Request) {
	var req payroll.RunPayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	companyID, err := jwt.CompanyIDFromContext(r.Context())
	if err != nil {
		response.Forbidden(w, "Company access required")
		return
	}
	if req.CompanyID == "" {
		req.CompanyID = companyID
	}
	if req.CompanyID != companyID {
		response.Forbidden(w, "Cannot run payroll for another company")
		return
	}

	report, err := h.payrollService.RunPayroll(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll generated", report)
}

func (h *payrollHandlerImpl) ListPayrolls(w http.ResponseWriter, r *http.Request) {
	companyID, err := jwt.CompanyIDFromContext(r.Context())
	if err != nil {
		response.Forbidden(w, "Company access required")
		return
	}

	month := r.URL.Query().Get("month")
	if month == "" {
		response.BadRequest(w, "month is required", nil)
		return
	}

	result, err := h.payrollService.ListPayrolls(r.Context(), companyID, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) GetPayslip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Payroll ID is required", nil)
		return
	}

	companyID, err := jwt.CompanyIDFromContext(r.Context())
	if err != nil {
		response.Forbidden(w, "Company access required")
		return
	}

	result, err := h.payrollService.GetPayslip(r.Context(), id, companyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== REMUNERATIONS ==========

func (h *payrollHandlerImpl) CreateRemuneration(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateRemunerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeId")

	result, err := h.payrollService.CreateRemuneration(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Remuneration created", result)
}

func (h *payrollHandlerImpl) ListRemunerations(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ListRemunerations(r.Context(), chi.URLParam(r, "employeeId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== DEDUCTIONS ==========

func (h *payrollHandlerImpl) CreateDeduction(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateDeductionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeId")

	result, err := h.payrollService.CreateDeduction(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Deduction created", result)
}

func (h *payrollHandlerImpl) ListDeductions(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ListDeductions(r.Context(), chi.URLParam(r, "employeeId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
