package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/csm-garage/backoffice-go/internal/domain/commission"
	"github.com/csm-garage/backoffice-go/internal/handler/http/response"
	"github.com/csm-garage/backoffice-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type CommissionHandler interface {
	// Settings
	ListSettings(w http.ResponseWriter, r *http.Request)
	UpsertSetting(w http.ResponseWriter, r *http.Request)

	// Commissions
	ListCommissions(w http.ResponseWriter, r *http.Request)
	UpdatePaymentStatus(w http.ResponseWriter, r *http.Request)

	// Sale item assignments
	AssignEmployee(w http.ResponseWriter, r *http.Request)
	UnassignEmployee(w http.ResponseWriter, r *http.Request)
	ReplaceAssignments(w http.ResponseWriter, r *http.Request)
}

type commissionHandlerImpl struct {
	commissionService commission.CommissionService
}

func NewCommissionHandler(commissionService commission.CommissionService) CommissionHandler {
	return &commissionHandlerImpl{commissionService: commissionService}
}

// ========== SETTINGS ==========

func (h *commissionHandlerImpl) ListSettings(w http.ResponseWriter, r *http.Request) {
	result, err := h.commissionService.ListSettings(r.Context(), chi.URLParam(r, "employeeId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *commissionHandlerImpl) UpsertSetting(w http.ResponseWriter, r *http.Request) {
	var req commission.UpsertSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeId")

	result, err := h.commissionService.UpsertSetting(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Commission setting saved", result)
}

// ========== COMMISSIONS ==========

func (h *commissionHandlerImpl) ListCommissions(w http.ResponseWriter, r *http.Request) {
	var filter commission.CommissionFilter
	details := map[string]string{}

	if p := r.URL.Query().Get("paid"); p != "" {
		paid, err := strconv.ParseBool(p)
		if err != nil {
			details["paid"] = "must be true or false"
		} else {
			filter.Paid = &paid
		}
	}
	if m := r.URL.Query().Get("month"); m != "" {
		month, ok := validator.IsValidMonth(m)
		if !ok {
			details["month"] = "must be in YYYY-MM format"
		} else {
			filter.Month = &month
		}
	}
	if len(details) > 0 {
		response.BadRequest(w, "Invalid query parameters", details)
		return
	}

	result, err := h.commissionService.ListCommissions(r.Context(), chi.URLParam(r, "employeeId"), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *commissionHandlerImpl) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req commission.UpdatePaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeId")

	result, err := h.commissionService.UpdatePaymentStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.MultiStatus(w, result.Status, "Commission payment status updated", result)
}

// ========== ASSIGNMENTS ==========

func (h *commissionHandlerImpl) AssignEmployee(w http.ResponseWriter, r *http.Request) {
	result, err := h.commissionService.AssignEmployee(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "employeeId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Employee assigned", result)
}

func (h *commissionHandlerImpl) UnassignEmployee(w http.ResponseWriter, r *http.Request) {
	result, err := h.commissionService.UnassignEmployee(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "employeeId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Employee unassigned", result)
}

func (h *commissionHandlerImpl) ReplaceAssignments(w http.ResponseWriter, r *http.Request) {
	var req commission.ReplaceAssignmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.SaleItemID = chi.URLParam(r, "id")

	result, err := h.commissionService.ReplaceAssignments(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Assignments updated", result)
}
