package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/csm-garage/backoffice-go/internal/domain/payment"
	"github.com/csm-garage/backoffice-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PaymentHandler interface {
	CreatePayment(w http.ResponseWriter, r *http.Request)
	ListPayments(w http.ResponseWriter, r *http.Request)
	GetPayment(w http.ResponseWriter, r *http.Request)
	LinkDocuments(w http.ResponseWriter, r *http.Request)
	RegisterCheckout(w http.ResponseWriter, r *http.Request)
}

type paymentHandlerImpl struct {
	paymentService payment.PaymentService
}

func NewPaymentHandler(paymentService payment.PaymentService) PaymentHandler {
	return &paymentHandlerImpl{paymentService: paymentService}
}

func (h *paymentHandlerImpl) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req payment.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.paymentService.CreatePayment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.MultiStatus(w, result.Status, "Payment processed", result)
}

func (h *paymentHandlerImpl) ListPayments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := payment.PaymentFilter{
		IncludeDeleted: query.Get("include_deleted") == "true",
	}
	if m := query.Get("method"); m != "" {
		filter.Method = &m
	}
	if p, err := strconv.Atoi(query.Get("page")); err == nil {
		filter.Page = p
	}
	if l, err := strconv.Atoi(query.Get("limit")); err == nil {
		filter.Limit = l
	}

	result, err := h.paymentService.ListPayments(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := 0
	if result.Limit > 0 {
		totalPages = int((result.TotalItems + int64(result.Limit) - 1) / int64(result.Limit))
	}
	response.SuccessWithMeta(w, result.Payments, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalItems,
		TotalPages: totalPages,
	})
}

func (h *paymentHandlerImpl) GetPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Payment ID is required", nil)
		return
	}

	result, err := h.paymentService.GetPayment(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *paymentHandlerImpl) LinkDocuments(w http.ResponseWriter, r *http.Request) {
	var req payment.LinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.PaymentID = chi.URLParam(r, "id")

	result, err := h.paymentService.LinkDocuments(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.MultiStatus(w, result.Status, "Payment linked", result)
}

func (h *paymentHandlerImpl) RegisterCheckout(w http.ResponseWriter, r *http.Request) {
	var req payment.RegisterCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.paymentService.RegisterPendingCheckout(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Checkout registered", result)
}
