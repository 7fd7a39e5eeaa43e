package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/csm-garage/backoffice-go/internal/domain/payment"
	"github.com/csm-garage/backoffice-go/internal/handler/http/response"
	"github.com/csm-garage/backoffice-go/internal/pkg/logger"
	"github.com/csm-garage/backoffice-go/internal/pkg/mpesa"
	"go.uber.org/zap"
)

const (
	callbackTokenHeader = "X-Callback-Token"
	maxCallbackBytes    = 64 << 10
)

type MpesaHandler interface {
	Callback(w http.ResponseWriter, r *http.Request)
}

type mpesaHandlerImpl struct {
	paymentService payment.PaymentService
	verifier       *mpesa.Verifier
	logger         *zap.Logger
	now            func() time.Time
}

func NewMpesaHandler(paymentService payment.PaymentService, verifier *mpesa.Verifier, log *zap.Logger) MpesaHandler {
	return &mpesaHandlerImpl{
		paymentService: paymentService,
		verifier:       verifier,
		logger:         logger.OrNop(log),
		now:            time.Now,
	}
}

// Callback consumes the STK push result. The gateway always gets a
// ResultCode/ResultDesc body back.
func (h *mpesaHandlerImpl) Callback(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(callbackTokenHeader)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if !h.verifier.Verify(token) {
		response.Raw(w, http.StatusUnauthorized, mpesa.Rejected("Unauthorized"))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBytes))
	if err != nil {
		response.Raw(w, http.StatusBadRequest, mpesa.Rejected("Invalid request body"))
		return
	}

	c, err := mpesa.ParseCallback(body, h.now())
	if err != nil {
		h.logger.Warn("Rejected mpesa callback", zap.Error(err))
		response.Raw(w, http.StatusBadRequest, mpesa.Rejected("Invalid callback payload"))
		return
	}

	_, err = h.paymentService.HandleGatewayConfirmation(r.Context(), payment.GatewayConfirmation{
		CheckoutRequestID: c.CheckoutRequestID,
		Succeeded:         c.Succeeded(),
		ResultDesc:        c.ResultDesc,
		Amount:            c.Amount,
		Reference:         c.ReceiptNumber,
		PaidAt:            c.TransactionDate,
		Phone:             c.PhoneNumber,
	})
	switch {
	case errors.Is(err, payment.ErrPaymentNotFound):
		h.logger.Warn("Mpesa callback for unknown checkout", zap.String("checkout_request_id", c.CheckoutRequestID))
		response.Raw(w, http.StatusNotFound, mpesa.Rejected("Payment not found"))
		return
	case err != nil:
		h.logger.Error("Failed to apply mpesa callback",
			zap.String("checkout_request_id", c.CheckoutRequestID),
			zap.Error(err),
		)
		response.Raw(w, http.StatusInternalServerError, mpesa.Rejected("Internal error"))
		return
	}

	if !c.Succeeded() {
		response.Raw(w, http.StatusBadRequest, mpesa.Rejected("Transaction failed"))
		return
	}
	response.Raw(w, http.StatusOK, mpesa.Accepted())
}
