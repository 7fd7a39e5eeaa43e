package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/csm-garage/backoffice-go/internal/domain/commission"
	"github.com/csm-garage/backoffice-go/internal/domain/employee"
	"github.com/csm-garage/backoffice-go/internal/domain/payment"
	"github.com/csm-garage/backoffice-go/internal/domain/payroll"
	"github.com/csm-garage/backoffice-go/internal/domain/sale"
	"github.com/csm-garage/backoffice-go/internal/pkg/batch"
	"github.com/csm-garage/backoffice-go/internal/pkg/jwt"
	"github.com/csm-garage/backoffice-go/internal/pkg/mpesa"
	"github.com/csm-garage/backoffice-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	handlerTestSecret    = "test-secret-key-for-jwt"
	handlerTestCompany   = "11111111-1111-4111-8111-111111111111"
	handlerTestCallback  = "cb-token"
	handlerTestCheckout  = "ws_CO_191220191020363925"
	handlerTestEmployee  = "22222222-2222-4222-8222-222222222222"
	handlerTestSaleItem  = "33333333-3333-4333-8333-333333333333"
	handlerTestPaymentID = "44444444-4444-4444-8444-444444444444"
)

type stubPayrollService struct {
	payroll.PayrollService
	runErr  error
	lastRun payroll.RunPayrollRequest
}

func (s *stubPayrollService) RunPayroll(_ context.Context, req payroll.RunPayrollRequest) (payroll.Report, error) {
	s.lastRun = req
	if s.runErr != nil {
		return payroll.Report{}, s.runErr
	}
	return payroll.Report{CompanyID: req.CompanyID, Month: req.Month, TotalEmployees: 1}, nil
}

type stubCommissionService struct {
	commission.CommissionService
	status     batch.Status
	assignErr  error
	lastAssign [2]string
}

func (s *stubCommissionService) UpdatePaymentStatus(_ context.Context, req commission.UpdatePaymentStatusRequest) (commission.UpdatePaymentStatusResponse, error) {
	if err := req.Validate(); err != nil {
		return commission.UpdatePaymentStatusResponse{}, err
	}
	return commission.UpdatePaymentStatusResponse{Status: s.status, Success: s.status != batch.StatusFailed}, nil
}

func (s *stubCommissionService) AssignEmployee(_ context.Context, saleItemID, employeeID string) (commission.AttributionResponse, error) {
	s.lastAssign = [2]string{saleItemID, employeeID}
	if s.assignErr != nil {
		return commission.AttributionResponse{}, s.assignErr
	}
	return commission.AttributionResponse{SaleItemID: saleItemID, EmployeeIDs: []string{employeeID}}, nil
}

type stubPaymentService struct {
	payment.PaymentService
	status       batch.Status
	confirmErr   error
	confirmation *payment.GatewayConfirmation
}

func (s *stubPaymentService) CreatePayment(_ context.Context, req payment.CreatePaymentRequest) (payment.SettlementResponse, error) {
	if err := req.Validate(); err != nil {
		return payment.SettlementResponse{}, err
	}
	return payment.SettlementResponse{Status: s.status}, nil
}

func (s *stubPaymentService) HandleGatewayConfirmation(_ context.Context, c payment.GatewayConfirmation) (payment.PaymentResponse, error) {
	s.confirmation = &c
	return payment.PaymentResponse{}, s.confirmErr
}

type routerFixture struct {
	router      *chi.Mux
	token       string
	payrolls    *stubPayrollService
	commissions *stubCommissionService
	payments    *stubPaymentService
}

func newRouterFixture(t *testing.T) *routerFixture {
	jwtService := jwt.NewJWTService(handlerTestSecret)
	token, _, err := jwtService.GenerateAccessToken("user-1", handlerTestCompany, time.Hour)
	require.NoError(t, err)

	f := &routerFixture{
		token:       token,
		payrolls:    &stubPayrollService{},
		commissions: &stubCommissionService{status: batch.StatusSuccess},
		payments:    &stubPaymentService{status: batch.StatusSuccess},
	}
	f.router = NewRouter(RouterConfig{
		Env:             "test",
		Version:         "test",
		CORSOrigins:     []string{"http://localhost:3000"},
		RequestLogLevel: slog.LevelError,
	}, jwtService, Handlers{
		Payroll:    NewPayrollHandler(f.payrolls),
		Commission: NewCommissionHandler(f.commissions),
		Payment:    NewPaymentHandler(f.payments),
		Mpesa:      NewMpesaHandler(f.payments, mpesa.NewVerifier(handlerTestCallback), zaptest.NewLogger(t)),
	})
	return f
}

func (f *routerFixture) do(t *testing.T, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_RequiresToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/payroll/run", `{"month":"2025-04"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRunPayroll_UsesTokenCompany(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/payroll/run", `{"month":"2025-04"}`, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, handlerTestCompany, f.payrolls.lastRun.CompanyID)
	assert.True(t, f.payrolls.lastRun.IncludeCommissions())

	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "2025-04", body["data"].(map[string]interface{})["month"])
}

func TestRunPayroll_OtherCompanyForbidden(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/payroll/run",
		`{"company_id":"99999999-9999-4999-8999-999999999999","month":"2025-04"}`, true)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRunPayroll_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", validator.ValidationErrors{{Field: "month", Message: "must be in YYYY-MM format"}}, http.StatusUnprocessableEntity},
		{"no active employees", payroll.ErrNoActiveEmployees, http.StatusNotFound},
		{"no payroll generated", payroll.ErrNoPayrollGenerated, http.StatusNotFound},
		{"run in progress", payroll.ErrPayrollRunInProgress, http.StatusConflict},
		{"unexpected", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)
			f.payrolls.runErr = tt.err

			rec := f.do(t, http.MethodPost, "/api/v1/payroll/run", `{"month":"2025-04"}`, true)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRunPayroll_MalformedBody(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/payroll/run", `{"month":`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateCommissionPayments_MultiStatus(t *testing.T) {
	path := "/api/v1/employees/" + handlerTestEmployee + "/commissions/payment"
	body := `{"commissions":[{"id":"a","paid":true}]}`

	for status, want := range map[batch.Status]int{
		batch.StatusSuccess: http.StatusOK,
		batch.StatusPartial: http.StatusMultiStatus,
		batch.StatusFailed:  http.StatusBadRequest,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newRouterFixture(t)
			f.commissions.status = status

			rec := f.do(t, http.MethodPost, path, body, true)
			assert.Equal(t, want, rec.Code)
		})
	}

	f := newRouterFixture(t)
	rec := f.do(t, http.MethodPost, path, `{"commissions":[]}`, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAssignEmployee_Route(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/sale-items/"+handlerTestSaleItem+"/employees/"+handlerTestEmployee, "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [2]string{handlerTestSaleItem, handlerTestEmployee}, f.commissions.lastAssign)

	f.commissions.assignErr = commission.ErrCompanyMismatch
	rec = f.do(t, http.MethodPost, "/api/v1/sale-items/"+handlerTestSaleItem+"/employees/"+handlerTestEmployee, "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompanyScopedRoutes_OtherCompanyForbidden(t *testing.T) {
	path := "/api/v1/sale-items/" + handlerTestSaleItem + "/employees/" + handlerTestEmployee
	for _, err := range []error{employee.ErrEmployeeCompanyMismatch, sale.ErrSaleItemCompanyMismatch, jwt.ErrMissingCompanyClaim} {
		t.Run(err.Error(), func(t *testing.T) {
			f := newRouterFixture(t)
			f.commissions.assignErr = err

			rec := f.do(t, http.MethodPost, path, "", true)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}

func TestCompanyScopedRoutes_RequireCompanyClaim(t *testing.T) {
	f := newRouterFixture(t)
	token, _, err := jwt.NewJWTService(handlerTestSecret).GenerateAccessToken("user-1", "", time.Hour)
	require.NoError(t, err)
	f.token = token

	rec := f.do(t, http.MethodPost, "/api/v1/sale-items/"+handlerTestSaleItem+"/employees/"+handlerTestEmployee, "", true)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, [2]string{}, f.commissions.lastAssign)

	rec = f.do(t, http.MethodPost, "/api/v1/employees/"+handlerTestEmployee+"/commissions/payment", `{"commissions":[{"id":"a","paid":true}]}`, true)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreatePayment_StatusFollowsOutcome(t *testing.T) {
	f := newRouterFixture(t)
	f.payments.status = batch.StatusPartial

	body := `{"invoices":["` + handlerTestPaymentID + `"],"receivedAmount":"100","paymentMethod":"cash"}`
	rec := f.do(t, http.MethodPost, "/api/v1/payments", body, true)
	assert.Equal(t, http.StatusMultiStatus, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/v1/payments", `{"invoices":[],"receivedAmount":"100","paymentMethod":"cash"}`, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

const callbackSuccess = `{"Body":{"stkCallback":{"MerchantRequestID":"1","CheckoutRequestID":"` + handlerTestCheckout + `","ResultCode":0,"ResultDesc":"ok",
"CallbackMetadata":{"Item":[{"Name":"Amount","Value":1500.50},{"Name":"MpesaReceiptNumber","Value":"NLJ7RT61SV"},
{"Name":"TransactionDate","Value":20191219102115},{"Name":"PhoneNumber","Value":254708374149}]}}}}`

const callbackFailed = `{"Body":{"stkCallback":{"MerchantRequestID":"1","CheckoutRequestID":"` + handlerTestCheckout + `","ResultCode":1032,"ResultDesc":"Request cancelled by user"}}}`

func (f *routerFixture) callback(t *testing.T, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/mpesa/callback", strings.NewReader(body))
	if token != "" {
		req.Header.Set(callbackTokenHeader, token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeAck(t *testing.T, rec *httptest.ResponseRecorder) mpesa.Acknowledgement {
	t.Helper()
	var ack mpesa.Acknowledgement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	return ack
}

func TestMpesaCallback_Success(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.callback(t, handlerTestCallback, callbackSuccess)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, mpesa.Accepted(), decodeAck(t, rec))

	require.NotNil(t, f.payments.confirmation)
	c := f.payments.confirmation
	assert.True(t, c.Succeeded)
	assert.Equal(t, handlerTestCheckout, c.CheckoutRequestID)
	assert.True(t, c.Amount.Equal(decimal.RequireFromString("1500.50")))
	assert.Equal(t, "NLJ7RT61SV", c.Reference)
	assert.Equal(t, "254708374149", c.Phone)
}

func TestMpesaCallback_Failed(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.callback(t, handlerTestCallback, callbackFailed)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, mpesa.Rejected("Transaction failed"), decodeAck(t, rec))
	require.NotNil(t, f.payments.confirmation)
	assert.False(t, f.payments.confirmation.Succeeded)
}

func TestMpesaCallback_Rejections(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.callback(t, "wrong", callbackSuccess)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, f.payments.confirmation)

	rec = f.callback(t, handlerTestCallback, `{"Body":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.payments.confirmErr = payment.ErrPaymentNotFound
	rec = f.callback(t, handlerTestCallback, callbackSuccess)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1, decodeAck(t, rec).ResultCode)
}
