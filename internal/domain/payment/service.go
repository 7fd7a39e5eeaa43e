package payment

import "context"

type PaymentService interface {
	// CreatePayment records a new payment and links it, or links the existing payments named in the request.
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (SettlementResponse, error)
	LinkDocuments(ctx context.Context, req LinkRequest) (SettlementResponse, error)
	GetPayment(ctx context.Context, id string) (PaymentResponse, error)
	ListPayments(ctx context.Context, filter PaymentFilter) (ListPaymentResponse, error)

	// Gateway
	RegisterPendingCheckout(ctx context.Context, req RegisterCheckoutRequest) (SettlementResponse, error)
	HandleGatewayConfirmation(ctx context.Context, c GatewayConfirmation) (PaymentResponse, error)
}
