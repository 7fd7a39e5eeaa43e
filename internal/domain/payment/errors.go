package payment

import "errors"

var (
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrDuplicateTransactionID = errors.New("a payment with this transaction reference already exists")
	ErrDuplicateCheckout      = errors.New("a payment for this checkout request already exists")
	ErrNoDocuments            = errors.New("at least one invoice or sale is required")
)
