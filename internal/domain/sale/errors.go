package sale

import "errors"

var (
	ErrSaleNotFound     = errors.New("sale not found")
	ErrSaleItemNotFound = errors.New("sale item not found")
	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrServiceNotFound  = errors.New("service not found")

	ErrSaleItemCompanyMismatch = errors.New("sale item does not belong to this company")
)
