package commission

import "errors"

var (
	ErrSettingNotFound       = errors.New("commission setting not found")
	ErrCommissionNotFound    = errors.New("commission not found")
	ErrCommissionAlreadyPaid = errors.New("cannot mark already paid commission as unpaid")
	ErrCompanyMismatch       = errors.New("employee and service must belong to the same company")
	ErrEmployeeNotAssigned   = errors.New("employee is not assigned to this sale item")
	ErrPaidStatusRequired    = errors.New("paid status is required")
)
