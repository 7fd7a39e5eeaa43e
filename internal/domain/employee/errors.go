package employee

import "errors"

var (
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrEmployeeCompanyMismatch = errors.New("employee does not belong to this company")
)
