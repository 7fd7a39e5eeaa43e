package payroll

import "errors"

var (
	ErrInvalidPeriod            = errors.New("invalid payroll period, expected YYYY-MM")
	ErrNoActiveEmployees        = errors.New("no active employees found for this company")
	ErrNoPayrollGenerated       = errors.New("no payroll generated")
	ErrPayrollRunInProgress     = errors.New("a payroll run for this company and month is already in progress")
	ErrPayrollNotFound          = errors.New("payroll record not found")
	ErrRemunerationTypeExists   = errors.New("employee already has a remuneration of this type")
	ErrInvalidRemunerationType  = errors.New("invalid remuneration type")
	ErrInvalidDeductionType     = errors.New("invalid deduction type")
	ErrDeductionWindowInvalid   = errors.New("end month cannot be before effective month")
	ErrEmployeeNotFound         = errors.New("employee not found")
	ErrPayrollComputationFailed = errors.New("payroll computation failed")
)
