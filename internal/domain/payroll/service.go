package payroll

import "context"

type PayrollService interface {
	// Runs
	RunPayroll(ctx context.Context, req RunPayrollRequest) (Report, error)
	ListPayrolls(ctx context.Context, companyID, month string) ([]PayrollResponse, error)
	GetPayslip(ctx context.Context, id, companyID string) (PayslipResponse, error)

	// Remunerations
	CreateRemuneration(ctx context.Context, req CreateRemunerationRequest) (RemunerationResponse, error)
	ListRemunerations(ctx context.Context, employeeID string) ([]RemunerationResponse, error)

	// Deductions
	CreateDeduction(ctx context.Context, req CreateDeductionRequest) (DeductionResponse, error)
	ListDeductions(ctx context.Context, employeeID string) ([]DeductionResponse, error)
}
