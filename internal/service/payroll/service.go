package payroll

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/csm-garage/backoffice-go/internal/domain/commission"
	"github.com/csm-garage/backoffice-go/internal/domain/company"
	"github.com/csm-garage/backoffice-go/internal/domain/employee"
	"github.com/csm-garage/backoffice-go/internal/domain/payroll"
	"github.com/csm-garage/backoffice-go/internal/pkg/batch"
	"github.com/csm-garage/backoffice-go/internal/pkg/database"
	"github.com/csm-garage/backoffice-go/internal/pkg/jwt"
	"github.com/csm-garage/backoffice-go/internal/pkg/lock"
	"github.com/csm-garage/backoffice-go/internal/pkg/logger"
	"github.com/csm-garage/backoffice-go/internal/pkg/money"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultRunLockTTL = 10 * time.Minute

type PayrollServiceImpl struct {
	txManager        database.TxManager
	locker           lock.Locker
	lockTTL          time.Duration
	companyRepo      company.CompanyRepository
	employeeRepo     employee.EmployeeRepository
	remunerationRepo payroll.RemunerationRepository
	deductionRepo    payroll.DeductionRepository
	payrollRepo      payroll.PayrollRepository
	commissionRepo   commission.CommissionRepository
	calculator       *StatutoryCalculator
	logger           *zap.Logger
	now              func() time.Time
}

func NewPayrollService(
	txManager database.TxManager,
	locker lock.Locker,
	lockTTL time.Duration,
	companyRepo company.CompanyRepository,
	employeeRepo employee.EmployeeRepository,
	remunerationRepo payroll.RemunerationRepository,
	deductionRepo payroll.DeductionRepository,
	payrollRepo payroll.PayrollRepository,
	commissionRepo commission.CommissionRepository,
	log *zap.Logger,
) payroll.PayrollService {
	if lockTTL <= 0 {
		lockTTL = defaultRunLockTTL
	}
	return &PayrollServiceImpl{
		txManager:        txManager,
		locker:           locker,
		lockTTL:          lockTTL,
		companyRepo:      companyRepo,
		employeeRepo:     employeeRepo,
		remunerationRepo: remunerationRepo,
		deductionRepo:    deductionRepo,
		payrollRepo:      payrollRepo,
		commissionRepo:   commissionRepo,
		calculator:       NewStatutoryCalculator(),
		logger:           logger.OrNop(log),
		now:              time.Now,
	}
}

// ========== RUN ==========

// runTotals accumulates report totals over the included employees of one run.
type runTotals struct {
	gross, pension, health, housing, paye, other, net decimal.Decimal
	count                                             int
}

func (t *runTotals) add(row payroll.ReportRow) {
	t.gross = t.gross.Add(row.Gross)
	t.pension = t.pension.Add(row.Pension)
	t.health = t.health.Add(row.Health)
	t.housing = t.housing.Add(row.Housing)
	t.paye = t.paye.Add(row.PAYE)
	t.other = t.other.Add(row.Other)
	t.net = t.net.Add(row.Net)
	t.count++
}

func (t *runTotals) result() payroll.Totals {
	totals := payroll.Totals{
		Gross:        t.gross,
		Pension:      t.pension,
		Health:       t.health,
		Housing:      t.housing,
		PAYE:         t.paye,
		Other:        t.other,
		Net:          t.net,
		Statutory:    money.Sum(t.pension, t.health, t.housing, t.paye),
		AverageGross: decimal.Zero,
	}
	if t.count > 0 {
		totals.AverageGross = money.Round(t.gross.Div(decimal.NewFromInt(int64(t.count))))
	}
	return totals
}

func runLockKey(companyID string, p payroll.Period) string {
	return fmt.Sprintf("payroll:%s:%s", companyID, p.String())
}

func (s *PayrollServiceImpl) RunPayroll(ctx context.Context, req payroll.RunPayrollRequest) (payroll.Report, error) {
	if err := req.Validate(); err != nil {
		return payroll.Report{}, err
	}
	period, err := payroll.ParsePeriod(req.Month)
	if err != nil {
		return payroll.Report{}, err
	}

	ctx, log := logger.WithCompany(ctx, s.logger, req.CompanyID)
	log = log.With(zap.String("period", period.String()))

	comp, err := s.companyRepo.GetByID(ctx, req.CompanyID)
	if err != nil {
		return payroll.Report{}, err
	}

	release, err := s.locker.Acquire(ctx, runLockKey(comp.ID, period), s.lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrLockHeld) {
			return payroll.Report{}, payroll.ErrPayrollRunInProgress
		}
		return payroll.Report{}, fmt.Errorf("failed to acquire payroll run lock: %w", err)
	}
	defer release()

	employees, err := s.employeeRepo.GetActiveByCompanyID(ctx, comp.ID)
	if err != nil {
		return payroll.Report{}, err
	}
	if len(employees) == 0 {
		return payroll.Report{}, payroll.ErrNoActiveEmployees
	}
	sort.SliceStable(employees, func(i, j int) bool {
		return strings.ToLower(employees[i].DisplayName()) < strings.ToLower(employees[j].DisplayName())
	})

	log.Info("Payroll run started",
		zap.Int("employees", len(employees)),
		zap.Bool("include_commissions", req.IncludeCommissions()),
	)

	rows := []payroll.ReportRow{}
	failures := []batch.Failure{}
	totals := &runTotals{}

	for _, emp := range employees {
		row, included, err := s.processEmployee(ctx, emp, period, req.IncludeCommissions())
		if err != nil {
			log.Error("Payroll failed for employee", zap.String("employee_id", emp.ID), zap.Error(err))
			failures = append(failures, batch.Failure{ID: emp.ID, Error: err.Error()})
			continue
		}
		if !included {
			log.Debug("Employee skipped, no pay for period", zap.String("employee_id", emp.ID))
			continue
		}
		row.EmployeeNumber = fmt.Sprintf("EMP%04d", len(rows)+1)
		rows = append(rows, row)
		totals.add(row)
	}

	if len(rows) == 0 {
		if len(failures) > 0 {
			return payroll.Report{}, fmt.Errorf("%w: %d employees failed", payroll.ErrNoPayrollGenerated, len(failures))
		}
		return payroll.Report{}, payroll.ErrNoPayrollGenerated
	}

	log.Info("Payroll run completed",
		zap.Int("rows", len(rows)),
		zap.Int("failures", len(failures)),
		zap.String("total_net", totals.net.StringFixed(2)),
	)

	return payroll.Report{
		CompanyID:      comp.ID,
		CompanyName:    comp.Name,
		Month:          period.String(),
		MonthName:      period.Label(),
		MonthShort:     period.ShortLabel(),
		TotalEmployees: len(rows),
		Rows:           rows,
		Totals:         totals.result(),
		Failures:       failures,
		GeneratedAt:    s.now(),
	}, nil
}

// processEmployee computes and stores one employee's payroll in its own
// transaction. included is false when the employee has nothing to pay.
func (s *PayrollServiceImpl) processEmployee(ctx context.Context, emp employee.Employee, period payroll.Period, includeCommissions bool) (row payroll.ReportRow, included bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			row, included = payroll.ReportRow{}, false
			err = fmt.Errorf("%w: %v", payroll.ErrPayrollComputationFailed, r)
		}
	}()

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		row, included, txErr = s.computeEmployee(txCtx, emp, period, includeCommissions)
		return txErr
	})
	if err != nil {
		return payroll.ReportRow{}, false, err
	}
	return row, included, nil
}

func (s *PayrollServiceImpl) computeEmployee(ctx context.Context, emp employee.Employee, period payroll.Period, includeCommissions bool) (payroll.ReportRow, bool, error) {
	base := emp.BaseSalary()
	allowances := map[string]decimal.Decimal{}
	bonuses := decimal.Zero

	remunerations, err := s.remunerationRepo.ListEffectiveInPeriod(ctx, emp.ID, period.Start(), period.Next())
	if err != nil {
		return payroll.ReportRow{}, false, err
	}
	for _, rem := range remunerations {
		if rem.Type == payroll.RemunerationBonus {
			bonuses = bonuses.Add(rem.Amount)
			continue
		}
		label := rem.Label()
		allowances[label] = allowances[label].Add(rem.Amount)
		base = base.Add(rem.Amount)
	}

	commissionTotal := decimal.Zero
	var commissionIDs []string
	if includeCommissions {
		unpaid, err := s.commissionRepo.LockUnpaidForPeriod(ctx, emp.ID, period.Start(), period.Next())
		if err != nil {
			return payroll.ReportRow{}, false, err
		}
		for _, c := range unpaid {
			commissionTotal = commissionTotal.Add(c.Amount)
			commissionIDs = append(commissionIDs, c.ID)
		}
		bonuses = bonuses.Add(commissionTotal)
	}

	gross := money.Round(base.Add(bonuses))
	if !gross.IsPositive() {
		return payroll.ReportRow{}, false, nil
	}

	statutory := s.calculator.Compute(gross)
	deductions := map[string]decimal.Decimal{
		"NSSF": statutory.Pension,
		"SHIF": statutory.Health,
		"AHL":  statutory.Housing,
		"PAYE": statutory.PAYE,
	}

	active, err := s.deductionRepo.ListActiveInPeriod(ctx, emp.ID, period)
	if err != nil {
		return payroll.ReportRow{}, false, err
	}
	other := decimal.Zero
	for _, d := range active {
		if !d.AppliesTo(period) {
			continue
		}
		label := d.Type.Label()
		deductions[label] = deductions[label].Add(d.Amount)
		other = other.Add(d.Amount)
	}

	net := money.Round(gross.Sub(statutory.Total()).Sub(other))

	saved, err := s.payrollRepo.Upsert(ctx, payroll.Payroll{
		EmployeeID:    emp.ID,
		PaymentMonth:  int(period.Month),
		PaymentYear:   period.Year,
		PaymentDate:   s.now(),
		BasicSalary:   emp.BaseSalary(),
		Allowances:    allowances,
		Bonuses:       bonuses,
		Deductions:    deductions,
		GrossPay:      gross,
		NetPay:        net,
		PaymentMethod: payroll.PaymentMethodBankTransfer,
		AccountNumber: emp.AccountNumber,
		BankName:      emp.BankName,
		IsPaid:        false,
	})
	if err != nil {
		return payroll.ReportRow{}, false, err
	}

	if len(commissionIDs) > 0 {
		if _, err := s.commissionRepo.MarkPaid(ctx, commissionIDs, s.now()); err != nil {
			return payroll.ReportRow{}, false, err
		}
	}

	position := "N/A"
	if emp.Position != nil && *emp.Position != "" {
		position = *emp.Position
	}

	return payroll.ReportRow{
		PayrollID:     saved.ID,
		EmployeeID:    emp.ID,
		Name:          emp.DisplayName(),
		Position:      position,
		BasicSalary:   emp.BaseSalary(),
		Allowances:    allowances,
		Bonuses:       bonuses,
		Commissions:   commissionTotal,
		Gross:         gross,
		Pension:       statutory.Pension,
		Health:        statutory.Health,
		Housing:       statutory.Housing,
		TaxableIncome: statutory.Taxable,
		PAYE:          statutory.PAYE,
		Other:         other,
		Deductions:    deductions,
		Net:           net,
	}, true, nil
}

// ========== RECORDS ==========

func (s *PayrollServiceImpl) ListPayrolls(ctx context.Context, companyID, month string) ([]payroll.PayrollResponse, error) {
	period, err := payroll.ParsePeriod(month)
	if err != nil {
		return nil, err
	}

	records, err := s.payrollRepo.ListByCompanyPeriod(ctx, companyID, period)
	if err != nil {
		return nil, err
	}

	result := make([]payroll.PayrollResponse, 0, len(records))
	for _, p := range records {
		result = append(result, toPayrollResponse(p))
	}
	return result, nil
}

func (s *PayrollServiceImpl) GetPayslip(ctx context.Context, id, companyID string) (payroll.PayslipResponse, error) {
	p, err := s.payrollRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	totalAllowances := money.SumMap(p.Allowances)
	totalDeductions := money.SumMap(p.Deductions)
	gross := money.Sum(p.BasicSalary, totalAllowances, p.Bonuses)

	return payroll.PayslipResponse{
		Payroll:         toPayrollResponse(p),
		MonthName:       payroll.Period{Year: p.PaymentYear, Month: time.Month(p.PaymentMonth)}.Label(),
		TotalAllowances: totalAllowances,
		TotalDeductions: totalDeductions,
		GrossSalary:     gross,
		NetSalary:       gross.Sub(totalDeductions),
	}, nil
}

func toPayrollResponse(p payroll.Payroll) payroll.PayrollResponse {
	return payroll.PayrollResponse{
		ID:                   p.ID,
		EmployeeID:           p.EmployeeID,
		EmployeeName:         p.EmployeeName,
		Position:             p.Position,
		PaymentMonth:         p.PaymentMonth,
		PaymentYear:          p.PaymentYear,
		PaymentDate:          p.PaymentDate.Format("2006-01-02"),
		BasicSalary:          p.BasicSalary,
		Allowances:           p.Allowances,
		Bonuses:              p.Bonuses,
		Deductions:           p.Deductions,
		GrossPay:             p.GrossPay,
		NetPay:               p.NetPay,
		PaymentMethod:        string(p.PaymentMethod),
		AccountNumber:        p.AccountNumber,
		BankName:             p.BankName,
		TransactionReference: p.TransactionReference,
		IsPaid:               p.IsPaid,
	}
}

// ========== REMUNERATIONS ==========

// checkEmployeeCompany rejects employees outside the company of the caller's token.
func (s *PayrollServiceImpl) checkEmployeeCompany(ctx context.Context, employeeID string) error {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return err
	}
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return err
	}
	if emp.CompanyID != companyID {
		return employee.ErrEmployeeCompanyMismatch
	}
	return nil
}

func (s *PayrollServiceImpl) CreateRemuneration(ctx context.Context, req payroll.CreateRemunerationRequest) (payroll.RemunerationResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RemunerationResponse{}, err
	}
	if err := s.checkEmployeeCompany(ctx, req.EmployeeID); err != nil {
		return payroll.RemunerationResponse{}, err
	}

	effective, _ := time.Parse("2006-01-02", req.EffectiveDate)
	created, err := s.remunerationRepo.Create(ctx, payroll.Remuneration{
		EmployeeID:    req.EmployeeID,
		Type:          payroll.RemunerationType(req.Type),
		Name:          req.Name,
		Amount:        money.Round(req.Amount),
		Currency:      req.Currency,
		EffectiveDate: effective,
	})
	if err != nil {
		return payroll.RemunerationResponse{}, err
	}

	s.logger.Info("Remuneration created",
		zap.String("employee_id", created.EmployeeID),
		zap.String("type", string(created.Type)),
	)
	return toRemunerationResponse(created), nil
}

func (s *PayrollServiceImpl) ListRemunerations(ctx context.Context, employeeID string) ([]payroll.RemunerationResponse, error) {
	if err := s.checkEmployeeCompany(ctx, employeeID); err != nil {
		return nil, err
	}
	list, err := s.remunerationRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	result := make([]payroll.RemunerationResponse, 0, len(list))
	for _, r := range list {
		result = append(result, toRemunerationResponse(r))
	}
	return result, nil
}

func toRemunerationResponse(r payroll.Remuneration) payroll.RemunerationResponse {
	return payroll.RemunerationResponse{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		Type:          string(r.Type),
		Name:          r.Name,
		Amount:        r.Amount,
		Currency:      r.Currency,
		EffectiveDate: r.EffectiveDate.Format("2006-01-02"),
	}
}

// ========== DEDUCTIONS ==========

func (s *PayrollServiceImpl) CreateDeduction(ctx context.Context, req payroll.CreateDeductionRequest) (payroll.DeductionResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.DeductionResponse{}, err
	}
	if err := s.checkEmployeeCompany(ctx, req.EmployeeID); err != nil {
		return payroll.DeductionResponse{}, err
	}

	effective, _ := payroll.ParsePeriod(req.EffectiveMonth)
	d := payroll.Deduction{
		EmployeeID:     req.EmployeeID,
		Type:           payroll.DeductionType(req.Type),
		Amount:         money.Round(req.Amount),
		Reason:         req.Reason,
		EffectiveMonth: effective.Start(),
	}
	if req.EndMonth != nil {
		end, _ := payroll.ParsePeriod(*req.EndMonth)
		endStart := end.Start()
		d.EndMonth = &endStart
	}

	created, err := s.deductionRepo.Create(ctx, d)
	if err != nil {
		return payroll.DeductionResponse{}, err
	}
	return toDeductionResponse(created), nil
}

func (s *PayrollServiceImpl) ListDeductions(ctx context.Context, employeeID string) ([]payroll.DeductionResponse, error) {
	if err := s.checkEmployeeCompany(ctx, employeeID); err != nil {
		return nil, err
	}
	list, err := s.deductionRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	result := make([]payroll.DeductionResponse, 0, len(list))
	for _, d := range list {
		result = append(result, toDeductionResponse(d))
	}
	return result, nil
}

func toDeductionResponse(d payroll.Deduction) payroll.DeductionResponse {
	var end *string
	if d.EndMonth != nil {
		s := payroll.PeriodOf(*d.EndMonth).String()
		end = &s
	}
	return payroll.DeductionResponse{
		ID:             d.ID,
		EmployeeID:     d.EmployeeID,
		Type:           string(d.Type),
		Amount:         d.Amount,
		Reason:         d.Reason,
		EffectiveMonth: payroll.PeriodOf(d.EffectiveMonth).String(),
		EndMonth:       end,
	}
}
