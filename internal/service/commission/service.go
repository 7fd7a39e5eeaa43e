package commission

import (
	"context"
	"fmt"
	"time"

	"github.com/csm-garage/backoffice-go/internal/domain/commission"
	"github.com/csm-garage/backoffice-go/internal/domain/employee"
	"github.com/csm-garage/backoffice-go/internal/domain/sale"
	"github.com/csm-garage/backoffice-go/internal/pkg/batch"
	"github.com/csm-garage/backoffice-go/internal/pkg/database"
	"github.com/csm-garage/backoffice-go/internal/pkg/jwt"
	"github.com/csm-garage/backoffice-go/internal/pkg/logger"
	"github.com/csm-garage/backoffice-go/internal/pkg/money"
	"go.uber.org/zap"
)

type CommissionServiceImpl struct {
	txManager      database.TxManager
	commissionRepo commission.CommissionRepository
	saleRepo       sale.SaleRepository
	employeeRepo   employee.EmployeeRepository
	logger         *zap.Logger
	now            func() time.Time
}

func NewCommissionService(
	txManager database.TxManager,
	commissionRepo commission.CommissionRepository,
	saleRepo sale.SaleRepository,
	employeeRepo employee.EmployeeRepository,
	log *zap.Logger,
) commission.CommissionService {
	return &CommissionServiceImpl{
		txManager:      txManager,
		commissionRepo: commissionRepo,
		saleRepo:       saleRepo,
		employeeRepo:   employeeRepo,
		logger:         logger.OrNop(log),
		now:            time.Now,
	}
}

// ========== SETTINGS ==========

func (s *CommissionServiceImpl) UpsertSetting(ctx context.Context, req commission.UpsertSettingRequest) (commission.SettingResponse, error) {
	if err := req.Validate(); err != nil {
		return commission.SettingResponse{}, err
	}

	emp, err := s.companyEmployee(ctx, req.EmployeeID)
	if err != nil {
		return commission.SettingResponse{}, err
	}
	svc, err := s.saleRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		return commission.SettingResponse{}, err
	}
	if emp.CompanyID != svc.CompanyID {
		return commission.SettingResponse{}, commission.ErrCompanyMismatch
	}

	saved, err := s.commissionRepo.UpsertSetting(ctx, commission.Setting{
		EmployeeID:  emp.ID,
		ServiceID:   svc.ID,
		Percentage:  money.Round(req.Percentage),
		ServiceName: &svc.Name,
	})
	if err != nil {
		return commission.SettingResponse{}, err
	}

	s.logger.Info("Commission setting saved",
		zap.String("employee_id", saved.EmployeeID),
		zap.String("service_id", saved.ServiceID),
		zap.String("percentage", saved.Percentage.String()),
	)
	return toSettingResponse(saved), nil
}

func (s *CommissionServiceImpl) ListSettings(ctx context.Context, employeeID string) ([]commission.SettingResponse, error) {
	if _, err := s.companyEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	settings, err := s.commissionRepo.ListSettingsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	result := make([]commission.SettingResponse, 0, len(settings))
	for _, st := range settings {
		result = append(result, toSettingResponse(st))
	}
	return result, nil
}

func toSettingResponse(s commission.Setting) commission.SettingResponse {
	return commission.SettingResponse{
		ID:          s.ID,
		EmployeeID:  s.EmployeeID,
		ServiceID:   s.ServiceID,
		ServiceName: s.ServiceName,
		Percentage:  s.Percentage,
	}
}

// ========== COMMISSIONS ==========

func (s *CommissionServiceImpl) ListCommissions(ctx context.Context, employeeID string, filter commission.CommissionFilter) ([]commission.CommissionResponse, error) {
	if _, err := s.companyEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	list, err := s.commissionRepo.ListByEmployee(ctx, employeeID, filter)
	if err != nil {
		return nil, err
	}
	return toCommissionResponses(list), nil
}

// UpdatePaymentStatus applies each entry in its own transaction. Marking a
// paid commission unpaid is rejected per entry.
func (s *CommissionServiceImpl) UpdatePaymentStatus(ctx context.Context, req commission.UpdatePaymentStatusRequest) (commission.UpdatePaymentStatusResponse, error) {
	if err := req.Validate(); err != nil {
		return commission.UpdatePaymentStatusResponse{}, err
	}
	if _, err := s.companyEmployee(ctx, req.EmployeeID); err != nil {
		return commission.UpdatePaymentStatusResponse{}, err
	}

	result := batch.NewResult()
	updated := []commission.Commission{}

	for _, entry := range req.Commissions {
		c, err := s.updateOne(ctx, req.EmployeeID, entry)
		if err != nil {
			id := entry.ID
			if id == "" {
				id = "unknown"
			}
			result.Fail(id, err)
			continue
		}
		result.Succeed(c.ID)
		updated = append(updated, c)
	}

	status := result.Status()
	if len(result.Failed) > 0 {
		s.logger.Warn("Commission payment update had failures",
			zap.String("employee_id", req.EmployeeID),
			zap.Int("updated", len(updated)),
			zap.Int("failed", len(result.Failed)),
		)
	}

	return commission.UpdatePaymentStatusResponse{
		Success:            status != batch.StatusFailed,
		UpdatedCount:       len(updated),
		UpdatedCommissions: toCommissionResponses(updated),
		Errors:             result.Failed,
		ErrorCount:         len(result.Failed),
		Status:             status,
	}, nil
}

func (s *CommissionServiceImpl) updateOne(ctx context.Context, employeeID string, entry commission.PaymentStatusUpdate) (c commission.Commission, err error) {
	if entry.ID == "" {
		return commission.Commission{}, commission.ErrCommissionNotFound
	}
	if entry.Paid == nil {
		return commission.Commission{}, commission.ErrPaidStatusRequired
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected error processing commission %s: %v", entry.ID, r)
		}
	}()

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.commissionRepo.GetForUpdate(txCtx, entry.ID, employeeID)
		if err != nil {
			return err
		}
		if current.Paid && !*entry.Paid {
			return commission.ErrCommissionAlreadyPaid
		}

		var datePaid *time.Time
		if *entry.Paid {
			now := s.now()
			datePaid = &now
		}
		updated, err := s.commissionRepo.SetPaid(txCtx, current.ID, *entry.Paid, datePaid)
		if err != nil {
			return err
		}
		updated.SaleDate = current.SaleDate
		c = updated
		return nil
	})
	return c, err
}

func toCommissionResponses(list []commission.Commission) []commission.CommissionResponse {
	result := make([]commission.CommissionResponse, 0, len(list))
	for _, c := range list {
		var saleDate *string
		if c.SaleDate != nil {
			d := c.SaleDate.Format("2006-01-02")
			saleDate = &d
		}
		result = append(result, commission.CommissionResponse{
			ID:             c.ID,
			EmployeeID:     c.EmployeeID,
			SaleItemID:     c.SaleItemID,
			Amount:         c.Amount,
			Paid:           c.Paid,
			DatePaid:       c.DatePaid,
			DateCalculated: c.DateCalculated,
			SaleDate:       saleDate,
		})
	}
	return result
}

// ========== ATTRIBUTION ==========

func (s *CommissionServiceImpl) AssignEmployee(ctx context.Context, saleItemID, employeeID string) (commission.AttributionResponse, error) {
	var resp commission.AttributionResponse
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		item, err := s.lockCompanyItem(txCtx, saleItemID)
		if err != nil {
			return err
		}
		if err := s.ensureSameCompany(txCtx, item, employeeID); err != nil {
			return err
		}
		if _, err := s.saleRepo.AddAssignment(txCtx, item.ID, employeeID); err != nil {
			return err
		}
		resp, err = s.recompute(txCtx, item)
		return err
	})
	return resp, err
}

func (s *CommissionServiceImpl) UnassignEmployee(ctx context.Context, saleItemID, employeeID string) (commission.AttributionResponse, error) {
	var resp commission.AttributionResponse
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		item, err := s.lockCompanyItem(txCtx, saleItemID)
		if err != nil {
			return err
		}
		removed, err := s.saleRepo.RemoveAssignment(txCtx, item.ID, employeeID)
		if err != nil {
			return err
		}
		if !removed {
			return commission.ErrEmployeeNotAssigned
		}
		resp, err = s.recompute(txCtx, item)
		return err
	})
	return resp, err
}

func (s *CommissionServiceImpl) ReplaceAssignments(ctx context.Context, req commission.ReplaceAssignmentsRequest) (commission.AttributionResponse, error) {
	if err := req.Validate(); err != nil {
		return commission.AttributionResponse{}, err
	}

	employeeIDs := dedupe(req.EmployeeIDs)

	var resp commission.AttributionResponse
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		item, err := s.lockCompanyItem(txCtx, req.SaleItemID)
		if err != nil {
			return err
		}
		for _, id := range employeeIDs {
			if err := s.ensureSameCompany(txCtx, item, id); err != nil {
				return err
			}
		}
		if err := s.saleRepo.ReplaceAssignments(txCtx, item.ID, employeeIDs); err != nil {
			return err
		}
		resp, err = s.recompute(txCtx, item)
		return err
	})
	return resp, err
}

// Recompute rebuilds the commissions of one sale item from its current assignees.
func (s *CommissionServiceImpl) Recompute(ctx context.Context, saleItemID string) (commission.AttributionResponse, error) {
	var resp commission.AttributionResponse
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		item, err := s.lockCompanyItem(txCtx, saleItemID)
		if err != nil {
			return err
		}
		resp, err = s.recompute(txCtx, item)
		return err
	})
	return resp, err
}

// recompute must run inside a transaction holding the sale item lock.
func (s *CommissionServiceImpl) recompute(ctx context.Context, item sale.SaleItem) (commission.AttributionResponse, error) {
	existing, err := s.commissionRepo.LockBySaleItem(ctx, item.ID)
	if err != nil {
		return commission.AttributionResponse{}, err
	}
	// Settled rows survive so a later payroll run cannot pay them twice.
	settled := make(map[string]bool)
	for _, c := range existing {
		if c.Paid {
			settled[c.EmployeeID] = true
		}
	}
	removed, err := s.commissionRepo.DeleteUnpaidBySaleItem(ctx, item.ID)
	if err != nil {
		return commission.AttributionResponse{}, err
	}

	assignees, err := s.saleRepo.ListAssignedEmployeeIDs(ctx, item.ID)
	if err != nil {
		return commission.AttributionResponse{}, err
	}

	resp := commission.AttributionResponse{
		SaleItemID:  item.ID,
		EmployeeIDs: assignees,
		Commissions: []commission.CommissionResponse{},
	}
	if !item.EarnsCommission() {
		return resp, nil
	}

	settings, err := s.commissionRepo.ListSettingsForService(ctx, *item.ServiceID, assignees)
	if err != nil {
		return commission.AttributionResponse{}, err
	}

	created := []commission.Commission{}
	for _, c := range Calculate(item, assignees, settings) {
		if settled[c.EmployeeID] {
			continue
		}
		row, err := s.commissionRepo.Create(ctx, c)
		if err != nil {
			return commission.AttributionResponse{}, err
		}
		created = append(created, row)
	}

	s.logger.Debug("Commissions recomputed",
		zap.String("sale_item_id", item.ID),
		zap.Int64("removed", removed),
		zap.Int("created", len(created)),
	)

	resp.Commissions = toCommissionResponses(created)
	return resp, nil
}

// companyEmployee loads the employee and checks it belongs to the caller's company.
func (s *CommissionServiceImpl) companyEmployee(ctx context.Context, employeeID string) (employee.Employee, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return employee.Employee{}, err
	}
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return employee.Employee{}, err
	}
	if emp.CompanyID != companyID {
		return employee.Employee{}, employee.ErrEmployeeCompanyMismatch
	}
	return emp, nil
}

func (s *CommissionServiceImpl) lockCompanyItem(ctx context.Context, saleItemID string) (sale.SaleItem, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return sale.SaleItem{}, err
	}
	item, err := s.saleRepo.LockSaleItem(ctx, saleItemID)
	if err != nil {
		return sale.SaleItem{}, err
	}
	if item.CompanyID != companyID {
		return sale.SaleItem{}, sale.ErrSaleItemCompanyMismatch
	}
	return item, nil
}

func (s *CommissionServiceImpl) ensureSameCompany(ctx context.Context, item sale.SaleItem, employeeID string) error {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return err
	}
	if emp.CompanyID != item.CompanyID {
		return fmt.Errorf("%w: employee %s", commission.ErrCompanyMismatch, employeeID)
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
