package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/csm-garage/backoffice-go/internal/domain/commission"
	"github.com/csm-garage/backoffice-go/internal/domain/employee"
	"github.com/csm-garage/backoffice-go/internal/domain/payment"
	"github.com/csm-garage/backoffice-go/internal/domain/payroll"
	"github.com/csm-garage/backoffice-go/internal/domain/sale"
	"github.com/csm-garage/backoffice-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeRepository_GetActiveByCompanyID(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()

	companyID := setup.CreateCompany(t, "Westlands Garage")
	setup.CreateEmployee(t, companyID, "Wanjiru", "40000")
	setup.CreateEmployee(t, companyID, "Achieng", "30000")
	retired := setup.CreateEmployee(t, companyID, "Otieno", "20000")
	_, err := setup.DB.Exec(ctx, `UPDATE employees SET is_active = FALSE WHERE id = $1`, retired)
	require.NoError(t, err)

	repo := postgresql.NewEmployeeRepository(setup.DB)
	employees, err := repo.GetActiveByCompanyID(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, "Achieng", employees[0].FullName)
	assert.Equal(t, "Wanjiru", employees[1].FullName)

	_, err = repo.GetByID(ctx, "123e4567-e89b-12d3-a456-426614174000")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestCommissionRepository_SettlementWindow(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	tx := postgresql.NewTransactionManager(setup.DB)

	companyID := setup.CreateCompany(t, "Westlands Garage")
	employeeID := setup.CreateEmployee(t, companyID, "Wanjiru", "40000")
	serviceID := setup.CreateService(t, companyID, "Wheel Alignment")

	aprilItem := setup.CreateServiceItem(t, setup.CreateSale(t, companyID, "2025-04-15"), serviceID, "2000")
	mayItem := setup.CreateServiceItem(t, setup.CreateSale(t, companyID, "2025-05-02"), serviceID, "3000")

	repo := postgresql.NewCommissionRepository(setup.DB)

	setting, err := repo.UpsertSetting(ctx, commission.Setting{EmployeeID: employeeID, ServiceID: serviceID, Percentage: decimal.NewFromInt(10)})
	require.NoError(t, err)
	updated, err := repo.UpsertSetting(ctx, commission.Setting{EmployeeID: employeeID, ServiceID: serviceID, Percentage: decimal.NewFromInt(15)})
	require.NoError(t, err)
	assert.Equal(t, setting.ID, updated.ID)
	assert.True(t, decimal.NewFromInt(15).Equal(updated.Percentage))

	for _, itemID := range []string{aprilItem, mayItem} {
		_, err := repo.Create(ctx, commission.Commission{EmployeeID: employeeID, SaleItemID: itemID, Amount: decimal.NewFromInt(300)})
		require.NoError(t, err)
	}

	april := payroll.Period{Year: 2025, Month: time.April}
	err = tx.RunInTx(ctx, func(txCtx context.Context) error {
		unpaid, err := repo.LockUnpaidForPeriod(txCtx, employeeID, april.Start(), april.Next())
		require.NoError(t, err)
		require.Len(t, unpaid, 1)
		assert.Equal(t, aprilItem, unpaid[0].SaleItemID)

		n, err := repo.MarkPaid(txCtx, []string{unpaid[0].ID}, time.Now())
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
		return nil
	})
	require.NoError(t, err)

	paid := true
	list, err := repo.ListByEmployee(ctx, employeeID, commission.CommissionFilter{Paid: &paid})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, aprilItem, list[0].SaleItemID)

	deleted, err := repo.DeleteUnpaidBySaleItem(ctx, mayItem)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	deleted, err = repo.DeleteUnpaidBySaleItem(ctx, aprilItem)
	require.NoError(t, err)
	assert.EqualValues(t, 0, deleted)
}

func TestSaleRepository_ReplaceAssignments(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()

	companyID := setup.CreateCompany(t, "Westlands Garage")
	a := setup.CreateEmployee(t, companyID, "A", "1000")
	b := setup.CreateEmployee(t, companyID, "B", "1000")
	serviceID := setup.CreateService(t, companyID, "Oil Change")
	itemID := setup.CreateServiceItem(t, setup.CreateSale(t, companyID, "2025-04-01"), serviceID, "1500")

	repo := postgresql.NewSaleRepository(setup.DB)

	added, err := repo.AddAssignment(ctx, itemID, a)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = repo.AddAssignment(ctx, itemID, a)
	require.NoError(t, err)
	assert.False(t, added)

	require.NoError(t, repo.ReplaceAssignments(ctx, itemID, []string{b}))
	ids, err := repo.ListAssignedEmployeeIDs(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, []string{b}, ids)

	require.NoError(t, repo.ReplaceAssignments(ctx, itemID, nil))
	ids, err = repo.ListAssignedEmployeeIDs(ctx, itemID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	item, err := repo.GetSaleItem(ctx, itemID)
	require.NoError(t, err)
	assert.True(t, item.EarnsCommission())
	assert.Equal(t, companyID, item.CompanyID)

	assert.ErrorIs(t, repo.MarkInvoicePaid(ctx, "123e4567-e89b-12d3-a456-426614174000", companyID), sale.ErrInvoiceNotFound)

	invoiceID := setup.CreateInvoice(t, companyID, "INV-0100")
	otherCompany := setup.CreateCompany(t, "Other")
	assert.ErrorIs(t, repo.MarkInvoicePaid(ctx, invoiceID, otherCompany), sale.ErrInvoiceNotFound)
	assert.ErrorIs(t, repo.EnsureInvoice(ctx, invoiceID, otherCompany), sale.ErrInvoiceNotFound)
	require.NoError(t, repo.EnsureInvoice(ctx, invoiceID, companyID))
	require.NoError(t, repo.MarkInvoicePaid(ctx, invoiceID, companyID))
}

func TestPayrollRepository_UpsertOverwritesPeriodRow(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()

	companyID := setup.CreateCompany(t, "Westlands Garage")
	employeeID := setup.CreateEmployee(t, companyID, "Wanjiru", "50000")
	repo := postgresql.NewPayrollRepository(setup.DB)

	row := payroll.Payroll{
		EmployeeID:   employeeID,
		PaymentMonth: 4,
		PaymentYear:  2025,
		PaymentDate:  time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
		BasicSalary:  decimal.NewFromInt(50000),
		Allowances:   map[string]decimal.Decimal{"House Allowance": decimal.NewFromInt(7000)},
		Deductions:   map[string]decimal.Decimal{"NSSF": decimal.NewFromInt(1080)},
		GrossPay:     decimal.NewFromInt(57000),
		NetPay:       decimal.NewFromInt(40000),
	}
	first, err := repo.Upsert(ctx, row)
	require.NoError(t, err)

	row.NetPay = decimal.NewFromInt(41000)
	second, err := repo.Upsert(ctx, row)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, decimal.NewFromInt(41000).Equal(second.NetPay))
	assert.True(t, decimal.NewFromInt(7000).Equal(second.Allowances["House Allowance"]))

	list, err := repo.ListByCompanyPeriod(ctx, companyID, payroll.Period{Year: 2025, Month: time.April})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	otherCompany := setup.CreateCompany(t, "Other")
	_, err = repo.GetByID(ctx, first.ID, otherCompany)
	assert.ErrorIs(t, err, payroll.ErrPayrollNotFound)
}

func TestPaymentRepository_LinkIsIdempotent(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()

	companyID := setup.CreateCompany(t, "Westlands Garage")
	invoiceID := setup.CreateInvoice(t, companyID, "INV-0001")
	repo := postgresql.NewPaymentRepository(setup.DB)

	amount := decimal.NewFromInt(2500)
	ref := "QAB123"
	p, err := repo.Create(ctx, payment.Payment{CompanyID: companyID, AmountPaid: &amount, Method: payment.MethodCash, TransactionID: &ref})
	require.NoError(t, err)
	assert.Equal(t, companyID, p.CompanyID)

	_, err = repo.Create(ctx, payment.Payment{CompanyID: companyID, AmountPaid: &amount, Method: payment.MethodCash, TransactionID: &ref})
	assert.ErrorIs(t, err, payment.ErrDuplicateTransactionID)

	inserted, err := repo.LinkInvoice(ctx, p.ID, invoiceID)
	require.NoError(t, err)
	assert.True(t, inserted)
	inserted, err = repo.LinkInvoice(ctx, p.ID, invoiceID)
	require.NoError(t, err)
	assert.False(t, inserted)

	invoices, sales, err := repo.ListLinkedDocuments(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{invoiceID}, invoices)
	assert.Empty(t, sales)

	_, err = repo.LinkInvoice(ctx, p.ID, "123e4567-e89b-12d3-a456-426614174000")
	assert.ErrorIs(t, err, sale.ErrInvoiceNotFound)
	_, err = repo.LinkSale(ctx, "123e4567-e89b-12d3-a456-426614174000", setup.CreateSale(t, companyID, "2025-04-01"))
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)

	otherCompany := setup.CreateCompany(t, "Other")
	_, err = repo.GetByID(ctx, p.ID, otherCompany)
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
	list, total, err := repo.List(ctx, payment.PaymentFilter{CompanyID: otherCompany})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
	list, _, err = repo.List(ctx, payment.PaymentFilter{CompanyID: companyID})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.SoftDelete(ctx, p.ID, time.Now()))
	_, err = repo.GetByID(ctx, p.ID, companyID)
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
}
