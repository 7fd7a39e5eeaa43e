package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/csm-garage/backoffice-go/internal/pkg/database"
	"github.com/csm-garage/backoffice-go/migrations"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// TestDatabaseSetup holds a migrated test database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies the schema.
// The test is skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	migrator, err := database.NewMigrator(migrations.FS, dsn, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	require.NoError(t, migrator.Close())

	db, err := database.NewPostgreSQLDB(context.Background(), dsn, database.PoolOptions{MaxConns: 5, MinConns: 1})
	require.NoError(t, err)

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(context.Background()))
	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables removes all rows from every table
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"payment_sales",
		"payment_invoices",
		"payments",
		"invoice_sales",
		"invoices",
		"employee_payrolls",
		"employee_deductions",
		"employee_remunerations",
		"employee_commissions",
		"sale_item_employees",
		"sale_items",
		"sales",
		"employee_commission_settings",
		"services",
		"employees",
		"companies",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// Close closes the database pool
func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}

// ========== FIXTURES ==========

func (t *TestDatabaseSetup) insertID(tb testing.TB, query string, args ...interface{}) string {
	tb.Helper()
	var id string
	require.NoError(tb, t.DB.QueryRow(context.Background(), query+" RETURNING id", args...).Scan(&id))
	return id
}

func (t *TestDatabaseSetup) CreateCompany(tb testing.TB, name string) string {
	return t.insertID(tb, `INSERT INTO companies (name) VALUES ($1)`, name)
}

func (t *TestDatabaseSetup) CreateEmployee(tb testing.TB, companyID, name string, salary string) string {
	return t.insertID(tb, `
		INSERT INTO employees (company_id, full_name, salary, account_number, bank_name)
		VALUES ($1, $2, $3::numeric, '0011223344', 'Equity')`, companyID, name, salary)
}

func (t *TestDatabaseSetup) CreateService(tb testing.TB, companyID, name string) string {
	return t.insertID(tb, `INSERT INTO services (company_id, name, price) VALUES ($1, $2, 1000)`, companyID, name)
}

func (t *TestDatabaseSetup) CreateSale(tb testing.TB, companyID, date string) string {
	return t.insertID(tb, `INSERT INTO sales (company_id, date) VALUES ($1, $2::date)`, companyID, date)
}

func (t *TestDatabaseSetup) CreateServiceItem(tb testing.TB, saleID, serviceID, amount string) string {
	return t.insertID(tb, `
		INSERT INTO sale_items (sale_id, type, service_id, amount, subtotal, total)
		VALUES ($1, 'service', $2, $3::numeric, $3::numeric, $3::numeric)`, saleID, serviceID, amount)
}

func (t *TestDatabaseSetup) CreateInvoice(tb testing.TB, companyID, number string) string {
	return t.insertID(tb, `INSERT INTO invoices (company_id, invoice_number) VALUES ($1, $2)`, companyID, number)
}
