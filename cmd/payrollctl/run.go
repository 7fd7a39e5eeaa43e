package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/csm-garage/backoffice-go/internal/config"
	"github.com/csm-garage/backoffice-go/internal/domain/payroll"
	"github.com/csm-garage/backoffice-go/internal/pkg/database"
	"github.com/csm-garage/backoffice-go/internal/pkg/lock"
	"github.com/csm-garage/backoffice-go/internal/pkg/logger"
	"github.com/csm-garage/backoffice-go/internal/pkg/money"
	"github.com/csm-garage/backoffice-go/internal/repository/postgresql"
	payrollService "github.com/csm-garage/backoffice-go/internal/service/payroll"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run payroll for one company and month",
		Example: `  payrollctl run --company 3f1c... --month 2025-04
  payrollctl run --company 3f1c... --month 2025-04 --include-commissions=false --json`,
		RunE: runPayroll,
	}

	cmd.Flags().String("company", "", "Company ID")
	cmd.Flags().String("month", "", "Payroll month (YYYY-MM)")
	cmd.Flags().Bool("include-commissions", true, "Settle unpaid commissions of the month")
	cmd.Flags().Bool("json", false, "Print the report as JSON")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}

func runPayroll(cmd *cobra.Command, args []string) error {
	companyID, _ := cmd.Flags().GetString("company")
	month, _ := cmd.Flags().GetString("month")
	includeCommissions, _ := cmd.Flags().GetBool("include-commissions")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.NewForEnvironment(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{MaxConns: 4, MinConns: 1})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	locker, closeLocker, err := newLocker(cfg)
	if err != nil {
		return err
	}
	defer closeLocker()

	svc := payrollService.NewPayrollService(
		postgresql.NewTransactionManager(db),
		locker,
		cfg.Payroll.RunLockTTL,
		postgresql.NewCompanyRepository(db),
		postgresql.NewEmployeeRepository(db),
		postgresql.NewRemunerationRepository(db),
		postgresql.NewDeductionRepository(db),
		postgresql.NewPayrollRepository(db),
		postgresql.NewCommissionRepository(db),
		log.Named("payroll"),
	)

	report, err := svc.RunPayroll(ctx, payroll.RunPayrollRequest{
		CompanyID:                companyID,
		Month:                    month,
		IncludeUnpaidCommissions: &includeCommissions,
	})
	if err != nil {
		return err
	}

	log.Info("Payroll run finished",
		zap.String("company_id", report.CompanyID),
		zap.String("month", report.Month),
		zap.Int("employees", report.TotalEmployees),
		zap.Int("failures", len(report.Failures)),
	)

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return printReport(cmd.OutOrStdout(), report)
}

// newLocker shares run locks with the API through Redis when it is configured.
func newLocker(cfg *config.Config) (lock.Locker, func(), error) {
	if cfg.Redis.Addr == "" {
		return lock.NewMemoryLocker(), func() {}, nil
	}
	locker, client, err := lock.NewRedisLocker(lock.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, err
	}
	return locker, func() { _ = client.Close() }, nil
}

func printReport(out io.Writer, report payroll.Report) error {
	fmt.Fprintf(out, "%s  %s\n\n", report.CompanyName, report.MonthName)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "No\tName\tPosition\tGross\tNSSF\tSHIF\tAHL\tPAYE\tOther\tNet\t")
	for _, row := range report.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			row.EmployeeNumber, row.Name, row.Position,
			fixed(row.Gross), fixed(row.Pension), fixed(row.Health), fixed(row.Housing),
			fixed(row.PAYE), fixed(row.Other), fixed(row.Net),
		)
	}
	t := report.Totals
	fmt.Fprintf(tw, "\tTotal\t\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
		fixed(t.Gross), fixed(t.Pension), fixed(t.Health), fixed(t.Housing),
		fixed(t.PAYE), fixed(t.Other), fixed(t.Net),
	)
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nEmployees: %d  Statutory deductions: %s  Average gross: %s\n",
		report.TotalEmployees, fixed(t.Statutory), fixed(t.AverageGross))
	for _, f := range report.Failures {
		fmt.Fprintf(out, "FAILED %s: %s\n", f.ID, f.Error)
	}
	return nil
}

func fixed(d decimal.Decimal) string {
	return d.StringFixed(money.Scale)
}
