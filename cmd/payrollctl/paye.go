package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/csm-garage/backoffice-go/internal/pkg/money"
	payrollService "github.com/csm-garage/backoffice-go/internal/service/payroll"
	"github.com/spf13/cobra"
)

func newPayeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paye",
		Short: "Print the statutory breakdown for a monthly gross amount",
		Example: `  payrollctl paye --gross 100000
  payrollctl paye --gross 57000.50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			grossStr, _ := cmd.Flags().GetString("gross")
			gross, err := money.Parse(grossStr)
			if err != nil {
				return fmt.Errorf("invalid --gross %q: %w", grossStr, err)
			}

			b := payrollService.NewStatutoryCalculator().Compute(gross)
			return printBreakdown(cmd.OutOrStdout(), b)
		},
	}

	cmd.Flags().String("gross", "", "Monthly gross pay")
	_ = cmd.MarkFlagRequired("gross")
	return cmd
}

func printBreakdown(out io.Writer, b payrollService.StatutoryBreakdown) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	rows := []struct {
		label string
		value string
	}{
		{"Gross", b.Gross.StringFixed(money.Scale)},
		{"NSSF", b.Pension.StringFixed(money.Scale)},
		{"SHIF", b.Health.StringFixed(money.Scale)},
		{"AHL", b.Housing.StringFixed(money.Scale)},
		{"Taxable income", b.Taxable.StringFixed(money.Scale)},
		{"PAYE", b.PAYE.StringFixed(money.Scale)},
		{"Total statutory", b.Total().StringFixed(money.Scale)},
		{"Net of statutory", b.Gross.Sub(b.Total()).StringFixed(money.Scale)},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t\n", r.label, r.value)
	}
	return tw.Flush()
}
