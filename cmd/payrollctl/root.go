package main

import (
	"github.com/spf13/cobra"
)

var version = "1.0.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "payrollctl",
		Short: "Operator tools for the payroll engine",
		Long: `payrollctl runs monthly payroll for a company from the command line and
previews statutory deductions for a gross amount.

The run command reads the same environment as the API server
(DB_*, REDIS_*, PAYROLL_RUN_LOCK_TTL, APP_ENV, LOG_LEVEL).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(), newPayeCmd())
	return root
}
