package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/statements"
)

func newReportCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate financial statements",
		Long:  "Each statement is built from the ledger and appended to the report history.",
	}
	cmd.AddCommand(
		newStatementCommand(a, "trial-balance", "Trial balance", model.ReportTrialBalance),
		newStatementCommand(a, "pnl", "Profit and loss", model.ReportProfitAndLoss),
		newStatementCommand(a, "balance-sheet", "Balance sheet", model.ReportBalanceSheet),
		newStatementCommand(a, "cashflow", "Cashflow (operating activity only)", model.ReportCashflow),
		newReportHistoryCommand(a),
	)
	return cmd
}

func newStatementCommand(a *app, use, short string, kind model.ReportKind) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			f, t, err := window(from, to)
			if err != nil {
				return err
			}
			snap, err := a.statements.GenerateReport(cmd.Context(), a.tenant(), statements.ReportRequest{Kind: kind, From: f, To: t})
			if err != nil {
				return err
			}
			return printJSON(cmd, snap)
		}),
	}
	cmd.Flags().StringVar(&from, "from", "", "first date, inclusive")
	cmd.Flags().StringVar(&to, "to", "", "last date, inclusive; point-in-time when --from is omitted")
	return cmd
}

func newReportHistoryCommand(a *app) *cobra.Command {
	var cashflows bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List generated reports, oldest first",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if cashflows {
				list, err := a.statements.Cashflows(cmd.Context(), a.tenant())
				if err != nil {
					return err
				}
				return printJSON(cmd, list)
			}
			list, err := a.statements.Reports(cmd.Context(), a.tenant())
			if err != nil {
				return err
			}
			return printJSON(cmd, list)
		}),
	}
	cmd.Flags().BoolVar(&cashflows, "cashflows", false, "list cashflow totals instead")
	return cmd
}
