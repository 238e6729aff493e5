package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/fincore/internal/budgets"
)

func newBudgetCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Budgets and actuals",
	}
	cmd.AddCommand(newBudgetCreateCommand(a), newBudgetRefreshCommand(a), newBudgetListCommand(a))
	return cmd
}

func newBudgetCreateCommand(a *app) *cobra.Command {
	var (
		name, from, to string
		lines          []string
	)
	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a budget and compute its actuals",
		Example: `  fincore budget create --name FY25 --from 2025-01-01 --to 2025-12-31 --line Expense:Rent=14400`,
		Args:    cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			in := budgets.BudgetInput{Name: name}
			var err error
			if in.From, err = parseDate(from); err != nil {
				return err
			}
			if in.To, err = parseDate(to); err != nil {
				return err
			}
			for _, l := range lines {
				account, value, err := splitPair("line", l)
				if err != nil {
					return err
				}
				planned, err := parseAmount("planned", value)
				if err != nil {
					return err
				}
				in.Lines = append(in.Lines, budgets.LineInput{Account: account, Planned: planned})
			}
			plan, err := a.budgets.Create(cmd.Context(), a.tenant(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd, plan)
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "budget name (required)")
	cmd.Flags().StringVar(&from, "from", "", "first day (required)")
	cmd.Flags().StringVar(&to, "to", "", "last day (required)")
	cmd.Flags().StringArrayVar(&lines, "line", nil, "ACCOUNT=PLANNED, repeatable")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newBudgetRefreshCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <budget-id>",
		Short: "Recompute a budget's actuals from the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			plan, err := a.budgets.RefreshActuals(cmd.Context(), a.tenant(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, plan)
		}),
	}
}

func newBudgetListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List budgets",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			list, err := a.budgets.List(cmd.Context(), a.tenant())
			if err != nil {
				return err
			}
			return printJSON(cmd, list)
		}),
	}
}
