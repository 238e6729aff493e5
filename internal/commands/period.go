package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/fincore/internal/periods"
)

func newPeriodCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Accounting periods",
	}
	cmd.AddCommand(
		newPeriodCreateCommand(a),
		newPeriodCloseCommand(a),
		newPeriodReopenCommand(a),
		newPeriodListCommand(a),
	)
	return cmd
}

func newPeriodCreateCommand(a *app) *cobra.Command {
	var name, start, end string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register an open period",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			s, err := parseDate(start)
			if err != nil {
				return err
			}
			e, err := parseDate(end)
			if err != nil {
				return err
			}
			p, err := a.periods.Create(cmd.Context(), a.tenant(), periods.PeriodInput{Name: name, Start: s, End: e})
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "period name (required)")
	cmd.Flags().StringVar(&start, "start", "", "first day (required)")
	cmd.Flags().StringVar(&end, "end", "", "last day (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newPeriodCloseCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "close <period-id>",
		Short: "Mark a period closed without posting a closing entry",
		Long:  "Marks a period closed. Use `fincore close period` to post the closing entry first.",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			p, err := a.periods.Close(cmd.Context(), a.tenant(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		}),
	}
}

func newPeriodReopenCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <period-id>",
		Short: "Reopen a closed period",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			p, err := a.periods.Reopen(cmd.Context(), a.tenant(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		}),
	}
}

func newPeriodListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List periods by start date",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			list, err := a.periods.List(cmd.Context(), a.tenant())
			if err != nil {
				return err
			}
			return printJSON(cmd, list)
		}),
	}
}
