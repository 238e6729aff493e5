package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/fincore/internal/closing"
)

func newCloseCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close income and expense balances into equity",
	}
	cmd.AddCommand(newCloseEntryCommand(a), newClosePeriodCommand(a))
	return cmd
}

func newCloseEntryCommand(a *app) *cobra.Command {
	var from, to, date, equity string
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Post a closing entry for a date window",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			req := closing.ClosingRequest{EquityAccount: firstNonEmpty(equity, a.cfg.Defaults.EquityAccount)}
			var err error
			if req.From, err = optionalDate(from); err != nil {
				return err
			}
			if req.To, err = optionalDate(to); err != nil {
				return err
			}
			if date != "" {
				if req.Date, err = parseDate(date); err != nil {
					return err
				}
			} else if req.To == nil {
				req.Date = time.Now().UTC()
			}

			res, err := a.closing.CreateClosingEntry(cmd.Context(), a.tenant(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		}),
	}
	cmd.Flags().StringVar(&from, "from", "", "first date, inclusive")
	cmd.Flags().StringVar(&to, "to", "", "last date, inclusive")
	cmd.Flags().StringVar(&date, "date", "", "entry date (default --to, else today)")
	cmd.Flags().StringVar(&equity, "equity", "", "equity account receiving net income")
	return cmd
}

func newClosePeriodCommand(a *app) *cobra.Command {
	var equity string
	cmd := &cobra.Command{
		Use:   "period <period-id>",
		Short: "Post the closing entry for a period, then mark it closed",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			res, err := a.closing.ClosePeriod(cmd.Context(), a.tenant(), args[0], firstNonEmpty(equity, a.cfg.Defaults.EquityAccount))
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		}),
	}
	cmd.Flags().StringVar(&equity, "equity", "", "equity account receiving net income")
	return cmd
}
