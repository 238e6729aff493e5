package commands

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/fincore/internal/journal"
	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/tax"
)

func newTaxCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tax",
		Short: "Tax profiles, calculations and returns",
	}
	cmd.AddCommand(
		newTaxProfileCommand(a),
		newTaxProfilesCommand(a),
		newTaxCalcCommand(a),
		newTaxReportCommand(a),
		newTaxReturnCommand(a),
	)
	return cmd
}

func newTaxProfileCommand(a *app) *cobra.Command {
	var (
		name, jurisdiction string
		rates              []string
	)
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Create or replace a tax profile",
		Example: `  fincore tax profile --name AU --jurisdiction AU \
    --rate GST=10:inclusive --rate FREE=0`,
		Args: cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			p := model.TaxProfile{Name: name, Jurisdiction: jurisdiction}
			for _, r := range rates {
				rate, err := parseRate(r)
				if err != nil {
					return err
				}
				p.Rates = append(p.Rates, rate)
			}
			saved, err := a.tax.UpsertProfile(cmd.Context(), a.tenant(), p)
			if err != nil {
				return err
			}
			return printJSON(cmd, saved)
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "profile name (required)")
	cmd.Flags().StringVar(&jurisdiction, "jurisdiction", "", "jurisdiction code")
	cmd.Flags().StringArrayVar(&rates, "rate", nil, "NAME=RATE[:inclusive], repeatable")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// parseRate reads NAME=RATE[:inclusive].
func parseRate(s string) (model.TaxRate, error) {
	name, value, err := splitPair("rate", s)
	if err != nil {
		return model.TaxRate{}, err
	}
	var r model.TaxRate
	r.Name = name
	if v, flag, ok := strings.Cut(value, ":"); ok {
		if !strings.EqualFold(flag, "inclusive") {
			return model.TaxRate{}, model.Invalid("rate", "unknown rate option %q", flag)
		}
		r.Inclusive = true
		value = v
	}
	if r.Rate, err = parseAmount("rate", value); err != nil {
		return model.TaxRate{}, err
	}
	return r, nil
}

func newTaxProfilesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List tax profiles",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			list, err := a.tax.Profiles(cmd.Context(), a.tenant())
			if err != nil {
				return err
			}
			return printJSON(cmd, list)
		}),
	}
}

type calcResult struct {
	Lines    []tax.CalculationLine `json:"lines"`
	Summary  tax.Summary           `json:"summary"`
	Insights []string              `json:"insights"`
}

func newTaxCalcCommand(a *app) *cobra.Command {
	var lines []string
	cmd := &cobra.Command{
		Use:     "calc",
		Short:   "Calculate tax for ad-hoc amounts",
		Example: `  fincore tax calc --line GST:10:110:inclusive --line EXPORT:0:500`,
		Args:    cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			inputs := make([]tax.LineInput, 0, len(lines))
			for _, l := range lines {
				in, err := parseTaxLine(l)
				if err != nil {
					return err
				}
				inputs = append(inputs, in)
			}
			if len(inputs) == 0 {
				return model.Invalid("line", "at least one --line is required")
			}
			rows, err := a.journal.Ledger(cmd.Context(), a.tenant(), journal.LedgerFilter{})
			if err != nil {
				return err
			}
			calc := tax.CalculateTaxLines(inputs)
			return printJSON(cmd, calcResult{
				Lines:    calc,
				Summary:  tax.SummarizeTax(calc),
				Insights: tax.GenerateTaxInsights(calc, rows),
			})
		}),
	}
	cmd.Flags().StringArrayVar(&lines, "line", nil, "CATEGORY:RATE:AMOUNT[:inclusive], repeatable")
	return cmd
}

// parseTaxLine reads CATEGORY:RATE:AMOUNT[:inclusive].
func parseTaxLine(s string) (tax.LineInput, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return tax.LineInput{}, model.Invalid("line", "expected CATEGORY:RATE:AMOUNT[:inclusive], got %q", s)
	}
	in := tax.LineInput{Category: strings.TrimSpace(parts[0])}
	var err error
	if in.Rate, err = parseAmount("rate", parts[1]); err != nil {
		return tax.LineInput{}, err
	}
	if in.Rate.IsNegative() {
		return tax.LineInput{}, model.Invalid("rate", "rate must not be negative, got %s", in.Rate)
	}
	if in.Amount, err = parseAmount("amount", parts[2]); err != nil {
		return tax.LineInput{}, err
	}
	if len(parts) == 4 {
		if !strings.EqualFold(parts[3], "inclusive") {
			return tax.LineInput{}, model.Invalid("line", "unknown line option %q", parts[3])
		}
		in.Inclusive = true
	}
	return in, nil
}

func newTaxReportCommand(a *app) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise tax by category over a window",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			f, t, err := window(from, to)
			if err != nil {
				return err
			}
			r, err := a.tax.Report(cmd.Context(), a.tenant(), f, t)
			if err != nil {
				return err
			}
			return printJSON(cmd, r)
		}),
	}
	cmd.Flags().StringVar(&from, "from", "", "first date, inclusive")
	cmd.Flags().StringVar(&to, "to", "", "last date, inclusive")
	return cmd
}

func newTaxReturnCommand(a *app) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "return",
		Short: "Prepare a tax return draft for a period",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			f, t, err := window(from, to)
			if err != nil {
				return err
			}
			r, err := a.tax.Return(cmd.Context(), a.tenant(), f, t)
			if err != nil {
				return err
			}
			return printJSON(cmd, r)
		}),
	}
	cmd.Flags().StringVar(&from, "from", "", "period start")
	cmd.Flags().StringVar(&to, "to", "", "period end")
	return cmd
}

func window(from, to string) (*time.Time, *time.Time, error) {
	f, err := optionalDate(from)
	if err != nil {
		return nil, nil, err
	}
	t, err := optionalDate(to)
	if err != nil {
		return nil, nil, err
	}
	return f, t, nil
}
