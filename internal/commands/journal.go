package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/fincore/internal/importer"
	"github.com/cleared-dev/fincore/internal/journal"
	"github.com/cleared-dev/fincore/internal/model"
)

func newJournalCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Post journals and read the ledger",
	}
	cmd.AddCommand(
		newJournalPostCommand(a),
		newJournalListCommand(a),
		newJournalLedgerCommand(a),
		newJournalImportCommand(a),
		newJournalImportBankCommand(a),
		newJournalExportCommand(a),
	)
	return cmd
}

func newJournalPostCommand(a *app) *cobra.Command {
	var (
		date        string
		in          journal.JournalInput
		debits      []string
		credits     []string
		taxCategory string
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a balanced journal entry",
		Example: "  fincore journal post --date 2025-01-15 --desc \"January rent\" \\\n" +
			"    --debit Expense:Rent=1200 --credit Asset:Cash=1200",
		Args: cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			d, err := parseDate(date)
			if err != nil {
				return err
			}
			in.Date = d

			lines, err := flagLines(debits, credits, taxCategory)
			if err != nil {
				return err
			}
			in.Lines = lines

			res, err := a.journal.PostJournal(cmd.Context(), a.tenant(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		}),
	}
	cmd.Flags().StringVar(&date, "date", "", "entry date (required)")
	cmd.Flags().StringVar(&in.Description, "desc", "", "description")
	cmd.Flags().StringVar(&in.Currency, "currency", "", "entry currency")
	cmd.Flags().StringVar(&in.ReferenceID, "ref", "", "external reference")
	cmd.Flags().StringVar(&in.PostedBy, "by", "", "who posted the entry")
	cmd.Flags().StringArrayVar(&debits, "debit", nil, "ACCOUNT=AMOUNT debit line (repeatable)")
	cmd.Flags().StringArrayVar(&credits, "credit", nil, "ACCOUNT=AMOUNT credit line (repeatable)")
	cmd.Flags().StringVar(&taxCategory, "tax-category", "", "tax category applied to income and expense lines")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

// flagLines builds journal lines from ACCOUNT=AMOUNT flag values.
func flagLines(debits, credits []string, taxCategory string) ([]model.JournalLine, error) {
	var lines []model.JournalLine
	for _, v := range debits {
		account, amount, err := splitPair("debit", v)
		if err != nil {
			return nil, err
		}
		d, err := parseAmount("debit", amount)
		if err != nil {
			return nil, err
		}
		lines = append(lines, model.JournalLine{Account: account, Debit: d})
	}
	for _, v := range credits {
		account, amount, err := splitPair("credit", v)
		if err != nil {
			return nil, err
		}
		c, err := parseAmount("credit", amount)
		if err != nil {
			return nil, err
		}
		lines = append(lines, model.JournalLine{Account: account, Credit: c})
	}
	for i := range lines {
		switch model.TypeFromCode(lines[i].Account) {
		case model.AccountTypeIncome, model.AccountTypeExpense:
			lines[i].TaxCategory = taxCategory
		}
	}
	return lines, nil
}

func newJournalListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List journals, newest first",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			journals, err := a.journal.Journals(cmd.Context(), a.tenant())
			if err != nil {
				return err
			}
			return printJSON(cmd, journals)
		}),
	}
}

type ledgerFlags struct {
	from, to    string
	account     string
	taxCategory string
	journalID   string
}

func (f *ledgerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "first date, inclusive")
	cmd.Flags().StringVar(&f.to, "to", "", "last date, inclusive")
	cmd.Flags().StringVar(&f.account, "account", "", "account code prefix")
	cmd.Flags().StringVar(&f.taxCategory, "tax-category", "", "tax category")
	cmd.Flags().StringVar(&f.journalID, "journal", "", "journal id")
}

func (f *ledgerFlags) filter() (journal.LedgerFilter, error) {
	from, to, err := window(f.from, f.to)
	if err != nil {
		return journal.LedgerFilter{}, err
	}
	return journal.LedgerFilter{
		From:          from,
		To:            to,
		AccountPrefix: f.account,
		TaxCategory:   f.taxCategory,
		JournalID:     f.journalID,
	}, nil
}

func newJournalLedgerCommand(a *app) *cobra.Command {
	var flags ledgerFlags
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "List ledger rows, newest first",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			rows, err := a.journal.Ledger(cmd.Context(), a.tenant(), filter)
			if err != nil {
				return err
			}
			return printJSON(cmd, rows)
		}),
	}
	flags.register(cmd)
	return cmd
}

func newJournalExportCommand(a *app) *cobra.Command {
	var (
		flags ledgerFlags
		out   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write ledger rows as CSV",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			rows, err := a.journal.Ledger(cmd.Context(), a.tenant(), filter)
			if err != nil {
				return err
			}
			return withOutput(cmd, out, func(w io.Writer) error {
				return journal.WriteLedger(w, rows)
			})
		}),
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newJournalImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Post every journal of a CSV file, all or nothing",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			inputs, err := journal.ReadJournals(f)
			if err != nil {
				return err
			}
			results, err := a.journal.ImportJournals(cmd.Context(), a.tenant(), inputs)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"journalsPosted": len(results)})
		}),
	}
}

func newJournalImportBankCommand(a *app) *cobra.Command {
	var format, dir string

	cmd := &cobra.Command{
		Use:   "import-bank [file.csv]",
		Short: "Post bank statement rows as journals",
		Long: "Parses a bank CSV export and posts one journal per row, using the import\n" +
			"mapping from the config. With --dir every CSV in the directory is imported\n" +
			"and moved to its processed/ subdirectory.",
		Args: cobra.MaximumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			parser := importer.DefaultRegistry().Get(format)
			if parser == nil {
				return model.Invalid("format", "unknown bank format %q", format)
			}

			var files []importer.FileInfo
			switch {
			case len(args) == 1:
				files = []importer.FileInfo{{Name: args[0], Path: args[0]}}
			case dir != "":
				found, err := importer.Scan(dir)
				if err != nil {
					return err
				}
				files = found
			default:
				return model.Invalid("file", "a file argument or --dir is required")
			}

			posted := 0
			for _, file := range files {
				n, err := importBankFile(cmd, a, parser, file.Path)
				if err != nil {
					return fmt.Errorf("%s: %w", file.Name, err)
				}
				posted += n
				if dir != "" && len(args) == 0 {
					if err := importer.MarkProcessed(dir, file.Name); err != nil {
						return err
					}
				}
			}
			return printJSON(cmd, map[string]any{"files": len(files), "journalsPosted": posted})
		}),
	}
	cmd.Flags().StringVar(&format, "format", "chase", "bank export format (chase, generic)")
	cmd.Flags().StringVar(&dir, "dir", "", "import every CSV in this directory")
	return cmd
}

func importBankFile(cmd *cobra.Command, a *app, parser importer.Parser, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	txns, err := parser.Parse(f)
	if err != nil {
		return 0, err
	}
	results, err := a.journal.ImportJournals(cmd.Context(), a.tenant(), importer.ToJournals(txns, a.cfg.Import))
	if err != nil {
		return 0, err
	}
	return len(results), nil
}
