package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/fincore/internal/accounts"
	"github.com/cleared-dev/fincore/internal/model"
)

func newAccountCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Chart of accounts",
	}
	cmd.AddCommand(
		newAccountSeedCommand(a),
		newAccountUpsertCommand(a),
		newAccountListCommand(a),
		newAccountExportCommand(a),
		newAccountImportCommand(a),
	)
	return cmd
}

func newAccountSeedCommand(a *app) *cobra.Command {
	var template string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Install a template chart when the tenant has no accounts",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			name := firstNonEmpty(template, a.cfg.Defaults.ChartTemplate)
			n, err := a.accounts.SeedTemplate(cmd.Context(), a.tenant(), name)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"template": name, "accountsCreated": n})
		}),
	}
	cmd.Flags().StringVar(&template, "template", "", "template name ("+strings.Join(accounts.TemplateNames(), ", ")+")")
	return cmd
}

func newAccountUpsertCommand(a *app) *cobra.Command {
	var in accounts.AccountInput
	var accountType string
	var tags []string

	cmd := &cobra.Command{
		Use:   "upsert",
		Short: "Create or update an account",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if accountType != "" {
				t, ok := model.ParseAccountType(accountType)
				if !ok {
					return model.Invalid("type", "unknown account type %q", accountType)
				}
				in.Type = t
			}
			in.Tags = tags
			acct, err := a.accounts.UpsertAccount(cmd.Context(), a.tenant(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd, acct)
		}),
	}
	cmd.Flags().StringVar(&in.Code, "code", "", "account code, e.g. Expense:Software (required)")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&accountType, "type", "", "account type; derived from the code prefix when omitted")
	cmd.Flags().StringVar(&in.ParentCode, "parent", "", "parent account code")
	cmd.Flags().StringVar(&in.Currency, "currency", "", "account currency")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag (repeatable)")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newAccountListCommand(a *app) *cobra.Command {
	var accountType string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			list, err := a.accounts.List(cmd.Context(), a.tenant())
			if err != nil {
				return err
			}
			if accountType != "" {
				t, ok := model.ParseAccountType(accountType)
				if !ok {
					return model.Invalid("type", "unknown account type %q", accountType)
				}
				list = accounts.NewChart(list).ByType(t)
			}
			return printJSON(cmd, list)
		}),
	}
	cmd.Flags().StringVar(&accountType, "type", "", "only accounts of this type")
	return cmd
}

func newAccountExportCommand(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the chart of accounts as CSV",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			list, err := a.accounts.List(cmd.Context(), a.tenant())
			if err != nil {
				return err
			}
			return withOutput(cmd, out, func(w io.Writer) error {
				return accounts.WriteAccounts(w, list)
			})
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newAccountImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Create or update accounts from CSV",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			inputs, err := accounts.ReadAccounts(f)
			if err != nil {
				return err
			}
			n, err := a.accounts.Import(cmd.Context(), a.tenant(), inputs)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"accountsSaved": n})
		}),
	}
}

// withOutput runs fn against the named file, or the command output when path is empty.
func withOutput(cmd *cobra.Command, path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
