// Package commands implements the fincore command line.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/fincore/internal/accounts"
	"github.com/cleared-dev/fincore/internal/budgets"
	"github.com/cleared-dev/fincore/internal/buildinfo"
	"github.com/cleared-dev/fincore/internal/closing"
	"github.com/cleared-dev/fincore/internal/config"
	"github.com/cleared-dev/fincore/internal/inventory"
	"github.com/cleared-dev/fincore/internal/journal"
	"github.com/cleared-dev/fincore/internal/logger"
	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/periods"
	"github.com/cleared-dev/fincore/internal/statements"
	"github.com/cleared-dev/fincore/internal/store"
	"github.com/cleared-dev/fincore/internal/tax"
)

// app carries the resolved configuration and services of one invocation.
type app struct {
	configPath string
	tenantFlag string
	logLevel   string

	cfg        *config.Config
	store      store.Store
	closeStore func() error

	accounts   *accounts.Service
	journal    *journal.Service
	periods    *periods.Service
	statements *statements.Service
	closing    *closing.Service
	inventory  *inventory.Service
	tax        *tax.Service
	budgets    *budgets.Service
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "fincore",
		Short:   "Multi-tenant small business accounting core",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.FileName, "config file")
	rootCmd.PersistentFlags().StringVar(&a.tenantFlag, "tenant", "", "tenant id (overrides config)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (overrides config)")

	rootCmd.AddCommand(
		newInitCommand(a),
		newAccountCommand(a),
		newJournalCommand(a),
		newPeriodCommand(a),
		newReportCommand(a),
		newCloseCommand(a),
		newInventoryCommand(a),
		newTaxCommand(a),
		newBudgetCommand(a),
	)

	return rootCmd
}

// open resolves configuration, installs the logger and opens the store.
func (a *app) open(cmd *cobra.Command) error {
	if a.store != nil {
		return nil
	}

	cfg, err := config.Resolve(a.configPath)
	if err != nil {
		return err
	}
	if a.tenantFlag != "" {
		if err := store.ValidateTenantID(a.tenantFlag); err != nil {
			return err
		}
		cfg.Tenant = a.tenantFlag
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg

	log := logger.NewWithOptions(logger.Options{Level: cfg.Log.Level, Console: cfg.Log.Console, Out: cmd.ErrOrStderr()})
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.WithContext(ctx, log))

	s, closeFn, err := store.Open(cmd.Context(), cfg.StoreOptions())
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
	}
	a.store, a.closeStore = s, closeFn

	a.accounts = accounts.NewService(s)
	a.journal = journal.NewService(s)
	a.periods = periods.NewService(s)
	a.statements = statements.NewService(s)
	a.closing = closing.NewService(s)
	a.inventory = inventory.NewService(s)
	a.tax = tax.NewService(s)
	a.budgets = budgets.NewService(s)

	log.Debug().Str("tenant", cfg.Tenant).Str("driver", cfg.Store.Driver).Msg("store opened")
	return nil
}

func (a *app) close() error {
	if a.closeStore == nil {
		return nil
	}
	err := a.closeStore()
	a.store, a.closeStore = nil, nil
	return err
}

func (a *app) tenant() string {
	return a.cfg.Tenant
}

// run wraps a command body so that it executes with an open app. The store
// is closed when the body returns, whether or not it failed.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		if err := a.open(cmd); err != nil {
			return err
		}
		defer func() {
			if cerr := a.close(); err == nil {
				err = cerr
			}
		}()
		return fn(cmd, args)
	}
}

// printJSON writes v as indented JSON to the command output.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseDate accepts any layout dateparse understands and returns the UTC day.
func parseDate(s string) (time.Time, error) {
	t, err := dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, model.Invalid("date", "cannot parse %q", s)
	}
	return model.Day(t), nil
}

// optionalDate parses s, returning nil when it is empty.
func optionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, model.Invalid(field, "cannot parse amount %q", s)
	}
	return d, nil
}

// splitPair splits "key=value" on the last '='.
func splitPair(field, s string) (string, string, error) {
	i := strings.LastIndex(s, "=")
	if i <= 0 || i == len(s)-1 {
		return "", "", model.Invalid(field, "expected KEY=VALUE, got %q", s)
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:]), nil
}

// Exit codes by error class.
const (
	ExitOK = iota
	ExitError
	ExitValidation
	ExitNotFound
	ExitPeriodClosed
	ExitInsufficientStock
	ExitConflict
)

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, model.ErrValidation):
		return ExitValidation
	case errors.Is(err, model.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, model.ErrPeriodClosed):
		return ExitPeriodClosed
	case errors.Is(err, model.ErrInsufficientStock):
		return ExitInsufficientStock
	case errors.Is(err, store.ErrConflict):
		return ExitConflict
	}
	return ExitError
}
