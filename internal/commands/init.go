package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/fincore/internal/config"
	"github.com/cleared-dev/fincore/internal/logger"
	"github.com/cleared-dev/fincore/internal/model"
)

type initOptions struct {
	driver    string
	dir       string
	template  string
	currency  string
	valuation string
}

func newInitCommand(a *app) *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file and set up the tenant",
		Long: "Writes fincore.yaml when it does not exist yet, then seeds the tenant's chart\n" +
			"of accounts from a template and records its currency and valuation method.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := writeConfigIfMissing(a, opts); err != nil {
				return err
			}
			return a.run(func(cmd *cobra.Command, args []string) error {
				return runInit(cmd, a, opts)
			})(cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.driver, "driver", "", "store driver for a new config (memory, file, sqlite, postgres, gcs)")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "data directory for a new config")
	cmd.Flags().StringVar(&opts.template, "template", "", "chart of accounts template")
	cmd.Flags().StringVar(&opts.currency, "currency", "", "tenant default currency")
	cmd.Flags().StringVar(&opts.valuation, "valuation", "", "inventory valuation method (FIFO, LIFO, AVG)")

	return cmd
}

func writeConfigIfMissing(a *app, opts initOptions) error {
	if _, err := os.Stat(a.configPath); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	cfg := config.Default()
	if a.tenantFlag != "" {
		cfg.Tenant = a.tenantFlag
	}
	if opts.driver != "" {
		cfg.Store.Driver = opts.driver
	}
	if opts.dir != "" {
		cfg.Store.Dir = opts.dir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(a.configPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

type initResult struct {
	Tenant          string         `json:"tenant"`
	Template        string         `json:"template"`
	AccountsCreated int            `json:"accountsCreated"`
	Settings        model.Settings `json:"settings"`
}

func runInit(cmd *cobra.Command, a *app, opts initOptions) error {
	ctx := cmd.Context()
	tenant := a.tenant()

	currency := strings.ToUpper(firstNonEmpty(opts.currency, a.cfg.Defaults.Currency))
	method := model.ValuationMethod(strings.ToUpper(firstNonEmpty(opts.valuation, a.cfg.Defaults.ValuationMethod)))
	if !method.Valid() {
		return model.Invalid("valuation", "unknown valuation method %q", method)
	}

	template := firstNonEmpty(opts.template, a.cfg.Defaults.ChartTemplate)
	created, err := a.accounts.SeedTemplate(ctx, tenant, template)
	if err != nil {
		return err
	}

	var settings model.Settings
	err = a.store.Update(ctx, tenant, func(data *model.FinanceData) error {
		if currency != "" {
			data.Settings.DefaultCurrency = currency
		}
		data.Settings.ValuationMethod = method
		settings = data.Settings
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	log := logger.ForTenant(ctx, tenant)
	log.Info().Str("template", template).Int("accounts", created).Msg("tenant initialised")
	return printJSON(cmd, initResult{Tenant: tenant, Template: template, AccountsCreated: created, Settings: settings})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
