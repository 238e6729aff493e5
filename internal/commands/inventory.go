package commands

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/fincore/internal/inventory"
	"github.com/cleared-dev/fincore/internal/model"
)

func newInventoryCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "inventory",
		Aliases: []string{"inv"},
		Short:   "Stock items, movements and valuation",
	}
	cmd.AddCommand(
		newInventoryItemCommand(a),
		newMovementCommand(a, model.InventoryIn, "Receive stock at a unit cost"),
		newMovementCommand(a, model.InventoryOut, "Issue stock using the tenant's valuation method"),
		newMovementCommand(a, model.InventoryAdjust, "Adjust quantity on hand by a signed delta"),
		newInventoryListCommand(a),
		newInventoryLotsCommand(a),
		newInventoryTransactionsCommand(a),
		newInventoryValuationCommand(a),
		newInventoryMethodCommand(a),
	)
	return cmd
}

func newInventoryItemCommand(a *app) *cobra.Command {
	var in inventory.ItemInput
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Create or update an item",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			item, err := a.inventory.UpsertItem(cmd.Context(), a.tenant(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd, item)
		}),
	}
	cmd.Flags().StringVar(&in.SKU, "sku", "", "stock keeping unit (required)")
	cmd.Flags().StringVar(&in.Name, "name", "", "item name")
	cmd.Flags().StringVar(&in.UOM, "uom", "", "unit of measure")
	cmd.Flags().StringVar(&in.Currency, "currency", "", "cost currency (default tenant currency)")
	_ = cmd.MarkFlagRequired("sku")
	return cmd
}

func newMovementCommand(a *app, typ model.InventoryTxType, short string) *cobra.Command {
	var sku, qty, cost, date string
	cmd := &cobra.Command{
		Use:   strings.ToLower(string(typ)),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			in := inventory.TransactionInput{SKU: sku, Type: typ}
			var err error
			if in.Quantity, err = parseAmount("quantity", qty); err != nil {
				return err
			}
			if cost != "" {
				if in.UnitCost, err = parseAmount("unitCost", cost); err != nil {
					return err
				}
			}
			if in.Date, err = movementDate(date); err != nil {
				return err
			}
			item, err := a.inventory.Apply(cmd.Context(), a.tenant(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd, item)
		}),
	}
	cmd.Flags().StringVar(&sku, "sku", "", "stock keeping unit (required)")
	cmd.Flags().StringVar(&qty, "qty", "", "quantity (required)")
	cmd.Flags().StringVar(&date, "date", "", "movement date (default now)")
	if typ == model.InventoryIn {
		cmd.Flags().StringVar(&cost, "cost", "", "unit cost (required)")
		_ = cmd.MarkFlagRequired("cost")
	}
	_ = cmd.MarkFlagRequired("sku")
	_ = cmd.MarkFlagRequired("qty")
	return cmd
}

func movementDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return parseDate(s)
}

func newInventoryListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List items by SKU",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			items, err := a.inventory.Items(cmd.Context(), a.tenant())
			if err != nil {
				return err
			}
			return printJSON(cmd, items)
		}),
	}
}

func newInventoryLotsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lots <sku>",
		Short: "List remaining receipt lots for an item",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			lots, err := a.inventory.Lots(cmd.Context(), a.tenant(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, lots)
		}),
	}
}

func newInventoryTransactionsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transactions [sku]",
		Short: "List stock movements, optionally for one item",
		Args:  cobra.MaximumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			var sku string
			if len(args) == 1 {
				sku = args[0]
			}
			txs, err := a.inventory.Transactions(cmd.Context(), a.tenant(), sku)
			if err != nil {
				return err
			}
			return printJSON(cmd, txs)
		}),
	}
}

func newInventoryValuationCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "valuation",
		Short: "Value stock on hand",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			v, err := a.inventory.Valuation(cmd.Context(), a.tenant())
			if err != nil {
				return err
			}
			return printJSON(cmd, v)
		}),
	}
}

func newInventoryMethodCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "method <FIFO|LIFO|AVG>",
		Short: "Set the tenant's valuation method",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			method := model.ValuationMethod(strings.ToUpper(args[0]))
			if err := a.inventory.SetValuationMethod(cmd.Context(), a.tenant(), method); err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"valuationMethod": method})
		}),
	}
}

