// Package inventory tracks stock per SKU and costs outbound movements
// against receipt lots.
package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/id"
	"github.com/cleared-dev/fincore/internal/logger"
	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/store"
)

// ItemInput holds the descriptive fields of an item.
type ItemInput struct {
	SKU      string
	Name     string
	UOM      string
	Currency string
}

// TransactionInput is one stock movement. Quantity is positive for IN and
// OUT and a signed delta for ADJUST. UnitCost is required for IN only.
type TransactionInput struct {
	SKU      string
	Type     model.InventoryTxType
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
	Date     time.Time
}

// ItemValue is the stock value of one item.
type ItemValue struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"averageCost"`
	Value       decimal.Decimal `json:"value"`
}

// Valuation is the value of all stock on hand at moving average cost.
type Valuation struct {
	Method model.ValuationMethod `json:"method"`
	Items  []ItemValue           `json:"items"`
	Total  decimal.Decimal       `json:"total"`
}

// Service applies stock movements to a tenant's inventory.
type Service struct {
	store store.Store
	now   func() time.Time
}

// NewService creates an inventory Service.
func NewService(s store.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// UpsertItem creates an item or updates its descriptive fields.
func (s *Service) UpsertItem(ctx context.Context, tenantID string, in ItemInput) (model.InventoryItem, error) {
	var item model.InventoryItem
	err := s.store.Update(ctx, tenantID, func(data *model.FinanceData) error {
		it, err := UpsertItem(data, in, s.now())
		item = it
		return err
	})
	if err != nil {
		return model.InventoryItem{}, fmt.Errorf("saving item: %w", err)
	}
	return item, nil
}

// Apply records a stock movement and returns the updated item.
func (s *Service) Apply(ctx context.Context, tenantID string, in TransactionInput) (model.InventoryItem, error) {
	log := logger.ForTenant(ctx, tenantID)

	var item model.InventoryItem
	var tx model.InventoryTransaction
	err := s.store.Update(ctx, tenantID, func(data *model.FinanceData) error {
		var err error
		item, tx, err = Apply(data, in, s.now())
		return err
	})
	if err != nil {
		log.Warn().Err(err).Str("sku", in.SKU).Str("type", string(in.Type)).Msg("inventory movement rejected")
		return model.InventoryItem{}, fmt.Errorf("applying %s %s: %w", in.Type, in.SKU, err)
	}

	log.Info().
		Str("sku", item.SKU).
		Str("type", string(tx.Type)).
		Str("quantity", tx.Quantity.String()).
		Str("on_hand", item.QuantityOnHand.String()).
		Msg("inventory movement recorded")
	return item, nil
}

// Items returns the tenant's items ordered by SKU.
func (s *Service) Items(ctx context.Context, tenantID string) ([]model.InventoryItem, error) {
	data, err := s.store.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := append([]model.InventoryItem(nil), data.InventoryItems...)
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

// Lots returns the open lots of sku in receipt order.
func (s *Service) Lots(ctx context.Context, tenantID, sku string) ([]model.InventoryLot, error) {
	data, err := s.store.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	mine, _ := lotsFor(data.InventoryLots, sku)
	sort.SliceStable(mine, func(i, j int) bool { return mine[i].ReceivedAt.Before(mine[j].ReceivedAt) })
	return mine, nil
}

// Transactions returns the movement log, optionally limited to one SKU.
func (s *Service) Transactions(ctx context.Context, tenantID, sku string) ([]model.InventoryTransaction, error) {
	data, err := s.store.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	var out []model.InventoryTransaction
	for _, tx := range data.InventoryTransactions {
		if sku == "" || tx.SKU == sku {
			out = append(out, tx)
		}
	}
	return out, nil
}

// Valuation values every item at quantity on hand times average cost.
func (s *Service) Valuation(ctx context.Context, tenantID string) (Valuation, error) {
	data, err := s.store.Load(ctx, tenantID)
	if err != nil {
		return Valuation{}, err
	}
	return Value(data), nil
}

// SetValuationMethod changes how future OUT movements are costed.
func (s *Service) SetValuationMethod(ctx context.Context, tenantID string, method model.ValuationMethod) error {
	method = model.ValuationMethod(strings.ToUpper(string(method)))
	if !method.Valid() {
		return model.Invalid("method", "unknown valuation method %q", method)
	}
	err := s.store.Update(ctx, tenantID, func(data *model.FinanceData) error {
		data.Settings.ValuationMethod = method
		return nil
	})
	if err != nil {
		return fmt.Errorf("setting valuation method: %w", err)
	}
	log := logger.ForTenant(ctx, tenantID)
	log.Info().Str("method", string(method)).Msg("valuation method changed")
	return nil
}

// UpsertItem creates or updates an item in data.
func UpsertItem(data *model.FinanceData, in ItemInput, now time.Time) (model.InventoryItem, error) {
	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		return model.InventoryItem{}, model.Invalid("sku", "SKU is required")
	}
	if i := data.FindItem(sku); i >= 0 {
		it := &data.InventoryItems[i]
		if in.Name != "" {
			it.Name = in.Name
		}
		if in.UOM != "" {
			it.UOM = in.UOM
		}
		if in.Currency != "" {
			it.Currency = in.Currency
		}
		it.UpdatedAt = now
		return *it, nil
	}

	it := newItem(data, sku, now)
	if in.Name != "" {
		it.Name = in.Name
	}
	if in.UOM != "" {
		it.UOM = in.UOM
	}
	if in.Currency != "" {
		it.Currency = in.Currency
	}
	data.InventoryItems = append(data.InventoryItems, it)
	return it, nil
}

func newItem(data *model.FinanceData, sku string, now time.Time) model.InventoryItem {
	return model.InventoryItem{
		SKU:            sku,
		Name:           sku,
		UOM:            "each",
		QuantityOnHand: decimal.Zero,
		AverageCost:    decimal.Zero,
		Currency:       data.Settings.DefaultCurrency,
		UpdatedAt:      now,
	}
}

func validate(in TransactionInput) error {
	if strings.TrimSpace(in.SKU) == "" {
		return model.Invalid("sku", "SKU is required")
	}
	switch in.Type {
	case model.InventoryIn:
		if !in.Quantity.IsPositive() {
			return model.Invalid("quantity", "quantity must be positive")
		}
		if !in.UnitCost.IsPositive() {
			return model.Invalid("unitCost", "unit cost must be positive for IN")
		}
	case model.InventoryOut:
		if !in.Quantity.IsPositive() {
			return model.Invalid("quantity", "quantity must be positive")
		}
	case model.InventoryAdjust:
		if in.Quantity.IsZero() {
			return model.Invalid("quantity", "adjustment must be non-zero")
		}
	default:
		return model.Invalid("type", "unknown movement type %q", in.Type)
	}
	return nil
}

// Apply validates and applies one movement to data. On error data is unchanged.
func Apply(data *model.FinanceData, in TransactionInput, now time.Time) (model.InventoryItem, model.InventoryTransaction, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Type = model.InventoryTxType(strings.ToUpper(string(in.Type)))
	if err := validate(in); err != nil {
		return model.InventoryItem{}, model.InventoryTransaction{}, err
	}
	if in.Date.IsZero() {
		in.Date = now
	}

	i := data.FindItem(in.SKU)
	if i < 0 {
		if in.Type != model.InventoryIn {
			return model.InventoryItem{}, model.InventoryTransaction{}, &model.NotFoundError{Kind: "item", ID: in.SKU}
		}
		data.InventoryItems = append(data.InventoryItems, newItem(data, in.SKU, now))
		i = len(data.InventoryItems) - 1
	}
	item := data.InventoryItems[i]

	tx := model.InventoryTransaction{
		ID:         id.New(),
		SKU:        in.SKU,
		Type:       in.Type,
		Quantity:   in.Quantity,
		Date:       in.Date,
		RecordedAt: now,
	}

	switch in.Type {
	case model.InventoryIn:
		lot := model.InventoryLot{
			ID:         id.New(),
			SKU:        in.SKU,
			Quantity:   in.Quantity,
			UnitCost:   in.UnitCost,
			ReceivedAt: in.Date,
		}
		item.AverageCost = blend(item.AverageCost, item.QuantityOnHand, in.UnitCost, in.Quantity)
		item.QuantityOnHand = item.QuantityOnHand.Add(in.Quantity)
		data.InventoryLots = append(data.InventoryLots, lot)
		tx.UnitCost = in.UnitCost

	case model.InventoryOut:
		if in.Quantity.GreaterThan(item.QuantityOnHand) {
			return model.InventoryItem{}, model.InventoryTransaction{},
				&model.InsufficientStockError{SKU: in.SKU, Requested: in.Quantity, Available: item.QuantityOnHand}
		}
		method := data.Settings.ValuationMethod
		if method == model.ValuationAVG {
			tx.CostOfGoods = model.Round2(in.Quantity.Mul(item.AverageCost))
		} else {
			mine, others := lotsFor(data.InventoryLots, in.SKU)
			remaining, consumed, err := Consume(mine, in.Quantity, method)
			if err != nil {
				return model.InventoryItem{}, model.InventoryTransaction{}, err
			}
			cost := decimal.Zero
			for _, c := range consumed {
				cost = cost.Add(c.Cost())
			}
			tx.CostOfGoods = model.Round2(cost)
			data.InventoryLots = append(others, remaining...)
		}
		item.QuantityOnHand = item.QuantityOnHand.Sub(in.Quantity)
		if !tx.Quantity.IsZero() {
			tx.UnitCost = model.Round2(tx.CostOfGoods.Div(tx.Quantity))
		}

	case model.InventoryAdjust:
		next := item.QuantityOnHand.Add(in.Quantity)
		if next.IsNegative() {
			return model.InventoryItem{}, model.InventoryTransaction{},
				&model.InsufficientStockError{SKU: in.SKU, Requested: in.Quantity.Neg(), Available: item.QuantityOnHand}
		}
		item.QuantityOnHand = next
	}

	item.UpdatedAt = now
	data.InventoryItems[i] = item
	data.InventoryTransactions = append(data.InventoryTransactions, tx)
	return item, tx, nil
}

// blend returns the weighted average of the current cost basis and a
// receipt, rounded to cents.
func blend(avg, onHand, unitCost, qty decimal.Decimal) decimal.Decimal {
	if !onHand.IsPositive() {
		return model.Round2(unitCost)
	}
	total := onHand.Add(qty)
	return model.Round2(avg.Mul(onHand).Add(unitCost.Mul(qty)).Div(total))
}

// Value computes the valuation of data's inventory.
func Value(data *model.FinanceData) Valuation {
	v := Valuation{Method: data.Settings.ValuationMethod, Items: make([]ItemValue, 0, len(data.InventoryItems))}
	total := decimal.Zero
	for _, it := range data.InventoryItems {
		value := model.Round2(it.QuantityOnHand.Mul(it.AverageCost))
		v.Items = append(v.Items, ItemValue{
			SKU:         it.SKU,
			Name:        it.Name,
			Quantity:    it.QuantityOnHand,
			AverageCost: it.AverageCost,
			Value:       value,
		})
		total = total.Add(value)
	}
	sort.Slice(v.Items, func(i, j int) bool { return v.Items[i].SKU < v.Items[j].SKU })
	v.Total = model.Round2(total)
	return v
}
