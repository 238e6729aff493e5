package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/model"
)

// Consumption is the part of one lot released by an outbound movement.
type Consumption struct {
	LotID    string          `json:"lotId"`
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unitCost"`
}

// Cost returns quantity times unit cost.
func (c Consumption) Cost() decimal.Decimal {
	return c.Quantity.Mul(c.UnitCost)
}

// Consume walks lots in FIFO or LIFO order until qty is covered. It works on
// a copy: lots is never modified. The returned lots are in walk order and
// exclude exhausted ones. When the lots cannot cover qty the result is an
// *model.InsufficientStockError and nothing is consumed.
func Consume(lots []model.InventoryLot, qty decimal.Decimal, method model.ValuationMethod) ([]model.InventoryLot, []Consumption, error) {
	walk := append([]model.InventoryLot(nil), lots...)
	switch method {
	case model.ValuationFIFO:
		sort.SliceStable(walk, func(i, j int) bool { return walk[i].ReceivedAt.Before(walk[j].ReceivedAt) })
	case model.ValuationLIFO:
		sort.SliceStable(walk, func(i, j int) bool { return walk[i].ReceivedAt.After(walk[j].ReceivedAt) })
	default:
		return nil, nil, model.Invalid("method", "lot walk needs FIFO or LIFO, got %q", method)
	}

	available := decimal.Zero
	for _, l := range walk {
		available = available.Add(l.Quantity)
	}
	if available.LessThan(qty) {
		var sku string
		if len(walk) > 0 {
			sku = walk[0].SKU
		}
		return nil, nil, &model.InsufficientStockError{SKU: sku, Requested: qty, Available: available}
	}

	var consumed []Consumption
	remaining := make([]model.InventoryLot, 0, len(walk))
	need := qty
	for _, l := range walk {
		if need.IsPositive() {
			take := decimal.Min(need, l.Quantity)
			consumed = append(consumed, Consumption{LotID: l.ID, Quantity: take, UnitCost: l.UnitCost})
			l.Quantity = l.Quantity.Sub(take)
			need = need.Sub(take)
		}
		if l.Quantity.IsPositive() {
			remaining = append(remaining, l)
		}
	}
	return remaining, consumed, nil
}

// lotsFor splits lots into those of sku and the rest, preserving order.
func lotsFor(lots []model.InventoryLot, sku string) (mine, others []model.InventoryLot) {
	for _, l := range lots {
		if l.SKU == sku {
			mine = append(mine, l)
		} else {
			others = append(others, l)
		}
	}
	return mine, others
}
