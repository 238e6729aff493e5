package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/store"
)

var now = time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)

func date(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func in(sku, qty, cost string, day int) TransactionInput {
	return TransactionInput{SKU: sku, Type: model.InventoryIn, Quantity: dec(qty), UnitCost: dec(cost), Date: date(day)}
}

func out(sku, qty string, day int) TransactionInput {
	return TransactionInput{SKU: sku, Type: model.InventoryOut, Quantity: dec(qty), Date: date(day)}
}

func adjust(sku, qty string) TransactionInput {
	return TransactionInput{SKU: sku, Type: model.InventoryAdjust, Quantity: dec(qty), Date: date(28)}
}

func newTestService(t *testing.T, method model.ValuationMethod) (*Service, store.Store) {
	t.Helper()
	s := store.NewLocked(store.NewMemory())
	svc := NewService(s)
	svc.now = func() time.Time { return now }
	require.NoError(t, svc.SetValuationMethod(context.Background(), "acme", method))
	return svc, s
}

func twoLots(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.Apply(ctx, "acme", in("WIDGET", "10", "5", 1))
	require.NoError(t, err)
	_, err = svc.Apply(ctx, "acme", in("WIDGET", "10", "8", 2))
	require.NoError(t, err)
}

func TestApply_FIFOAcrossTwoLots(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, model.ValuationFIFO)
	twoLots(t, svc)

	item, err := svc.Apply(ctx, "acme", out("WIDGET", "15", 3))
	require.NoError(t, err)
	assert.Equal(t, "5", item.QuantityOnHand.String())

	lots, err := svc.Lots(ctx, "acme", "WIDGET")
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, "5", lots[0].Quantity.String())
	assert.Equal(t, "8", lots[0].UnitCost.String())

	txs, err := svc.Transactions(ctx, "acme", "WIDGET")
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "90.00", txs[2].CostOfGoods.StringFixed(2), "10@5 + 5@8")
}

func TestApply_LIFOAcrossTwoLots(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, model.ValuationLIFO)
	twoLots(t, svc)

	_, err := svc.Apply(ctx, "acme", out("WIDGET", "15", 3))
	require.NoError(t, err)

	lots, err := svc.Lots(ctx, "acme", "WIDGET")
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, "5", lots[0].Quantity.String())
	assert.Equal(t, "5", lots[0].UnitCost.String())

	txs, err := svc.Transactions(ctx, "acme", "WIDGET")
	require.NoError(t, err)
	assert.Equal(t, "105.00", txs[2].CostOfGoods.StringFixed(2), "10@8 + 5@5")
}

func TestApply_AverageCost(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, model.ValuationAVG)
	twoLots(t, svc)

	items, err := svc.Items(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "6.50", items[0].AverageCost.StringFixed(2))

	_, err = svc.Apply(ctx, "acme", out("WIDGET", "4", 3))
	require.NoError(t, err)

	lots, err := svc.Lots(ctx, "acme", "WIDGET")
	require.NoError(t, err)
	assert.Len(t, lots, 2, "AVG does not walk lots")

	txs, err := svc.Transactions(ctx, "acme", "")
	require.NoError(t, err)
	assert.Equal(t, "26.00", txs[2].CostOfGoods.StringFixed(2))

	v, err := svc.Valuation(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "104.00", v.Total.StringFixed(2), "16 x 6.50")
	assert.Equal(t, model.ValuationAVG, v.Method)
}

func TestApply_AverageCostRoundsToCents(t *testing.T) {
	ctx := context.Background()
	svc, s := newTestService(t, model.ValuationAVG)

	_, err := svc.Apply(ctx, "acme", in("BOLT", "2", "1", 1))
	require.NoError(t, err)
	item, err := svc.Apply(ctx, "acme", in("BOLT", "1", "2", 2))
	require.NoError(t, err)
	assert.Equal(t, "1.33", item.AverageCost.String(), "4/3 is stored at cents")

	data, err := s.Load(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "1.33", data.InventoryItems[0].AverageCost.String())

	_, err = svc.Apply(ctx, "acme", out("BOLT", "3", 3))
	require.NoError(t, err)
	txs, err := svc.Transactions(ctx, "acme", "BOLT")
	require.NoError(t, err)
	assert.Equal(t, "3.99", txs[2].CostOfGoods.StringFixed(2))
}

func TestApply_InsufficientStockRollsBack(t *testing.T) {
	ctx := context.Background()
	svc, s := newTestService(t, model.ValuationFIFO)
	twoLots(t, svc)

	before, err := s.Load(ctx, "acme")
	require.NoError(t, err)

	_, err = svc.Apply(ctx, "acme", out("WIDGET", "21", 3))
	require.ErrorIs(t, err, model.ErrInsufficientStock)

	after, err := s.Load(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version)
	assert.Len(t, after.InventoryLots, 2)
	assert.Len(t, after.InventoryTransactions, 2)
	assert.Equal(t, "20", after.InventoryItems[0].QuantityOnHand.String())
}

func TestApply_LotsShortOfOnHand(t *testing.T) {
	data := model.NewFinanceData()
	_, _, err := Apply(data, in("BOLT", "10", "1", 1), now)
	require.NoError(t, err)
	_, _, err = Apply(data, adjust("BOLT", "5"), now)
	require.NoError(t, err)

	_, _, err = Apply(data, out("BOLT", "12", 2), now)
	var stockErr *model.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "10", stockErr.Available.String(), "lots cover only the received quantity")
	assert.Equal(t, "15", data.InventoryItems[0].QuantityOnHand.String())
	assert.Equal(t, "10", data.InventoryLots[0].Quantity.String())
}

func TestApply_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   TransactionInput
	}{
		{"missing sku", in("", "1", "1", 1)},
		{"zero cost", in("A", "1", "0", 1)},
		{"negative cost", in("A", "1", "-2", 1)},
		{"zero in quantity", in("A", "0", "1", 1)},
		{"negative out", out("A", "-1", 1)},
		{"zero adjust", adjust("A", "0")},
		{"unknown type", TransactionInput{SKU: "A", Type: "MOVE", Quantity: dec("1")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := model.NewFinanceData()
			_, _, err := Apply(data, tt.in, now)
			require.ErrorIs(t, err, model.ErrValidation)
			assert.Empty(t, data.InventoryItems)
			assert.Empty(t, data.InventoryTransactions)
		})
	}
}

func TestApply_UnknownSKU(t *testing.T) {
	data := model.NewFinanceData()

	_, _, err := Apply(data, out("GHOST", "1", 1), now)
	require.ErrorIs(t, err, model.ErrNotFound)
	_, _, err = Apply(data, adjust("GHOST", "1"), now)
	require.ErrorIs(t, err, model.ErrNotFound)

	item, _, err := Apply(data, in("GHOST", "3", "2", 1), now)
	require.NoError(t, err)
	assert.Equal(t, "GHOST", item.Name)
	assert.Equal(t, "AUD", item.Currency)
}

func TestApply_AdjustDoesNotChangeCost(t *testing.T) {
	data := model.NewFinanceData()
	_, _, err := Apply(data, in("A", "4", "2.50", 1), now)
	require.NoError(t, err)

	item, tx, err := Apply(data, adjust("A", "-1"), now)
	require.NoError(t, err)
	assert.Equal(t, "3", item.QuantityOnHand.String())
	assert.Equal(t, "2.5", item.AverageCost.String())
	assert.Equal(t, model.InventoryAdjust, tx.Type)

	_, _, err = Apply(data, adjust("A", "-4"), now)
	require.ErrorIs(t, err, model.ErrInsufficientStock)
}

func TestConservation(t *testing.T) {
	for _, method := range []model.ValuationMethod{model.ValuationFIFO, model.ValuationLIFO} {
		t.Run(string(method), func(t *testing.T) {
			data := model.NewFinanceData()
			data.Settings.ValuationMethod = method

			moves := []TransactionInput{
				in("A", "7", "1.10", 1),
				out("A", "3", 2),
				in("A", "4.5", "1.30", 3),
				out("A", "6", 4),
				in("A", "2", "1.20", 5),
				out("A", "1.5", 6),
			}
			totalIn, totalOut := decimal.Zero, decimal.Zero
			for _, m := range moves {
				_, _, err := Apply(data, m, now)
				require.NoError(t, err)
				if m.Type == model.InventoryIn {
					totalIn = totalIn.Add(m.Quantity)
				} else {
					totalOut = totalOut.Add(m.Quantity)
				}
			}

			onHand := data.InventoryItems[0].QuantityOnHand
			assert.True(t, onHand.Equal(totalIn.Sub(totalOut)), "on hand %s", onHand)

			lotSum := decimal.Zero
			for _, l := range data.InventoryLots {
				assert.True(t, l.Quantity.IsPositive())
				lotSum = lotSum.Add(l.Quantity)
			}
			assert.True(t, lotSum.Equal(onHand), "lots %s != on hand %s", lotSum, onHand)
		})
	}
}

func TestConsume(t *testing.T) {
	lots := []model.InventoryLot{
		{ID: "b", SKU: "A", Quantity: dec("2"), UnitCost: dec("3"), ReceivedAt: date(2)},
		{ID: "a", SKU: "A", Quantity: dec("2"), UnitCost: dec("1"), ReceivedAt: date(1)},
	}

	remaining, consumed, err := Consume(lots, dec("3"), model.ValuationFIFO)
	require.NoError(t, err)
	require.Len(t, consumed, 2)
	assert.Equal(t, "a", consumed[0].LotID)
	assert.Equal(t, "1", consumed[1].Quantity.String())
	require.Len(t, remaining, 1)
	assert.Equal(t, "b", remaining[0].ID)
	assert.Equal(t, "1", remaining[0].Quantity.String())
	assert.Equal(t, "2", lots[0].Quantity.String(), "input is not modified")

	_, _, err = Consume(lots, dec("5"), model.ValuationLIFO)
	require.ErrorIs(t, err, model.ErrInsufficientStock)

	_, _, err = Consume(lots, dec("1"), model.ValuationAVG)
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestUpsertItem(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, model.ValuationFIFO)

	item, err := svc.UpsertItem(ctx, "acme", ItemInput{SKU: "W-1", Name: "Widget", UOM: "box"})
	require.NoError(t, err)
	assert.Equal(t, "Widget", item.Name)
	assert.Equal(t, "AUD", item.Currency)

	item, err = svc.UpsertItem(ctx, "acme", ItemInput{SKU: "W-1", Currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, "Widget", item.Name)
	assert.Equal(t, "box", item.UOM)
	assert.Equal(t, "USD", item.Currency)

	items, err := svc.Items(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.UpsertItem(ctx, "acme", ItemInput{})
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestSetValuationMethod(t *testing.T) {
	ctx := context.Background()
	svc, s := newTestService(t, "lifo")

	data, err := s.Load(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, model.ValuationLIFO, data.Settings.ValuationMethod)

	require.ErrorIs(t, svc.SetValuationMethod(ctx, "acme", "HIFO"), model.ErrValidation)
}
