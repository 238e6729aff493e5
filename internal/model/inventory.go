package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValuationMethod selects how outbound stock is costed against receipt lots.
type ValuationMethod string

const (
	ValuationFIFO ValuationMethod = "FIFO"
	ValuationLIFO ValuationMethod = "LIFO"
	ValuationAVG  ValuationMethod = "AVG"
)

// Valid reports whether m is a supported valuation method.
func (m ValuationMethod) Valid() bool {
	return m == ValuationFIFO || m == ValuationLIFO || m == ValuationAVG
}

// InventoryTxType is the kind of stock movement.
type InventoryTxType string

const (
	InventoryIn     InventoryTxType = "IN"
	InventoryOut    InventoryTxType = "OUT"
	InventoryAdjust InventoryTxType = "ADJUST"
)

// InventoryItem holds the running totals for one SKU.
type InventoryItem struct {
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	UOM            string          `json:"uom"`
	QuantityOnHand decimal.Decimal `json:"quantityOnHand"`
	AverageCost    decimal.Decimal `json:"averageCost"`
	Currency       string          `json:"currency"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// InventoryLot is a receipt of stock not yet fully consumed.
type InventoryLot struct {
	ID         string          `json:"id"`
	SKU        string          `json:"sku"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unitCost"`
	ReceivedAt time.Time       `json:"receivedAt"`
}

// InventoryTransaction is an immutable stock movement record.
type InventoryTransaction struct {
	ID       string          `json:"id"`
	SKU      string          `json:"sku"`
	Type     InventoryTxType `json:"type"`
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unitCost,omitempty"`
	// CostOfGoods is the lot cost released by an OUT movement.
	CostOfGoods decimal.Decimal `json:"costOfGoods,omitempty"`
	Date        time.Time       `json:"date"`
	RecordedAt  time.Time       `json:"recordedAt"`
}
