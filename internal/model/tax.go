package model

import "github.com/shopspring/decimal"

// TaxRate is one named rate inside a tax profile. Rate is a percentage.
type TaxRate struct {
	Name      string          `json:"name"`
	Rate      decimal.Decimal `json:"rate"`
	Inclusive bool            `json:"inclusive"`
	Account   string          `json:"account,omitempty"`
}

// TaxProfile groups the rates of one jurisdiction.
type TaxProfile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Jurisdiction string    `json:"jurisdiction"`
	Rates        []TaxRate `json:"rates"`
}
