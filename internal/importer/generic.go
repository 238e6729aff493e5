package importer

import (
	"fmt"
	"io"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

// GenericParser reads a headed CSV with date, description and amount
// columns in any order, plus an optional reference column. Dates may use
// any layout dateparse understands; ambiguous numeric dates are month first.
type GenericParser struct{}

// Format returns the parser name.
func (p *GenericParser) Format() string { return "generic" }

// Parse reads a generic bank CSV.
func (p *GenericParser) Parse(r io.Reader) ([]BankTransaction, error) {
	var txns []BankTransaction
	err := eachRow(r, []string{"date", "description", "amount"}, func(rec row) error {
		date, err := dateparse.ParseIn(rec.get("date"), time.UTC)
		if err != nil {
			return fmt.Errorf("parsing date %q: %w", rec.get("date"), err)
		}
		amount, err := decimal.NewFromString(rec.get("amount"))
		if err != nil {
			return fmt.Errorf("parsing amount %q: %w", rec.get("amount"), err)
		}

		desc := rec.get("description")
		ref := rec.get("reference")
		if ref == "" {
			ref = makeRef("bank", date, desc)
		}
		txns = append(txns, BankTransaction{
			Date:        date,
			Description: desc,
			Amount:      amount,
			Reference:   ref,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txns, nil
}
