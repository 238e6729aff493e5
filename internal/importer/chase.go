package importer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ChaseParser parses Chase checking account CSV exports.
type ChaseParser struct{}

const chaseDateFormat = "01/02/2006"

// Columns of a Chase checking export.
const (
	chaseDetails = "details"
	chaseDate    = "posting date"
	chaseDesc    = "description"
	chaseAmount  = "amount"
	chaseType    = "type"
	chaseCheck   = "check or slip #"
)

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase CSV. Cheques and deposit slips are referenced by
// their number, other rows by date and description.
func (p *ChaseParser) Parse(r io.Reader) ([]BankTransaction, error) {
	var txns []BankTransaction
	err := eachRow(r, []string{chaseDate, chaseDesc, chaseAmount}, func(rec row) error {
		txn, err := parseChaseRow(rec)
		if err != nil {
			return err
		}
		txns = append(txns, txn)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}
	return txns, nil
}

func parseChaseRow(rec row) (BankTransaction, error) {
	date, err := time.Parse(chaseDateFormat, rec.get(chaseDate))
	if err != nil {
		return BankTransaction{}, fmt.Errorf("parsing date %q: %w", rec.get(chaseDate), err)
	}
	amount, err := decimal.NewFromString(rec.get(chaseAmount))
	if err != nil {
		return BankTransaction{}, fmt.Errorf("parsing amount %q: %w", rec.get(chaseAmount), err)
	}

	desc := rec.get(chaseDesc)
	ref := makeRef("chase", date, desc)
	if n := rec.get(chaseCheck); n != "" {
		ref = fmt.Sprintf("chase_%s_%s", strings.ToLower(rec.get(chaseDetails)), n)
	}
	return BankTransaction{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Reference:   ref,
		Type:        rec.get(chaseType),
	}, nil
}

// makeRef builds a reference like chase_20250103_GITHUBPROS from the
// first ten alphanumerics of the description.
func makeRef(source string, date time.Time, desc string) string {
	var b strings.Builder
	for _, r := range desc {
		if b.Len() == 10 {
			break
		}
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return fmt.Sprintf("%s_%s_%s", source, date.Format("20060102"), b.String())
}
