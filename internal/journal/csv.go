package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/model"
)

// LedgerHeader is the CSV header of a ledger export.
const LedgerHeader = "date,journal_id,account,account_type,debit,credit,currency,tax_category,reference_id,memo,tags"

// ImportHeader is the CSV header of a journal import file. Rows sharing a
// journal_ref form one entry; entry fields are taken from its first row.
const ImportHeader = "journal_ref,date,description,account,debit,credit,memo,tax_category,tags,reference_id"

const (
	dateFormat = "2006-01-02"
	tagSep     = ";"

	numImportFields = 10
	colRef          = 0
	colDate         = 1
	colDesc         = 2
	colAccount      = 3
	colDebit        = 4
	colCredit       = 5
	colMemo         = 6
	colTaxCategory  = 7
	colTags         = 8
	colReferenceID  = 9
)

// WriteLedger writes ledger rows as CSV (including header).
func WriteLedger(w io.Writer, rows []model.LedgerEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(LedgerHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range rows {
		if err := cw.Write(MarshalLedgerEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalLedgerEntry converts a ledger row to a CSV record.
func MarshalLedgerEntry(e model.LedgerEntry) []string {
	row := []string{
		e.Date.Format(dateFormat),
		e.JournalID,
		e.Account,
		string(e.Type()),
		"",
		"",
		e.Currency,
		e.TaxCategory,
		e.ReferenceID,
		e.Memo,
		strings.Join(e.Tags, tagSep),
	}
	if !e.Debit.IsZero() {
		row[4] = e.Debit.StringFixed(2)
	}
	if !e.Credit.IsZero() {
		row[5] = e.Credit.StringFixed(2)
	}
	return row
}

// ReadJournals reads a journal import CSV into inputs, in file order.
func ReadJournals(r io.Reader) ([]JournalInput, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numImportFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var (
		inputs []JournalInput
		index  = make(map[string]int)
	)
	// Skip header row.
	for i, rec := range records[1:] {
		line, err := unmarshalImportLine(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}

		ref := rec[colRef]
		pos, seen := index[ref]
		if !seen {
			date, err := time.Parse(dateFormat, rec[colDate])
			if err != nil {
				return nil, fmt.Errorf("row %d: parsing date %q: %w", i+2, rec[colDate], err)
			}
			inputs = append(inputs, JournalInput{
				Date:        date,
				Description: rec[colDesc],
				ReferenceID: rec[colReferenceID],
			})
			pos = len(inputs) - 1
			index[ref] = pos
		}
		inputs[pos].Lines = append(inputs[pos].Lines, line)
	}
	return inputs, nil
}

func unmarshalImportLine(rec []string) (model.JournalLine, error) {
	var debit, credit decimal.Decimal
	var err error

	if rec[colDebit] != "" {
		debit, err = decimal.NewFromString(rec[colDebit])
		if err != nil {
			return model.JournalLine{}, fmt.Errorf("parsing debit %q: %w", rec[colDebit], err)
		}
	}
	if rec[colCredit] != "" {
		credit, err = decimal.NewFromString(rec[colCredit])
		if err != nil {
			return model.JournalLine{}, fmt.Errorf("parsing credit %q: %w", rec[colCredit], err)
		}
	}

	var tags []string
	if rec[colTags] != "" {
		tags = strings.Split(rec[colTags], tagSep)
	}

	return model.JournalLine{
		Account:     rec[colAccount],
		Debit:       debit,
		Credit:      credit,
		Memo:        rec[colMemo],
		TaxCategory: rec[colTaxCategory],
		Tags:        tags,
	}, nil
}
