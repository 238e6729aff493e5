package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/fincore/internal/model"
)

const (
	numFields   = 6
	colCode     = 0
	colName     = 1
	colType     = 2
	colParent   = 3
	colCurrency = 4
	colTags     = 5
	tagSep      = ";"
)

// ReadAccounts reads a chart-of-accounts CSV (with header) into upsert inputs.
func ReadAccounts(r io.Reader) ([]AccountInput, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var inputs []AccountInput
	for i, rec := range records[1:] {
		in, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// WriteAccounts writes a chart-of-accounts CSV.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"code", "name", "type", "parent_code", "currency", "tags"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colCode] = acct.Code
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colParent] = acct.ParentCode
	row[colCurrency] = acct.Currency
	row[colTags] = strings.Join(acct.Tags, tagSep)
	return row
}

// UnmarshalAccount converts a CSV row to an AccountInput.
func UnmarshalAccount(record []string) (AccountInput, error) {
	if len(record) != numFields {
		return AccountInput{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	var at model.AccountType
	if record[colType] != "" {
		var ok bool
		at, ok = model.ParseAccountType(record[colType])
		if !ok {
			return AccountInput{}, fmt.Errorf("parsing account type %q: unknown type", record[colType])
		}
	}

	var tags []string
	if record[colTags] != "" {
		tags = strings.Split(record[colTags], tagSep)
	}

	return AccountInput{
		Code:       record[colCode],
		Name:       record[colName],
		Type:       at,
		ParentCode: record[colParent],
		Currency:   record[colCurrency],
		Tags:       tags,
	}, nil
}
