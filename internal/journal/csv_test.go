package journal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/fincore/internal/model"
)

func TestWriteLedger(t *testing.T) {
	rows := []model.LedgerEntry{
		{
			Date: date(2025, 1, 15), JournalID: "j1", Account: "Expense:Rent",
			Debit: dec("1200"), Currency: "AUD", TaxCategory: "GST", Tags: []string{"a", "b"},
		},
		{Date: date(2025, 1, 15), JournalID: "j1", Account: "Asset:Cash", Credit: dec("1200"), Currency: "AUD"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLedger(&buf, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, LedgerHeader, lines[0])
	assert.Equal(t, "2025-01-15,j1,Expense:Rent,EXPENSE,1200.00,,AUD,GST,,,a;b", lines[1])
	assert.Equal(t, "2025-01-15,j1,Asset:Cash,ASSET,,1200.00,AUD,,,,", lines[2])
}

func TestReadJournals(t *testing.T) {
	in := ImportHeader + "\n" +
		"r1,2025-01-15,Rent,Expense:Rent,1200.00,,January,GST,fixed;office,inv-1\n" +
		"r2,2025-01-16,Sale,Asset:Cash,110.00,,,,,\n" +
		"r1,2025-01-15,Rent,Asset:Cash,,1200.00,,,,inv-1\n" +
		"r2,2025-01-16,Sale,Income:Sales,,110.00,,GST,,\n"

	got, err := ReadJournals(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, date(2025, 1, 15), got[0].Date)
	assert.Equal(t, "Rent", got[0].Description)
	assert.Equal(t, "inv-1", got[0].ReferenceID)
	require.Len(t, got[0].Lines, 2)
	assert.Equal(t, []string{"fixed", "office"}, got[0].Lines[0].Tags)
	assert.True(t, got[0].Lines[1].Credit.Equal(dec("1200")))

	require.Len(t, got[1].Lines, 2)
	assert.Equal(t, "GST", got[1].Lines[1].TaxCategory)

	for _, j := range got {
		assert.NoError(t, ValidateEntry(j))
	}
}

func TestReadJournals_BadAmount(t *testing.T) {
	in := ImportHeader + "\nr1,2025-01-15,Rent,Expense:Rent,abc,,,,,\n"
	_, err := ReadJournals(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestReadJournals_BadDate(t *testing.T) {
	in := ImportHeader + "\nr1,15/01/2025,Rent,Expense:Rent,1,,,,,\n"
	_, err := ReadJournals(strings.NewReader(in))
	require.Error(t, err)
}
