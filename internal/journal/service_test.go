package journal

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/fincore/internal/accounts"
	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/periods"
	"github.com/cleared-dev/fincore/internal/store"
)

var postedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, store.Store) {
	s := store.NewLocked(store.NewMemory())
	svc := NewService(s)
	svc.now = func() time.Time { return postedAt }
	return svc, s
}

func TestPostJournal(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	res, err := svc.PostJournal(ctx, "acme", JournalInput{
		Date:        date(2025, 1, 15),
		Description: "January rent",
		ReferenceID: "inv-77",
		Lines: []model.JournalLine{
			{Account: "Expense:Rent", Debit: dec("1200"), TaxCategory: "GST", Tags: []string{"fixed"}},
			{Account: "Asset:Cash", Credit: dec("1200"), Tags: []string{"cash"}},
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.Journal.ID)
	assert.Equal(t, "JE-202501-0001", res.Journal.Number)
	assert.Equal(t, postedAt, res.Journal.PostedAt)
	require.Len(t, res.LedgerEntries, 2)

	rent := res.LedgerEntries[0]
	assert.Equal(t, "Expense:Rent", rent.Account)
	assert.Equal(t, model.AccountTypeExpense, rent.AccountType)
	assert.True(t, rent.Debit.Equal(dec("1200")))
	assert.Equal(t, "AUD", rent.Currency, "tenant default currency")
	assert.Equal(t, res.Journal.ID, rent.JournalID)
	assert.Equal(t, "inv-77", rent.ReferenceID)
	assert.Equal(t, "GST", rent.TaxCategory)
	assert.Equal(t, []string{"fixed"}, rent.Tags)

	cash := res.LedgerEntries[1]
	assert.Equal(t, model.AccountTypeAsset, cash.AccountType)
	assert.True(t, cash.Credit.Equal(dec("1200")))
}

func TestPostJournal_PrependsAndNumbers(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	first, err := svc.PostJournal(ctx, "acme", balanced("10.00"))
	require.NoError(t, err)
	second, err := svc.PostJournal(ctx, "acme", balanced("20.00"))
	require.NoError(t, err)
	assert.Equal(t, "JE-202501-0002", second.Journal.Number)

	journals, err := svc.Journals(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, journals, 2)
	assert.Equal(t, second.Journal.ID, journals[0].ID)
	assert.Equal(t, first.Journal.ID, journals[1].ID)

	rows, err := svc.Ledger(ctx, "acme", LedgerFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, second.Journal.ID, rows[0].JournalID)
	assert.Equal(t, first.Journal.ID, rows[3].JournalID)
}

func TestPostJournal_CurrencyResolution(t *testing.T) {
	ctx := context.Background()
	svc, s := newTestService()

	require.NoError(t, s.Update(ctx, "acme", func(d *model.FinanceData) error {
		_, err := accounts.Upsert(d, accounts.AccountInput{Code: "Asset:USDBank", Name: "USD", Currency: "USD"}, postedAt)
		return err
	}))

	res, err := svc.PostJournal(ctx, "acme", JournalInput{
		Date:  date(2025, 1, 2),
		Lines: []model.JournalLine{debit("Asset:USDBank", "5"), credit("Income:Sales", "5")},
	})
	require.NoError(t, err)
	assert.Equal(t, "USD", res.LedgerEntries[0].Currency)
	assert.Equal(t, "AUD", res.LedgerEntries[1].Currency)

	res, err = svc.PostJournal(ctx, "acme", JournalInput{
		Date:     date(2025, 1, 2),
		Currency: "NZD",
		Lines:    []model.JournalLine{debit("Asset:USDBank", "5"), credit("Income:Sales", "5")},
	})
	require.NoError(t, err)
	assert.Equal(t, "NZD", res.LedgerEntries[0].Currency)
}

func TestPostJournal_UnbalancedRejected(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.PostJournal(ctx, "acme", JournalInput{
		Date:  date(2025, 1, 1),
		Lines: []model.JournalLine{debit("Asset:Cash", "100")},
	})
	require.ErrorIs(t, err, model.ErrValidation)

	rows, err := svc.Ledger(ctx, "acme", LedgerFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows, "no ledger rows created")
}

func TestPostJournal_PeriodGuard(t *testing.T) {
	ctx := context.Background()
	svc, s := newTestService()

	_, err := svc.PostJournal(ctx, "acme", balanced("10"))
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, "acme", func(d *model.FinanceData) error {
		p, err := periods.Add(d, periods.PeriodInput{Name: "Jan", Start: date(2025, 1, 1), End: date(2025, 1, 31)})
		if err != nil {
			return err
		}
		_, err = periods.MarkClosed(d, p.ID, postedAt)
		return err
	}))

	before, err := s.Load(ctx, "acme")
	require.NoError(t, err)

	_, err = svc.PostJournal(ctx, "acme", balanced("25"))
	require.ErrorIs(t, err, model.ErrPeriodClosed)

	after, err := s.Load(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, after.Journals, len(before.Journals))
	assert.Len(t, after.Ledger, len(before.Ledger))
	assert.Equal(t, before.Version, after.Version, "nothing was saved")

	in := balanced("25")
	in.Date = date(2025, 2, 1)
	_, err = svc.PostJournal(ctx, "acme", in)
	assert.NoError(t, err, "dates outside the closed period still post")
}

func TestGlobalBalance(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	inputs := []JournalInput{
		balanced("10.10"),
		balanced("0.01"),
		{
			Date: date(2025, 1, 3),
			Lines: []model.JournalLine{
				debit("Asset:Cash", "500"),
				credit("Income:Sales", "454.55"),
				credit("Liability:GST", "45.45"),
			},
		},
	}
	for _, in := range inputs {
		_, err := svc.PostJournal(ctx, "acme", in)
		require.NoError(t, err)
	}

	rows, err := svc.Ledger(ctx, "acme", LedgerFilter{})
	require.NoError(t, err)
	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for _, r := range rows {
		totalDebit = totalDebit.Add(r.Debit)
		totalCredit = totalCredit.Add(r.Credit)
	}
	assert.True(t, totalDebit.Equal(totalCredit), "debits %s != credits %s", totalDebit, totalCredit)
}

func TestImportJournals_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	bad := JournalInput{Date: date(2025, 1, 1), Lines: []model.JournalLine{debit("Asset:Cash", "1")}}
	_, err := svc.ImportJournals(ctx, "acme", []JournalInput{balanced("1"), bad})
	require.ErrorIs(t, err, model.ErrValidation)
	assert.Contains(t, err.Error(), "entry 2")

	journals, err := svc.Journals(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, journals)

	results, err := svc.ImportJournals(ctx, "acme", []JournalInput{balanced("1"), balanced("2")})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestLedgerFilter(t *testing.T) {
	from := date(2025, 1, 10)
	to := date(2025, 1, 20)
	e := model.LedgerEntry{Date: date(2025, 1, 15), Account: "Expense:Rent", TaxCategory: "GST", JournalID: "j1"}

	assert.True(t, LedgerFilter{}.Match(e))
	assert.True(t, LedgerFilter{From: &from, To: &to}.Match(e))
	assert.False(t, LedgerFilter{From: &to}.Match(e))
	assert.True(t, LedgerFilter{AccountPrefix: "Expense:"}.Match(e))
	assert.False(t, LedgerFilter{AccountPrefix: "Income:"}.Match(e))
	assert.False(t, LedgerFilter{TaxCategory: "VAT"}.Match(e))
	assert.False(t, LedgerFilter{JournalID: "j2"}.Match(e))
}
