package budgets

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

var now = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

func date(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	s := store.NewLocked(store.NewMemory())
	require.NoError(t, s.Update(context.Background(), "acme", func(d *model.FinanceData) error {
		d.Ledger = []model.LedgerEntry{
			{Date: date(1, 10), Account: "Expense:Rent", Debit: dec("1200")},
			{Date: date(2, 10), Account: "Expense:Rent", Debit: dec("1200")},
			{Date: date(1, 15), Account: "Income:Sales", Credit: dec("900")},
			{Date: date(1, 20), Account: "Income:Sales", Debit: dec("100")},
			{Date: date(4, 1), Account: "Expense:Rent", Debit: dec("1200")},
		}
		return nil
	}))
	svc := NewService(s)
	svc.now = func() time.Time { return now }
	return svc, s
}

func q1() BudgetInput {
	return BudgetInput{
		Name: "Q1",
		From: date(1, 1),
		To:   date(3, 31),
		Lines: []LineInput{
			{Account: "Expense:Rent", Planned: dec("3600")},
			{Account: "Income:Sales", Planned: dec("5000")},
			{Account: "Expense:Travel", Planned: dec("250")},
		},
	}
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService(t)

	plan, err := svc.Create(context.Background(), "acme", q1())
	require.NoError(t, err)
	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, now, plan.GeneratedAt)
	require.Len(t, plan.Lines, 3)
	assert.Equal(t, "2400.00", plan.Lines[0].Actual.StringFixed(2), "April rent is outside the window")
	assert.Equal(t, "800.00", plan.Lines[1].Actual.StringFixed(2), "absolute net of credits")
	assert.True(t, plan.Lines[2].Actual.IsZero())
}

func TestRefreshActuals(t *testing.T) {
	ctx := context.Background()
	svc, s := newTestService(t)

	plan, err := svc.Create(ctx, "acme", q1())
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, "acme", func(d *model.FinanceData) error {
		d.Ledger = append(d.Ledger, model.LedgerEntry{Date: date(3, 5), Account: "Expense:Travel", Debit: dec("99.50")})
		return nil
	}))

	refreshed, err := svc.RefreshActuals(ctx, "acme", plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "99.50", refreshed.Lines[2].Actual.StringFixed(2))
	require.NotNil(t, refreshed.RefreshedAt)

	all, err := svc.List(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, all, 1, "updated in place")
	assert.Equal(t, "99.50", all[0].Lines[2].Actual.StringFixed(2))
}

func TestRefreshActuals_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.RefreshActuals(context.Background(), "acme", "nope")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BudgetInput)
	}{
		{"no name", func(b *BudgetInput) { b.Name = " " }},
		{"no lines", func(b *BudgetInput) { b.Lines = nil }},
		{"reversed window", func(b *BudgetInput) { b.From, b.To = b.To, b.From }},
		{"duplicate account", func(b *BudgetInput) { b.Lines[1].Account = "Expense:Rent" }},
		{"negative plan", func(b *BudgetInput) { b.Lines[0].Planned = dec("-1") }},
		{"blank account", func(b *BudgetInput) { b.Lines[0].Account = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			in := q1()
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), "acme", in)
			require.ErrorIs(t, err, model.ErrValidation)
		})
	}
}
