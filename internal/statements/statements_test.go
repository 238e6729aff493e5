package statements

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/fincore/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func row(day int, account, debit, credit string, tags ...string) model.LedgerEntry {
	e := model.LedgerEntry{Date: date(2025, 1, day), Account: account, Tags: tags}
	if debit != "" {
		e.Debit = dec(debit)
	}
	if credit != "" {
		e.Credit = dec(credit)
	}
	return e
}

// sampleLedger is a month of trading: a sale, a cost, and rent paid.
func sampleLedger() []model.LedgerEntry {
	return []model.LedgerEntry{
		row(5, "Asset:Cash", "500", "", "cash"),
		row(5, "Income:Sales", "", "500"),
		row(10, "Expense:Operating", "300", ""),
		row(10, "Asset:Cash", "", "300", "cash"),
		row(20, "Asset:Bank", "1000", ""),
		row(20, "Equity:OwnerCapital", "", "1000"),
		row(25, "Expense:Rent", "120.50", ""),
		row(25, "Liability:CreditCard", "", "120.50"),
	}
}

func amounts(ls []Line) map[string]string {
	out := make(map[string]string, len(ls))
	for _, l := range ls {
		out[l.Account] = l.Amount.StringFixed(2)
	}
	return out
}

func TestFilterByDate(t *testing.T) {
	rows := sampleLedger()
	from := date(2025, 1, 10)
	to := date(2025, 1, 20)

	got := FilterByDate(rows, &from, &to)
	assert.Len(t, got, 4, "bounds are inclusive")
	assert.Len(t, FilterByDate(rows, nil, nil), len(rows))
	assert.Len(t, FilterByDate(rows, &to, nil), 4)
}

func TestBuildTrialBalance(t *testing.T) {
	tb := BuildTrialBalance(sampleLedger())

	require.Len(t, tb.Accounts, 7)
	assert.Equal(t, "Asset:Bank", tb.Accounts[0].Account)
	assert.Equal(t, "Liability:CreditCard", tb.Accounts[len(tb.Accounts)-1].Account)

	cash := tb.Accounts[1]
	assert.Equal(t, "Asset:Cash", cash.Account)
	assert.Equal(t, model.AccountTypeAsset, cash.Type)
	assert.Equal(t, "500.00", cash.Debit.StringFixed(2))
	assert.Equal(t, "300.00", cash.Credit.StringFixed(2))
	assert.Equal(t, "200.00", cash.Net.StringFixed(2))

	assert.True(t, tb.TotalDebit.Equal(tb.TotalCredit))
	assert.True(t, tb.Net.IsZero(), "full ledger nets to zero")

	sum := decimal.Zero
	for _, a := range tb.Accounts {
		sum = sum.Add(a.Net)
	}
	assert.True(t, sum.IsZero())
}

func TestBuildProfitAndLoss(t *testing.T) {
	pl := BuildProfitAndLoss(sampleLedger())

	assert.Equal(t, map[string]string{"Income:Sales": "500.00"}, amounts(pl.Income))
	assert.Equal(t, map[string]string{"Expense:Operating": "300.00", "Expense:Rent": "120.50"}, amounts(pl.Expenses))
	assert.Equal(t, "500.00", pl.TotalIncome.StringFixed(2))
	assert.Equal(t, "420.50", pl.TotalExpenses.StringFixed(2))
	assert.Equal(t, "79.50", pl.NetProfit.StringFixed(2))
}

func TestBuildProfitAndLoss_UsesTypedAccount(t *testing.T) {
	rows := []model.LedgerEntry{
		{Date: date(2025, 1, 1), Account: "Consulting", AccountType: model.AccountTypeIncome, Credit: dec("80")},
		{Date: date(2025, 1, 1), Account: "Asset:Cash", Debit: dec("80")},
	}
	pl := BuildProfitAndLoss(rows)
	assert.Equal(t, map[string]string{"Consulting": "80.00"}, amounts(pl.Income))

	// Prefix matching is case-sensitive.
	rows = []model.LedgerEntry{{Date: date(2025, 1, 1), Account: "income:Sales", Credit: dec("80")}}
	assert.Empty(t, BuildProfitAndLoss(rows).Income)
}

func TestBuildBalanceSheet(t *testing.T) {
	bs := BuildBalanceSheet(sampleLedger())

	assert.Equal(t, map[string]string{"Asset:Bank": "1000.00", "Asset:Cash": "200.00"}, amounts(bs.Assets))
	assert.Equal(t, map[string]string{"Liability:CreditCard": "120.50"}, amounts(bs.Liabilities))
	assert.Equal(t, map[string]string{"Equity:OwnerCapital": "1000.00"}, amounts(bs.Equity))
	assert.Equal(t, "1200.00", bs.TotalAssets.StringFixed(2))
	assert.Equal(t, "79.50", bs.CurrentEarnings.StringFixed(2))
	assert.True(t, bs.Balanced)
}

func TestBuildBalanceSheet_AfterClosing(t *testing.T) {
	rows := append(sampleLedger(),
		row(31, "Income:Sales", "500", ""),
		row(31, "Expense:Operating", "", "300"),
		row(31, "Expense:Rent", "", "120.50"),
		row(31, "Equity:RetainedEarnings", "", "79.50"),
	)
	bs := BuildBalanceSheet(rows)
	assert.True(t, bs.CurrentEarnings.IsZero())
	assert.Equal(t, "79.50", amounts(bs.Equity)["Equity:RetainedEarnings"])
	assert.True(t, bs.Balanced)

	pl := BuildProfitAndLoss(sampleLedger())
	closing := FilterByDate(rows, ptr(date(2025, 1, 31)), nil)
	assert.True(t, pl.NetProfit.Equal(BuildBalanceSheet(closing).TotalEquity),
		"net profit moves into equity")
}

func TestBuildCashflow(t *testing.T) {
	rows := append(sampleLedger(),
		row(28, "Cash:Petty", "", "15"),
		row(28, "Expense:Operating", "15", ""),
	)

	cf := BuildCashflow(rows)
	assert.Equal(t, map[string]string{"Asset:Cash": "200.00", "Cash:Petty": "-15.00"}, amounts(cf.Operating))
	assert.Empty(t, cf.Investing)
	assert.Empty(t, cf.Financing)
	assert.True(t, cf.TotalInvesting.IsZero())
	assert.True(t, cf.TotalFinancing.IsZero())
	assert.Equal(t, "185.00", cf.NetChange.StringFixed(2))

	cf = BuildCashflow(rows, "Asset:Bank")
	assert.Equal(t, "1000.00", amounts(cf.Operating)["Asset:Bank"])
	assert.Equal(t, "1185.00", cf.NetChange.StringFixed(2))
}

func TestBuildEmpty(t *testing.T) {
	tb := BuildTrialBalance(nil)
	assert.Empty(t, tb.Accounts)
	assert.True(t, tb.Net.IsZero())

	bs := BuildBalanceSheet(nil)
	assert.True(t, bs.Balanced)
}

func ptr(t time.Time) *time.Time { return &t }
