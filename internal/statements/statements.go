// Package statements builds financial statements from ledger rows.
//
// The builders are pure: they read a slice of rows and return a value.
// Point-in-time and range statements are produced by filtering the rows
// with FilterByDate first.
package statements

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/model"
)

// CashTag marks ledger rows that move cash.
const CashTag = "cash"

// AccountBalance is one trial balance row.
type AccountBalance struct {
	Account string            `json:"account"`
	Type    model.AccountType `json:"type,omitempty"`
	Debit   decimal.Decimal   `json:"debit"`
	Credit  decimal.Decimal   `json:"credit"`
	Net     decimal.Decimal   `json:"net"`
}

// TrialBalance lists per-account debit and credit sums.
type TrialBalance struct {
	Accounts    []AccountBalance `json:"accounts"`
	TotalDebit  decimal.Decimal  `json:"totalDebit"`
	TotalCredit decimal.Decimal  `json:"totalCredit"`
	// Net is zero whenever the rows cover the whole ledger.
	Net decimal.Decimal `json:"net"`
}

// Line is one presented amount of a statement section.
type Line struct {
	Account string          `json:"account"`
	Amount  decimal.Decimal `json:"amount"`
}

// ProfitAndLoss presents income as positive earnings and expenses as costs.
type ProfitAndLoss struct {
	Income        []Line          `json:"income"`
	Expenses      []Line          `json:"expenses"`
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetProfit     decimal.Decimal `json:"netProfit"`
}

// BalanceSheet presents assets as raw balances and the credit-normal
// sections negated.
type BalanceSheet struct {
	Assets           []Line          `json:"assets"`
	Liabilities      []Line          `json:"liabilities"`
	Equity           []Line          `json:"equity"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
	// CurrentEarnings is income less expenses not yet closed into equity.
	CurrentEarnings decimal.Decimal `json:"currentEarnings"`
	Balanced        bool            `json:"balanced"`
}

// Cashflow groups cash movements by activity. Only the operating bucket is
// populated; investing and financing are not classified.
type Cashflow struct {
	Operating      []Line          `json:"operating"`
	Investing      []Line          `json:"investing"`
	Financing      []Line          `json:"financing"`
	TotalOperating decimal.Decimal `json:"totalOperating"`
	TotalInvesting decimal.Decimal `json:"totalInvesting"`
	TotalFinancing decimal.Decimal `json:"totalFinancing"`
	NetChange      decimal.Decimal `json:"netChange"`
}

// FilterByDate returns the rows dated within the optional inclusive bounds.
func FilterByDate(rows []model.LedgerEntry, from, to *time.Time) []model.LedgerEntry {
	out := make([]model.LedgerEntry, 0, len(rows))
	for _, e := range rows {
		if model.InRange(e.Date, from, to) {
			out = append(out, e)
		}
	}
	return out
}

// BuildTrialBalance groups rows by account and sums each side.
func BuildTrialBalance(rows []model.LedgerEntry) TrialBalance {
	byAccount := make(map[string]*AccountBalance)
	for _, e := range rows {
		b, ok := byAccount[e.Account]
		if !ok {
			b = &AccountBalance{Account: e.Account, Type: e.Type()}
			byAccount[e.Account] = b
		}
		b.Debit = b.Debit.Add(e.Debit)
		b.Credit = b.Credit.Add(e.Credit)
	}

	tb := TrialBalance{Accounts: make([]AccountBalance, 0, len(byAccount))}
	debit, credit := decimal.Zero, decimal.Zero
	for _, b := range byAccount {
		debit = debit.Add(b.Debit)
		credit = credit.Add(b.Credit)
		b.Debit = model.Round2(b.Debit)
		b.Credit = model.Round2(b.Credit)
		b.Net = b.Debit.Sub(b.Credit)
		tb.Accounts = append(tb.Accounts, *b)
	}
	sort.Slice(tb.Accounts, func(i, j int) bool { return tb.Accounts[i].Account < tb.Accounts[j].Account })

	tb.TotalDebit = model.Round2(debit)
	tb.TotalCredit = model.Round2(credit)
	tb.Net = tb.TotalDebit.Sub(tb.TotalCredit)
	return tb
}

// BuildProfitAndLoss reports income and expense accounts. Income balances are
// negated so credits show as positive earnings.
func BuildProfitAndLoss(rows []model.LedgerEntry) ProfitAndLoss {
	nets := netsByType(rows)

	pl := ProfitAndLoss{
		Income:   lines(nets[model.AccountTypeIncome], true),
		Expenses: lines(nets[model.AccountTypeExpense], false),
	}
	pl.TotalIncome = total(pl.Income)
	pl.TotalExpenses = total(pl.Expenses)
	pl.NetProfit = pl.TotalIncome.Sub(pl.TotalExpenses)
	return pl
}

// BuildBalanceSheet reports asset, liability and equity accounts.
func BuildBalanceSheet(rows []model.LedgerEntry) BalanceSheet {
	nets := netsByType(rows)

	bs := BalanceSheet{
		Assets:      lines(nets[model.AccountTypeAsset], false),
		Liabilities: lines(nets[model.AccountTypeLiability], true),
		Equity:      lines(nets[model.AccountTypeEquity], true),
	}
	bs.TotalAssets = total(bs.Assets)
	bs.TotalLiabilities = total(bs.Liabilities)
	bs.TotalEquity = total(bs.Equity)

	earnings := decimal.Zero
	for _, net := range nets[model.AccountTypeIncome] {
		earnings = earnings.Sub(net)
	}
	for _, net := range nets[model.AccountTypeExpense] {
		earnings = earnings.Sub(net)
	}
	bs.CurrentEarnings = model.Round2(earnings)
	bs.Balanced = bs.TotalAssets.Equal(bs.TotalLiabilities.Add(bs.TotalEquity).Add(bs.CurrentEarnings))
	return bs
}

// BuildCashflow reports movements on rows tagged cash or booked to a Cash:
// account. cashAccounts names further accounts whose rows count as cash.
// Amounts are debit minus credit, so inflows are positive.
func BuildCashflow(rows []model.LedgerEntry, cashAccounts ...string) Cashflow {
	extra := make(map[string]bool, len(cashAccounts))
	for _, code := range cashAccounts {
		extra[code] = true
	}

	operating := make(map[string]decimal.Decimal)
	for _, e := range rows {
		if !isCash(e, extra) {
			continue
		}
		operating[e.Account] = operating[e.Account].Add(e.Net())
	}

	cf := Cashflow{
		Operating: lines(operating, false),
		Investing: []Line{},
		Financing: []Line{},
	}
	cf.TotalOperating = total(cf.Operating)
	cf.TotalInvesting = decimal.Zero
	cf.TotalFinancing = decimal.Zero
	cf.NetChange = cf.TotalOperating.Add(cf.TotalInvesting).Add(cf.TotalFinancing)
	return cf
}

func isCash(e model.LedgerEntry, extra map[string]bool) bool {
	return model.HasTag(e.Tags, CashTag) || strings.HasPrefix(e.Account, model.PrefixCash) || extra[e.Account]
}

func netsByType(rows []model.LedgerEntry) map[model.AccountType]map[string]decimal.Decimal {
	out := make(map[model.AccountType]map[string]decimal.Decimal)
	for _, e := range rows {
		t := e.Type()
		if t == "" {
			continue
		}
		if out[t] == nil {
			out[t] = make(map[string]decimal.Decimal)
		}
		out[t][e.Account] = out[t][e.Account].Add(e.Net())
	}
	return out
}

func lines(nets map[string]decimal.Decimal, negate bool) []Line {
	out := make([]Line, 0, len(nets))
	for account, net := range nets {
		if negate {
			net = net.Neg()
		}
		out = append(out, Line{Account: account, Amount: model.Round2(net)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Account < out[j].Account })
	return out
}

func total(ls []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range ls {
		sum = sum.Add(l.Amount)
	}
	return model.Round2(sum)
}
