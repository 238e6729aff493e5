// Package closing zeroes income and expense balances into equity at the end
// of a reporting window.
package closing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/journal"
	"github.com/cleared-dev/fincore/internal/logger"
	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/periods"
	"github.com/cleared-dev/fincore/internal/statements"
	"github.com/cleared-dev/fincore/internal/store"
)

// ClosingRequest describes a closing entry. A nil Entries uses the stored
// ledger. From and To are inclusive and open-ended when nil. Date defaults
// to To.
type ClosingRequest struct {
	Entries       []model.LedgerEntry
	From          *time.Time
	To            *time.Time
	Date          time.Time
	EquityAccount string
}

// ClosingResult is the posted closing journal and the net income moved to equity.
type ClosingResult struct {
	JournalID string          `json:"journalId"`
	NetIncome decimal.Decimal `json:"netIncome"`
}

// PeriodResult is the outcome of closing a period. JournalID is empty when
// the period had no income or expense balances.
type PeriodResult struct {
	Period    model.Period    `json:"period"`
	JournalID string          `json:"journalId,omitempty"`
	NetIncome decimal.Decimal `json:"netIncome"`
}

// Service posts closing entries through the journal.
type Service struct {
	store store.Store
	now   func() time.Time
}

// NewService creates a closing Service.
func NewService(s store.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// BuildClosingLines returns the lines that zero every income account with a
// credit balance and every expense account with a debit balance, balanced by
// one line to equity. Income accounts with a debit balance and expense
// accounts with a credit balance are left alone.
func BuildClosingLines(entries []model.LedgerEntry, from, to *time.Time, equity string) ([]model.JournalLine, decimal.Decimal) {
	if strings.TrimSpace(equity) == "" {
		equity = model.DefaultEquityAccount
	}

	income := make(map[string]decimal.Decimal)
	expense := make(map[string]decimal.Decimal)
	for _, e := range statements.FilterByDate(entries, from, to) {
		switch e.Type() {
		case model.AccountTypeIncome:
			income[e.Account] = income[e.Account].Add(e.Net())
		case model.AccountTypeExpense:
			expense[e.Account] = expense[e.Account].Add(e.Net())
		}
	}

	var lines []model.JournalLine
	netIncome := decimal.Zero
	for _, account := range sortedKeys(income) {
		balance := model.Round2(income[account].Neg())
		if !balance.IsPositive() {
			continue
		}
		lines = append(lines, model.JournalLine{Account: account, Debit: balance, Memo: "closing"})
		netIncome = netIncome.Add(balance)
	}
	for _, account := range sortedKeys(expense) {
		balance := model.Round2(expense[account])
		if !balance.IsPositive() {
			continue
		}
		lines = append(lines, model.JournalLine{Account: account, Credit: balance, Memo: "closing"})
		netIncome = netIncome.Sub(balance)
	}

	switch {
	case netIncome.IsPositive():
		lines = append(lines, model.JournalLine{Account: equity, Credit: netIncome, Memo: "net income"})
	case netIncome.IsNegative():
		lines = append(lines, model.JournalLine{Account: equity, Debit: netIncome.Neg(), Memo: "net loss"})
	}
	return lines, netIncome
}

// CreateClosingEntry posts a closing entry through the ordinary journal path,
// so it is refused for dates inside a closed period.
func (s *Service) CreateClosingEntry(ctx context.Context, tenantID string, req ClosingRequest) (ClosingResult, error) {
	var res ClosingResult
	err := s.store.Update(ctx, tenantID, func(data *model.FinanceData) error {
		entries := req.Entries
		if entries == nil {
			entries = data.Ledger
		}
		date := req.Date
		if date.IsZero() && req.To != nil {
			date = *req.To
		}

		r, err := post(data, entries, req.From, req.To, date, req.EquityAccount, s.now())
		res = r
		return err
	})
	if err != nil {
		return ClosingResult{}, fmt.Errorf("creating closing entry: %w", err)
	}

	log := logger.ForTenant(ctx, tenantID)
	log.Info().Str("journal", res.JournalID).Str("net_income", res.NetIncome.StringFixed(2)).Msg("closing entry posted")
	return res, nil
}

// ClosePeriod posts the closing entry for a period, dated its last day, and
// then marks it CLOSED. Both happen in one update. A period without income or
// expense balances is closed without a journal.
func (s *Service) ClosePeriod(ctx context.Context, tenantID, periodID, equityAccount string) (PeriodResult, error) {
	var res PeriodResult
	err := s.store.Update(ctx, tenantID, func(data *model.FinanceData) error {
		i := data.FindPeriod(periodID)
		if i < 0 {
			return &model.NotFoundError{Kind: "period", ID: periodID}
		}
		p := data.Periods[i]
		if p.Status == model.PeriodClosed {
			return &model.PeriodClosedError{PeriodID: p.ID, Name: p.Name, Date: p.EndDate}
		}

		now := s.now()
		lines, _ := BuildClosingLines(data.Ledger, &p.StartDate, &p.EndDate, equityAccount)
		if len(lines) > 0 {
			r, err := post(data, data.Ledger, &p.StartDate, &p.EndDate, p.EndDate, equityAccount, now)
			if err != nil {
				return err
			}
			res.JournalID = r.JournalID
			res.NetIncome = r.NetIncome
			data.Periods[i].ClosingJournalID = r.JournalID
		}

		closed, err := periods.MarkClosed(data, periodID, now)
		res.Period = closed
		return err
	})
	if err != nil {
		return PeriodResult{}, fmt.Errorf("closing period: %w", err)
	}

	log := logger.ForTenant(ctx, tenantID)
	log.Info().
		Str("period", res.Period.Name).
		Str("journal", res.JournalID).
		Str("net_income", res.NetIncome.StringFixed(2)).
		Msg("period closed")
	return res, nil
}

func post(data *model.FinanceData, entries []model.LedgerEntry, from, to *time.Time, date time.Time, equity string, now time.Time) (ClosingResult, error) {
	lines, netIncome := BuildClosingLines(entries, from, to, equity)
	if len(lines) == 0 {
		return ClosingResult{}, model.Invalid("entries", "no income or expense balances to close")
	}

	posted, err := journal.Post(data, journal.JournalInput{
		Date:        date,
		Description: closingDescription(from, to),
		Lines:       lines,
		PostedBy:    "closing",
	}, now)
	if err != nil {
		return ClosingResult{}, err
	}
	return ClosingResult{JournalID: posted.Journal.ID, NetIncome: model.Round2(netIncome)}, nil
}

func closingDescription(from, to *time.Time) string {
	const layout = "2006-01-02"
	switch {
	case from != nil && to != nil:
		return fmt.Sprintf("Closing entry %s to %s", from.Format(layout), to.Format(layout))
	case to != nil:
		return "Closing entry to " + to.Format(layout)
	}
	return "Closing entry"
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
