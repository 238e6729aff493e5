package journal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cleared-dev/fincore/internal/accounts"
	"github.com/cleared-dev/fincore/internal/id"
	"github.com/cleared-dev/fincore/internal/logger"
	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/periods"
	"github.com/cleared-dev/fincore/internal/store"
)

// JournalInput holds the caller-supplied fields of a journal entry.
type JournalInput struct {
	Date        time.Time
	Description string
	Currency    string // defaults to the account currency, then the tenant default
	Lines       []model.JournalLine
	ReferenceID string
	PostedBy    string
}

// PostResult is the journal and the ledger rows derived from it.
type PostResult struct {
	Journal       model.JournalEntry  `json:"journal"`
	LedgerEntries []model.LedgerEntry `json:"ledgerEntries"`
}

// Service is the single write path into the ledger.
type Service struct {
	store store.Store
	now   func() time.Time
}

// NewService creates a journal Service.
func NewService(s store.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// PostJournal validates and posts a journal entry, then persists the tenant
// dataset in one save. On any error nothing is written.
func (s *Service) PostJournal(ctx context.Context, tenantID string, in JournalInput) (PostResult, error) {
	log := logger.ForTenant(ctx, tenantID)

	var res PostResult
	err := s.store.Update(ctx, tenantID, func(data *model.FinanceData) error {
		r, err := Post(data, in, s.now())
		res = r
		return err
	})
	if err != nil {
		log.Warn().Err(err).Time("date", in.Date).Msg("journal rejected")
		return PostResult{}, fmt.Errorf("posting journal: %w", err)
	}

	log.Info().
		Str("journal", res.Journal.ID).
		Str("number", res.Journal.Number).
		Int("lines", len(res.LedgerEntries)).
		Msg("journal posted")
	return res, nil
}

// ImportJournals posts several entries in one update: either all are posted or none.
func (s *Service) ImportJournals(ctx context.Context, tenantID string, inputs []JournalInput) ([]PostResult, error) {
	var results []PostResult
	err := s.store.Update(ctx, tenantID, func(data *model.FinanceData) error {
		now := s.now()
		for i, in := range inputs {
			r, err := Post(data, in, now)
			if err != nil {
				return fmt.Errorf("entry %d: %w", i+1, err)
			}
			results = append(results, r)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("importing journals: %w", err)
	}

	log := logger.ForTenant(ctx, tenantID)
	log.Info().Int("journals", len(results)).Msg("journals imported")
	return results, nil
}

// Post applies a journal input to an already loaded dataset. It is used by
// PostJournal and by components that post inside their own update.
func Post(data *model.FinanceData, in JournalInput, now time.Time) (PostResult, error) {
	if err := ValidateEntry(in); err != nil {
		return PostResult{}, err
	}
	if err := periods.CheckOpen(data.Periods, in.Date); err != nil {
		return PostResult{}, err
	}

	numbers := make([]string, len(data.Journals))
	for i, j := range data.Journals {
		numbers[i] = j.Number
	}

	lines := Normalize(in.Lines)
	journal := model.JournalEntry{
		ID:          id.New(),
		Number:      id.FormatJournalNumber(in.Date, id.NextJournalSeq(numbers, in.Date)),
		Date:        in.Date,
		Description: strings.TrimSpace(in.Description),
		Currency:    in.Currency,
		Lines:       lines,
		ReferenceID: in.ReferenceID,
		PostedBy:    in.PostedBy,
		PostedAt:    now,
	}

	chart := accounts.NewChart(data.Accounts)
	rows := make([]model.LedgerEntry, len(lines))
	for i, l := range lines {
		rows[i] = model.LedgerEntry{
			ID:          id.New(),
			Date:        in.Date,
			Account:     l.Account,
			AccountType: chart.TypeOf(l.Account),
			Debit:       l.Debit,
			Credit:      l.Credit,
			Currency:    lineCurrency(in.Currency, chart, l.Account, data.Settings.DefaultCurrency),
			JournalID:   journal.ID,
			ReferenceID: in.ReferenceID,
			TaxCategory: l.TaxCategory,
			Memo:        l.Memo,
			EntityID:    l.EntityID,
			Tags:        l.Tags,
		}
	}

	data.Journals = append([]model.JournalEntry{journal}, data.Journals...)
	data.Ledger = append(rows, data.Ledger...)
	return PostResult{Journal: journal, LedgerEntries: rows}, nil
}

func lineCurrency(entryCurrency string, chart *accounts.Chart, code, fallback string) string {
	if entryCurrency != "" {
		return entryCurrency
	}
	if a, ok := chart.Get(code); ok && a.Currency != "" {
		return a.Currency
	}
	return fallback
}

// LedgerFilter narrows a ledger query. Zero values match everything.
type LedgerFilter struct {
	From          *time.Time
	To            *time.Time
	AccountPrefix string
	TaxCategory   string
	JournalID     string
}

// Match reports whether a ledger row passes the filter.
func (f LedgerFilter) Match(e model.LedgerEntry) bool {
	if !model.InRange(e.Date, f.From, f.To) {
		return false
	}
	if f.AccountPrefix != "" && !strings.HasPrefix(e.Account, f.AccountPrefix) {
		return false
	}
	if f.TaxCategory != "" && e.TaxCategory != f.TaxCategory {
		return false
	}
	if f.JournalID != "" && e.JournalID != f.JournalID {
		return false
	}
	return true
}

// Ledger returns the tenant's ledger rows matching filter, newest first.
func (s *Service) Ledger(ctx context.Context, tenantID string, filter LedgerFilter) ([]model.LedgerEntry, error) {
	data, err := s.store.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	var out []model.LedgerEntry
	for _, e := range data.Ledger {
		if filter.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Journals returns the tenant's journals, newest first.
func (s *Service) Journals(ctx context.Context, tenantID string) ([]model.JournalEntry, error) {
	data, err := s.store.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return data.Journals, nil
}
