// Package budgets compares planned amounts per account with ledger actuals.
package budgets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/id"
	"github.com/cleared-dev/fincore/internal/logger"
	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/store"
)

// LineInput is the planned amount for one account.
type LineInput struct {
	Account string
	Planned decimal.Decimal
}

// BudgetInput describes a new budget over the inclusive window [From, To].
type BudgetInput struct {
	Name  string
	From  time.Time
	To    time.Time
	Lines []LineInput
}

// Service manages a tenant's budgets.
type Service struct {
	store store.Store
	now   func() time.Time
}

// NewService creates a budgets Service.
func NewService(s store.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// Create validates in and stores a new budget with actuals computed from the ledger.
func (s *Service) Create(ctx context.Context, tenantID string, in BudgetInput) (model.BudgetPlan, error) {
	if err := validate(in); err != nil {
		return model.BudgetPlan{}, err
	}

	var plan model.BudgetPlan
	err := s.store.Update(ctx, tenantID, func(data *model.FinanceData) error {
		now := s.now()
		plan = model.BudgetPlan{
			ID:          id.New(),
			Name:        strings.TrimSpace(in.Name),
			From:        model.Day(in.From),
			To:          model.Day(in.To),
			Lines:       make([]model.BudgetLine, len(in.Lines)),
			GeneratedAt: now,
		}
		for i, l := range in.Lines {
			plan.Lines[i] = model.BudgetLine{Account: strings.TrimSpace(l.Account), Planned: model.Round2(l.Planned)}
		}
		plan.Lines = Actuals(plan, data.Ledger)
		data.Budgets = append(data.Budgets, plan)
		return nil
	})
	if err != nil {
		return model.BudgetPlan{}, fmt.Errorf("creating budget: %w", err)
	}

	log := logger.ForTenant(ctx, tenantID)
	log.Info().Str("budget", plan.ID).Str("name", plan.Name).Msg("budget created")
	return plan, nil
}

// RefreshActuals recomputes the actuals of a budget in place.
func (s *Service) RefreshActuals(ctx context.Context, tenantID, budgetID string) (model.BudgetPlan, error) {
	var plan model.BudgetPlan
	err := s.store.Update(ctx, tenantID, func(data *model.FinanceData) error {
		for i := range data.Budgets {
			if data.Budgets[i].ID != budgetID {
				continue
			}
			now := s.now()
			data.Budgets[i].Lines = Actuals(data.Budgets[i], data.Ledger)
			data.Budgets[i].RefreshedAt = &now
			plan = data.Budgets[i]
			return nil
		}
		return &model.NotFoundError{Kind: "budget", ID: budgetID}
	})
	if err != nil {
		return model.BudgetPlan{}, fmt.Errorf("refreshing budget: %w", err)
	}
	return plan, nil
}

// List returns the tenant's budgets.
func (s *Service) List(ctx context.Context, tenantID string) ([]model.BudgetPlan, error) {
	data, err := s.store.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return data.Budgets, nil
}

// Actuals returns plan's lines with Actual set to |Σ(debit − credit)| of the
// account's ledger rows inside the plan window.
func Actuals(plan model.BudgetPlan, rows []model.LedgerEntry) []model.BudgetLine {
	sums := make(map[string]decimal.Decimal, len(plan.Lines))
	for _, l := range plan.Lines {
		sums[l.Account] = decimal.Zero
	}
	for _, e := range rows {
		if _, ok := sums[e.Account]; !ok {
			continue
		}
		if !model.InRange(e.Date, &plan.From, &plan.To) {
			continue
		}
		sums[e.Account] = sums[e.Account].Add(e.Net())
	}

	out := make([]model.BudgetLine, len(plan.Lines))
	for i, l := range plan.Lines {
		l.Actual = model.Round2(sums[l.Account].Abs())
		out[i] = l
	}
	return out
}

func validate(in BudgetInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return model.Invalid("name", "budget name is required")
	}
	if in.From.IsZero() || in.To.IsZero() {
		return model.Invalid("dates", "from and to are required")
	}
	if model.Day(in.To).Before(model.Day(in.From)) {
		return model.Invalid("dates", "to is before from")
	}
	if len(in.Lines) == 0 {
		return model.Invalid("lines", "a budget needs at least one line")
	}
	seen := make(map[string]bool, len(in.Lines))
	for i, l := range in.Lines {
		account := strings.TrimSpace(l.Account)
		if account == "" {
			return model.Invalid(fmt.Sprintf("lines[%d].account", i), "account is required")
		}
		if seen[account] {
			return model.Invalid(fmt.Sprintf("lines[%d].account", i), "duplicate account %q", account)
		}
		seen[account] = true
		if l.Planned.IsNegative() {
			return model.Invalid(fmt.Sprintf("lines[%d].planned", i), "planned amount must not be negative")
		}
	}
	return nil
}
