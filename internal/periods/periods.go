// Package periods maintains the open/closed accounting period registry that
// gates journal postings.
package periods

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cleared-dev/fincore/internal/id"
	"github.com/cleared-dev/fincore/internal/logger"
	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/store"
)

// PeriodInput describes a new period. Bounds are inclusive calendar days.
type PeriodInput struct {
	Name  string
	Start time.Time
	End   time.Time
}

// Service manages a tenant's periods.
type Service struct {
	store store.Store
	now   func() time.Time
}

// NewService creates a period Service.
func NewService(s store.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// Create registers a new OPEN period.
func (s *Service) Create(ctx context.Context, tenantID string, in PeriodInput) (model.Period, error) {
	var p model.Period
	err := s.store.Update(ctx, tenantID, func(data *model.FinanceData) error {
		created, err := Add(data, in)
		p = created
		return err
	})
	if err != nil {
		return model.Period{}, fmt.Errorf("creating period: %w", err)
	}
	return p, nil
}

// Close marks a period CLOSED. Closing an already closed period is a no-op.
func (s *Service) Close(ctx context.Context, tenantID, periodID string) (model.Period, error) {
	var p model.Period
	err := s.store.Update(ctx, tenantID, func(data *model.FinanceData) error {
		closed, err := MarkClosed(data, periodID, s.now())
		p = closed
		return err
	})
	if err != nil {
		return model.Period{}, fmt.Errorf("closing period: %w", err)
	}
	log := logger.ForTenant(ctx, tenantID)
	log.Info().Str("period", p.Name).Msg("period closed")
	return p, nil
}

// Reopen marks a period OPEN again so postings into it are accepted.
func (s *Service) Reopen(ctx context.Context, tenantID, periodID string) (model.Period, error) {
	var p model.Period
	err := s.store.Update(ctx, tenantID, func(data *model.FinanceData) error {
		i := data.FindPeriod(periodID)
		if i < 0 {
			return &model.NotFoundError{Kind: "period", ID: periodID}
		}
		data.Periods[i].Status = model.PeriodOpen
		data.Periods[i].ClosedAt = nil
		p = data.Periods[i]
		return nil
	})
	if err != nil {
		return model.Period{}, fmt.Errorf("reopening period: %w", err)
	}
	log := logger.ForTenant(ctx, tenantID)
	log.Info().Str("period", p.Name).Msg("period reopened")
	return p, nil
}

// List returns the tenant's periods ordered by start date.
func (s *Service) List(ctx context.Context, tenantID string) ([]model.Period, error) {
	data, err := s.store.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := append([]model.Period(nil), data.Periods...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

// Add validates in and appends a new OPEN period to data.
func Add(data *model.FinanceData, in PeriodInput) (model.Period, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Period{}, model.Invalid("name", "period name is required")
	}
	if in.Start.IsZero() || in.End.IsZero() {
		return model.Period{}, model.Invalid("dates", "start and end dates are required")
	}
	if model.Day(in.End).Before(model.Day(in.Start)) {
		return model.Period{}, model.Invalid("dates", "end %s is before start %s",
			in.End.Format("2006-01-02"), in.Start.Format("2006-01-02"))
	}

	p := model.Period{
		ID:        id.New(),
		Name:      name,
		StartDate: model.Day(in.Start),
		EndDate:   model.Day(in.End),
		Status:    model.PeriodOpen,
	}
	for _, existing := range data.Periods {
		if existing.Overlaps(p) {
			return model.Period{}, model.Invalid("dates", "period overlaps %q", existing.Name)
		}
	}
	data.Periods = append(data.Periods, p)
	return p, nil
}

// MarkClosed sets a period CLOSED and stamps ClosedAt.
func MarkClosed(data *model.FinanceData, periodID string, now time.Time) (model.Period, error) {
	i := data.FindPeriod(periodID)
	if i < 0 {
		return model.Period{}, &model.NotFoundError{Kind: "period", ID: periodID}
	}
	if data.Periods[i].Status == model.PeriodClosed {
		return data.Periods[i], nil
	}
	closedAt := now
	data.Periods[i].Status = model.PeriodClosed
	data.Periods[i].ClosedAt = &closedAt
	return data.Periods[i], nil
}

// ClosedPeriodFor returns the closed period containing date, if any.
func ClosedPeriodFor(periods []model.Period, date time.Time) (model.Period, bool) {
	for _, p := range periods {
		if p.Status == model.PeriodClosed && p.Contains(date) {
			return p, true
		}
	}
	return model.Period{}, false
}

// CheckOpen returns a *model.PeriodClosedError when date lies in a closed period.
func CheckOpen(periods []model.Period, date time.Time) error {
	if p, ok := ClosedPeriodFor(periods, date); ok {
		return &model.PeriodClosedError{PeriodID: p.ID, Name: p.Name, Date: date}
	}
	return nil
}
