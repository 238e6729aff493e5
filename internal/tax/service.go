package tax

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cleared-dev/fincore/internal/id"
	"github.com/cleared-dev/fincore/internal/logger"
	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/statements"
	"github.com/cleared-dev/fincore/internal/store"
)

// Service manages tax profiles and reports tax over the stored ledger.
type Service struct {
	store store.Store
}

// NewService creates a tax Service.
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// UpsertProfile saves a profile. A profile whose name matches an existing
// one, ignoring case, replaces it and keeps its id.
func (s *Service) UpsertProfile(ctx context.Context, tenantID string, p model.TaxProfile) (model.TaxProfile, error) {
	if err := validateProfile(p); err != nil {
		return model.TaxProfile{}, err
	}
	p.Name = strings.TrimSpace(p.Name)

	err := s.store.Update(ctx, tenantID, func(data *model.FinanceData) error {
		for i, existing := range data.TaxProfiles {
			if strings.EqualFold(existing.Name, p.Name) {
				p.ID = existing.ID
				data.TaxProfiles[i] = p
				return nil
			}
		}
		p.ID = id.New()
		data.TaxProfiles = append(data.TaxProfiles, p)
		return nil
	})
	if err != nil {
		return model.TaxProfile{}, fmt.Errorf("saving tax profile: %w", err)
	}

	log := logger.ForTenant(ctx, tenantID)
	log.Info().Str("profile", p.Name).Int("rates", len(p.Rates)).Msg("tax profile saved")
	return p, nil
}

func validateProfile(p model.TaxProfile) error {
	if strings.TrimSpace(p.Name) == "" {
		return model.Invalid("name", "profile name is required")
	}
	for i, r := range p.Rates {
		if strings.TrimSpace(r.Name) == "" {
			return model.Invalid(fmt.Sprintf("rates[%d].name", i), "rate name is required")
		}
		if r.Rate.IsNegative() {
			return model.Invalid(fmt.Sprintf("rates[%d].rate", i), "rate must not be negative")
		}
	}
	return nil
}

// Profiles returns the tenant's tax profiles.
func (s *Service) Profiles(ctx context.Context, tenantID string) ([]model.TaxProfile, error) {
	data, err := s.store.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return data.TaxProfiles, nil
}

// Report builds a tax report over ledger rows within [from, to].
func (s *Service) Report(ctx context.Context, tenantID string, from, to *time.Time) (Report, error) {
	data, err := s.store.Load(ctx, tenantID)
	if err != nil {
		return Report{}, err
	}
	r := BuildTaxReport(statements.FilterByDate(data.Ledger, from, to), data.TaxProfiles)
	r.From, r.To = from, to
	return r, nil
}

// Return builds a tax return over ledger rows within [from, to].
func (s *Service) Return(ctx context.Context, tenantID string, from, to *time.Time) (Return, error) {
	data, err := s.store.Load(ctx, tenantID)
	if err != nil {
		return Return{}, err
	}
	return BuildTaxReturn(data.Ledger, data.TaxProfiles, from, to), nil
}
