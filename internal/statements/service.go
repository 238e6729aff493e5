package statements

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cleared-dev/fincore/internal/id"
	"github.com/cleared-dev/fincore/internal/logger"
	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/store"
)

// ReportRequest selects a statement and its optional inclusive date window.
type ReportRequest struct {
	Kind model.ReportKind
	From *time.Time
	To   *time.Time
}

// Service generates statements from the stored ledger and keeps the report history.
type Service struct {
	store store.Store
	now   func() time.Time
}

// NewService creates a statements Service.
func NewService(s store.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// Build returns the statement named by kind over rows already filtered by date.
func Build(kind model.ReportKind, rows []model.LedgerEntry, cashAccounts ...string) (any, error) {
	switch kind {
	case model.ReportTrialBalance:
		return BuildTrialBalance(rows), nil
	case model.ReportProfitAndLoss:
		return BuildProfitAndLoss(rows), nil
	case model.ReportBalanceSheet:
		return BuildBalanceSheet(rows), nil
	case model.ReportCashflow:
		return BuildCashflow(rows, cashAccounts...), nil
	}
	return nil, model.Invalid("kind", "unknown report kind %q", kind)
}

// GenerateReport builds a statement, appends a snapshot of it to the report
// history and returns the snapshot. Prior snapshots are never replaced.
func (s *Service) GenerateReport(ctx context.Context, tenantID string, req ReportRequest) (model.FinancialReportSnapshot, error) {
	var snap model.FinancialReportSnapshot
	err := s.store.Update(ctx, tenantID, func(data *model.FinanceData) error {
		rows := FilterByDate(data.Ledger, req.From, req.To)
		statement, err := Build(req.Kind, rows, cashAccounts(data.Accounts)...)
		if err != nil {
			return err
		}
		payload, err := json.Marshal(statement)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", req.Kind, err)
		}

		now := s.now()
		snap = model.FinancialReportSnapshot{
			ID:          id.New(),
			Kind:        req.Kind,
			From:        req.From,
			To:          req.To,
			GeneratedAt: now,
			Payload:     payload,
		}
		data.Reports = append(data.Reports, snap)

		if cf, ok := statement.(Cashflow); ok {
			data.Cashflows = append(data.Cashflows, model.CashflowSnapshot{
				ID:          id.New(),
				From:        req.From,
				To:          req.To,
				Operating:   cf.TotalOperating,
				Investing:   cf.TotalInvesting,
				Financing:   cf.TotalFinancing,
				NetChange:   cf.NetChange,
				GeneratedAt: now,
			})
		}
		return nil
	})
	if err != nil {
		return model.FinancialReportSnapshot{}, fmt.Errorf("generating report: %w", err)
	}

	log := logger.ForTenant(ctx, tenantID)
	log.Info().Str("kind", string(snap.Kind)).Str("report", snap.ID).Msg("report generated")
	return snap, nil
}

// Reports returns the report history, oldest first.
func (s *Service) Reports(ctx context.Context, tenantID string) ([]model.FinancialReportSnapshot, error) {
	data, err := s.store.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return data.Reports, nil
}

// Cashflows returns the recorded cashflow totals, oldest first.
func (s *Service) Cashflows(ctx context.Context, tenantID string) ([]model.CashflowSnapshot, error) {
	data, err := s.store.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return data.Cashflows, nil
}

// cashAccounts returns the codes of chart accounts tagged as cash.
func cashAccounts(accounts []model.Account) []string {
	var out []string
	for _, a := range accounts {
		if model.HasTag(a.Tags, CashTag) {
			out = append(out, a.Code)
		}
	}
	return out
}
