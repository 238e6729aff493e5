package statements

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/store"
)

var generatedAt = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	s := store.NewLocked(store.NewMemory())
	require.NoError(t, s.Update(context.Background(), "acme", func(d *model.FinanceData) error {
		d.Ledger = sampleLedger()
		d.Accounts = []model.Account{{Code: "Asset:Bank", Type: model.AccountTypeAsset, Tags: []string{"cash"}}}
		return nil
	}))
	svc := NewService(s)
	svc.now = func() time.Time { return generatedAt }
	return svc, s
}

func TestGenerateReport(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	to := date(2025, 1, 15)
	snap, err := svc.GenerateReport(ctx, "acme", ReportRequest{Kind: model.ReportProfitAndLoss, To: &to})
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, model.ReportProfitAndLoss, snap.Kind)
	assert.Equal(t, generatedAt, snap.GeneratedAt)

	var pl ProfitAndLoss
	require.NoError(t, json.Unmarshal(snap.Payload, &pl))
	assert.Equal(t, "200.00", pl.NetProfit.StringFixed(2), "rent on the 25th is outside the window")

	_, err = svc.GenerateReport(ctx, "acme", ReportRequest{Kind: model.ReportTrialBalance})
	require.NoError(t, err)

	history, err := svc.Reports(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, history, 2, "snapshots are appended")
	assert.Equal(t, snap.ID, history[0].ID)
	assert.Equal(t, model.ReportTrialBalance, history[1].Kind)
}

func TestGenerateReport_Cashflow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	snap, err := svc.GenerateReport(ctx, "acme", ReportRequest{Kind: model.ReportCashflow})
	require.NoError(t, err)

	var cf Cashflow
	require.NoError(t, json.Unmarshal(snap.Payload, &cf))
	assert.Equal(t, "1200.00", cf.NetChange.StringFixed(2), "chart accounts tagged cash are included")

	flows, err := svc.Cashflows(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, "1200.00", flows[0].Operating.StringFixed(2))
	assert.True(t, flows[0].Investing.IsZero())
}

func TestGenerateReport_UnknownKind(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.GenerateReport(ctx, "acme", ReportRequest{Kind: "INCOME_STATEMENT"})
	require.ErrorIs(t, err, model.ErrValidation)

	history, err := svc.Reports(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, history)
}
