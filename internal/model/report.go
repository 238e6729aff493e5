package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ReportKind names a financial statement.
type ReportKind string

const (
	ReportTrialBalance  ReportKind = "TRIAL_BALANCE"
	ReportProfitAndLoss ReportKind = "PROFIT_AND_LOSS"
	ReportBalanceSheet  ReportKind = "BALANCE_SHEET"
	ReportCashflow      ReportKind = "CASHFLOW"
)

// FinancialReportSnapshot is an immutable, timestamped copy of a generated statement.
type FinancialReportSnapshot struct {
	ID          string          `json:"id"`
	Kind        ReportKind      `json:"kind"`
	From        *time.Time      `json:"from,omitempty"`
	To          *time.Time      `json:"to,omitempty"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Payload     json.RawMessage `json:"payload"`
}

// CashflowSnapshot records the totals of a generated cashflow statement.
type CashflowSnapshot struct {
	ID          string          `json:"id"`
	From        *time.Time      `json:"from,omitempty"`
	To          *time.Time      `json:"to,omitempty"`
	Operating   decimal.Decimal `json:"operating"`
	Investing   decimal.Decimal `json:"investing"`
	Financing   decimal.Decimal `json:"financing"`
	NetChange   decimal.Decimal `json:"netChange"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// BudgetLine is the plan and actual for one account.
type BudgetLine struct {
	Account string          `json:"account"`
	Planned decimal.Decimal `json:"planned"`
	Actual  decimal.Decimal `json:"actual"`
}

// BudgetPlan is a set of planned amounts over a date window.
type BudgetPlan struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	From        time.Time    `json:"from"`
	To          time.Time    `json:"to"`
	Lines       []BudgetLine `json:"lines"`
	GeneratedAt time.Time    `json:"generatedAt"`
	RefreshedAt *time.Time   `json:"refreshedAt,omitempty"`
}
