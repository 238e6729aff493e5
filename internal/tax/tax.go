// Package tax computes tax on ad-hoc amounts and summarises tax over the ledger.
package tax

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/model"
)

var one = decimal.NewFromInt(1)

// LineInput is an amount to compute tax for. Rate is a percentage.
type LineInput struct {
	Category  string          `json:"category"`
	Rate      decimal.Decimal `json:"rate"`
	Amount    decimal.Decimal `json:"amount"`
	Inclusive bool            `json:"inclusive"`
}

// CalculationLine is a computed line. For inclusive lines Amount is gross.
type CalculationLine struct {
	Category      string          `json:"category"`
	Rate          decimal.Decimal `json:"rate"`
	Amount        decimal.Decimal `json:"amount"`
	Inclusive     bool            `json:"inclusive"`
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
}

// CategorySummary totals one tax category.
type CategorySummary struct {
	Category string          `json:"category"`
	Rate     decimal.Decimal `json:"rate"`
	Taxable  decimal.Decimal `json:"taxable"`
	Tax      decimal.Decimal `json:"tax"`
}

// Summary totals calculation lines by category.
type Summary struct {
	Categories   []CategorySummary `json:"categories"`
	TotalTaxable decimal.Decimal   `json:"totalTaxable"`
	TotalTax     decimal.Decimal   `json:"totalTax"`
}

// ReportLine is the ledger activity of one tax category.
type ReportLine struct {
	Category  string          `json:"category"`
	Rate      decimal.Decimal `json:"rate"`
	Inclusive bool            `json:"inclusive"`
	Net       decimal.Decimal `json:"net"`
	Taxable   decimal.Decimal `json:"taxable"`
	Tax       decimal.Decimal `json:"tax"`
	// Matched is false when no profile rate was found and a 0% rate applied.
	Matched bool `json:"matched"`
}

// Report groups ledger rows by tax category.
type Report struct {
	From         *time.Time      `json:"from,omitempty"`
	To           *time.Time      `json:"to,omitempty"`
	Lines        []ReportLine    `json:"lines"`
	TotalTaxable decimal.Decimal `json:"totalTaxable"`
	TotalTax     decimal.Decimal `json:"totalTax"`
	Insights     []string        `json:"insights"`
}

// Return wraps a report with the period it covers and advisory notes.
type Return struct {
	PeriodStart *time.Time `json:"periodStart,omitempty"`
	PeriodEnd   *time.Time `json:"periodEnd,omitempty"`
	Report      Report     `json:"report"`
	Notes       []string   `json:"notes"`
}

// ReturnNotes accompany every tax return.
var ReturnNotes = []string{
	"Figures are derived from ledger tax categories and tax profile rates.",
	"Review the insights and unmatched categories before lodging.",
	"This return is a working paper and is not lodged automatically.",
}

// Calculate computes tax for one line. Inclusive amounts are gross: the
// taxable base is amount / (1 + rate/100). Exclusive amounts are the base.
// An inclusive rate of -100% or below has no base; the whole amount is
// taxable and no tax is extracted.
func Calculate(in LineInput) CalculationLine {
	out := CalculationLine{
		Category:  in.Category,
		Rate:      in.Rate,
		Amount:    model.Round2(in.Amount),
		Inclusive: in.Inclusive,
	}
	if in.Inclusive {
		divisor := one.Add(model.Percent(one, in.Rate))
		if !divisor.IsPositive() {
			out.TaxableAmount = out.Amount
			out.TaxAmount = decimal.Zero
			return out
		}
		out.TaxableAmount = model.Round2(in.Amount.Div(divisor))
		out.TaxAmount = out.Amount.Sub(out.TaxableAmount)
	} else {
		out.TaxableAmount = out.Amount
		out.TaxAmount = model.Round2(model.Percent(in.Amount, in.Rate))
	}
	return out
}

// CalculateTaxLines computes every line.
func CalculateTaxLines(lines []LineInput) []CalculationLine {
	out := make([]CalculationLine, len(lines))
	for i, l := range lines {
		out[i] = Calculate(l)
	}
	return out
}

// SummarizeTax aggregates lines by category. The category rate is the rate
// of its first line.
func SummarizeTax(lines []CalculationLine) Summary {
	index := make(map[string]int)
	var s Summary
	s.Categories = []CategorySummary{}
	for _, l := range lines {
		i, ok := index[l.Category]
		if !ok {
			s.Categories = append(s.Categories, CategorySummary{Category: l.Category, Rate: l.Rate})
			i = len(s.Categories) - 1
			index[l.Category] = i
		}
		s.Categories[i].Taxable = s.Categories[i].Taxable.Add(l.TaxableAmount)
		s.Categories[i].Tax = s.Categories[i].Tax.Add(l.TaxAmount)
	}

	taxable, tax := decimal.Zero, decimal.Zero
	for i := range s.Categories {
		c := &s.Categories[i]
		c.Taxable = model.Round2(c.Taxable)
		c.Tax = model.Round2(c.Tax)
		taxable = taxable.Add(c.Taxable)
		tax = tax.Add(c.Tax)
	}
	sort.Slice(s.Categories, func(i, j int) bool { return s.Categories[i].Category < s.Categories[j].Category })
	s.TotalTaxable = model.Round2(taxable)
	s.TotalTax = model.Round2(tax)
	return s
}

// GenerateTaxInsights returns advisory messages about lines and ledger rows.
// They never block a posting or a report.
func GenerateTaxInsights(lines []CalculationLine, rows []model.LedgerEntry) []string {
	insights := []string{}

	zero := make(map[string]bool)
	for _, l := range lines {
		if l.Rate.IsZero() && !zero[l.Category] {
			zero[l.Category] = true
			insights = append(insights, fmt.Sprintf("Category %q has a 0%% rate; confirm it is exempt or zero-rated.", l.Category))
		}
	}

	missing := 0
	for _, e := range rows {
		t := e.Type()
		if (t == model.AccountTypeIncome || t == model.AccountTypeExpense) && e.TaxCategory == "" {
			missing++
		}
	}
	if missing > 0 {
		insights = append(insights, fmt.Sprintf("%d income or expense ledger rows have no tax category.", missing))
	}
	return insights
}

// LookupRate finds the rate for a category: a profile rate with the same
// name, else the first rate of a profile with the same name. Names compare
// case-insensitively.
func LookupRate(profiles []model.TaxProfile, category string) (model.TaxRate, bool) {
	for _, p := range profiles {
		for _, r := range p.Rates {
			if strings.EqualFold(r.Name, category) {
				return r, true
			}
		}
	}
	for _, p := range profiles {
		if strings.EqualFold(p.Name, category) && len(p.Rates) > 0 {
			return p.Rates[0], true
		}
	}
	return model.TaxRate{}, false
}

// BuildTaxReport groups ledger rows by tax category, takes the absolute net
// of each and applies the matching profile rate. Unmatched categories get a
// 0% rate. Rows without a category are left out.
func BuildTaxReport(rows []model.LedgerEntry, profiles []model.TaxProfile) Report {
	nets := make(map[string]decimal.Decimal)
	for _, e := range rows {
		if e.TaxCategory == "" {
			continue
		}
		nets[e.TaxCategory] = nets[e.TaxCategory].Add(e.Net())
	}

	categories := make([]string, 0, len(nets))
	for c := range nets {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	r := Report{Lines: make([]ReportLine, 0, len(categories))}
	var calc []CalculationLine
	taxable, tax := decimal.Zero, decimal.Zero
	for _, c := range categories {
		rate, ok := LookupRate(profiles, c)
		line := Calculate(LineInput{Category: c, Rate: rate.Rate, Amount: nets[c].Abs(), Inclusive: rate.Inclusive})
		calc = append(calc, line)
		r.Lines = append(r.Lines, ReportLine{
			Category:  c,
			Rate:      rate.Rate,
			Inclusive: rate.Inclusive,
			Net:       line.Amount,
			Taxable:   line.TaxableAmount,
			Tax:       line.TaxAmount,
			Matched:   ok,
		})
		taxable = taxable.Add(line.TaxableAmount)
		tax = tax.Add(line.TaxAmount)
	}
	r.TotalTaxable = model.Round2(taxable)
	r.TotalTax = model.Round2(tax)
	r.Insights = GenerateTaxInsights(calc, rows)
	return r
}

// BuildTaxReturn builds the report for rows within [from, to] and wraps it
// with the period bounds and the fixed notes.
func BuildTaxReturn(rows []model.LedgerEntry, profiles []model.TaxProfile, from, to *time.Time) Return {
	var inRange []model.LedgerEntry
	for _, e := range rows {
		if model.InRange(e.Date, from, to) {
			inRange = append(inRange, e)
		}
	}
	report := BuildTaxReport(inRange, profiles)
	report.From, report.To = from, to
	return Return{
		PeriodStart: from,
		PeriodEnd:   to,
		Report:      report,
		Notes:       append([]string(nil), ReturnNotes...),
	}
}
