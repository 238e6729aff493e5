package importer

import (
	"strings"

	"github.com/cleared-dev/fincore/internal/journal"
	"github.com/cleared-dev/fincore/internal/model"
)

// CashTag marks the bank side of an imported entry.
const CashTag = "cash"

// Rule sends transactions whose description contains Match, ignoring case,
// to Account.
type Rule struct {
	Match       string `yaml:"match"`
	Account     string `yaml:"account"`
	TaxCategory string `yaml:"tax_category,omitempty"`
}

// Mapping decides the accounts of imported transactions. The first matching
// rule wins; otherwise money in goes to IncomeAccount and money out to
// ExpenseAccount.
type Mapping struct {
	BankAccount    string `yaml:"bank_account"`
	IncomeAccount  string `yaml:"income_account"`
	ExpenseAccount string `yaml:"expense_account"`
	Rules          []Rule `yaml:"rules,omitempty"`
}

// DefaultMapping books against the standard chart.
func DefaultMapping() Mapping {
	return Mapping{
		BankAccount:    "Asset:Cash",
		IncomeAccount:  "Income:Sales",
		ExpenseAccount: "Expense:Operating",
	}
}

func (m Mapping) counterpart(txn BankTransaction) (account, taxCategory string) {
	desc := strings.ToLower(txn.Description)
	for _, r := range m.Rules {
		if r.Match != "" && strings.Contains(desc, strings.ToLower(r.Match)) {
			return r.Account, r.TaxCategory
		}
	}
	if txn.Amount.IsPositive() {
		return m.IncomeAccount, ""
	}
	return m.ExpenseAccount, ""
}

// ToJournals builds one two-line journal input per non-zero transaction.
// The bank line carries the cash tag so it shows in the cashflow statement.
func ToJournals(txns []BankTransaction, m Mapping) []journal.JournalInput {
	var out []journal.JournalInput
	for _, txn := range txns {
		if txn.Amount.IsZero() {
			continue
		}
		account, taxCategory := m.counterpart(txn)
		amount := txn.Amount.Abs()

		bank := model.JournalLine{Account: m.BankAccount, Tags: []string{CashTag}, Memo: txn.Type}
		other := model.JournalLine{Account: account, TaxCategory: taxCategory}
		if txn.Amount.IsPositive() {
			bank.Debit = amount
			other.Credit = amount
		} else {
			other.Debit = amount
			bank.Credit = amount
		}

		out = append(out, journal.JournalInput{
			Date:        txn.Date,
			Description: txn.Description,
			Lines:       []model.JournalLine{bank, other},
			ReferenceID: txn.Reference,
			PostedBy:    "import",
		})
	}
	return out
}
