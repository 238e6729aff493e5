package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalLine is one debit or credit of a journal entry.
type JournalLine struct {
	Account     string          `json:"account"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Memo        string          `json:"memo,omitempty"`
	TaxCategory string          `json:"taxCategory,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	EntityID    string          `json:"entityId,omitempty"`
}

// JournalEntry is a balanced set of lines representing one business event.
type JournalEntry struct {
	ID          string        `json:"id"`
	Number      string        `json:"number"` // "JE-202501-0001"
	Date        time.Time     `json:"date"`
	Description string        `json:"description,omitempty"`
	Currency    string        `json:"currency,omitempty"`
	Lines       []JournalLine `json:"lines"`
	ReferenceID string        `json:"referenceId,omitempty"`
	PostedBy    string        `json:"postedBy,omitempty"`
	PostedAt    time.Time     `json:"postedAt"`
}

// Totals returns the rounded debit and credit sums of the entry.
func (e JournalEntry) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return Round2(debit), Round2(credit)
}

// LedgerEntry is the immutable projection of a single posted journal line.
type LedgerEntry struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Account     string          `json:"account"`
	AccountType AccountType     `json:"accountType,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Currency    string          `json:"currency"`
	JournalID   string          `json:"journalId"`
	ReferenceID string          `json:"referenceId,omitempty"`
	TaxCategory string          `json:"taxCategory,omitempty"`
	Memo        string          `json:"memo,omitempty"`
	EntityID    string          `json:"entityId,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
}

// Net returns debit minus credit.
func (e LedgerEntry) Net() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

// Type returns the typed account classification, falling back to the
// code prefix for rows written without one.
func (e LedgerEntry) Type() AccountType {
	if e.AccountType != "" {
		return e.AccountType
	}
	return TypeFromCode(e.Account)
}
