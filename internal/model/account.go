package model

import (
	"strings"
	"time"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeIncome    AccountType = "INCOME"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// Account code prefixes. Matching is exact and case-sensitive.
const (
	PrefixAsset     = "Asset:"
	PrefixLiability = "Liability:"
	PrefixEquity    = "Equity:"
	PrefixIncome    = "Income:"
	PrefixExpense   = "Expense:"
	PrefixCash      = "Cash:"
)

// DefaultEquityAccount receives the net result of a closing entry.
const DefaultEquityAccount = "Equity:RetainedEarnings"

// Account represents one entry of a tenant's chart of accounts.
type Account struct {
	ID         string      `json:"id"`
	Code       string      `json:"code"`
	Name       string      `json:"name"`
	Type       AccountType `json:"type"`
	ParentCode string      `json:"parentCode,omitempty"`
	Currency   string      `json:"currency,omitempty"`
	Tags       []string    `json:"tags,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt,omitempty"`
}

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// CreditNormal reports whether the account type increases on the credit side.
func (t AccountType) CreditNormal() bool {
	return t == AccountTypeLiability || t == AccountTypeEquity || t == AccountTypeIncome
}

// ParseAccountType accepts the canonical upper-case names and their lower-case forms.
func ParseAccountType(s string) (AccountType, bool) {
	t := AccountType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

// TypeFromCode derives the account type from the first segment of a code.
// "Income:Sales" -> INCOME. Returns "" when the prefix is not recognised.
func TypeFromCode(code string) AccountType {
	switch {
	case strings.HasPrefix(code, PrefixAsset):
		return AccountTypeAsset
	case strings.HasPrefix(code, PrefixLiability):
		return AccountTypeLiability
	case strings.HasPrefix(code, PrefixEquity):
		return AccountTypeEquity
	case strings.HasPrefix(code, PrefixIncome):
		return AccountTypeIncome
	case strings.HasPrefix(code, PrefixExpense):
		return AccountTypeExpense
	}
	return ""
}

// HasTag reports whether tag is present in tags.
func HasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
