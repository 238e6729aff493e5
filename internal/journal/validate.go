package journal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/model"
)

// Normalize trims account codes and rounds every amount to two places.
// Validation and posting operate on normalised lines.
func Normalize(lines []model.JournalLine) []model.JournalLine {
	out := make([]model.JournalLine, len(lines))
	for i, l := range lines {
		l.Account = strings.TrimSpace(l.Account)
		l.Debit = model.Round2(l.Debit)
		l.Credit = model.Round2(l.Credit)
		out[i] = l
	}
	return out
}

// ValidateEntry checks a journal input against the double-entry rules:
//  1. at least one line
//  2. every line names an account
//  3. no negative amounts
//  4. a line carries a debit or a credit, never both
//  5. total debits equal total credits
//
// All violations are reported; the returned error matches model.ErrValidation.
func ValidateEntry(in JournalInput) error {
	var errs []error

	if in.Date.IsZero() {
		errs = append(errs, model.Invalid("date", "journal date is required"))
	}

	if len(in.Lines) == 0 {
		errs = append(errs, model.Invalid("lines", "at least one line is required"))
		return errors.Join(errs...)
	}

	lines := Normalize(in.Lines)
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for i, l := range lines {
		if l.Account == "" {
			errs = append(errs, model.Invalid(lineField(i, "account"), "account is required"))
		}
		if l.Debit.IsNegative() {
			errs = append(errs, model.Invalid(lineField(i, "debit"), "debit %s is negative", l.Debit.StringFixed(2)))
		}
		if l.Credit.IsNegative() {
			errs = append(errs, model.Invalid(lineField(i, "credit"), "credit %s is negative", l.Credit.StringFixed(2)))
		}
		hasDebit := !l.Debit.IsZero()
		hasCredit := !l.Credit.IsZero()
		if hasDebit && hasCredit {
			errs = append(errs, model.Invalid(lineField(i, "amount"), "line must not carry both a debit and a credit"))
		}
		if !hasDebit && !hasCredit {
			errs = append(errs, model.Invalid(lineField(i, "amount"), "line must carry a debit or a credit"))
		}
		totalDebit = totalDebit.Add(l.Debit)
		totalCredit = totalCredit.Add(l.Credit)
	}

	if !model.Round2(totalDebit).Equal(model.Round2(totalCredit)) {
		errs = append(errs, model.Invalid("lines", "debits (%s) != credits (%s)",
			model.Round2(totalDebit).StringFixed(2), model.Round2(totalCredit).StringFixed(2)))
	}

	return errors.Join(errs...)
}

func lineField(i int, name string) string {
	return fmt.Sprintf("lines[%d].%s", i, name)
}
