package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// balanceTolerance is the maximum permitted absolute difference between
// total debits and total credits of a transaction.
var balanceTolerance = decimal.New(1, -2) // 0.01

// validateDraft enforces the double-entry invariants on a draft's inputs.
// It runs both on creation and on every draft update, so an entries array
// can never be persisted out of balance.
func validateDraft(description string, entries []Entry) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(description) == "" {
		errs = append(errs, ValidationError{Entry: -1, Reason: "description is required"})
	}

	if len(entries) < 2 {
		errs = append(errs, ValidationError{Entry: -1, Reason: "at least 2 entries are required"})
		return errs
	}

	hundred := decimal.NewFromInt(100)

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero

	for i, e := range entries {
		if e.Debit.IsNegative() {
			errs = append(errs, ValidationError{Entry: i, Reason: "debit must not be negative"})
		}

		if e.Credit.IsNegative() {
			errs = append(errs, ValidationError{Entry: i, Reason: "credit must not be negative"})
		}

		if e.Debit.IsZero() && e.Credit.IsZero() {
			errs = append(errs, ValidationError{Entry: i, Reason: "entry must carry a debit or a credit"})
		}

		if !e.Debit.Mul(hundred).Equal(e.Debit.Mul(hundred).Floor()) {
			errs = append(errs, ValidationError{Entry: i, Reason: fmt.Sprintf("debit %s has more than 2 decimal places", e.Debit)})
		}

		if !e.Credit.Mul(hundred).Equal(e.Credit.Mul(hundred).Floor()) {
			errs = append(errs, ValidationError{Entry: i, Reason: fmt.Sprintf("credit %s has more than 2 decimal places", e.Credit)})
		}

		totalDebit = totalDebit.Add(e.Debit)
		totalCredit = totalCredit.Add(e.Credit)
	}

	if totalDebit.Sub(totalCredit).Abs().GreaterThan(balanceTolerance) {
		errs = append(errs, ValidationError{
			Entry:  -1,
			Reason: fmt.Sprintf("total debits (%s) must equal total credits (%s)", totalDebit.StringFixed(2), totalCredit.StringFixed(2)),
		})
	}

	return errs
}

// totalDebits sums the debit side of an entry set.
func totalDebits(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Debit)
	}

	return total
}
