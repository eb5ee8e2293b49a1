package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestValidateDraft(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	type testCase struct {
		name        string
		description string
		entries     []Entry
		wantReasons int
	}

	tests := []testCase{
		{
			name:        "Balanced",
			description: "Office rent",
			entries: []Entry{
				{AccountID: a, Debit: dec("100")},
				{AccountID: b, Credit: dec("100")},
			},
			wantReasons: 0,
		},
		{
			name:        "BalancedWithinTolerance",
			description: "Rounding residue",
			entries: []Entry{
				{AccountID: a, Debit: dec("100.00")},
				{AccountID: b, Credit: dec("99.99")},
			},
			wantReasons: 0,
		},
		{
			name:        "Unbalanced",
			description: "Broken",
			entries: []Entry{
				{AccountID: a, Debit: dec("100")},
				{AccountID: b, Credit: dec("50")},
			},
			wantReasons: 1,
		},
		{
			name:        "MissingDescription",
			description: "   ",
			entries: []Entry{
				{AccountID: a, Debit: dec("10")},
				{AccountID: b, Credit: dec("10")},
			},
			wantReasons: 1,
		},
		{
			name:        "TooFewEntries",
			description: "Single-sided",
			entries: []Entry{
				{AccountID: a, Debit: dec("10")},
			},
			wantReasons: 1,
		},
		{
			name:        "NegativeAmount",
			description: "Negative",
			entries: []Entry{
				{AccountID: a, Debit: dec("-10")},
				{AccountID: b, Credit: dec("-10")},
			},
			wantReasons: 2,
		},
		{
			name:        "EmptyEntry",
			description: "Zero on both sides",
			entries: []Entry{
				{AccountID: a, Debit: dec("10")},
				{AccountID: b, Credit: dec("10")},
				{AccountID: b},
			},
			wantReasons: 1,
		},
		{
			name:        "TooManyDecimalPlaces",
			description: "Sub-cent",
			entries: []Entry{
				{AccountID: a, Debit: dec("10.005")},
				{AccountID: b, Credit: dec("10.005")},
			},
			wantReasons: 2,
		},
		{
			name:        "BothSidesNonZero",
			description: "Net entry",
			entries: []Entry{
				{AccountID: a, Debit: dec("10"), Credit: dec("5")},
				{AccountID: b, Credit: dec("5")},
			},
			wantReasons: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateDraft(tt.description, tt.entries)
			assert.Len(t, errs, tt.wantReasons)
		})
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "TXN-000001", FormatNumber(1))
	assert.Equal(t, "TXN-000042", FormatNumber(42))
	assert.Equal(t, "TXN-123456", FormatNumber(123456))
	assert.Equal(t, "TXN-1234567", FormatNumber(1234567))
}
