package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type classifies accounts in the chart of accounts.
type Type string

const (
	TypeAsset     Type = "Asset"
	TypeLiability Type = "Liability"
	TypeEquity    Type = "Equity"
	TypeRevenue   Type = "Revenue"
	TypeExpense   Type = "Expense"
)

// Subtype refines a Type. Each subtype is valid for exactly one type.
type Subtype string

const (
	SubtypeCurrentAsset      Subtype = "Current Asset"
	SubtypeFixedAsset        Subtype = "Fixed Asset"
	SubtypeCurrentLiability  Subtype = "Current Liability"
	SubtypeLongTermLiability Subtype = "Long-term Liability"
	SubtypeOwnerEquity       Subtype = "Owner Equity"
	SubtypeOperatingRevenue  Subtype = "Operating Revenue"
	SubtypeOtherRevenue      Subtype = "Other Revenue"
	SubtypeOperatingExpense  Subtype = "Operating Expense"
	SubtypeOtherExpense      Subtype = "Other Expense"
)

var validSubtypes = map[Type][]Subtype{
	TypeAsset:     {SubtypeCurrentAsset, SubtypeFixedAsset},
	TypeLiability: {SubtypeCurrentLiability, SubtypeLongTermLiability},
	TypeEquity:    {SubtypeOwnerEquity},
	TypeRevenue:   {SubtypeOperatingRevenue, SubtypeOtherRevenue},
	TypeExpense:   {SubtypeOperatingExpense, SubtypeOtherExpense},
}

// ValidType reports whether t is one of the five account types.
func ValidType(t Type) bool {
	_, ok := validSubtypes[t]
	return ok
}

// ValidSubtype reports whether st is a valid subtype for t.
func ValidSubtype(t Type, st Subtype) bool {
	for _, s := range validSubtypes[t] {
		if s == st {
			return true
		}
	}

	return false
}

// IncreasesWithDebit reports whether a debit raises this type's balance.
// Asset and Expense accounts grow with debits; Liability, Equity and
// Revenue accounts grow with credits.
func (t Type) IncreasesWithDebit() bool {
	return t == TypeAsset || t == TypeExpense
}

// Account is a single entry in the chart of accounts. Balance is owned by
// the ledger posting engine; no public update path writes it directly.
type Account struct {
	ID          uuid.UUID
	Code        string
	Name        string
	Type        Type
	Subtype     Subtype
	ParentID    *uuid.UUID
	Balance     decimal.Decimal
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
