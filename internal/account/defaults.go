package account

// DefaultChart returns the starter chart of accounts seeded for a new
// company.
func DefaultChart() []CreateParams {
	return []CreateParams{
		{Code: "1000", Name: "Cash", Type: TypeAsset, Subtype: SubtypeCurrentAsset, Description: "Cash on hand and in banks"},
		{Code: "1100", Name: "Accounts Receivable", Type: TypeAsset, Subtype: SubtypeCurrentAsset, Description: "Amounts owed by customers"},
		{Code: "1200", Name: "Inventory", Type: TypeAsset, Subtype: SubtypeCurrentAsset},
		{Code: "1500", Name: "Equipment", Type: TypeAsset, Subtype: SubtypeFixedAsset, Description: "Machinery and office equipment"},
		{Code: "2000", Name: "Accounts Payable", Type: TypeLiability, Subtype: SubtypeCurrentLiability, Description: "Amounts owed to vendors"},
		{Code: "2100", Name: "Sales Tax Payable", Type: TypeLiability, Subtype: SubtypeCurrentLiability},
		{Code: "2500", Name: "Long-term Loans", Type: TypeLiability, Subtype: SubtypeLongTermLiability},
		{Code: "3000", Name: "Owner's Equity", Type: TypeEquity, Subtype: SubtypeOwnerEquity},
		{Code: "3100", Name: "Retained Earnings", Type: TypeEquity, Subtype: SubtypeOwnerEquity},
		{Code: "4000", Name: "Sales Revenue", Type: TypeRevenue, Subtype: SubtypeOperatingRevenue, Description: "Revenue from goods and services"},
		{Code: "4100", Name: "Interest Income", Type: TypeRevenue, Subtype: SubtypeOtherRevenue},
		{Code: "5000", Name: "Cost of Goods Sold", Type: TypeExpense, Subtype: SubtypeOperatingExpense},
		{Code: "6000", Name: "Rent Expense", Type: TypeExpense, Subtype: SubtypeOperatingExpense},
		{Code: "6100", Name: "Salaries Expense", Type: TypeExpense, Subtype: SubtypeOperatingExpense},
		{Code: "6200", Name: "Utilities Expense", Type: TypeExpense, Subtype: SubtypeOperatingExpense},
		{Code: "6900", Name: "Miscellaneous Expense", Type: TypeExpense, Subtype: SubtypeOtherExpense},
	}
}
