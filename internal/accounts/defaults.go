package accounts

import "github.com/tally-dev/tally/internal/model"

// DefaultChart returns the starter chart of accounts for a new personal
// ledger. Balances start at zero; detail-bearing accounts get an empty
// variant of the right shape.
func DefaultChart() []model.Account {
	accts := []model.Account{
		{ID: 1010, Name: "Cash", Group: model.GroupAssets, Category: model.CategoryCash},
		{ID: 1020, Name: "Checking", Group: model.GroupAssets, Category: model.CategoryCash},
		{ID: 1030, Name: "Brokerage", Group: model.GroupAssets, Category: model.CategoryStocks, Detail: &model.InvestmentDetail{}},
		{ID: 1040, Name: "Savings", Group: model.GroupAssets, Category: model.CategorySavings, Detail: &model.SavingsDetail{}},
		{ID: 1050, Name: "Receivables", Group: model.GroupAssets, Category: model.CategoryReceivables},
		{ID: 1060, Name: "Home", Group: model.GroupAssets, Category: model.CategoryRealEstate, Detail: &model.RealEstateDetail{}},
		{ID: 2010, Name: "Bank Loan", Group: model.GroupCapital, Category: model.CategoryLiability, Detail: &model.LiabilityDetail{}},
		{ID: 2020, Name: "Credit Card", Group: model.GroupCapital, Category: model.CategoryCreditCard, Detail: &model.CreditCardDetail{}},
		{ID: 3010, Name: "Equity Fund", Group: model.GroupCapital, Category: model.CategoryEquityFund},
		{ID: 4010, Name: "Salary", Group: model.GroupIncome, Category: model.CategoryGeneral},
		{ID: 4020, Name: "Interest Income", Group: model.GroupIncome, Category: model.CategoryGeneral},
		{ID: 5010, Name: "Living Expenses", Group: model.GroupExpenses, Category: model.CategoryGeneral},
		{ID: 5020, Name: "Interest Expense", Group: model.GroupExpenses, Category: model.CategoryGeneral},
		{ID: 5030, Name: "Fees", Group: model.GroupExpenses, Category: model.CategoryGeneral},
	}
	for i := range accts {
		accts[i].Status = model.StatusActive
	}
	return accts
}
