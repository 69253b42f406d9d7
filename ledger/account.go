package ledger

import (
	"github.com/robinvdvleuten/beancount/ast"
)

// AccountType is an alias of ast.AccountType so existing callers (and the handful of
// pinned tests in this package) keep working against the five default root names.
// Ledgers that override root names via RootNames should not rely on this enum and
// should instead compare ast.Account.Root() against RootNames directly.
type AccountType = ast.AccountType

const (
	AccountTypeUnknown    = ast.AccountTypeUnknown
	AccountTypeAssets     = ast.AccountTypeAssets
	AccountTypeLiabilities = ast.AccountTypeLiabilities
	AccountTypeEquity     = ast.AccountTypeEquity
	AccountTypeIncome     = ast.AccountTypeIncome
	AccountTypeExpenses   = ast.AccountTypeExpenses
)

// RootNames configures the five account-category root segments recognized by a
// ledger. Defaults to ast.DefaultRootNames but can be overridden via the
// name_assets/name_liabilities/name_equity/name_income/name_expenses options.
type RootNames struct {
	Assets, Liabilities, Equity, Income, Expenses string
}

// DefaultRootNames returns the standard Beancount root account names.
func DefaultRootNames() RootNames {
	d := ast.DefaultRootNames
	return RootNames{Assets: d[0], Liabilities: d[1], Equity: d[2], Income: d[3], Expenses: d[4]}
}

// Contains reports whether root is one of the five configured root names.
func (r RootNames) Contains(root string) bool {
	return root == r.Assets || root == r.Liabilities || root == r.Equity ||
		root == r.Income || root == r.Expenses
}

// Classify returns the AccountType of root under this RootNames configuration, or
// AccountTypeUnknown if root matches none of them.
func (r RootNames) Classify(root string) AccountType {
	switch root {
	case r.Assets:
		return AccountTypeAssets
	case r.Liabilities:
		return AccountTypeLiabilities
	case r.Equity:
		return AccountTypeEquity
	case r.Income:
		return AccountTypeIncome
	case r.Expenses:
		return AccountTypeExpenses
	default:
		return AccountTypeUnknown
	}
}

// List returns the five names in canonical Assets/Liabilities/Equity/Income/Expenses order.
func (r RootNames) List() [5]string {
	return [5]string{r.Assets, r.Liabilities, r.Equity, r.Income, r.Expenses}
}

// Account represents an account in the ledger
type Account struct {
	Name                 ast.Account
	Type                 AccountType
	OpenDate             *ast.Date
	CloseDate            *ast.Date
	ConstraintCurrencies []string
	BookingMethod        string
	Metadata             []*ast.Metadata
	Inventory            *Inventory // Inventory with lot tracking
}

// IsOpen returns true if the account is open at the given date
func (a *Account) IsOpen(date *ast.Date) bool {
	if a.OpenDate == nil {
		return false
	}

	// Account must be opened before or on the date
	if a.OpenDate.After(date.Time) {
		return false
	}

	// If there's a close date, check that the date is not after closing
	// Transactions are allowed ON the close date, but not AFTER
	if a.CloseDate != nil && date.After(a.CloseDate.Time) {
		return false
	}

	return true
}

// IsClosed returns true if the account has been closed
func (a *Account) IsClosed() bool {
	return a.CloseDate != nil
}

// ParseAccountType classifies account against the default root names. Use
// RootNames.Classify(account.Root()) directly when the ledger overrides root names.
func ParseAccountType(account ast.Account) AccountType {
	return DefaultRootNames().Classify(account.Root())
}
