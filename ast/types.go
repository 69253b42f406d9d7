package ast

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Amount represents a numerical value with its associated currency or commodity symbol.
// The value is stored as a string to preserve the exact decimal representation from
// the input, avoiding floating-point precision issues.
type Amount struct {
	Value    string
	Currency string
}

// Cost represents the cost basis specification for a posting, used primarily for tracking
// the acquisition cost of investments and other commodities. An empty cost {} selects any
// lot automatically. A merge cost {*} averages all lots together. Otherwise, you can specify
// the per-unit cost amount, acquisition date, and/or a label to identify specific lots for
// capital gains calculations.
//
// Example cost specifications:
//
//	10 HOOL {518.73 USD}              ; Per-unit cost
//	10 HOOL {518.73 USD, 2014-05-01}  ; Cost with acquisition date
//	-5 HOOL {502.12 USD, "first-lot"} ; Cost with label for lot selection
//	10 HOOL {}                        ; Any lot (automatic selection)
//	10 HOOL {*}                       ; Merge/average all lots
//	10 HOOL {{5187.30 USD}}           ; Total cost for the whole posting, not per-unit
type Cost struct {
	IsMerge bool
	IsTotal bool // True for {{...}} total-cost syntax; Amount is still parsed as written
	Amount  *Amount
	Date    *Date
	Label   string
}

// IsEmpty returns true if this is an empty cost specification {}.
// Distinguishes between nil (no cost) and empty cost (any lot selection).
func (c *Cost) IsEmpty() bool {
	return c != nil && !c.IsMerge && c.Amount == nil && c.Date == nil && c.Label == ""
}

// IsMergeCost returns true if this is a merge cost specification {*}.
// Used to average all lots together.
func (c *Cost) IsMergeCost() bool {
	return c != nil && c.IsMerge
}

// DefaultRootNames are the five account categories Beancount ships with. A ledger
// may override these via the name_assets/name_liabilities/name_equity/name_income/
// name_expenses options; the parser itself only checks segment syntax, not which
// root names are in force — that is the account_names validator's job, since it
// runs with the fully resolved option set.
var DefaultRootNames = [5]string{"Assets", "Liabilities", "Equity", "Income", "Expenses"}

// Account represents a Beancount account name consisting of at least two colon-separated
// segments. Every segment, including the first (the account type/root), must start with
// an uppercase letter or digit and contain only letters, numbers, and hyphens. Whether the
// first segment is actually one of the configured root names is checked later against the
// resolved options, not at parse time, so that root names can be overridden per ledger.
//
// Example accounts:
//
//	Assets:US:BofA:Checking
//	Liabilities:CreditCard:CapitalOne
//	Income:US:Acme:Salary
//	Expenses:Home:Rent
type Account string

func (a *Account) Capture(values []string) error {
	parts := strings.Split(values[0], ":")

	if len(parts) < 2 {
		return fmt.Errorf("account must have at least two segments: %s", values[0])
	}

	for i, part := range parts {
		if !isValidAccountSegment(part) {
			return fmt.Errorf("invalid account segment at position %d: %s", i, part)
		}
	}

	*a = Account(values[0])
	return nil
}

// Root returns the first (root) segment of the account name, e.g. "Assets" for
// "Assets:US:BofA:Checking".
func (a Account) Root() string {
	if i := strings.IndexByte(string(a), ':'); i >= 0 {
		return string(a)[:i]
	}
	return string(a)
}

// AccountType indexes an account's root segment against DefaultRootNames. It exists
// mainly for display and for callers that have not configured custom root names;
// ledgers with overridden root names should compare Account.Root() against their
// resolved Config.RootNames instead of relying on this fixed enum.
type AccountType int

const (
	AccountTypeUnknown AccountType = iota
	AccountTypeAssets
	AccountTypeLiabilities
	AccountTypeEquity
	AccountTypeIncome
	AccountTypeExpenses
)

// String returns the default root name for t. Panics for AccountTypeUnknown or any
// out-of-range value, matching Type()'s behavior of only ever returning resolvable types.
func (t AccountType) String() string {
	switch t {
	case AccountTypeAssets:
		return DefaultRootNames[0]
	case AccountTypeLiabilities:
		return DefaultRootNames[1]
	case AccountTypeEquity:
		return DefaultRootNames[2]
	case AccountTypeIncome:
		return DefaultRootNames[3]
	case AccountTypeExpenses:
		return DefaultRootNames[4]
	default:
		panic(fmt.Sprintf("ast: invalid AccountType %d", int(t)))
	}
}

// Type classifies the account against the default root names. Panics if the account's
// root segment is not one of DefaultRootNames — callers using custom root names must
// not rely on this method and should classify via Config.RootNames instead.
func (a Account) Type() AccountType {
	switch a.Root() {
	case DefaultRootNames[0]:
		return AccountTypeAssets
	case DefaultRootNames[1]:
		return AccountTypeLiabilities
	case DefaultRootNames[2]:
		return AccountTypeEquity
	case DefaultRootNames[3]:
		return AccountTypeIncome
	case DefaultRootNames[4]:
		return AccountTypeExpenses
	default:
		panic(fmt.Sprintf("ast: invalid account root %q", a.Root()))
	}
}

// accountSegmentRegex validates every account segment, including the root.
// Must start with uppercase letter or digit, can contain alphanumerics and hyphens.
var accountSegmentRegex = regexp.MustCompile(`^[A-Z0-9][A-Za-z0-9-]*$`)

// isValidAccountSegment checks if an account segment is valid.
func isValidAccountSegment(segment string) bool {
	return len(segment) > 0 && accountSegmentRegex.MatchString(segment)
}

// Date represents a calendar date in ISO 8601 format (YYYY-MM-DD). All Beancount
// directives and transactions must have a date. Dates are used for sorting directives
// chronologically and for balance assertions.
type Date struct {
	time.Time
}

func (d *Date) Capture(values []string) error {
	t, err := time.Parse("2006-01-02", values[0])
	if err != nil {
		return fmt.Errorf("invalid date: %s", values[0])
	}
	d.Time = t
	return nil
}

// IsZero returns true if the Date is nil or represents the zero time.
// This method is nil-safe to prevent panics when repr or other libraries
// check if fields are zero-valued.
func (d *Date) IsZero() bool {
	if d == nil {
		return true
	}
	return d.Time.IsZero()
}

// String returns the date formatted as YYYY-MM-DD, or "" for a nil or zero date.
func (d *Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// Link represents a reference link starting with ^, used to connect related transactions
// together. Links can be used to group transactions that are part of the same event,
// such as a purchase and its associated payment, or multiple legs of a complex transaction.
//
// Example: 2014-05-05 * "Payment" ^trip-to-europe
type Link string

func (l *Link) Capture(values []string) error {
	// Lexer guarantees format \^[A-Za-z0-9_-]+, so we can skip first character
	*l = Link(values[0][1:])
	return nil
}

// Tag represents a hashtag starting with #, used to categorize and filter transactions.
// Tags are commonly used for budgeting categories, projects, or any other classification
// scheme. Multiple tags can be attached to a single transaction.
//
// Example: 2014-05-05 * "Dinner" #dining #entertainment
type Tag string

func (t *Tag) Capture(values []string) error {
	// Lexer guarantees format #[A-Za-z0-9_-]+, so we can skip first character
	*t = Tag(values[0][1:])
	return nil
}

// MetadataValue represents a typed value that can be stored in metadata. Beancount supports
// nine different value types: strings, dates, accounts, currencies, tags, links, numbers,
// amounts, and booleans. This is a discriminated union where exactly one of the pointer
// fields should be non-nil to indicate the value type.
//
// Example metadata with different value types:
//
//	invoice: "INV-2024-001"           ; String (quoted)
//	trip-start: 2024-01-15            ; Date (ISO format)
//	linked-account: Assets:Checking   ; Account (colon-separated)
//	target-currency: USD              ; Currency (uppercase identifier)
//	category: #vacation               ; Tag (with # prefix)
//	ref: ^invoice123                  ; Link (with ^ prefix)
//	quantity: 42                      ; Number (decimal)
//	budget: 1000.00 USD               ; Amount (number + currency)
//	active: TRUE                      ; Boolean (uppercase TRUE/FALSE)
type MetadataValue struct {
	StringValue   *string
	Date          *Date
	Account       *Account
	Currency      *string
	Tag           *Tag
	Link          *Link
	Number        *string // Stored as string to preserve precision
	Amount        *Amount
	Boolean       *bool
}

// Type returns a string representation of the metadata value's type.
func (m *MetadataValue) Type() string {
	if m == nil {
		return "nil"
	}
	switch {
	case m.StringValue != nil:
		return "string"
	case m.Date != nil:
		return "date"
	case m.Account != nil:
		return "account"
	case m.Currency != nil:
		return "currency"
	case m.Tag != nil:
		return "tag"
	case m.Link != nil:
		return "link"
	case m.Number != nil:
		return "number"
	case m.Amount != nil:
		return "amount"
	case m.Boolean != nil:
		return "boolean"
	default:
		return "unknown"
	}
}

// String returns a string representation of the metadata value.
func (m *MetadataValue) String() string {
	if m == nil {
		return ""
	}
	switch {
	case m.StringValue != nil:
		return *m.StringValue
	case m.Date != nil:
		return m.Date.Format("2006-01-02")
	case m.Account != nil:
		return string(*m.Account)
	case m.Currency != nil:
		return *m.Currency
	case m.Tag != nil:
		return string(*m.Tag)
	case m.Link != nil:
		return string(*m.Link)
	case m.Number != nil:
		return *m.Number
	case m.Amount != nil:
		return m.Amount.Value + " " + m.Amount.Currency
	case m.Boolean != nil:
		if *m.Boolean {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}

// Metadata represents a key-value pair that can be attached to any directive or posting.
// Metadata entries are indented on lines immediately following the directive or posting
// they annotate. They provide a flexible way to attach arbitrary structured information
// such as invoice numbers, confirmation codes, or custom categorization.
//
// Metadata values can be of various types including strings, dates, accounts, currencies,
// tags, links, numbers, amounts, and booleans. See MetadataValue for details.
//
// Example:
//
//	2014-05-05 * "Payment"
//	  invoice: "INV-2014-05-001"
//	  trip-start: 2024-01-15
//	  Assets:Checking  -100.00 USD
//	    confirmation: "CONF123456"
//	  Expenses:Services
type Metadata struct {
	Key   string
	Value *MetadataValue
}
