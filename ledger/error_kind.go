package ledger

import (
	"fmt"
	"strings"

	"github.com/robinvdvleuten/beancount/ast"
)

// ErrorKind classifies ledger errors for programmatic dispatch (e.g. by the CLI's
// doctor command, or by tests asserting on a specific failure mode) without parsing
// the human-readable message.
type ErrorKind string

const (
	KindParse                     ErrorKind = "Parse"
	KindUnknownOption             ErrorKind = "UnknownOption"
	KindDeprecatedOption          ErrorKind = "DeprecatedOption"
	KindIncludeCycle              ErrorKind = "IncludeCycle"
	KindIncludeNotFound           ErrorKind = "IncludeNotFound"
	KindDuplicateOpen             ErrorKind = "DuplicateOpen"
	KindDuplicateClose            ErrorKind = "DuplicateClose"
	KindCloseBeforeOpen           ErrorKind = "CloseBeforeOpen"
	KindInactiveAccount           ErrorKind = "InactiveAccount"
	KindBadAccountName            ErrorKind = "BadAccountName"
	KindCurrencyNotAllowed        ErrorKind = "CurrencyNotAllowed"
	KindDuplicateBalance          ErrorKind = "DuplicateBalance"
	KindDuplicateCommodity        ErrorKind = "DuplicateCommodity"
	KindUnresolvedCurrency        ErrorKind = "UnresolvedCurrency"
	KindMissingCostNumber         ErrorKind = "MissingCostNumber"
	KindTooManyAutoPostings       ErrorKind = "TooManyAutoPostings"
	KindTransactionDoesNotBalance ErrorKind = "TransactionDoesNotBalance"
	KindNoMatchingLots            ErrorKind = "NoMatchingLots"
	KindAmbiguousMatch            ErrorKind = "AmbiguousMatch"
	KindBalanceFailed             ErrorKind = "BalanceFailed"
	KindPadUnused                 ErrorKind = "PadUnused"
	KindDocumentMissing           ErrorKind = "DocumentMissing"
	KindUnknownPlugin             ErrorKind = "UnknownPlugin"
)

// KindedError is implemented by every ledger error so callers can dispatch on Kind()
// instead of matching message text or concrete type.
type KindedError interface {
	error
	Kind() ErrorKind
}

func (e *AccountNotOpenError) Kind() ErrorKind      { return KindInactiveAccount }
func (e *AccountAlreadyOpenError) Kind() ErrorKind  { return KindDuplicateOpen }
func (e *AccountAlreadyClosedError) Kind() ErrorKind { return KindInactiveAccount }
func (e *AccountNotClosedError) Kind() ErrorKind    { return KindCloseBeforeOpen }
func (e *TransactionNotBalancedError) Kind() ErrorKind {
	return KindTransactionDoesNotBalance
}
func (e *InvalidAmountError) Kind() ErrorKind   { return KindParse }
func (e *BalanceMismatchError) Kind() ErrorKind { return KindBalanceFailed }
func (e *InvalidCostError) Kind() ErrorKind     { return KindMissingCostNumber }
func (e *InvalidPriceError) Kind() ErrorKind    { return KindParse }
func (e *InvalidMetadataError) Kind() ErrorKind { return KindParse }

// GenericError covers error kinds that have no dedicated struct of their own: the
// booking engine's currency/cost/interpolation/lot-matching failures, include-graph
// errors, plugin dispatch errors, and the option/document validators. Bespoke structs
// (above) are kept for errors that predate this addition and already carry extra
// fields consumers might type-assert on (e.g. BalanceMismatchError.Difference).
type GenericError struct {
	ErrKind   ErrorKind
	Pos       ast.Position
	Date      *ast.Date
	Account   ast.Account
	Message   string
	Directive ast.Directive
}

func (e *GenericError) Error() string {
	if e.Pos.Filename != "" {
		return fmt.Sprintf("%s:%d: %s", e.Pos.Filename, e.Pos.Line, e.Message)
	}
	if e.Date != nil {
		return fmt.Sprintf("%s: %s", e.Date.Format("2006-01-02"), e.Message)
	}
	return e.Message
}

func (e *GenericError) Kind() ErrorKind          { return e.ErrKind }
func (e *GenericError) GetPosition() ast.Position { return e.Pos }
func (e *GenericError) GetDirective() ast.Directive { return e.Directive }
func (e *GenericError) GetAccount() ast.Account   { return e.Account }
func (e *GenericError) GetDate() *ast.Date        { return e.Date }

// NewInsufficientInventoryError wraps a lot-matching failure returned by
// Inventory.CanReduceLot/ReduceLot into a KindedError carrying the transaction's
// position. Defaults to NoMatchingLots unless the underlying error already names a
// more specific kind (e.g. AmbiguousMatch from a STRICT reduction).
func NewInsufficientInventoryError(txn *ast.Transaction, account ast.Account, cause error) *GenericError {
	kind := KindNoMatchingLots
	if strings.Contains(cause.Error(), "ambiguous") {
		kind = KindAmbiguousMatch
	}
	return &GenericError{
		ErrKind:   kind,
		Pos:       txn.Pos,
		Date:      txn.Date,
		Account:   account,
		Directive: txn,
		Message:   fmt.Sprintf("%s: %s", account, cause.Error()),
	}
}

// NewCurrencyConstraintError reports a posting whose currency is not among the
// constraint currencies declared on its account's Open directive.
func NewCurrencyConstraintError(txn *ast.Transaction, account ast.Account, currency string, allowed []string) *GenericError {
	return &GenericError{
		ErrKind:   KindCurrencyNotAllowed,
		Pos:       txn.Pos,
		Date:      txn.Date,
		Account:   account,
		Directive: txn,
		Message:   fmt.Sprintf("Currency %s not allowed for account %s (allowed: %v)", currency, account, allowed),
	}
}

// NewInvalidDirectivePriceError wraps a standalone Price directive's validation
// failure (empty commodity/currency, unparseable or zero amount). Distinct from
// InvalidPriceError, which covers posting-level @/@@ price syntax inside a transaction.
func NewInvalidDirectivePriceError(message string, price *ast.Price) *GenericError {
	return &GenericError{
		ErrKind:   KindParse,
		Pos:       price.Pos,
		Date:      price.Date,
		Directive: price,
		Message:   message,
	}
}

// newError is a small constructor to keep call sites in validation.go terse:
// newError(KindUnresolvedCurrency, pos, date, account, directive, "message: %s", arg).
func newError(kind ErrorKind, pos ast.Position, date *ast.Date, account ast.Account, directive ast.Directive, format string, args ...any) *GenericError {
	return &GenericError{
		ErrKind:   kind,
		Pos:       pos,
		Date:      date,
		Account:   account,
		Directive: directive,
		Message:   fmt.Sprintf(format, args...),
	}
}
