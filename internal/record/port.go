package record

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store defines the interface to the remote ledger store. Implementations own
// transport, authentication and user keying.
type Store interface {
	// ListTransactions fetches the full transaction list
	ListTransactions(ctx context.Context) ([]Transaction, error)

	// CreateTransaction persists a new transaction
	CreateTransaction(ctx context.Context, tx Transaction) error

	// UpdateTransaction persists changes to an existing transaction
	UpdateTransaction(ctx context.Context, tx Transaction) error

	// DeleteTransaction removes a transaction by id
	DeleteTransaction(ctx context.Context, id string) error

	// ListInvestments fetches the full investment list
	ListInvestments(ctx context.Context) ([]Investment, error)

	// CreateInvestment persists a new investment and returns the
	// server-issued id, which may be empty
	CreateInvestment(ctx context.Context, inv Investment) (string, error)

	// UpdateInvestment persists changes to an existing investment
	UpdateInvestment(ctx context.Context, inv Investment) error

	// DeleteInvestment removes an investment by id
	DeleteInvestment(ctx context.Context, id string) error
}

// QuoteSource provides the current market price for a symbol. The second
// return is false when no quote is available.
type QuoteSource interface {
	Current(symbol string) (decimal.Decimal, bool)
}

// Confirmer gates destructive operations. Confirm blocks until the user
// answers; false aborts before any state change or request.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Notifier surfaces asynchronous failures to the presentation layer
type Notifier interface {
	NotifyError(err error)
}

// ConfirmerFunc adapts a function to the Confirmer interface
type ConfirmerFunc func(prompt string) bool

func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(err error)

func (f NotifierFunc) NotifyError(err error) { f(err) }
