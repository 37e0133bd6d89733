package record

import "errors"

// Validation errors
var (
	ErrMissingID            = errors.New("record id is required")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidDate          = errors.New("date is required")
	ErrSignMismatch         = errors.New("amount sign does not match category")
	ErrInvalidSymbol        = errors.New("symbol is required")
	ErrInvalidShares        = errors.New("shares must be positive")
	ErrInvalidPurchasePrice = errors.New("purchase price must be positive")
)

// Operation errors
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvestmentNotFound  = errors.New("investment not found")
	ErrDeclined            = errors.New("confirmation declined")
	ErrQuoteUnavailable    = errors.New("quote unavailable for symbol")
)
