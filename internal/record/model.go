package record

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DateOnly is the calendar-date layout used across the ledger wire format.
const DateOnly = "2006-01-02"

// Category is the closed set of transaction categories. Only Salary is
// income-signed; every other category carries a negative amount.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryRent          Category = "Rent"
	CategoryUtilities     Category = "Utilities"
	CategoryEntertainment Category = "Entertainment"
	CategoryTravel        Category = "Travel"
	CategoryShopping      Category = "Shopping"
	CategoryHealth        Category = "Health"
	CategorySalary        Category = "Salary"
	CategoryOther         Category = "Other"
)

// Categories returns all categories in display order
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryRent,
		CategoryUtilities,
		CategoryEntertainment,
		CategoryTravel,
		CategoryShopping,
		CategoryHealth,
		CategorySalary,
		CategoryOther,
	}
}

// ParseCategory maps a raw string onto the closed enumeration. Unknown or
// empty values collapse to Other.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryFood, CategoryRent, CategoryUtilities, CategoryEntertainment,
		CategoryTravel, CategoryShopping, CategoryHealth, CategorySalary, CategoryOther:
		return Category(s)
	default:
		return CategoryOther
	}
}

// IsIncome returns true if amounts in this category are income-signed
func (c Category) IsIncome() bool {
	return c == CategorySalary
}

// Transaction represents a signed cash movement with category and date
type Transaction struct {
	ID       string
	Amount   decimal.Decimal
	Category Category
	Date     time.Time
}

// Validate checks the sign invariant: Salary amounts are non-negative,
// all other categories are non-positive.
func (t *Transaction) Validate() error {
	if t.ID == "" {
		return ErrMissingID
	}

	if t.Date.IsZero() {
		return ErrInvalidDate
	}

	if t.Category.IsIncome() {
		if t.Amount.IsNegative() {
			return ErrSignMismatch
		}
		return nil
	}

	if t.Amount.IsPositive() {
		return ErrSignMismatch
	}

	return nil
}

// TransactionDraft is user input for a new or edited transaction. Amount is
// the raw magnitude as entered; the manager normalizes its sign from the
// category.
type TransactionDraft struct {
	Amount   decimal.Decimal
	Category Category
	Date     time.Time
}

// Validate checks draft fields before normalization
func (d *TransactionDraft) Validate() error {
	if !d.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	if d.Date.IsZero() {
		return ErrInvalidDate
	}

	return nil
}

// normalized builds a Transaction from the draft with the sign invariant
// applied: Salary stores +|amount|, everything else stores -|amount|.
func (d *TransactionDraft) normalized(id string) Transaction {
	amount := d.Amount.Abs()
	category := ParseCategory(string(d.Category))
	if !category.IsIncome() {
		amount = amount.Neg()
	}

	return Transaction{
		ID:       id,
		Amount:   amount,
		Category: category,
		Date:     d.Date,
	}
}

// Investment represents a quantity of shares of a symbol acquired at a price
// and date
type Investment struct {
	ID            string
	Symbol        string
	Shares        decimal.Decimal
	PurchasePrice decimal.Decimal
	PurchaseDate  time.Time
}

// Validate checks the investment fields
func (i *Investment) Validate() error {
	if i.Symbol == "" {
		return ErrInvalidSymbol
	}

	if !i.Shares.IsPositive() {
		return ErrInvalidShares
	}

	if !i.PurchasePrice.IsPositive() {
		return ErrInvalidPurchasePrice
	}

	if i.PurchaseDate.IsZero() {
		return ErrInvalidDate
	}

	return nil
}

// InvestmentDraft is user input for a new or edited investment
type InvestmentDraft struct {
	Symbol        string
	Shares        decimal.Decimal
	PurchasePrice decimal.Decimal
	PurchaseDate  time.Time
}

// Validate checks draft fields
func (d *InvestmentDraft) Validate() error {
	inv := Investment{ID: "draft", Symbol: d.Symbol, Shares: d.Shares, PurchasePrice: d.PurchasePrice, PurchaseDate: d.PurchaseDate}
	return inv.Validate()
}

// sortTransactionsDesc orders transactions descending by date; ties keep
// their relative order.
func sortTransactionsDesc(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.After(txs[j].Date)
	})
}
