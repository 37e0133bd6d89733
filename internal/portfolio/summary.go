// Package portfolio derives display aggregates from canonical state. All
// functions are pure: record lists and a quote snapshot in, aggregates out.
package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/finwatch/fintrack/internal/record"
)

// Summary holds the cash-flow aggregates over the transaction list
type Summary struct {
	Income  decimal.Decimal // sum of positive amounts
	Expense decimal.Decimal // sum of negative amounts, kept negative
	Balance decimal.Decimal // Income + Expense
}

// Summarize computes income, expense and balance over all transactions
func Summarize(txs []record.Transaction) Summary {
	var income, expense decimal.Decimal
	for _, tx := range txs {
		if tx.Amount.IsPositive() {
			income = income.Add(tx.Amount)
		} else if tx.Amount.IsNegative() {
			expense = expense.Add(tx.Amount)
		}
	}

	return Summary{
		Income:  income,
		Expense: expense,
		Balance: income.Add(expense),
	}
}

// CategoryTotal is one slice of the expense breakdown
type CategoryTotal struct {
	Category record.Category
	Total    decimal.Decimal // absolute value
}

// CategoryBreakdown groups expense transactions (amount < 0) by category and
// sums absolute values. A missing category counts as Other. Output order is
// the order of each category's first occurrence in the canonical
// date-descending list.
func CategoryBreakdown(txs []record.Transaction) []CategoryTotal {
	totals := make(map[record.Category]decimal.Decimal)
	var order []record.Category

	for _, tx := range txs {
		if !tx.Amount.IsNegative() {
			continue
		}

		category := record.ParseCategory(string(tx.Category))
		if _, seen := totals[category]; !seen {
			order = append(order, category)
		}
		totals[category] = totals[category].Add(tx.Amount.Abs())
	}

	breakdown := make([]CategoryTotal, 0, len(order))
	for _, category := range order {
		breakdown = append(breakdown, CategoryTotal{Category: category, Total: totals[category]})
	}

	return breakdown
}
