package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/finwatch/fintrack/internal/quote"
	"github.com/finwatch/fintrack/internal/record"
)

// Valuation is one holding's market valuation. CurrentValue and UnrealizedPL
// are only meaningful when Priced is true; an unavailable quote leaves the
// holding unpriced rather than valued at zero.
type Valuation struct {
	Investment   record.Investment
	CurrentValue decimal.Decimal
	UnrealizedPL decimal.Decimal
	Priced       bool
}

// Value computes a single holding's valuation against a quote result
func Value(inv record.Investment, r quote.Result) Valuation {
	price, ok := r.Price()
	if !ok {
		return Valuation{Investment: inv}
	}

	return Valuation{
		Investment:   inv,
		CurrentValue: price.Mul(inv.Shares),
		UnrealizedPL: price.Sub(inv.PurchasePrice).Mul(inv.Shares),
		Priced:       true,
	}
}

// Totals holds the portfolio-level aggregates
type Totals struct {
	// Invested is purchase cost over all holdings, quote-independent
	Invested decimal.Decimal
	// CurrentValue sums only holdings with an available quote
	CurrentValue decimal.Decimal
	// PL sums unrealized P/L only over holdings with an available quote
	PL decimal.Decimal
	// Priced counts the holdings that contributed to CurrentValue and PL
	Priced int
}

// ComputeTotals aggregates all holdings against the quote snapshot.
// Unpriced holdings contribute nothing to CurrentValue and PL, not zero.
func ComputeTotals(invs []record.Investment, snap quote.Snapshot) Totals {
	var t Totals
	for _, inv := range invs {
		t.Invested = t.Invested.Add(inv.PurchasePrice.Mul(inv.Shares))

		v := Value(inv, snap.Result(inv.Symbol))
		if !v.Priced {
			continue
		}
		t.CurrentValue = t.CurrentValue.Add(v.CurrentValue)
		t.PL = t.PL.Add(v.UnrealizedPL)
		t.Priced++
	}

	return t
}

// Valuations computes per-holding valuations for display
func Valuations(invs []record.Investment, snap quote.Snapshot) []Valuation {
	out := make([]Valuation, 0, len(invs))
	for _, inv := range invs {
		out = append(out, Value(inv, snap.Result(inv.Symbol)))
	}
	return out
}
