package quote

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a current market quote for a symbol
type Quote struct {
	Price         decimal.Decimal
	Change        decimal.Decimal
	ChangePercent decimal.Decimal
}

// Result is a tagged quote outcome: either an available quote or an explicit
// unavailable marker. The zero value is Unavailable, so a missing symbol can
// never be mistaken for a zero price.
type Result struct {
	quote     Quote
	available bool
}

// Available wraps a quote as an available result
func Available(q Quote) Result {
	return Result{quote: q, available: true}
}

// Unavailable is the explicit no-quote marker
func Unavailable() Result {
	return Result{}
}

// IsAvailable reports whether the result carries a quote
func (r Result) IsAvailable() bool {
	return r.available
}

// Get returns the quote; the second return is false for Unavailable
func (r Result) Get() (Quote, bool) {
	return r.quote, r.available
}

// Price returns the quoted price; the second return is false for Unavailable
func (r Result) Price() (decimal.Decimal, bool) {
	return r.quote.Price, r.available
}

// Snapshot is an immutable quote cache: symbol to result, plus the refresh
// timestamp. A whole snapshot is swapped in atomically after a refresh cycle;
// there is no incremental merge. Symbols absent from the snapshot read as
// Unavailable.
type Snapshot struct {
	results map[string]Result
	takenAt time.Time
}

// NewSnapshot builds a snapshot from a result map. The map is copied.
func NewSnapshot(results map[string]Result, takenAt time.Time) Snapshot {
	copied := make(map[string]Result, len(results))
	for symbol, r := range results {
		copied[symbol] = r
	}
	return Snapshot{results: copied, takenAt: takenAt}
}

// Result looks up a symbol; missing symbols read as Unavailable
func (s Snapshot) Result(symbol string) Result {
	if r, ok := s.results[symbol]; ok {
		return r
	}
	return Unavailable()
}

// TakenAt returns when the snapshot's refresh cycle completed. Zero for the
// initial empty snapshot.
func (s Snapshot) TakenAt() time.Time {
	return s.takenAt
}

// Len returns the number of symbols covered by the snapshot
func (s Snapshot) Len() int {
	return len(s.results)
}

// Symbols returns the symbols covered by the snapshot
func (s Snapshot) Symbols() []string {
	symbols := make([]string, 0, len(s.results))
	for symbol := range s.results {
		symbols = append(symbols, symbol)
	}
	return symbols
}
