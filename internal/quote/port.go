package quote

import "context"

// Match is one symbol search hit from the market data provider
type Match struct {
	Symbol      string
	Description string
}

// Provider defines the interface to the external market quote service
type Provider interface {
	// Quote fetches the current quote for a single symbol
	Quote(ctx context.Context, symbol string) (Quote, error)

	// Search finds symbols matching a free-text query
	Search(ctx context.Context, query string) ([]Match, error)
}

// Holdings reports the distinct symbols currently held. Implemented by the
// state manager.
type Holdings interface {
	HeldSymbols() []string
}

// SearchResult is a search hit enriched with its current quote
type SearchResult struct {
	Symbol      string
	Description string
	Quote       Result
}
