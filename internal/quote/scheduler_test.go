package quote_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finwatch/fintrack/internal/quote"
	apperrors "github.com/finwatch/fintrack/internal/shared/errors"
)

// stubProvider serves fixed quotes per symbol; unknown symbols fail. Quote
// calls can be delayed to exercise the lookup timeout.
type stubProvider struct {
	mu        sync.Mutex
	quotes    map[string]quote.Quote
	delay     time.Duration
	matches   []quote.Match
	searchErr error
	calls     int
}

func (p *stubProvider) Quote(ctx context.Context, symbol string) (quote.Quote, error) {
	p.mu.Lock()
	p.calls++
	q, ok := p.quotes[symbol]
	delay := p.delay
	p.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return quote.Quote{}, ctx.Err()
		}
	}

	if !ok {
		return quote.Quote{}, errors.New("no quote data for symbol " + symbol)
	}
	return q, nil
}

func (p *stubProvider) Search(ctx context.Context, query string) ([]quote.Match, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.searchErr != nil {
		return nil, p.searchErr
	}
	return p.matches, nil
}

func (p *stubProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// staticHoldings is a fixed symbol list
type staticHoldings []string

func (h staticHoldings) HeldSymbols() []string { return h }

// mutableHoldings is a symbol list that tests can swap between calls
type mutableHoldings struct {
	mu      sync.Mutex
	symbols []string
}

func (h *mutableHoldings) HeldSymbols() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.symbols
}

func (h *mutableHoldings) set(symbols ...string) {
	h.mu.Lock()
	h.symbols = symbols
	h.mu.Unlock()
}

func priceOf(t *testing.T, r quote.Result) decimal.Decimal {
	t.Helper()
	price, ok := r.Price()
	require.True(t, ok, "expected an available quote")
	return price
}

func TestScheduler_RefreshOnce_SwapsAtomicSnapshot(t *testing.T) {
	provider := &stubProvider{
		quotes: map[string]quote.Quote{
			"AAPL": {Price: decimal.NewFromInt(110)},
			"MSFT": {Price: decimal.NewFromInt(300)},
		},
	}
	s := quote.NewScheduler(provider, staticHoldings{"AAPL", "MSFT", "XXXX"}, nil)

	s.RefreshOnce(context.Background())

	snap := s.Snapshot()
	assert.Equal(t, 3, snap.Len())
	assert.False(t, snap.TakenAt().IsZero())

	assert.True(t, priceOf(t, snap.Result("AAPL")).Equal(decimal.NewFromInt(110)))
	assert.True(t, priceOf(t, snap.Result("MSFT")).Equal(decimal.NewFromInt(300)))

	// The failing symbol is covered by the snapshot as explicitly unavailable
	assert.False(t, snap.Result("XXXX").IsAvailable())
}

func TestScheduler_Snapshot_MissingSymbolReadsUnavailable(t *testing.T) {
	s := quote.NewScheduler(&stubProvider{}, staticHoldings{}, nil)

	r := s.Snapshot().Result("AAPL")
	assert.False(t, r.IsAvailable())

	_, ok := s.Current("AAPL")
	assert.False(t, ok)
}

func TestScheduler_Current_ServesCachedPrice(t *testing.T) {
	provider := &stubProvider{
		quotes: map[string]quote.Quote{"AAPL": {Price: decimal.NewFromInt(110)}},
	}
	s := quote.NewScheduler(provider, staticHoldings{"AAPL"}, nil)
	s.RefreshOnce(context.Background())

	price, ok := s.Current("AAPL")
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.NewFromInt(110)))
}

func TestScheduler_StartRefreshesImmediately(t *testing.T) {
	provider := &stubProvider{
		quotes: map[string]quote.Quote{"AAPL": {Price: decimal.NewFromInt(110)}},
	}
	s := quote.NewScheduler(provider, staticHoldings{"AAPL"}, &quote.SchedulerConfig{
		Interval: time.Hour,
	})

	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		_, ok := s.Current("AAPL")
		return ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_StopHaltsRefreshes(t *testing.T) {
	provider := &stubProvider{
		quotes: map[string]quote.Quote{"AAPL": {Price: decimal.NewFromInt(110)}},
	}
	s := quote.NewScheduler(provider, staticHoldings{"AAPL"}, &quote.SchedulerConfig{
		Interval: 20 * time.Millisecond,
	})

	s.Start(context.Background())
	require.Eventually(t, func() bool {
		return provider.callCount() > 0
	}, 2*time.Second, 10*time.Millisecond)

	s.Stop()
	time.Sleep(50 * time.Millisecond)
	settled := provider.callCount()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, settled, provider.callCount(), "no refreshes after Stop")
}

func TestScheduler_HoldingsChanged_RestartsOnlyOnNewSymbolSet(t *testing.T) {
	provider := &stubProvider{
		quotes: map[string]quote.Quote{
			"AAPL": {Price: decimal.NewFromInt(110)},
			"MSFT": {Price: decimal.NewFromInt(300)},
		},
	}
	holdings := &mutableHoldings{}
	holdings.set("AAPL")
	s := quote.NewScheduler(provider, holdings, &quote.SchedulerConfig{
		Interval: time.Hour,
	})

	s.HoldingsChanged(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		return provider.callCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Same held symbols, as after a cash-only change: the active run and its
	// timer stay untouched, so no new refresh fires
	s.HoldingsChanged(context.Background())
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, provider.callCount())

	// A genuinely new symbol set restarts with an immediate refresh
	holdings.set("AAPL", "MSFT")
	s.HoldingsChanged(context.Background())
	require.Eventually(t, func() bool {
		return provider.callCount() == 3
	}, 2*time.Second, 10*time.Millisecond)

	// Stopping and re-reporting the same set starts a fresh run
	s.Stop()
	s.HoldingsChanged(context.Background())
	require.Eventually(t, func() bool {
		return provider.callCount() == 5
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_HoldingsChanged_StopsWhenNothingHeld(t *testing.T) {
	provider := &stubProvider{
		quotes: map[string]quote.Quote{"AAPL": {Price: decimal.NewFromInt(110)}},
	}
	s := quote.NewScheduler(provider, staticHoldings{}, &quote.SchedulerConfig{
		Interval: 20 * time.Millisecond,
	})

	s.HoldingsChanged(context.Background())
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, provider.callCount(), "empty holdings must not start a run")
}

func TestScheduler_Lookup(t *testing.T) {
	t.Run("bounded lookup returns available quote", func(t *testing.T) {
		provider := &stubProvider{
			quotes: map[string]quote.Quote{"AAPL": {Price: decimal.NewFromInt(110)}},
		}
		s := quote.NewScheduler(provider, staticHoldings{}, nil)

		r := s.Lookup(context.Background(), "AAPL")
		assert.True(t, priceOf(t, r).Equal(decimal.NewFromInt(110)))
	})

	t.Run("timeout yields unavailable and leaves the cache untouched", func(t *testing.T) {
		provider := &stubProvider{
			quotes: map[string]quote.Quote{"AAPL": {Price: decimal.NewFromInt(110)}},
			delay:  time.Second,
		}
		s := quote.NewScheduler(provider, staticHoldings{}, &quote.SchedulerConfig{
			LookupTimeout: 20 * time.Millisecond,
		})

		r := s.Lookup(context.Background(), "AAPL")
		assert.False(t, r.IsAvailable())
		assert.Zero(t, s.Snapshot().Len())
	})
}

func TestScheduler_Search(t *testing.T) {
	t.Run("hits are enriched with quotes", func(t *testing.T) {
		provider := &stubProvider{
			quotes: map[string]quote.Quote{"AAPL": {Price: decimal.NewFromInt(110)}},
			matches: []quote.Match{
				{Symbol: "AAPL", Description: "APPLE INC"},
				{Symbol: "AAPL.SW", Description: "APPLE INC SWISS"},
			},
		}
		s := quote.NewScheduler(provider, staticHoldings{}, nil)

		results, err := s.Search(context.Background(), "apple")
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, "AAPL", results[0].Symbol)
		assert.Equal(t, "APPLE INC", results[0].Description)
		assert.True(t, priceOf(t, results[0].Quote).Equal(decimal.NewFromInt(110)))

		// Quote failure for one hit never drops the hit itself
		assert.Equal(t, "AAPL.SW", results[1].Symbol)
		assert.False(t, results[1].Quote.IsAvailable())
	})

	t.Run("provider failure yields an error and no results", func(t *testing.T) {
		provider := &stubProvider{searchErr: errors.New("search backend down")}
		s := quote.NewScheduler(provider, staticHoldings{}, nil)

		results, err := s.Search(context.Background(), "apple")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeSearch, apperrors.CodeOf(err))
		assert.Empty(t, results)
	})
}
