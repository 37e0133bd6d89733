package quote

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/finwatch/fintrack/internal/shared/errors"
	"github.com/finwatch/fintrack/pkg/logger"
)

const (
	// DefaultRefreshInterval is the default interval between refresh cycles
	DefaultRefreshInterval = 5 * time.Minute

	// DefaultLookupTimeout bounds a single-symbol search-triggered lookup
	DefaultLookupTimeout = 8 * time.Second
)

// Scheduler periodically fetches quotes for every distinct held symbol and
// maintains the quote cache. It owns exactly one active timer: starting a new
// run cancels and replaces any previous one.
type Scheduler struct {
	provider      Provider
	holdings      Holdings
	interval      time.Duration
	lookupTimeout time.Duration
	logger        *logger.Logger

	mu   sync.RWMutex
	snap Snapshot

	runMu  sync.Mutex
	cancel context.CancelFunc
	held   []string
}

// SchedulerConfig holds configuration for the scheduler
type SchedulerConfig struct {
	Interval      time.Duration
	LookupTimeout time.Duration
	Logger        *logger.Logger
}

// NewScheduler creates a new quote refresh scheduler
func NewScheduler(provider Provider, holdings Holdings, config *SchedulerConfig) *Scheduler {
	interval := DefaultRefreshInterval
	lookupTimeout := DefaultLookupTimeout
	var log *logger.Logger

	if config != nil {
		if config.Interval > 0 {
			interval = config.Interval
		}
		if config.LookupTimeout > 0 {
			lookupTimeout = config.LookupTimeout
		}
		log = config.Logger
	}

	if log == nil {
		log = logger.Discard()
	}

	return &Scheduler{
		provider:      provider,
		holdings:      holdings,
		interval:      interval,
		lookupTimeout: lookupTimeout,
		logger:        log.WithField("component", "quote_scheduler"),
	}
}

// Start begins a refresh run: an immediate cycle, then one per interval. Any
// previously started run is cancelled first, so at most one timer exists.
func (s *Scheduler) Start(ctx context.Context) {
	s.runMu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.held = s.holdings.HeldSymbols()
	s.runMu.Unlock()

	go s.run(runCtx)
}

// Stop cancels the active run, if any. Called on view teardown.
func (s *Scheduler) Stop() {
	s.runMu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.held = nil
	s.runMu.Unlock()
}

// HoldingsChanged reacts to a canonical-state change: restart the timer when
// the held-symbol set differs from the one the active run covers, stop it when
// nothing is held. A change that leaves the held symbols intact, such as a
// cash transaction, keeps the active run and its interval untouched.
func (s *Scheduler) HoldingsChanged(ctx context.Context) {
	symbols := s.holdings.HeldSymbols()
	if len(symbols) == 0 {
		s.Stop()
		return
	}

	s.runMu.Lock()
	unchanged := s.cancel != nil && slices.Equal(symbols, s.held)
	s.runMu.Unlock()
	if unchanged {
		return
	}

	s.Start(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	s.logger.Info("quote scheduler started", "interval", s.interval)

	s.refresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("quote scheduler stopped")
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

// refresh runs one cycle: fetch every held symbol concurrently, wait for all
// to settle, then swap the whole snapshot in atomically. A failed symbol maps
// to Unavailable and never aborts the others.
func (s *Scheduler) refresh(ctx context.Context) {
	symbols := s.holdings.HeldSymbols()

	results := make(map[string]Result, len(symbols))
	var resultsMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			q, err := s.provider.Quote(gctx, symbol)

			resultsMu.Lock()
			defer resultsMu.Unlock()
			if err != nil {
				s.logger.WithError(err).Warn("quote fetch failed", "symbol", symbol)
				results[symbol] = Unavailable()
				return nil
			}
			results[symbol] = Available(q)
			return nil
		})
	}
	// Fetches never return errors; Wait only synchronizes settlement.
	_ = g.Wait()

	if ctx.Err() != nil {
		return
	}

	snap := NewSnapshot(results, time.Now())

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.logger.Debug("quote cache refreshed", "symbols", len(symbols))
}

// RefreshOnce runs a single refresh cycle (for callers that manage their own
// timing, and for tests)
func (s *Scheduler) RefreshOnce(ctx context.Context) {
	s.refresh(ctx)
}

// Snapshot returns the current quote cache snapshot
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Current returns the cached price for a symbol. Satisfies the state
// manager's quote source.
func (s *Scheduler) Current(symbol string) (decimal.Decimal, bool) {
	return s.Snapshot().Result(symbol).Price()
}

// Lookup fetches a single symbol's quote outside the cache, bounded by the
// lookup timeout. Timeout or failure yields Unavailable; the cache is never
// touched.
func (s *Scheduler) Lookup(ctx context.Context, symbol string) Result {
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	q, err := s.provider.Quote(ctx, symbol)
	if err != nil {
		s.logger.WithError(err).Warn("quote lookup failed", "symbol", symbol)
		return Unavailable()
	}
	return Available(q)
}

// Search finds symbols matching the query and enriches each hit with its
// current quote via bounded lookups. A provider failure yields a search error
// and an empty result set.
func (s *Scheduler) Search(ctx context.Context, query string) ([]SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	matches, err := s.provider.Search(ctx, query)
	if err != nil {
		return nil, apperrors.Search("symbol search failed", err)
	}

	results := make([]SearchResult, len(matches))
	var resultsMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, match := range matches {
		i, match := i, match
		g.Go(func() error {
			r := s.Lookup(gctx, match.Symbol)

			resultsMu.Lock()
			defer resultsMu.Unlock()
			results[i] = SearchResult{
				Symbol:      match.Symbol,
				Description: match.Description,
				Quote:       r,
			}
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}
