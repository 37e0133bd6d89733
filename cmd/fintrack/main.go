package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/finwatch/fintrack/internal/gateway/finnhub"
	"github.com/finwatch/fintrack/internal/gateway/ledgerapi"
	"github.com/finwatch/fintrack/internal/portfolio"
	"github.com/finwatch/fintrack/internal/quote"
	"github.com/finwatch/fintrack/internal/record"
	"github.com/finwatch/fintrack/internal/view"
	"github.com/finwatch/fintrack/pkg/config"
	"github.com/finwatch/fintrack/pkg/logger"
)

func main() {
	// Create context that listens for termination signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env if present, then configuration from the environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewDefault(cfg.Env)
	log.Info("Starting fintrack",
		"env", cfg.Env,
		"user", cfg.UserEmail,
	)

	// Initialize gateway clients
	ledgerClient := ledgerapi.NewClient(cfg.LedgerBaseURL, cfg.UserEmail, cfg.LedgerToken)
	marketClient := finnhub.NewClient(cfg.FinnhubAPIKey).WithBaseURL(cfg.FinnhubBaseURL)

	// Initialize the state manager with a terminal confirmation gate and a
	// transient-error notifier
	confirm := record.ConfirmerFunc(promptConfirm)
	notify := record.NotifierFunc(func(err error) {
		log.Warn("operation failed", "error", err.Error())
	})

	quotes := &deferredQuotes{}
	manager := record.NewManager(ledgerClient, quotes, confirm, notify, log)

	// Initialize the quote refresh scheduler over the manager's holdings
	scheduler := quote.NewScheduler(marketClient, manager, &quote.SchedulerConfig{
		Interval: cfg.RefreshInterval,
		Logger:   log,
	})
	quotes.scheduler = scheduler

	// Restart the refresh timer whenever holdings change
	manager.OnChange(func() {
		scheduler.HoldingsChanged(ctx)
	})

	// Initial load; a load failure is blocking and requires a manual reload
	if err := manager.LoadAll(ctx); err != nil {
		log.WithError(err).Error("initial load failed")
		fmt.Fprintf(os.Stderr, "Load failed: %v\nRestart to retry.\n", err)
		os.Exit(1)
	}
	log.Info("loaded canonical state",
		"transactions", len(manager.Transactions()),
		"investments", len(manager.Investments()),
	)

	// Render the dashboard now and on every refresh interval until a signal
	// arrives
	renderDashboard(manager, scheduler)

	ticker := time.NewTicker(cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			scheduler.Stop()
			log.Info("fintrack stopped")
			return
		case <-ticker.C:
			renderDashboard(manager, scheduler)
		}
	}
}

// deferredQuotes defers to the scheduler, which is constructed after the
// manager because it reads the manager's holdings
type deferredQuotes struct {
	scheduler *quote.Scheduler
}

func (q *deferredQuotes) Current(symbol string) (decimal.Decimal, bool) {
	if q.scheduler == nil {
		return decimal.Decimal{}, false
	}
	return q.scheduler.Current(symbol)
}

// promptConfirm reads a y/N answer from the terminal
func promptConfirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func renderDashboard(manager *record.Manager, scheduler *quote.Scheduler) {
	txs := manager.Transactions()
	invs := manager.Investments()
	snap := scheduler.Snapshot()

	summary := portfolio.Summarize(txs)
	totals := portfolio.ComputeTotals(invs, snap)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "== Finance Tracker ==")
	fmt.Fprintf(w, "Income\t%s\n", summary.Income.StringFixed(2))
	fmt.Fprintf(w, "Expenses\t%s\n", summary.Expense.Abs().StringFixed(2))
	fmt.Fprintf(w, "Balance\t%s\n", summary.Balance.StringFixed(2))

	fmt.Fprintln(w, "\n-- Expense Breakdown --")
	for _, ct := range portfolio.CategoryBreakdown(txs) {
		fmt.Fprintf(w, "%s\t%s\n", ct.Category, ct.Total.StringFixed(2))
	}

	fmt.Fprintln(w, "\n-- Recent Transactions --")
	txView := view.NewTransactionView()
	for _, tx := range txView.Visible(txs) {
		fmt.Fprintf(w, "%s\t%s\t%s\n", tx.Date.Format(record.DateOnly), tx.Category, tx.Amount.StringFixed(2))
	}

	fmt.Fprintln(w, "\n-- Portfolio --")
	fmt.Fprintf(w, "Invested\t%s\n", totals.Invested.StringFixed(2))
	fmt.Fprintf(w, "Current Value\t%s\n", totals.CurrentValue.StringFixed(2))
	fmt.Fprintf(w, "P/L\t%s\n", totals.PL.StringFixed(2))

	invView := view.NewInvestmentView()
	for _, v := range portfolio.Valuations(invView.Visible(invs), snap) {
		if !v.Priced {
			fmt.Fprintf(w, "%s\tN/A\tN/A\n", v.Investment.Symbol)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", v.Investment.Symbol, v.CurrentValue.StringFixed(2), v.UnrealizedPL.StringFixed(2))
	}

	series := portfolio.FilterRange(portfolio.ValueSeries(invs, snap, time.Now()), portfolio.RangeMonth, time.Now())
	fmt.Fprintln(w, "\n-- Value Over Time (1M) --")
	for _, pt := range series {
		fmt.Fprintf(w, "%s\t%s\n", pt.Date.Format(record.DateOnly), pt.Value.StringFixed(2))
	}

	if !snap.TakenAt().IsZero() {
		fmt.Fprintf(w, "\nQuotes refreshed at %s\n", snap.TakenAt().Format(time.RFC3339))
	}
}
