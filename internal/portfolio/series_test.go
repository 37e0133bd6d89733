package portfolio_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finwatch/fintrack/internal/portfolio"
	"github.com/finwatch/fintrack/internal/record"
)

func TestValueSeries(t *testing.T) {
	today := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	invs := []record.Investment{
		inv("i1", "AAPL", 10, 100, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)),
		inv("i2", "MSFT", 2, 300, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)), // same bucket
		inv("i3", "GOOG", 1, 150, time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)),
	}
	snap := snapshotOf(map[string]int64{"AAPL": 110, "MSFT": 310, "GOOG": 160})

	points := portfolio.ValueSeries(invs, snap, today)
	require.Len(t, points, 3)

	// Ascending by date; same-day purchases share one bucket
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.True(t, points[0].Value.Equal(decimal.NewFromInt(1600)), "10*100 + 2*300")

	assert.Equal(t, time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC), points[1].Date)
	assert.True(t, points[1].Value.Equal(decimal.NewFromInt(150)))

	// Today's bucket carries the total current value
	assert.Equal(t, today, points[2].Date)
	assert.True(t, points[2].Value.Equal(decimal.NewFromInt(1880)), "1100 + 620 + 160")
}

func TestValueSeries_PurchaseTodayOverwrittenByCurrentValue(t *testing.T) {
	today := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	invs := []record.Investment{
		inv("i1", "AAPL", 10, 100, today),
	}
	snap := snapshotOf(map[string]int64{"AAPL": 110})

	points := portfolio.ValueSeries(invs, snap, today)
	require.Len(t, points, 1)
	assert.True(t, points[0].Value.Equal(decimal.NewFromInt(1100)), "current value wins over cost basis")
}

func TestFilterRange(t *testing.T) {
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
	points := []portfolio.SeriesPoint{
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Value: decimal.NewFromInt(1)},
		{Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Value: decimal.NewFromInt(2)},
		{Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Value: decimal.NewFromInt(3)},
		{Date: time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC), Value: decimal.NewFromInt(4)},
	}

	tests := []struct {
		name   string
		window string
		want   int
	}{
		{name: "one week", window: portfolio.RangeWeek, want: 1},
		{name: "one month", window: portfolio.RangeMonth, want: 2},
		{name: "year to date", window: portfolio.RangeYearToDate, want: 3},
		{name: "one year", window: portfolio.RangeYear, want: 3},
		{name: "unknown token passes everything through", window: "5Y", want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := portfolio.FilterRange(points, tt.window, now)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestFilterRange_CutoffIsExclusive(t *testing.T) {
	now := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	onCutoff := []portfolio.SeriesPoint{
		{Date: now.AddDate(0, 0, -7), Value: decimal.NewFromInt(1)},
	}

	assert.Empty(t, portfolio.FilterRange(onCutoff, portfolio.RangeWeek, now))
}
