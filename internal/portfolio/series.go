package portfolio

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finwatch/fintrack/internal/quote"
	"github.com/finwatch/fintrack/internal/record"
)

// SeriesPoint is one (date, value) point of the portfolio value series
type SeriesPoint struct {
	Date  time.Time
	Value decimal.Decimal
}

// Range tokens for FilterRange
const (
	RangeWeek       = "1W"
	RangeMonth      = "1M"
	RangeYearToDate = "YTD"
	RangeYear       = "1Y"
)

// ValueSeries builds the portfolio value-over-time series: purchase cost
// bucketed by purchase date (holdings sharing a date are summed), with
// today's bucket overwritten by the total current value. This is a cost-basis
// approximation, not a historical mark-to-market. Points come out ascending
// by date.
func ValueSeries(invs []record.Investment, snap quote.Snapshot, today time.Time) []SeriesPoint {
	buckets := make(map[string]decimal.Decimal)

	for _, inv := range invs {
		key := inv.PurchaseDate.Format(record.DateOnly)
		buckets[key] = buckets[key].Add(inv.PurchasePrice.Mul(inv.Shares))
	}

	totals := ComputeTotals(invs, snap)
	buckets[today.Format(record.DateOnly)] = totals.CurrentValue

	points := make([]SeriesPoint, 0, len(buckets))
	for key, value := range buckets {
		date, err := time.Parse(record.DateOnly, key)
		if err != nil {
			continue
		}
		points = append(points, SeriesPoint{Date: date, Value: value})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	return points
}

// FilterRange keeps points strictly after now minus the window. YTD keeps
// points after the start of the current year. An unrecognized token passes
// all points through.
func FilterRange(points []SeriesPoint, window string, now time.Time) []SeriesPoint {
	var cutoff time.Time
	switch window {
	case RangeWeek:
		cutoff = now.AddDate(0, 0, -7)
	case RangeMonth:
		cutoff = now.AddDate(0, -1, 0)
	case RangeYearToDate:
		cutoff = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	case RangeYear:
		cutoff = now.AddDate(-1, 0, 0)
	default:
		return points
	}

	filtered := make([]SeriesPoint, 0, len(points))
	for _, pt := range points {
		if pt.Date.After(cutoff) {
			filtered = append(filtered, pt)
		}
	}

	return filtered
}
