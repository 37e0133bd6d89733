// Package view derives filtered, paginated subsets of canonical state for
// display. Nothing here mutates the canonical lists.
package view

import (
	"github.com/finwatch/fintrack/internal/record"
)

// Fixed page sizes
const (
	TransactionPageSize = 5
	InvestmentPageSize  = 4
)

// Pager tracks the active page over a filtered item count. Prev and Next
// clamp to [1, TotalPages].
type Pager struct {
	page     int
	pageSize int
	total    int
}

// NewPager creates a pager on page 1
func NewPager(pageSize int) *Pager {
	return &Pager{page: 1, pageSize: pageSize}
}

// SetTotal updates the filtered item count and clamps the active page
func (p *Pager) SetTotal(n int) {
	p.total = n
	p.page = clamp(p.page, 1, p.lastPage())
}

// Page returns the active page (1-based)
func (p *Pager) Page() int {
	return p.page
}

// TotalPages returns ceil(total / pageSize)
func (p *Pager) TotalPages() int {
	return (p.total + p.pageSize - 1) / p.pageSize
}

// Next advances one page, clamped to the last page
func (p *Pager) Next() {
	p.page = clamp(p.page+1, 1, p.lastPage())
}

// Prev goes back one page, clamped to page 1
func (p *Pager) Prev() {
	p.page = clamp(p.page-1, 1, p.lastPage())
}

// Reset returns to page 1. Called on every filter change.
func (p *Pager) Reset() {
	p.page = 1
}

// lastPage is TotalPages floored at 1 so clamping stays well-defined on an
// empty list
func (p *Pager) lastPage() int {
	if tp := p.TotalPages(); tp > 1 {
		return tp
	}
	return 1
}

// Control is one rendered page button
type Control struct {
	Page     int
	Current  bool
	Disabled bool
}

// Controls renders the page-control policy: only the first page, the last
// page and the current page appear; an intermediate current page is shown
// disabled; every other intermediate button is suppressed.
func (p *Pager) Controls() []Control {
	totalPages := p.TotalPages()

	var controls []Control
	for page := 1; page <= totalPages; page++ {
		if page != 1 && page != totalPages && page != p.page {
			continue
		}

		current := page == p.page
		controls = append(controls, Control{
			Page:     page,
			Current:  current,
			Disabled: current && page != 1 && page != totalPages,
		})
	}

	return controls
}

// slicePage returns the bounds of the active page over n items
func slicePage(page, pageSize, n int) (int, int) {
	start := (page - 1) * pageSize
	if start > n {
		start = n
	}
	end := start + pageSize
	if end > n {
		end = n
	}
	return start, end
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// TransactionView projects the canonical transaction list through an
// optional category filter and pagination
type TransactionView struct {
	pager    *Pager
	category record.Category
	filtered bool
}

// NewTransactionView creates an unfiltered view on page 1
func NewTransactionView() *TransactionView {
	return &TransactionView{pager: NewPager(TransactionPageSize)}
}

// FilterCategory restricts the view to exact category matches and resets the
// active page to 1
func (v *TransactionView) FilterCategory(c record.Category) {
	v.category = c
	v.filtered = true
	v.pager.Reset()
}

// ClearFilter removes the category restriction and resets the active page
func (v *TransactionView) ClearFilter() {
	v.filtered = false
	v.pager.Reset()
}

// Filtered returns the filtered subset without pagination
func (v *TransactionView) Filtered(txs []record.Transaction) []record.Transaction {
	if !v.filtered {
		return txs
	}

	out := make([]record.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Category == v.category {
			out = append(out, tx)
		}
	}
	return out
}

// Visible returns the active page of the filtered subset
func (v *TransactionView) Visible(txs []record.Transaction) []record.Transaction {
	filtered := v.Filtered(txs)
	v.pager.SetTotal(len(filtered))
	start, end := slicePage(v.pager.Page(), TransactionPageSize, len(filtered))
	return filtered[start:end]
}

// Pager exposes the view's pagination state
func (v *TransactionView) Pager() *Pager {
	return v.pager
}

// InvestmentView projects the canonical investment list through pagination
type InvestmentView struct {
	pager *Pager
}

// NewInvestmentView creates a view on page 1
func NewInvestmentView() *InvestmentView {
	return &InvestmentView{pager: NewPager(InvestmentPageSize)}
}

// Visible returns the active page of the investment list
func (v *InvestmentView) Visible(invs []record.Investment) []record.Investment {
	v.pager.SetTotal(len(invs))
	start, end := slicePage(v.pager.Page(), InvestmentPageSize, len(invs))
	return invs[start:end]
}

// Pager exposes the view's pagination state
func (v *InvestmentView) Pager() *Pager {
	return v.pager
}
