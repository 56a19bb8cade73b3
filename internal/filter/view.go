package filter

import "github.com/Veraticus/upi-triage/internal/model"

// DefaultPageSize is the number of rows shown per page.
const DefaultPageSize = 10

// View is the filtered, paginated projection of a transaction list.
// Every change to the source list or the criteria resets the page to 1.
type View struct {
	source   []model.Transaction
	filtered []model.Transaction
	criteria Criteria
	page     int
	pageSize int
}

// NewView creates a view over transactions with the given page size.
// A non-positive size falls back to DefaultPageSize.
func NewView(transactions []model.Transaction, pageSize int) *View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	v := &View{pageSize: pageSize}
	v.SetSource(transactions)
	return v
}

// SetSource replaces the underlying list and re-applies the criteria.
func (v *View) SetSource(transactions []model.Transaction) {
	v.source = transactions
	v.recompute()
}

// Apply replaces the criteria and recomputes the filtered list.
func (v *View) Apply(c Criteria) {
	v.criteria = c
	v.recompute()
}

func (v *View) recompute() {
	v.filtered = Apply(v.source, v.criteria)
	v.page = 1
}

// Criteria returns the active criteria.
func (v *View) Criteria() Criteria { return v.criteria }

// Source returns the unfiltered list.
func (v *View) Source() []model.Transaction { return v.source }

// Filtered returns every transaction matching the criteria.
func (v *View) Filtered() []model.Transaction { return v.filtered }

// Len returns the number of matching transactions.
func (v *View) Len() int { return len(v.filtered) }

// PageSize returns the number of rows per page.
func (v *View) PageSize() int { return v.pageSize }

// CurrentPage returns the 1-based page index.
func (v *View) CurrentPage() int { return v.page }

// TotalPages returns ceil(Len/PageSize). An empty result has zero pages.
func (v *View) TotalPages() int {
	return (len(v.filtered) + v.pageSize - 1) / v.pageSize
}

// SetPage moves to page n, clamped to the valid range.
func (v *View) SetPage(n int) {
	v.page = v.clamp(n)
}

// NextPage advances one page if possible.
func (v *View) NextPage() bool {
	before := v.page
	v.SetPage(v.page + 1)
	return v.page != before
}

// PrevPage goes back one page if possible.
func (v *View) PrevPage() bool {
	before := v.page
	v.SetPage(v.page - 1)
	return v.page != before
}

// Page returns the rows for page n (1-based). Out-of-range pages clamp.
func (v *View) Page(n int) []model.Transaction {
	n = v.clamp(n)
	start := (n - 1) * v.pageSize
	if start >= len(v.filtered) {
		return nil
	}
	end := start + v.pageSize
	if end > len(v.filtered) {
		end = len(v.filtered)
	}
	return v.filtered[start:end]
}

// Current returns the rows on the current page.
func (v *View) Current() []model.Transaction {
	return v.Page(v.page)
}

func (v *View) clamp(n int) int {
	total := v.TotalPages()
	if n > total {
		n = total
	}
	if n < 1 {
		n = 1
	}
	return n
}
