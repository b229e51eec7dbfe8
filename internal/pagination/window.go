// Package pagination tracks the visible prefix of a list that grows through
// "load more".
package pagination

import (
	dErrors "statedeck/pkg/domain-errors"
)

// DefaultPageSize is used when callers do not pick one.
const DefaultPageSize = 20

// Window owns how many items of a collection are visible. Each list view holds
// its own Window; nothing here is shared.
type Window struct {
	pageSize int
	visible  int
	total    int
}

// NewWindow starts with one page visible.
func NewWindow(pageSize, total int) (*Window, error) {
	if pageSize <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "page size must be positive")
	}
	if total < 0 {
		total = 0
	}
	return &Window{pageSize: pageSize, visible: pageSize, total: total}, nil
}

// Visible returns how many items are exposed, never more than the total.
func (w *Window) Visible() int {
	return min(w.visible, w.total)
}

// PageSize returns the increment used by LoadMore.
func (w *Window) PageSize() int {
	return w.pageSize
}

// Total returns the collection length the window is bounded by.
func (w *Window) Total() int {
	return w.total
}

// HasMore reports whether LoadMore would reveal anything.
func (w *Window) HasMore() bool {
	return w.visible < w.total
}

// LoadMore reveals one more page, clamped to the total. Once everything is
// visible further calls do nothing.
func (w *Window) LoadMore() int {
	if w.HasMore() {
		w.visible = min(w.visible+w.pageSize, w.total)
	}
	return w.Visible()
}

// SetTotal rebinds the window to a collection of a new length, e.g. after the
// filters changed. The visible count is clamped to the new total but never
// drops below one page.
func (w *Window) SetTotal(total int) {
	if total < 0 {
		total = 0
	}
	w.total = total
	w.visible = max(min(w.visible, total), w.pageSize)
}

// Reset goes back to a single page.
func (w *Window) Reset() {
	w.visible = w.pageSize
}

// Slice returns the visible prefix of items. It does not copy.
func Slice[T any](w *Window, items []T) []T {
	n := min(w.visible, len(items))
	return items[:n]
}

// Restore replays LoadMore until at least visible items are shown, so a
// request carrying the client's current count lands on the same window.
func (w *Window) Restore(visible int) int {
	for w.Visible() < visible && w.HasMore() {
		w.LoadMore()
	}
	return w.Visible()
}
