package page

import "fmt"

// Backend names a pagination convention. Each one brings its own default page size.
type Backend string

const (
	// None disables default page sizing: per_page stays unset unless given explicitly.
	None Backend = ""
	// Kaminari pages default to 25 items.
	Kaminari Backend = "kaminari"
	// WillPaginate pages default to 30 items.
	WillPaginate Backend = "will_paginate"
	// Pagy pages default to 20 items.
	Pagy Backend = "pagy"
)

// IsValid checks if the backend is supported.
func (b Backend) IsValid() bool {
	switch b {
	case None, Kaminari, WillPaginate, Pagy:
		return true
	}
	return false
}

// DefaultPerPage returns the backend's default page size, 0 for None.
func (b Backend) DefaultPerPage() int {
	switch b {
	case Kaminari:
		return 25
	case WillPaginate:
		return 30
	case Pagy:
		return 20
	default:
		return 0
	}
}

// Parse validates a backend name from configuration.
func Parse(s string) (Backend, error) {
	b := Backend(s)
	if !b.IsValid() {
		return None, fmt.Errorf("unknown paginator: %q", s)
	}
	return b, nil
}

// From returns the offset of a 1-based page. Pages below 1 are treated as 1.
func From(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		return 0
	}
	return (page - 1) * perPage
}

// Window is the read side of pagination over one executed response.
// Limit 0 means the page size is unset and everything is one page.
type Window struct {
	Offset int
	Limit  int
	Total  int64
}

// CurrentPage returns the 1-based page the offset falls on.
func (w Window) CurrentPage() int {
	if w.Limit <= 0 {
		return 1
	}
	return w.Offset/w.Limit + 1
}

// TotalPages returns the number of pages needed for Total.
func (w Window) TotalPages() int {
	if w.Total <= 0 {
		return 0
	}
	if w.Limit <= 0 {
		return 1
	}
	return int((w.Total + int64(w.Limit) - 1) / int64(w.Limit))
}

// NextPage returns the following page, false on the last page.
func (w Window) NextPage() (int, bool) {
	if w.IsLastPage() {
		return 0, false
	}
	return w.CurrentPage() + 1, true
}

// PrevPage returns the preceding page, false on the first page.
func (w Window) PrevPage() (int, bool) {
	if w.IsFirstPage() {
		return 0, false
	}
	return w.CurrentPage() - 1, true
}

// IsFirstPage reports whether the window is on page 1.
func (w Window) IsFirstPage() bool { return w.CurrentPage() == 1 }

// IsLastPage reports whether no further pages exist.
func (w Window) IsLastPage() bool { return w.CurrentPage() >= w.TotalPages() }

// IsOutOfRange reports whether the window is past the last page.
func (w Window) IsOutOfRange() bool { return w.CurrentPage() > w.TotalPages() }

// Meta is the pagy-style metadata summary.
type Meta struct {
	Count int64 `json:"count"`
	Page  int   `json:"page"`
	Items int   `json:"items"`
	Pages int   `json:"pages"`
	From  int64 `json:"from"`
	To    int64 `json:"to"`
	Prev  *int  `json:"prev"`
	Next  *int  `json:"next"`
}

// Meta summarizes the window. From and To are 1-based item positions, 0 when empty.
func (w Window) Meta() Meta {
	m := Meta{
		Count: w.Total,
		Page:  w.CurrentPage(),
		Items: w.Limit,
		Pages: w.TotalPages(),
	}
	if w.Total > int64(w.Offset) {
		m.From = int64(w.Offset) + 1
		m.To = w.Total
		if w.Limit > 0 && int64(w.Offset+w.Limit) < w.Total {
			m.To = int64(w.Offset + w.Limit)
		}
	}
	if p, ok := w.PrevPage(); ok {
		m.Prev = &p
	}
	if n, ok := w.NextPage(); ok {
		m.Next = &n
	}
	return m
}
