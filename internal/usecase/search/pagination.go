package search

import (
	"context"

	"github.com/kailas-cloud/esmodel/internal/domain/search/page"
)

func (r *Response) defaultPerPage() int {
	if r.perPage > 0 {
		return r.perPage
	}
	if size := r.req.Size(); size > 0 {
		return size
	}
	return r.paginator.DefaultPerPage()
}

func (r *Response) apply() {
	if r.perPage > 0 {
		r.req.setSize(r.perPage)
	}
	if r.page > 0 {
		r.req.setFrom(page.From(r.page, r.perPage))
	}
	r.invalidate()
}

// Page moves to a 1-based page: from = (n-1) * per_page.
// With no per-page value and no paginator, size stays unset.
func (r *Response) Page(n int) *Response {
	if n < 1 {
		n = 1
	}
	r.page = n
	r.perPage = r.defaultPerPage()
	r.apply()
	return r
}

// Per sets the page size, keeping the current page. Non-positive values are ignored.
func (r *Response) Per(n int) *Response {
	if n <= 0 {
		return r
	}
	r.perPage = n
	r.apply()
	return r
}

// Limit is Per.
func (r *Response) Limit(n int) *Response { return r.Per(n) }

// Offset sets from directly and forgets the current page. Negative values are ignored.
func (r *Response) Offset(n int) *Response {
	if n < 0 {
		return r
	}
	r.page = 0
	r.req.setFrom(n)
	r.invalidate()
	return r
}

// Paginate sets page and page size at once. A non-positive perPage uses the default.
func (r *Response) Paginate(n, perPage int) *Response {
	if n < 1 {
		n = 1
	}
	if perPage > 0 {
		r.perPage = perPage
	} else {
		r.perPage = r.defaultPerPage()
	}
	r.page = n
	r.apply()
	return r
}

// LimitValue returns the page size in effect.
func (r *Response) LimitValue() int {
	if size := r.req.Size(); size > 0 {
		return size
	}
	return r.paginator.DefaultPerPage()
}

// OffsetValue returns the offset in effect.
func (r *Response) OffsetValue() int { return r.req.From() }

func (r *Response) window() page.Window {
	w := page.Window{Offset: r.OffsetValue(), Limit: r.LimitValue()}
	if r.raw != nil {
		w.Total = r.raw.Hits.Total.Value
	}
	return w
}

// Window executes the request and returns the pagination window.
func (r *Response) Window(ctx context.Context) (page.Window, error) {
	if err := r.Execute(ctx); err != nil {
		return page.Window{}, err
	}
	return r.window(), nil
}

// CurrentPage returns the 1-based current page.
func (r *Response) CurrentPage() int { return r.window().CurrentPage() }

// IsFirstPage reports whether the response is on page 1.
func (r *Response) IsFirstPage() bool { return r.window().IsFirstPage() }

// PrevPage returns the previous page, false on the first page.
func (r *Response) PrevPage() (int, bool) { return r.window().PrevPage() }

// TotalCount returns the total hit count.
func (r *Response) TotalCount(ctx context.Context) (int64, error) { return r.Total(ctx) }

// TotalPages returns the number of pages.
func (r *Response) TotalPages(ctx context.Context) (int, error) {
	w, err := r.Window(ctx)
	if err != nil {
		return 0, err
	}
	return w.TotalPages(), nil
}

// NextPage returns the next page, false on the last page.
func (r *Response) NextPage(ctx context.Context) (int, bool, error) {
	w, err := r.Window(ctx)
	if err != nil {
		return 0, false, err
	}
	n, ok := w.NextPage()
	return n, ok, nil
}

// IsLastPage reports whether no further pages exist.
func (r *Response) IsLastPage(ctx context.Context) (bool, error) {
	w, err := r.Window(ctx)
	if err != nil {
		return false, err
	}
	return w.IsLastPage(), nil
}

// IsOutOfRange reports whether the current page is past the last one.
func (r *Response) IsOutOfRange(ctx context.Context) (bool, error) {
	w, err := r.Window(ctx)
	if err != nil {
		return false, err
	}
	return w.IsOutOfRange(), nil
}

// PagyMeta returns the pagy-style metadata.
func (r *Response) PagyMeta(ctx context.Context) (page.Meta, error) {
	w, err := r.Window(ctx)
	if err != nil {
		return page.Meta{}, err
	}
	return w.Meta(), nil
}
