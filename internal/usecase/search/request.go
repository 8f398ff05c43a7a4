package search

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/esmodel/internal/db"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
	"github.com/kailas-cloud/esmodel/internal/domain/search/query"
)

// Options are the request parameters sent along with the query.
type Options struct {
	From           *int
	Size           *int
	Sort           []string
	Routing        []string
	Preference     string
	SearchType     string
	Timeout        time.Duration
	TrackTotalHits any
}

func (o Options) clone() Options {
	c := o
	if o.From != nil {
		v := *o.From
		c.From = &v
	}
	if o.Size != nil {
		v := *o.Size
		c.Size = &v
	}
	c.Sort = append([]string(nil), o.Sort...)
	c.Routing = append([]string(nil), o.Routing...)
	return c
}

// Request is one search against the indices of a class. The engine is called
// at most once until Invalidate.
type Request struct {
	store Searcher
	class *model.Class
	def   query.Definition
	opts  Options

	result *db.SearchResult
}

// NewRequest resolves q into a query definition. Accepted values: nil
// (match all), query.Mapper, a JSON object string, a query string,
// map[string]any, json.RawMessage, []byte or a struct encoding to an object.
func NewRequest(store Searcher, class *model.Class, q any, opts Options) (*Request, error) {
	if store == nil {
		return nil, fmt.Errorf("search store is required")
	}
	if class == nil {
		return nil, fmt.Errorf("search class is required")
	}
	def, err := query.Resolve(q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", class.Name(), err)
	}
	return &Request{store: store, class: class, def: def, opts: opts.clone()}, nil
}

// Class returns the searched class.
func (r *Request) Class() *model.Class { return r.class }

// Definition returns the resolved query.
func (r *Request) Definition() query.Definition { return r.def }

// Options returns a copy of the request options.
func (r *Request) Options() Options { return r.opts.clone() }

// From returns the offset, 0 when unset.
func (r *Request) From() int {
	if r.opts.From == nil {
		return 0
	}
	return *r.opts.From
}

// Size returns the page size, 0 when unset.
func (r *Request) Size() int {
	if r.opts.Size == nil {
		return 0
	}
	return *r.opts.Size
}

func (r *Request) setFrom(n int) { r.opts.From = &n }

func (r *Request) setSize(n int) { r.opts.Size = &n }

// Query builds the engine request.
func (r *Request) Query() *db.SearchQuery {
	opts := r.opts.clone()
	return &db.SearchQuery{
		Index:          r.class.IndexNames(),
		Type:           r.class.DocumentTypes(),
		Q:              r.def.Q(),
		Body:           r.def.Body(),
		From:           opts.From,
		Size:           opts.Size,
		Sort:           opts.Sort,
		Routing:        opts.Routing,
		Preference:     opts.Preference,
		SearchType:     opts.SearchType,
		Timeout:        opts.Timeout,
		TrackTotalHits: opts.TrackTotalHits,
	}
}

// Execute runs the search, or returns the cached result.
func (r *Request) Execute(ctx context.Context) (*db.SearchResult, error) {
	if r.result != nil {
		return r.result, nil
	}
	res, err := r.store.Search(ctx, r.Query())
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", r.class.Name(), err)
	}
	r.result = res
	return res, nil
}

// Invalidate drops the cached result so the next Execute calls the engine again.
func (r *Request) Invalidate() { r.result = nil }
