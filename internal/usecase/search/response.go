package search

import (
	"context"

	"github.com/kailas-cloud/esmodel/internal/db"
	"github.com/kailas-cloud/esmodel/internal/domain/search/page"
)

// State is the execution state of a Response.
type State int

const (
	// Unexecuted responses have never called the engine.
	Unexecuted State = iota
	// Executed responses hold a result for the current request options.
	Executed
	// Invalidated responses had their options changed after execution.
	Invalidated
)

func (s State) String() string {
	switch s {
	case Unexecuted:
		return "unexecuted"
	case Executed:
		return "executed"
	case Invalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// Response is the lazy result of a Request. Any accessor below executes the
// request on first use; pagination mutators invalidate it. A Response is not
// safe for concurrent use.
type Response struct {
	req       *Request
	adapters  Resolver
	paginator page.Backend

	state   State
	dirty   bool
	raw     *db.SearchResult
	results *Results
	records *Records

	page    int
	perPage int
}

// NewResponse wraps req. adapters hydrate records; paginator picks the default page size.
func NewResponse(req *Request, adapters Resolver, paginator page.Backend) *Response {
	return &Response{req: req, adapters: adapters, paginator: paginator, dirty: true}
}

// Request returns the underlying request.
func (r *Response) Request() *Request { return r.req }

// State returns the execution state.
func (r *Response) State() State { return r.state }

// Execute runs the request when the response is dirty.
func (r *Response) Execute(ctx context.Context) error {
	if !r.dirty {
		return nil
	}
	res, err := r.req.Execute(ctx)
	if err != nil {
		return err
	}
	r.raw = res
	r.dirty = false
	r.state = Executed
	return nil
}

// invalidate clears every derived value together.
func (r *Response) invalidate() {
	r.req.Invalidate()
	r.raw = nil
	r.results = nil
	r.records = nil
	r.dirty = true
	if r.state == Executed {
		r.state = Invalidated
	}
}

// Raw returns the raw engine response.
func (r *Response) Raw(ctx context.Context) (*db.SearchResult, error) {
	if err := r.Execute(ctx); err != nil {
		return nil, err
	}
	return r.raw, nil
}

// Results returns the hits.
func (r *Response) Results(ctx context.Context) (*Results, error) {
	if err := r.Execute(ctx); err != nil {
		return nil, err
	}
	if r.results == nil {
		r.results = newResults(r.raw)
	}
	return r.results, nil
}

// Records returns the lazily hydrated records of the hits.
func (r *Response) Records(ctx context.Context) (*Records, error) {
	results, err := r.Results(ctx)
	if err != nil {
		return nil, err
	}
	if r.records == nil {
		r.records = newRecords(r.adapters, r.req.Class(), results.Hits())
	}
	return r.records, nil
}

// Aggregations returns the aggregations section.
func (r *Response) Aggregations(ctx context.Context) (map[string]any, error) {
	raw, err := r.Raw(ctx)
	if err != nil {
		return nil, err
	}
	return raw.Aggregations, nil
}

// Suggestions returns the suggest section.
func (r *Response) Suggestions(ctx context.Context) (map[string]any, error) {
	raw, err := r.Raw(ctx)
	if err != nil {
		return nil, err
	}
	return raw.Suggest, nil
}

// Took returns the engine time in milliseconds.
func (r *Response) Took(ctx context.Context) (int64, error) {
	raw, err := r.Raw(ctx)
	if err != nil {
		return 0, err
	}
	return raw.Took, nil
}

// TimedOut reports whether the engine hit its timeout.
func (r *Response) TimedOut(ctx context.Context) (bool, error) {
	raw, err := r.Raw(ctx)
	if err != nil {
		return false, err
	}
	return raw.TimedOut, nil
}

// Shards returns shard statistics.
func (r *Response) Shards(ctx context.Context) (db.ShardStats, error) {
	raw, err := r.Raw(ctx)
	if err != nil {
		return db.ShardStats{}, err
	}
	return raw.Shards, nil
}

// Total returns the total hit count.
func (r *Response) Total(ctx context.Context) (int64, error) {
	raw, err := r.Raw(ctx)
	if err != nil {
		return 0, err
	}
	return raw.Hits.Total.Value, nil
}

// MaxScore returns the best score, nil when unscored.
func (r *Response) MaxScore(ctx context.Context) (*float64, error) {
	raw, err := r.Raw(ctx)
	if err != nil {
		return nil, err
	}
	return raw.Hits.MaxScore, nil
}
