package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/esmodel/internal/adapter"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
	"github.com/kailas-cloud/esmodel/internal/domain/search/hit"
)

// Records hydrates hits into application records through the class adapter.
// Records are fetched on first use and kept afterwards.
type Records struct {
	adapters Resolver
	class    *model.Class
	hits     []hit.Hit
	order    string

	loaded   bool
	records  []any
	hydrated []adapter.Hydrated
}

func newRecords(adapters Resolver, class *model.Class, hits []hit.Hit) *Records {
	return &Records{adapters: adapters, class: class, hits: hits}
}

// IDs returns the hit ids in hit order.
func (r *Records) IDs() []string {
	ids := make([]string, len(r.hits))
	for i, h := range r.hits {
		ids[i] = h.ID()
	}
	return ids
}

// Hits returns the hits the records come from.
func (r *Records) Hits() []hit.Hit { return r.hits }

// Order returns an unloaded view that fetches with an explicit backend
// order. Records then keep the backend order instead of hit order.
func (r *Records) Order(clause string) *Records {
	return &Records{adapters: r.adapters, class: r.class, hits: r.hits, order: clause}
}

// All loads and returns the records. Hits without a record are omitted.
func (r *Records) All(ctx context.Context) ([]any, error) {
	if r.loaded {
		return r.records, nil
	}
	a := r.adapters.FromClass(r.class)
	recs, err := a.Records().Fetch(ctx, adapter.Lookup{
		Class: r.class,
		IDs:   r.IDs(),
		Hits:  r.hits,
		Order: r.order,
	})
	if err != nil {
		return nil, fmt.Errorf("load %s records via %s adapter: %w", r.class.Name(), a.Name(), err)
	}
	r.hydrated, r.records, r.loaded = recs, adapter.Values(recs), true
	return r.records, nil
}

// Each calls fn for every record, stopping at the first error.
func (r *Records) Each(ctx context.Context, fn func(record any) error) error {
	recs, err := r.All(ctx)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

// EachWithHit calls fn for every record with the hit it was loaded for.
// A record the backend returned for no hit gets a zero Hit.
func (r *Records) EachWithHit(ctx context.Context, fn func(record any, h hit.Hit) error) error {
	if _, err := r.All(ctx); err != nil {
		return err
	}
	for _, rec := range r.hydrated {
		var h hit.Hit
		if rec.Hit >= 0 && rec.Hit < len(r.hits) {
			h = r.hits[rec.Hit]
		}
		if err := fn(rec.Record, h); err != nil {
			return err
		}
	}
	return nil
}

// MapWithHit maps every record and its hit.
func (r *Records) MapWithHit(ctx context.Context, fn func(record any, h hit.Hit) (any, error)) ([]any, error) {
	var out []any
	err := r.EachWithHit(ctx, func(rec any, h hit.Hit) error {
		v, err := fn(rec, h)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	return out, err
}
