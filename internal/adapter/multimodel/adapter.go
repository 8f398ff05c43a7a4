package multimodel

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/esmodel/internal/adapter"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
)

// Name is the adapter name.
const Name = "multimodel"

// Set returns the multimodel capability set. Only hydration is supported;
// callbacks and importing belong to the member classes.
func Set() adapter.Set {
	return adapter.Set{
		Name:    Name,
		Records: records{},
	}
}

// Matches reports whether class wraps a Multimodel.
func Matches(class *model.Class) bool {
	_, ok := class.Source().(*Multimodel)
	return ok
}

type group struct {
	class  *model.Class
	lookup adapter.Lookup
	// hits maps group positions to positions in the outer lookup.
	hits []int
}

type records struct{}

// Fetch groups hits by class and fetches each group through the class
// adapter. Records come back in hit order; with an explicit order each
// class keeps its backend order, classes following their first hit. Hits
// of unknown classes and missing records are omitted.
func (records) Fetch(ctx context.Context, l adapter.Lookup) ([]adapter.Hydrated, error) {
	m, ok := l.Class.Source().(*Multimodel)
	if !ok {
		return nil, fmt.Errorf("%s: source %T is not a *multimodel.Multimodel", l.Class.Name(), l.Class.Source())
	}
	if len(l.Hits) == 0 {
		return nil, nil
	}

	groups := make(map[*model.Class]*group)
	var order []*model.Class
	for i, h := range l.Hits {
		c := m.classOf(h.Index(), h.Type())
		if c == nil {
			continue
		}
		g, ok := groups[c]
		if !ok {
			g = &group{class: c, lookup: adapter.Lookup{Class: c, Order: l.Order}}
			groups[c] = g
			order = append(order, c)
		}
		g.lookup.IDs = append(g.lookup.IDs, h.ID())
		g.lookup.Hits = append(g.lookup.Hits, h)
		g.hits = append(g.hits, i)
	}

	var out []adapter.Hydrated
	byHit := make([]*adapter.Hydrated, len(l.Hits))
	for _, c := range order {
		g := groups[c]
		recs, err := m.registry.FromClass(c).Records().Fetch(ctx, g.lookup)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", l.Class.Name(), err)
		}
		for _, r := range recs {
			pos := -1
			if r.Hit >= 0 && r.Hit < len(g.hits) {
				pos = g.hits[r.Hit]
			}
			h := adapter.Hydrated{Record: r.Record, Hit: pos}
			if l.Order != "" {
				out = append(out, h)
				continue
			}
			if pos >= 0 && byHit[pos] == nil {
				byHit[pos] = &h
			}
		}
	}
	if l.Order != "" {
		return out, nil
	}

	out = make([]adapter.Hydrated, 0, len(l.Hits))
	for _, h := range byHit {
		if h != nil {
			out = append(out, *h)
		}
	}
	return out, nil
}
