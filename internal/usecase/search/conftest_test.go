package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/esmodel/internal/adapter"
	"github.com/kailas-cloud/esmodel/internal/db"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
)

// fakeStore returns a canned result and records every query.
type fakeStore struct {
	result  *db.SearchResult
	err     error
	queries []*db.SearchQuery
}

func (f *fakeStore) Search(_ context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func resultWithIDs(total int64, ids ...string) *db.SearchResult {
	res := &db.SearchResult{Took: 3}
	res.Hits.Total = db.TotalHits{Value: total, Relation: "eq"}
	for _, id := range ids {
		res.Hits.Hits = append(res.Hits.Hits, map[string]any{
			"_index":  "articles",
			"_id":     id,
			"_score":  1.0,
			"_source": map[string]any{"title": "title " + id},
		})
	}
	return res
}

// rowFinder is a model.Finder over a fixed set of records.
type rowFinder struct {
	rows  map[string]map[string]any
	calls int
}

func (f *rowFinder) FindByIDs(_ context.Context, ids []string) ([]any, error) {
	f.calls++
	var out []any
	// storage order differs from hit order
	for i := len(ids) - 1; i >= 0; i-- {
		if r, ok := f.rows[ids[i]]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func newArticles(ids ...string) (*model.Class, *rowFinder) {
	f := &rowFinder{rows: make(map[string]map[string]any)}
	for _, id := range ids {
		f.rows[id] = map[string]any{"id": id, "title": fmt.Sprintf("record %s", id)}
	}
	return model.MustNew("Article", f, model.WithIndexName("articles")), f
}

func registry() *adapter.Registry { return adapter.NewRegistry() }

func mustClass(t interface{ Helper() }) *model.Class {
	t.Helper()
	return model.MustNew("Article", struct{}{}, model.WithIndexName("articles"))
}
