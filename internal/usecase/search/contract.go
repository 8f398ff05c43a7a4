package search

import (
	"context"

	"github.com/kailas-cloud/esmodel/internal/adapter"
	"github.com/kailas-cloud/esmodel/internal/db"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
)

// Searcher runs search requests against the engine.
type Searcher interface {
	Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
}

// Resolver returns the adapter serving a class.
type Resolver interface {
	FromClass(class *model.Class) *adapter.Adapter
}
