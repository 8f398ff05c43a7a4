package importing

import (
	"context"

	"github.com/kailas-cloud/esmodel/internal/adapter"
	"github.com/kailas-cloud/esmodel/internal/db"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
)

// Store is the storage contract of the import service.
type Store interface {
	Bulk(ctx context.Context, index string, ops []db.BulkOp, refresh db.Refresh) (*db.BulkResult, error)
	IndexExists(ctx context.Context, name string) (bool, error)
	Refresh(ctx context.Context, names ...string) error
}

// IndexCreator creates the target index of an import.
type IndexCreator interface {
	CreateIndexAs(ctx context.Context, class *model.Class, name string, force bool) error
}

// Resolver returns the adapter serving a class.
type Resolver interface {
	FromClass(class *model.Class) *adapter.Adapter
}
