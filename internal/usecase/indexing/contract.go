package indexing

import (
	"context"

	"github.com/kailas-cloud/esmodel/internal/db"
)

// DocumentWriter writes single documents.
type DocumentWriter interface {
	Index(ctx context.Context, index, id string, body []byte, refresh db.Refresh) (string, error)
	Update(ctx context.Context, index, id string, partial []byte, refresh db.Refresh) error
	Delete(ctx context.Context, index, id string, refresh db.Refresh) error
}

// Store is the storage contract of the indexing service.
type Store interface {
	DocumentWriter
	db.IndexManager
}
