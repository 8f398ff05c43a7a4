package db

import (
	"context"
	"time"
)

// Store is the search engine facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	Searcher
	DocumentStore
	BulkIndexer
	IndexManager
	ClusterInspector
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks cluster connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Searcher runs search and count requests.
type Searcher interface {
	Search(ctx context.Context, q *SearchQuery) (*SearchResult, error)
	Count(ctx context.Context, indices []string, body []byte) (int64, error)
}

// DocumentStore provides single-document operations.
type DocumentStore interface {
	// Get returns ErrNotFound when the document does not exist.
	Get(ctx context.Context, index, id string) (*Document, error)
	// MGet returns one entry per id; missing documents are nil.
	MGet(ctx context.Context, index string, ids []string) ([]*Document, error)
	// Index stores body under id (generated by the engine when id is empty) and returns the id.
	Index(ctx context.Context, index, id string, body []byte, refresh Refresh) (string, error)
	// Update applies a partial document.
	Update(ctx context.Context, index, id string, partial []byte, refresh Refresh) error
	// Delete returns ErrNotFound when the document does not exist.
	Delete(ctx context.Context, index, id string, refresh Refresh) error
}

// BulkIndexer sends batches of bulk operations.
type BulkIndexer interface {
	Bulk(ctx context.Context, index string, ops []BulkOp, refresh Refresh) (*BulkResult, error)
}

// IndexManager provides index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DeleteIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	Refresh(ctx context.Context, names ...string) error
}

// ClusterInspector reports cluster state.
type ClusterInspector interface {
	ClusterHealth(ctx context.Context) (*Health, error)
}

// Refresh controls index refresh after a write.
type Refresh string

const (
	// RefreshNone leaves refresh to the engine schedule.
	RefreshNone Refresh = ""
	// RefreshTrue refreshes affected shards immediately.
	RefreshTrue Refresh = "true"
	// RefreshWaitFor blocks until the next scheduled refresh.
	RefreshWaitFor Refresh = "wait_for"
)

// Document is a single stored document as returned by get/mget.
type Document struct {
	Index   string
	Type    string
	ID      string
	Version int64
	Source  map[string]any
}

// Health is the cluster health summary.
type Health struct {
	ClusterName         string `json:"cluster_name"`
	Status              string `json:"status"`
	NumberOfNodes       int    `json:"number_of_nodes"`
	ActiveShards        int    `json:"active_shards"`
	UnassignedShards    int    `json:"unassigned_shards"`
	RelocatingShards    int    `json:"relocating_shards"`
	InitializingShards  int    `json:"initializing_shards"`
	NumberOfPendingTask int    `json:"number_of_pending_tasks"`
	TimedOut            bool   `json:"timed_out"`
}
