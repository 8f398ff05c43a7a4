package health

import (
	"context"

	"github.com/kailas-cloud/esmodel/internal/db"
)

// SearchPinger checks search engine availability.
type SearchPinger interface {
	Ping(ctx context.Context) error
}

// ClusterInspector reports search cluster state.
type ClusterInspector interface {
	ClusterHealth(ctx context.Context) (*db.Health, error)
}

// Checker checks a storage backend behind an adapter.
type Checker interface {
	Ping(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

// Ping calls f.
func (f CheckerFunc) Ping(ctx context.Context) error { return f(ctx) }
