package adapter

import (
	"context"

	"github.com/kailas-cloud/esmodel/internal/domain/model"
	"github.com/kailas-cloud/esmodel/internal/domain/search/hit"
)

// Lookup is the input for record hydration.
type Lookup struct {
	Class *model.Class
	// IDs are the hit ids in hit order.
	IDs []string
	// Hits are the raw hits the ids came from, same order.
	Hits []hit.Hit
	// Order is an explicit backend order clause. When set, backend order is
	// kept instead of hit order.
	Order string
}

// Records hydrates search hits into application records.
type Records interface {
	// Fetch loads the records for l.IDs, each tagged with the position of
	// its hit. Missing records are omitted.
	Fetch(ctx context.Context, l Lookup) ([]Hydrated, error)
}

// IndexSink receives record lifecycle notifications and keeps the index in sync.
type IndexSink interface {
	IndexDocument(ctx context.Context, class *model.Class, record any) error
	UpdateDocument(ctx context.Context, class *model.Class, record any, changed []string) error
	DeleteDocument(ctx context.Context, class *model.Class, record any) error
}

// Callbacks wires record lifecycle notifications of a class to a sink.
type Callbacks interface {
	Install(class *model.Class, sink IndexSink) error
}

// BatchOptions controls batch iteration.
type BatchOptions struct {
	Size int
	// Scope narrows the iterated records. Its type is backend specific.
	Scope any
}

// Importing iterates all records of a class in batches.
type Importing interface {
	FindInBatches(ctx context.Context, class *model.Class, opts BatchOptions, fn func(batch []any) error) error
}

// Set is the capability set of one storage backend.
type Set struct {
	Name      string
	Records   Records
	Callbacks Callbacks
	Importing Importing
}

// Adapter is the resolved capability set for a class.
type Adapter struct {
	set Set
}

// Name returns the adapter name.
func (a *Adapter) Name() string { return a.set.Name }

// Records returns the hydration capability.
func (a *Adapter) Records() Records { return a.set.Records }

// Callbacks returns the lifecycle capability.
func (a *Adapter) Callbacks() Callbacks { return a.set.Callbacks }

// Importing returns the batch iteration capability.
func (a *Adapter) Importing() Importing { return a.set.Importing }
