package importing

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/kailas-cloud/esmodel/internal/adapter"
	"github.com/kailas-cloud/esmodel/internal/db"
	"github.com/kailas-cloud/esmodel/internal/domain"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
)

// DefaultBatchSize is the number of records per bulk request.
const DefaultBatchSize = 1000

// Options control one import.
type Options struct {
	// Force drops and recreates the target index first.
	Force bool
	// BatchSize defaults to DefaultBatchSize.
	BatchSize int
	// Scope narrows the imported records; its type is adapter specific.
	Scope any
	// Preprocess runs on every batch before transformation.
	Preprocess func(ctx context.Context, batch []any) ([]any, error)
	// Transform turns a record into a bulk operation. Default: index the
	// indexed JSON under the record id.
	Transform func(class *model.Class, record any) (db.BulkOp, error)
	// Index and Type override the class index and document type.
	Index string
	Type  string
	// Refresh refreshes the index after the last batch.
	Refresh bool
	// OnBatch receives every bulk response.
	OnBatch func(*db.BulkResult)
}

// Result summarizes an import.
type Result struct {
	// Count is the number of operations sent.
	Count int
	// Batches is the number of bulk requests.
	Batches int
	// Errors are the operations the engine rejected.
	Errors []db.BulkItem
}

// Failed returns the number of rejected operations.
func (r Result) Failed() int { return len(r.Errors) }

// Err combines every rejected operation into one error, nil when all succeeded.
func (r Result) Err() error {
	var err error
	for _, it := range r.Errors {
		err = multierr.Append(err, it.Err())
	}
	return err
}

// Service imports every record of a class into its index in batches.
// There is no retry or rollback: rejected operations are reported in Result.
type Service struct {
	store    Store
	indices  IndexCreator
	adapters Resolver
}

// New creates an import service.
func New(store Store, indices IndexCreator, adapters Resolver) *Service {
	return &Service{store: store, indices: indices, adapters: adapters}
}

// Import walks the class records through its adapter and bulk-indexes them.
// A missing target index is an error unless Force is set.
func (s *Service) Import(ctx context.Context, class *model.Class, opts Options) (Result, error) {
	index := opts.Index
	if index == "" {
		index = class.IndexName()
	}
	typ := opts.Type
	if typ == "" {
		typ = class.DocumentType()
	}

	if opts.Force {
		if err := s.indices.CreateIndexAs(ctx, class, index, true); err != nil {
			return Result{}, err
		}
	} else {
		exists, err := s.store.IndexExists(ctx, index)
		if err != nil {
			return Result{}, fmt.Errorf("%s: check index %s: %w", class.Name(), index, err)
		}
		if !exists {
			return Result{}, fmt.Errorf("%s: %w", class.Name(), domain.NewIndexMissing(index))
		}
	}

	transform := opts.Transform
	if transform == nil {
		transform = defaultTransform
	}
	size := opts.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	var res Result
	importer := s.adapters.FromClass(class).Importing()
	err := importer.FindInBatches(ctx, class, adapter.BatchOptions{Size: size, Scope: opts.Scope}, func(batch []any) error {
		if opts.Preprocess != nil {
			var err error
			if batch, err = opts.Preprocess(ctx, batch); err != nil {
				return fmt.Errorf("preprocess batch %d: %w", res.Batches+1, err)
			}
		}
		if len(batch) == 0 {
			return nil
		}

		ops := make([]db.BulkOp, 0, len(batch))
		for _, rec := range batch {
			op, err := transform(class, rec)
			if err != nil {
				return fmt.Errorf("transform record: %w", err)
			}
			if op.Type == "" {
				op.Type = typ
			}
			ops = append(ops, op)
		}

		br, err := s.store.Bulk(ctx, index, ops, db.RefreshNone)
		if err != nil {
			return fmt.Errorf("bulk batch %d: %w", res.Batches+1, err)
		}
		res.Batches++
		res.Count += len(ops)
		res.Errors = append(res.Errors, br.Failures()...)
		if opts.OnBatch != nil {
			opts.OnBatch(br)
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("%s: import: %w", class.Name(), err)
	}

	if opts.Refresh {
		if err := s.store.Refresh(ctx, index); err != nil {
			return res, fmt.Errorf("%s: refresh %s: %w", class.Name(), index, err)
		}
	}
	return res, nil
}

func defaultTransform(class *model.Class, record any) (db.BulkOp, error) {
	id, err := class.ID(record)
	if err != nil {
		return db.BulkOp{}, err
	}
	doc, err := class.IndexedJSON(record)
	if err != nil {
		return db.BulkOp{}, err
	}
	return db.BulkOp{Action: db.BulkIndex, ID: id, Document: doc}, nil
}
