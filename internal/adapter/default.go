package adapter

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/esmodel/internal/domain"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
)

// DefaultName is the name of the fallback adapter.
const DefaultName = "default"

// Default returns the fallback capability set: find-by-id through
// model.Finder, no-op callbacks and no importing.
func Default() Set {
	return Set{
		Name:      DefaultName,
		Records:   finderRecords{},
		Callbacks: noopCallbacks{},
		Importing: unsupportedImporting{},
	}
}

type finderRecords struct{}

func (finderRecords) Fetch(ctx context.Context, l Lookup) ([]Hydrated, error) {
	finder, ok := l.Class.Source().(model.Finder)
	if !ok {
		return nil, fmt.Errorf("%s: records of source %T: %w", l.Class.Name(), l.Class.Source(), domain.ErrNotImplemented)
	}
	if len(l.IDs) == 0 {
		return nil, nil
	}
	records, err := finder.FindByIDs(ctx, l.IDs)
	if err != nil {
		return nil, fmt.Errorf("%s: find by ids: %w", l.Class.Name(), err)
	}
	if l.Order != "" {
		return Pair(records, l.IDs, l.Class.ID), nil
	}
	return Reorder(records, l.IDs, l.Class.ID), nil
}

type noopCallbacks struct{}

func (noopCallbacks) Install(*model.Class, IndexSink) error { return nil }

type unsupportedImporting struct{}

func (unsupportedImporting) FindInBatches(_ context.Context, class *model.Class, _ BatchOptions, _ func([]any) error) error {
	return fmt.Errorf("%s: import: %w", class.Name(), domain.ErrNotImplemented)
}
