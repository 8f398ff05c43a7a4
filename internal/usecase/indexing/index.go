package indexing

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/esmodel/internal/db"
	"github.com/kailas-cloud/esmodel/internal/domain"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
)

// CreateIndex creates the class index with its settings and mappings. An
// existing index is kept unless force is set, in which case it is dropped first.
func (s *Service) CreateIndex(ctx context.Context, class *model.Class, force bool) error {
	return s.CreateIndexAs(ctx, class, class.IndexName(), force)
}

// CreateIndexAs is CreateIndex with an explicit index name.
func (s *Service) CreateIndexAs(ctx context.Context, class *model.Class, name string, force bool) error {
	if force {
		if err := s.store.DeleteIndex(ctx, name); err != nil && !db.IsNotFound(err) {
			return fmt.Errorf("%s: drop index %s: %w", class.Name(), name, err)
		}
	} else {
		exists, err := s.store.IndexExists(ctx, name)
		if err != nil {
			return fmt.Errorf("%s: check index %s: %w", class.Name(), name, err)
		}
		if exists {
			return nil
		}
	}

	def := &db.IndexDefinition{Name: name, Settings: class.Settings(), Mappings: class.Mappings()}
	if err := s.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("%s: create index %s: %w", class.Name(), name, err)
	}
	return nil
}

// DeleteIndex drops the class index. A missing index yields domain.ErrIndexMissing.
func (s *Service) DeleteIndex(ctx context.Context, class *model.Class) error {
	if err := s.store.DeleteIndex(ctx, class.IndexName()); err != nil {
		if db.IsNotFound(err) {
			return domain.NewIndexMissing(class.IndexName())
		}
		return fmt.Errorf("%s: delete index: %w", class.Name(), err)
	}
	return nil
}

// RefreshIndex makes recent writes to the class index searchable.
func (s *Service) RefreshIndex(ctx context.Context, class *model.Class) error {
	if err := s.store.Refresh(ctx, class.IndexName()); err != nil {
		if db.IsNotFound(err) {
			return domain.NewIndexMissing(class.IndexName())
		}
		return fmt.Errorf("%s: refresh index: %w", class.Name(), err)
	}
	return nil
}

// IndexExists reports whether the class index exists.
func (s *Service) IndexExists(ctx context.Context, class *model.Class) (bool, error) {
	ok, err := s.store.IndexExists(ctx, class.IndexName())
	if err != nil {
		return false, fmt.Errorf("%s: check index: %w", class.Name(), err)
	}
	return ok, nil
}
