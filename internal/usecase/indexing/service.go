package indexing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/esmodel/internal/adapter"
	"github.com/kailas-cloud/esmodel/internal/db"
	"github.com/kailas-cloud/esmodel/internal/domain"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
)

// Compile-time check: Service receives record lifecycle notifications.
var _ adapter.IndexSink = (*Service)(nil)

// Service keeps single records in sync with their index and manages the
// index of a class.
type Service struct {
	store   Store
	refresh db.Refresh
}

// New creates an indexing service.
func New(store Store) *Service {
	return &Service{store: store}
}

// WithRefresh sets the refresh policy for single-document writes.
func (s *Service) WithRefresh(r db.Refresh) *Service {
	s.refresh = r
	return s
}

// IndexDocument stores the indexed JSON of record under its id.
func (s *Service) IndexDocument(ctx context.Context, class *model.Class, record any) error {
	id, err := class.ID(record)
	if err != nil {
		return err
	}
	doc, err := class.IndexedJSON(record)
	if err != nil {
		return err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%s: encode document %s: %w", class.Name(), id, err)
	}
	if _, err := s.store.Index(ctx, class.IndexName(), id, body, s.refresh); err != nil {
		return fmt.Errorf("%s: index document %s: %w", class.Name(), id, err)
	}
	return nil
}

// UpdateDocument sends the changed attributes that are part of the indexed
// JSON as a partial update. No changed attributes means a full reindex.
func (s *Service) UpdateDocument(ctx context.Context, class *model.Class, record any, changed []string) error {
	if len(changed) == 0 {
		return s.IndexDocument(ctx, class, record)
	}
	id, err := class.ID(record)
	if err != nil {
		return err
	}
	doc, err := class.IndexedJSON(record)
	if err != nil {
		return err
	}
	partial := make(map[string]any, len(changed))
	for _, k := range changed {
		if v, ok := doc[k]; ok {
			partial[k] = v
		}
	}
	if len(partial) == 0 {
		return nil
	}
	return s.UpdateAttributes(ctx, class, id, partial)
}

// UpdateAttributes applies attrs to the stored document.
func (s *Service) UpdateAttributes(ctx context.Context, class *model.Class, id string, attrs map[string]any) error {
	body, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("%s: encode attributes: %w", class.Name(), err)
	}
	if err := s.store.Update(ctx, class.IndexName(), id, body, s.refresh); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%s %s: %w", class.Name(), id, domain.ErrDocumentNotFound)
		}
		return fmt.Errorf("%s: update document %s: %w", class.Name(), id, err)
	}
	return nil
}

// DeleteDocument removes the document of record.
func (s *Service) DeleteDocument(ctx context.Context, class *model.Class, record any) error {
	id, err := class.ID(record)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, class.IndexName(), id, s.refresh); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%s %s: %w", class.Name(), id, domain.ErrDocumentNotFound)
		}
		return fmt.Errorf("%s: delete document %s: %w", class.Name(), id, err)
	}
	return nil
}
