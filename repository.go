package esmodel

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/esmodel/internal/repository/persistence"
)

// IDSetter is implemented by documents that accept their id after a save or load.
type IDSetter = persistence.IDSetter

// RepositoryOption configures a Repository.
type RepositoryOption func(*persistence.Config)

// WithRepositoryName sets the class name reported by searches. Default: "Document".
func WithRepositoryName(name string) RepositoryOption {
	return func(c *persistence.Config) { c.Name = name }
}

// WithRepositoryType sets the document type for engines that still have types.
func WithRepositoryType(t string) RepositoryOption {
	return func(c *persistence.Config) { c.Type = t }
}

// WithRepositorySettings sets the index settings used by CreateIndex.
func WithRepositorySettings(s map[string]any) RepositoryOption {
	return func(c *persistence.Config) { c.Settings = s }
}

// WithRepositoryMappings sets the index mappings used by CreateIndex.
func WithRepositoryMappings(m map[string]any) RepositoryOption {
	return func(c *persistence.Config) { c.Mappings = m }
}

// WithSerializer overrides the document representation sent to the index.
func WithSerializer[T any](fn func(doc *T) (map[string]any, error)) RepositoryOption {
	return func(c *persistence.Config) {
		c.Serialize = func(doc any) (map[string]any, error) {
			d, ok := doc.(*T)
			if !ok {
				return nil, fmt.Errorf("document %T is not %T", doc, d)
			}
			return fn(d)
		}
	}
}

// Repository stores documents of type T directly in one index, without an
// application store behind it.
type Repository[T any] struct {
	repo *persistence.Repo
}

// NewRepository creates a repository over index. Documents are decoded
// from their stored source into a fresh *T; a *T implementing IDSetter
// receives its id after every save and load.
func NewRepository[T any](c *Client, index string, opts ...RepositoryOption) (*Repository[T], error) {
	cfg := persistence.Config{
		Index:       index,
		NewDocument: func() any { return new(T) },
		Refresh:     c.refresh,
		Paginator:   c.paginator,
	}
	for _, o := range opts {
		o(&cfg)
	}
	r, err := persistence.New(observedStore{Store: c.store, obs: c.obs, model: index}, cfg)
	if err != nil {
		return nil, err
	}
	return &Repository[T]{repo: r}, nil
}

// IndexName returns the repository index.
func (r *Repository[T]) IndexName() string { return r.repo.IndexName() }

// Class returns the descriptor searches run against.
func (r *Repository[T]) Class() *Class { return r.repo.Class() }

// Save indexes doc and returns its id.
func (r *Repository[T]) Save(ctx context.Context, doc *T) (string, error) {
	return r.repo.Save(ctx, doc)
}

// Find returns the document stored under id, or ErrDocumentNotFound.
func (r *Repository[T]) Find(ctx context.Context, id string) (*T, error) {
	d, err := r.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return typed[T](d)
}

// FindMany returns one entry per id in the same order. Missing documents are nil.
func (r *Repository[T]) FindMany(ctx context.Context, ids ...string) ([]*T, error) {
	docs, err := r.repo.FindMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*T, len(docs))
	for i, d := range docs {
		if d == nil {
			continue
		}
		if out[i], err = typed[T](d); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Exists reports whether a document is stored under id.
func (r *Repository[T]) Exists(ctx context.Context, id string) (bool, error) {
	return r.repo.Exists(ctx, id)
}

// Update applies a partial document to id.
func (r *Repository[T]) Update(ctx context.Context, id string, attrs map[string]any) error {
	return r.repo.Update(ctx, id, attrs)
}

// Delete removes the document stored under id.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	return r.repo.Delete(ctx, id)
}

// Count returns the number of documents matching q.
func (r *Repository[T]) Count(ctx context.Context, q any) (int64, error) {
	return r.repo.Count(ctx, q)
}

// Search prepares a lazy search. Use RecordsOf[*T] to read typed documents.
func (r *Repository[T]) Search(q any, opts SearchOptions) (*Response, error) {
	return r.repo.Search(q, opts)
}

// CreateIndex creates the index. With force, an existing index is deleted first.
func (r *Repository[T]) CreateIndex(ctx context.Context, force bool) error {
	return r.repo.CreateIndex(ctx, force)
}

// DeleteIndex drops the index.
func (r *Repository[T]) DeleteIndex(ctx context.Context) error {
	return r.repo.DeleteIndex(ctx)
}

// Refresh makes recent writes searchable.
func (r *Repository[T]) Refresh(ctx context.Context) error {
	return r.repo.Refresh(ctx)
}

// IndexExists reports whether the index exists.
func (r *Repository[T]) IndexExists(ctx context.Context) (bool, error) {
	return r.repo.IndexExists(ctx)
}

func typed[T any](d any) (*T, error) {
	v, ok := d.(*T)
	if !ok {
		return nil, fmt.Errorf("document %T is not %T", d, v)
	}
	return v, nil
}
