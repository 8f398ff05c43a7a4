package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/esmodel/internal/adapter"
	"github.com/kailas-cloud/esmodel/internal/db"
	"github.com/kailas-cloud/esmodel/internal/domain"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
	"github.com/kailas-cloud/esmodel/internal/domain/search/hit"
	"github.com/kailas-cloud/esmodel/internal/domain/search/page"
	"github.com/kailas-cloud/esmodel/internal/domain/search/query"
	"github.com/kailas-cloud/esmodel/internal/usecase/indexing"
	"github.com/kailas-cloud/esmodel/internal/usecase/search"
)

// AdapterName names the capability set that hydrates repository search hits.
const AdapterName = "persistence"

// DefaultName is the descriptor name used when Config.Name is empty.
const DefaultName = "Document"

// store is the consumer interface for the repository (ISP).
type store interface {
	search.Searcher
	indexing.Store
	Count(ctx context.Context, indices []string, body []byte) (int64, error)
	Get(ctx context.Context, index, id string) (*db.Document, error)
	MGet(ctx context.Context, index string, ids []string) ([]*db.Document, error)
}

// IDSetter is implemented by documents that accept their id after a save or load.
type IDSetter interface {
	SetDocumentID(id string)
}

// Config describes the index a repository works on.
type Config struct {
	Name     string
	Index    string
	Type     string
	Settings map[string]any
	Mappings map[string]any
	// NewDocument returns a fresh pointer that stored sources are decoded into.
	// Without it Deserialize fails with domain.ErrNoClass.
	NewDocument func() any
	// Serialize overrides the document representation sent to the index.
	Serialize func(doc any) (map[string]any, error)
	Refresh   db.Refresh
	Paginator page.Backend
}

// Repo stores plain documents in one index.
type Repo struct {
	store    store
	cfg      Config
	class    *model.Class
	indices  *indexing.Service
	adapters *adapter.Registry
}

// New creates a repository. The index name is required.
func New(s store, cfg Config) (*Repo, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: repository store is required", domain.ErrInvalidModel)
	}
	if !db.IsValidIndexName(cfg.Index) {
		return nil, fmt.Errorf("%w: invalid index name %q", domain.ErrInvalidModel, cfg.Index)
	}
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}

	r := &Repo{store: s, cfg: cfg}
	opts := []model.Option{
		model.WithIndexName(cfg.Index),
		model.WithDocumentType(cfg.Type),
		model.WithSettings(cfg.Settings),
		model.WithMappings(cfg.Mappings),
	}
	if cfg.Serialize != nil {
		opts = append(opts, model.WithIndexedJSON(cfg.Serialize))
	}
	class, err := model.New(cfg.Name, r, opts...)
	if err != nil {
		return nil, err
	}
	r.class = class
	r.indices = indexing.New(s).WithRefresh(cfg.Refresh)

	r.adapters = adapter.NewRegistry()
	r.adapters.Register(adapter.Set{Name: AdapterName, Records: sourceRecords{repo: r}},
		func(c *model.Class) bool { return c == r.class })
	return r, nil
}

// Class returns the descriptor searches run against.
func (r *Repo) Class() *model.Class { return r.class }

// IndexName returns the repository index.
func (r *Repo) IndexName() string { return r.cfg.Index }

// Serialize returns the document body stored for doc.
func (r *Repo) Serialize(doc any) (map[string]any, error) {
	body, err := r.class.IndexedJSON(doc)
	if err != nil {
		return nil, fmt.Errorf("serialize %T: %w", doc, err)
	}
	return body, nil
}

// Deserialize decodes a stored source into a new document.
func (r *Repo) Deserialize(id string, source map[string]any) (any, error) {
	if r.cfg.NewDocument == nil {
		return nil, domain.ErrNoClass
	}
	data, err := json.Marshal(source)
	if err != nil {
		return nil, fmt.Errorf("deserialize %s: %w", id, err)
	}
	doc := r.cfg.NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("deserialize %s: %w", id, err)
	}
	if s, ok := doc.(IDSetter); ok && id != "" {
		s.SetDocumentID(id)
	}
	return doc, nil
}

// Save indexes doc and returns its id. Documents without an id get one
// generated by the engine.
func (r *Repo) Save(ctx context.Context, doc any) (string, error) {
	body, err := r.Serialize(doc)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}

	id, err := r.store.Index(ctx, r.cfg.Index, documentID(doc, body), data, r.cfg.Refresh)
	if err != nil {
		return "", fmt.Errorf("index %s: %w", r.cfg.Index, err)
	}
	if s, ok := doc.(IDSetter); ok {
		s.SetDocumentID(id)
	}
	return id, nil
}

// Find returns the document stored under id.
func (r *Repo) Find(ctx context.Context, id string) (any, error) {
	d, err := r.store.Get(ctx, r.cfg.Index, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
		}
		return nil, fmt.Errorf("get %s/%s: %w", r.cfg.Index, id, err)
	}
	return r.Deserialize(d.ID, d.Source)
}

// FindMany returns one entry per id in the same order. Missing documents are nil.
func (r *Repo) FindMany(ctx context.Context, ids []string) ([]any, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	docs, err := r.store.MGet(ctx, r.cfg.Index, ids)
	if err != nil {
		return nil, fmt.Errorf("mget %s: %w", r.cfg.Index, err)
	}
	out := make([]any, len(ids))
	for i, d := range docs {
		if i >= len(out) || d == nil {
			continue
		}
		doc, err := r.Deserialize(d.ID, d.Source)
		if err != nil {
			return nil, err
		}
		out[i] = doc
	}
	return out, nil
}

// Exists reports whether a document is stored under id.
func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := r.store.Get(ctx, r.cfg.Index, id); err != nil {
		if db.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("get %s/%s: %w", r.cfg.Index, id, err)
	}
	return true, nil
}

// Update applies a partial document.
func (r *Repo) Update(ctx context.Context, id string, attrs map[string]any) error {
	data, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}
	if err := r.store.Update(ctx, r.cfg.Index, id, data, r.cfg.Refresh); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
		}
		return fmt.Errorf("update %s/%s: %w", r.cfg.Index, id, err)
	}
	return nil
}

// Delete removes the document stored under id.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, r.cfg.Index, id, r.cfg.Refresh); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
		}
		return fmt.Errorf("delete %s/%s: %w", r.cfg.Index, id, err)
	}
	return nil
}

// Count returns the number of documents matching q. A plain string is
// sent as a query_string query.
func (r *Repo) Count(ctx context.Context, q any) (int64, error) {
	def, err := query.Resolve(q)
	if err != nil {
		return 0, err
	}
	body := def.Body()
	if def.Kind() == query.KindString {
		body, err = json.Marshal(map[string]any{
			"query": map[string]any{"query_string": map[string]any{"query": def.Q()}},
		})
		if err != nil {
			return 0, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
		}
	}
	n, err := r.store.Count(ctx, []string{r.cfg.Index}, body)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.cfg.Index, err)
	}
	return n, nil
}

// Search prepares a lazy search over the repository index. Records of the
// response are the deserialized sources of the hits.
func (r *Repo) Search(q any, opts search.Options) (*search.Response, error) {
	req, err := search.NewRequest(r.store, r.class, q, opts)
	if err != nil {
		return nil, err
	}
	return search.NewResponse(req, r.adapters, r.cfg.Paginator), nil
}

// CreateIndex creates the index with the configured settings and mappings.
func (r *Repo) CreateIndex(ctx context.Context, force bool) error {
	return r.indices.CreateIndex(ctx, r.class, force)
}

// DeleteIndex drops the index.
func (r *Repo) DeleteIndex(ctx context.Context) error {
	return r.indices.DeleteIndex(ctx, r.class)
}

// Refresh makes recent writes searchable.
func (r *Repo) Refresh(ctx context.Context) error {
	return r.indices.RefreshIndex(ctx, r.class)
}

// IndexExists reports whether the index exists.
func (r *Repo) IndexExists(ctx context.Context) (bool, error) {
	return r.indices.IndexExists(ctx, r.class)
}

func documentID(doc any, body map[string]any) string {
	if d, ok := doc.(model.Identifier); ok {
		return d.DocumentID()
	}
	for _, key := range []string{"id", "ID"} {
		if v, ok := body[key]; ok && v != nil {
			return model.FormatID(v)
		}
	}
	return ""
}

// sourceRecords hydrates hits from their _source without a storage round trip.
type sourceRecords struct {
	repo *Repo
}

func (s sourceRecords) Fetch(_ context.Context, l adapter.Lookup) ([]adapter.Hydrated, error) {
	out := make([]adapter.Hydrated, 0, len(l.Hits))
	for i, h := range l.Hits {
		rec, err := s.fromHit(h)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			out = append(out, adapter.Hydrated{Record: rec, Hit: i})
		}
	}
	return out, nil
}

func (s sourceRecords) fromHit(h hit.Hit) (any, error) {
	src := h.Source()
	if src == nil {
		return nil, nil
	}
	return s.repo.Deserialize(h.ID(), src)
}
