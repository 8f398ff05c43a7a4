package esmodel

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/esmodel/internal/adapter"
	"github.com/kailas-cloud/esmodel/internal/db"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
)

// memStore is an in-memory db.Store. Searches return every document of the
// requested indices in insertion order.
type memStore struct {
	mu      sync.Mutex
	indices map[string]*db.IndexDefinition
	docs    map[string][]storedDoc
	queries []*db.SearchQuery
	bulks   [][]db.BulkOp
	closed  bool

	pingErr   error
	searchErr error
	readyErr  error
	health    string
}

type storedDoc struct {
	id     string
	source map[string]any
}

func newMemStore() *memStore {
	return &memStore{
		indices: make(map[string]*db.IndexDefinition),
		docs:    make(map[string][]storedDoc),
		health:  "green",
	}
}

func (m *memStore) Ping(context.Context) error { return m.pingErr }

func (m *memStore) Search(_ context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	res := &db.SearchResult{Took: 1}
	for _, index := range q.Index {
		for _, d := range m.docs[index] {
			res.Hits.Hits = append(res.Hits.Hits, map[string]any{
				"_index":  index,
				"_id":     d.id,
				"_score":  1.0,
				"_source": d.source,
			})
		}
	}
	res.Hits.Total = db.TotalHits{Value: int64(len(res.Hits.Hits)), Relation: "eq"}
	return res, nil
}

func (m *memStore) Count(_ context.Context, indices []string, _ []byte) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, index := range indices {
		n += int64(len(m.docs[index]))
	}
	return n, nil
}

func (m *memStore) find(index, id string) int {
	for i, d := range m.docs[index] {
		if d.id == id {
			return i
		}
	}
	return -1
}

func (m *memStore) Get(_ context.Context, index, id string) (*db.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(index, id)
	if i < 0 {
		return nil, &db.Error{Op: db.OpGet, Status: 404, Err: db.ErrNotFound}
	}
	return &db.Document{Index: index, ID: id, Source: m.docs[index][i].source}, nil
}

func (m *memStore) MGet(_ context.Context, index string, ids []string) ([]*db.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*db.Document, len(ids))
	for j, id := range ids {
		if i := m.find(index, id); i >= 0 {
			out[j] = &db.Document{Index: index, ID: id, Source: m.docs[index][i].source}
		}
	}
	return out, nil
}

func (m *memStore) Index(_ context.Context, index, id string, body []byte, _ db.Refresh) (string, error) {
	var src map[string]any
	if err := json.Unmarshal(body, &src); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "" {
		id = fmt.Sprintf("gen-%d", len(m.docs[index])+1)
	}
	m.put(index, id, src)
	return id, nil
}

func (m *memStore) put(index, id string, src map[string]any) {
	if i := m.find(index, id); i >= 0 {
		m.docs[index][i].source = src
		return
	}
	m.docs[index] = append(m.docs[index], storedDoc{id: id, source: src})
}

func (m *memStore) Update(_ context.Context, index, id string, partial []byte, _ db.Refresh) error {
	var doc struct {
		Doc map[string]any `json:"doc"`
	}
	if err := json.Unmarshal(partial, &doc); err != nil {
		return err
	}
	if doc.Doc == nil {
		if err := json.Unmarshal(partial, &doc.Doc); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(index, id)
	if i < 0 {
		return &db.Error{Op: db.OpUpdate, Status: 404, Err: db.ErrNotFound}
	}
	for k, v := range doc.Doc {
		m.docs[index][i].source[k] = v
	}
	return nil
}

func (m *memStore) Delete(_ context.Context, index, id string, _ db.Refresh) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(index, id)
	if i < 0 {
		return &db.Error{Op: db.OpDelete, Status: 404, Err: db.ErrNotFound}
	}
	m.docs[index] = append(m.docs[index][:i], m.docs[index][i+1:]...)
	return nil
}

func (m *memStore) Bulk(_ context.Context, index string, ops []db.BulkOp, _ db.Refresh) (*db.BulkResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bulks = append(m.bulks, ops)
	res := &db.BulkResult{}
	for _, op := range ops {
		item := db.BulkItem{Action: op.Action, Index: index, ID: op.ID, Status: 201}
		if op.ID == "bad" {
			item.Status = 400
			item.Error = map[string]any{"type": "mapper_parsing_exception", "reason": "failed to parse"}
			res.Errors = true
		} else if src, ok := op.Document.(map[string]any); ok {
			m.put(index, op.ID, src)
		}
		res.Items = append(res.Items, item)
	}
	return res, nil
}

func (m *memStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.indices[def.Name]; ok {
		return &db.Error{Op: db.OpCreateIndex, Status: 400, Err: db.ErrIndexExists}
	}
	m.indices[def.Name] = def
	return nil
}

func (m *memStore) DeleteIndex(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.indices[name]; !ok {
		return &db.Error{Op: db.OpDeleteIndex, Status: 404, Err: db.ErrIndexNotFound}
	}
	delete(m.indices, name)
	delete(m.docs, name)
	return nil
}

func (m *memStore) IndexExists(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.indices[name]
	return ok, nil
}

func (m *memStore) Refresh(context.Context, ...string) error { return nil }

func (m *memStore) ClusterHealth(context.Context) (*db.Health, error) {
	return &db.Health{Status: m.health}, nil
}

func (m *memStore) Close() { m.closed = true }

func (m *memStore) WaitForReady(context.Context, time.Duration) error { return m.readyErr }

// article is a record of the test source.
type article struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (a *article) DocumentID() string { return a.ID }

// articleTable is a model.Finder that also iterates in batches.
type articleTable struct {
	rows []*article
}

func (t *articleTable) FindByIDs(_ context.Context, ids []string) ([]any, error) {
	var out []any
	for _, r := range t.rows {
		for _, id := range ids {
			if r.ID == id {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

type tableImporting struct{}

func (tableImporting) FindInBatches(_ context.Context, class *model.Class, opts adapter.BatchOptions, fn func([]any) error) error {
	t := class.Source().(*articleTable)
	for start := 0; start < len(t.rows); start += opts.Size {
		end := min(start+opts.Size, len(t.rows))
		batch := make([]any, 0, end-start)
		for _, r := range t.rows[start:end] {
			batch = append(batch, r)
		}
		if err := fn(batch); err != nil {
			return err
		}
	}
	return nil
}

func newTable(ids ...string) *articleTable {
	t := &articleTable{}
	for _, id := range ids {
		t.rows = append(t.rows, &article{ID: id, Title: "title " + id})
	}
	return t
}

// newTestClient wires a client over an in-memory store with the table
// adapter registered.
func newTestClient(t *testing.T, opts ...Option) (*Client, *memStore) {
	t.Helper()
	store := newMemStore()
	cfg := &clientConfig{}
	for _, o := range append([]Option{WithStore(store)}, opts...) {
		o.apply(cfg)
	}
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		t.Fatalf("observer: %v", err)
	}
	c := wireClient(store, cfg, obs)
	c.RegisterAdapter(AdapterSet{Name: "table", Importing: tableImporting{}}, adapter.SourceIs[*articleTable]())
	return c, store
}
