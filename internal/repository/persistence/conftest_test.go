package persistence

import (
	"context"
	"encoding/json"

	"github.com/kailas-cloud/esmodel/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn func(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
	countFn  func(ctx context.Context, indices []string, body []byte) (int64, error)
	getFn    func(ctx context.Context, index, id string) (*db.Document, error)
	mgetFn   func(ctx context.Context, index string, ids []string) ([]*db.Document, error)
	indexFn  func(ctx context.Context, index, id string, body []byte, refresh db.Refresh) (string, error)
	updateFn func(ctx context.Context, index, id string, partial []byte, refresh db.Refresh) error
	deleteFn func(ctx context.Context, index, id string, refresh db.Refresh) error

	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	deleteIndexFn func(ctx context.Context, name string) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	refreshFn     func(ctx context.Context, names ...string) error
}

func (m *mockStore) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) Count(ctx context.Context, indices []string, body []byte) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx, indices, body)
	}
	return 0, nil
}

func (m *mockStore) Get(ctx context.Context, index, id string) (*db.Document, error) {
	if m.getFn != nil {
		return m.getFn(ctx, index, id)
	}
	return nil, db.ErrNotFound
}

func (m *mockStore) MGet(ctx context.Context, index string, ids []string) ([]*db.Document, error) {
	if m.mgetFn != nil {
		return m.mgetFn(ctx, index, ids)
	}
	return make([]*db.Document, len(ids)), nil
}

func (m *mockStore) Index(ctx context.Context, index, id string, body []byte, refresh db.Refresh) (string, error) {
	if m.indexFn != nil {
		return m.indexFn(ctx, index, id, body, refresh)
	}
	return id, nil
}

func (m *mockStore) Update(ctx context.Context, index, id string, partial []byte, refresh db.Refresh) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, index, id, partial, refresh)
	}
	return nil
}

func (m *mockStore) Delete(ctx context.Context, index, id string, refresh db.Refresh) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, index, id, refresh)
	}
	return nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DeleteIndex(ctx context.Context, name string) error {
	if m.deleteIndexFn != nil {
		return m.deleteIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) Refresh(ctx context.Context, names ...string) error {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, names...)
	}
	return nil
}

// memoryStore is a mockStore backed by a map, enough for save/find round trips.
func memoryStore() (*mockStore, map[string][]byte) {
	docs := make(map[string][]byte)
	m := &mockStore{}
	m.indexFn = func(_ context.Context, _, id string, body []byte, _ db.Refresh) (string, error) {
		if id == "" {
			id = "generated"
		}
		docs[id] = body
		return id, nil
	}
	m.getFn = func(_ context.Context, index, id string) (*db.Document, error) {
		body, ok := docs[id]
		if !ok {
			return nil, &db.Error{Op: db.OpGet, Status: 404, Err: db.ErrNotFound}
		}
		return decoded(index, id, body), nil
	}
	m.mgetFn = func(_ context.Context, index string, ids []string) ([]*db.Document, error) {
		out := make([]*db.Document, len(ids))
		for i, id := range ids {
			if body, ok := docs[id]; ok {
				out[i] = decoded(index, id, body)
			}
		}
		return out, nil
	}
	return m, docs
}

func decoded(index, id string, body []byte) *db.Document {
	var src map[string]any
	_ = json.Unmarshal(body, &src)
	return &db.Document{Index: index, ID: id, Source: src}
}

// note is a typed document.
type note struct {
	ID    string   `json:"id,omitempty"`
	Title string   `json:"title"`
	Tags  []string `json:"tags,omitempty"`
}

func (n *note) SetDocumentID(id string) { n.ID = id }

func newNotes(s store) *Repo {
	r, err := New(s, Config{
		Index:       "notes",
		NewDocument: func() any { return &note{} },
		Mappings:    map[string]any{"properties": map[string]any{"title": map[string]any{"type": "text"}}},
	})
	if err != nil {
		panic(err)
	}
	return r
}
