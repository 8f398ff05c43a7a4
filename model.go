package esmodel

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/esmodel/internal/domain/model"
	"github.com/kailas-cloud/esmodel/internal/usecase/search"
)

// Model is a registered model class bound to its client.
type Model struct {
	client *Client
	class  *model.Class
}

// Name returns the model name.
func (m *Model) Name() string { return m.class.Name() }

// Class returns the underlying class descriptor.
func (m *Model) Class() *Class { return m.class }

// IndexName returns the index the model is searched in.
func (m *Model) IndexName() string { return m.class.IndexName() }

// Adapter returns the name of the storage adapter serving the model.
func (m *Model) Adapter() string { return m.client.AdapterName(m.class) }

// Search builds a lazy search over the model index. Nothing is sent until
// the response is read.
func (m *Model) Search(q any, opts SearchOptions) (*Response, error) {
	return m.client.search(m.class, q, opts)
}

// Import reindexes every record of the model in batches.
func (m *Model) Import(ctx context.Context, opts ImportOptions) (res ImportResult, err error) {
	start := time.Now()
	defer func() {
		if err == nil && res.Failed() > 0 {
			m.client.obs.observe("import", m.Name(), start, res.Err())
			return
		}
		m.client.obs.observe("import", m.Name(), start, err)
	}()

	res, err = m.client.importer.Import(ctx, m.class, opts)
	if err != nil {
		return res, fmt.Errorf("import %s: %w", m.Name(), err)
	}
	return res, nil
}

// CreateIndex creates the model index with its settings and mappings.
// With force, an existing index is deleted first.
func (m *Model) CreateIndex(ctx context.Context, force bool) (err error) {
	start := time.Now()
	defer func() { m.client.obs.observe("create_index", m.Name(), start, err) }()
	return m.client.indexer.CreateIndex(ctx, m.class, force)
}

// DeleteIndex deletes the model index.
func (m *Model) DeleteIndex(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { m.client.obs.observe("delete_index", m.Name(), start, err) }()
	return m.client.indexer.DeleteIndex(ctx, m.class)
}

// RefreshIndex makes recent writes visible to search.
func (m *Model) RefreshIndex(ctx context.Context) error {
	return m.client.indexer.RefreshIndex(ctx, m.class)
}

// IndexExists reports whether the model index exists.
func (m *Model) IndexExists(ctx context.Context) (bool, error) {
	return m.client.indexer.IndexExists(ctx, m.class)
}

// IndexDocument indexes record under its id.
func (m *Model) IndexDocument(ctx context.Context, record any) (err error) {
	start := time.Now()
	defer func() { m.client.obs.observe("index_document", m.Name(), start, err) }()
	return m.client.indexer.IndexDocument(ctx, m.class, record)
}

// UpdateDocument sends the changed indexed attributes of record. With no
// changed attributes the whole document is reindexed.
func (m *Model) UpdateDocument(ctx context.Context, record any, changed ...string) (err error) {
	start := time.Now()
	defer func() { m.client.obs.observe("update_document", m.Name(), start, err) }()
	return m.client.indexer.UpdateDocument(ctx, m.class, record, changed)
}

// UpdateAttributes sends a partial document for id.
func (m *Model) UpdateAttributes(ctx context.Context, id string, attrs map[string]any) (err error) {
	start := time.Now()
	defer func() { m.client.obs.observe("update_document", m.Name(), start, err) }()
	return m.client.indexer.UpdateAttributes(ctx, m.class, id, attrs)
}

// DeleteDocument removes record from the index.
func (m *Model) DeleteDocument(ctx context.Context, record any) (err error) {
	start := time.Now()
	defer func() { m.client.obs.observe("delete_document", m.Name(), start, err) }()
	return m.client.indexer.DeleteDocument(ctx, m.class, record)
}

// InstallCallbacks wires the lifecycle notifications of the model source
// to the index. Adapters without callbacks make this a no-op.
func (m *Model) InstallCallbacks() error {
	a := m.client.registry.FromClass(m.class)
	if err := a.Callbacks().Install(m.class, m.client.indexer); err != nil {
		return fmt.Errorf("install callbacks %s: %w", m.Name(), err)
	}
	return nil
}

func (c *Client) search(class *model.Class, q any, opts SearchOptions) (*Response, error) {
	s := observedSearcher{inner: c.store, obs: c.obs, model: class.Name()}
	req, err := search.NewRequest(s, class, q, opts)
	if err != nil {
		return nil, err
	}
	return search.NewResponse(req, c.registry, c.paginator), nil
}

// RecordsOf loads the records of resp and asserts them to T. Records of
// another type are an error.
func RecordsOf[T any](ctx context.Context, resp *Response) ([]T, error) {
	recs, err := resp.Records(ctx)
	if err != nil {
		return nil, err
	}
	all, err := recs.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(all))
	for _, r := range all {
		v, ok := r.(T)
		if !ok {
			var zero T
			return nil, fmt.Errorf("record %T is not %T", r, zero)
		}
		out = append(out, v)
	}
	return out, nil
}
