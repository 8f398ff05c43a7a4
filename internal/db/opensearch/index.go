package opensearch

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	osapi "github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/kailas-cloud/esmodel/internal/db"
)

// CreateIndex creates an index with optional settings and mappings.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	body, err := def.Body()
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	req := osapi.IndicesCreateRequest{Index: def.Name}
	if body != nil {
		req.Body = bytes.NewReader(body)
	}
	resp, err := req.Do(ctx, s.client)
	if err := check(db.OpCreateIndex, resp, err); err != nil {
		return err
	}
	closeBody(resp)
	return nil
}

// DeleteIndex removes an index. Returns an error wrapping db.ErrIndexNotFound when absent.
func (s *Store) DeleteIndex(ctx context.Context, name string) error {
	resp, err := osapi.IndicesDeleteRequest{Index: []string{name}}.Do(ctx, s.client)
	if err := check(db.OpDeleteIndex, resp, err); err != nil {
		return err
	}
	closeBody(resp)
	return nil
}

// IndexExists reports whether the index exists.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	resp, err := osapi.IndicesExistsRequest{Index: []string{name}}.Do(ctx, s.client)
	if err != nil {
		return false, &db.Error{Op: db.OpIndexExists, Err: err}
	}
	defer closeBody(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, db.NewStatusError(db.OpIndexExists, resp.StatusCode, nil)
	}
}

// Refresh makes recent writes to the named indices searchable.
func (s *Store) Refresh(ctx context.Context, names ...string) error {
	resp, err := osapi.IndicesRefreshRequest{Index: names}.Do(ctx, s.client)
	if err := check(db.OpRefresh, resp, err); err != nil {
		return err
	}
	closeBody(resp)
	return nil
}

// ClusterHealth returns the cluster health summary.
func (s *Store) ClusterHealth(ctx context.Context) (*db.Health, error) {
	resp, err := osapi.ClusterHealthRequest{}.Do(ctx, s.client)
	if err := check(db.OpClusterHealth, resp, err); err != nil {
		return nil, err
	}
	defer closeBody(resp)

	h, err := db.DecodeHealth(resp.Body)
	if err != nil {
		return nil, &db.Error{Op: db.OpClusterHealth, Err: err}
	}
	if h.Status == "" {
		return nil, &db.Error{Op: db.OpClusterHealth, Err: errors.New("empty health status")}
	}
	return h, nil
}
