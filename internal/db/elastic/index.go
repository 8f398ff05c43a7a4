package elastic

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8/esapi"

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

	opts := []func(*esapi.IndicesCreateRequest){s.client.Indices.Create.WithContext(ctx)}
	if body != nil {
		opts = append(opts, s.client.Indices.Create.WithBody(bytes.NewReader(body)))
	}

	res, err := s.client.Indices.Create(def.Name, opts...)
	if err := check(db.OpCreateIndex, res, err); err != nil {
		return err
	}
	return drain(res)
}

// DeleteIndex removes an index. Returns an error wrapping db.ErrIndexNotFound when absent.
func (s *Store) DeleteIndex(ctx context.Context, name string) error {
	res, err := s.client.Indices.Delete([]string{name}, s.client.Indices.Delete.WithContext(ctx))
	if err := check(db.OpDeleteIndex, res, err); err != nil {
		return err
	}
	return drain(res)
}

// IndexExists reports whether the index exists.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	res, err := s.client.Indices.Exists([]string{name}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, &db.Error{Op: db.OpIndexExists, Err: err}
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, db.NewStatusError(db.OpIndexExists, res.StatusCode, nil)
	}
}

// Refresh makes recent writes to the named indices searchable.
func (s *Store) Refresh(ctx context.Context, names ...string) error {
	opts := []func(*esapi.IndicesRefreshRequest){s.client.Indices.Refresh.WithContext(ctx)}
	if len(names) > 0 {
		opts = append(opts, s.client.Indices.Refresh.WithIndex(names...))
	}

	res, err := s.client.Indices.Refresh(opts...)
	if err := check(db.OpRefresh, res, err); err != nil {
		return err
	}
	return drain(res)
}

// ClusterHealth returns the cluster health summary.
func (s *Store) ClusterHealth(ctx context.Context) (*db.Health, error) {
	res, err := s.client.Cluster.Health(s.client.Cluster.Health.WithContext(ctx))
	if err := check(db.OpClusterHealth, res, err); err != nil {
		return nil, err
	}
	defer res.Body.Close()

	h, err := db.DecodeHealth(res.Body)
	if err != nil {
		return nil, &db.Error{Op: db.OpClusterHealth, Err: err}
	}
	if h.Status == "" {
		return nil, &db.Error{Op: db.OpClusterHealth, Err: errors.New("empty health status")}
	}
	return h, nil
}
