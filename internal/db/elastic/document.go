package elastic

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kailas-cloud/esmodel/internal/db"
)

// Get fetches a single document.
func (s *Store) Get(ctx context.Context, index, id string) (*db.Document, error) {
	res, err := s.client.Get(index, id, s.client.Get.WithContext(ctx))
	if err := check(db.OpGet, res, err); err != nil {
		return nil, err
	}
	defer res.Body.Close()

	doc, err := db.DecodeDocument(res.Body)
	if err != nil {
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return doc, nil
}

// MGet fetches documents by id. The result is aligned with ids; missing entries are nil.
func (s *Store) MGet(ctx context.Context, index string, ids []string) ([]*db.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	body, err := db.MGetBody(ids)
	if err != nil {
		return nil, &db.Error{Op: db.OpMGet, Err: err}
	}

	res, err := s.client.Mget(
		bytes.NewReader(body),
		s.client.Mget.WithContext(ctx),
		s.client.Mget.WithIndex(index),
	)
	if err := check(db.OpMGet, res, err); err != nil {
		return nil, err
	}
	defer res.Body.Close()

	docs, err := db.DecodeMGet(res.Body)
	if err != nil {
		return nil, &db.Error{Op: db.OpMGet, Err: err}
	}
	return docs, nil
}

// Index stores a document and returns its id.
func (s *Store) Index(ctx context.Context, index, id string, body []byte, refresh db.Refresh) (string, error) {
	opts := []func(*esapi.IndexRequest){s.client.Index.WithContext(ctx)}
	if id != "" {
		opts = append(opts, s.client.Index.WithDocumentID(id))
	}
	if refresh != db.RefreshNone {
		opts = append(opts, s.client.Index.WithRefresh(string(refresh)))
	}

	res, err := s.client.Index(index, bytes.NewReader(body), opts...)
	if err := check(db.OpIndex, res, err); err != nil {
		return "", err
	}
	defer res.Body.Close()

	got, err := db.DecodeIndexed(res.Body)
	if err != nil {
		return "", &db.Error{Op: db.OpIndex, Err: err}
	}
	return got, nil
}

// Update applies a partial document.
func (s *Store) Update(ctx context.Context, index, id string, partial []byte, refresh db.Refresh) error {
	body, err := json.Marshal(map[string]json.RawMessage{"doc": partial})
	if err != nil {
		return &db.Error{Op: db.OpUpdate, Err: err}
	}

	opts := []func(*esapi.UpdateRequest){s.client.Update.WithContext(ctx)}
	if refresh != db.RefreshNone {
		opts = append(opts, s.client.Update.WithRefresh(string(refresh)))
	}

	res, err := s.client.Update(index, id, bytes.NewReader(body), opts...)
	if err := check(db.OpUpdate, res, err); err != nil {
		return err
	}
	return drain(res)
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, index, id string, refresh db.Refresh) error {
	opts := []func(*esapi.DeleteRequest){s.client.Delete.WithContext(ctx)}
	if refresh != db.RefreshNone {
		opts = append(opts, s.client.Delete.WithRefresh(string(refresh)))
	}

	res, err := s.client.Delete(index, id, opts...)
	if err := check(db.OpDelete, res, err); err != nil {
		return err
	}
	return drain(res)
}

// Bulk sends ops as one NDJSON bulk request.
func (s *Store) Bulk(ctx context.Context, index string, ops []db.BulkOp, refresh db.Refresh) (*db.BulkResult, error) {
	if len(ops) == 0 {
		return &db.BulkResult{}, nil
	}
	body, err := db.EncodeBulk(index, ops)
	if err != nil {
		return nil, &db.Error{Op: db.OpBulk, Err: err}
	}

	opts := []func(*esapi.BulkRequest){s.client.Bulk.WithContext(ctx)}
	if refresh != db.RefreshNone {
		opts = append(opts, s.client.Bulk.WithRefresh(string(refresh)))
	}

	res, err := s.client.Bulk(bytes.NewReader(body), opts...)
	if err := check(db.OpBulk, res, err); err != nil {
		return nil, err
	}
	defer res.Body.Close()

	out, err := db.DecodeBulkResult(res.Body)
	if err != nil {
		return nil, &db.Error{Op: db.OpBulk, Err: err}
	}
	return out, nil
}
