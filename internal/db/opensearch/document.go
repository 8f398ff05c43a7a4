package opensearch

import (
	"bytes"
	"context"
	"encoding/json"

	osapi "github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/kailas-cloud/esmodel/internal/db"
)

// Get fetches a single document.
func (s *Store) Get(ctx context.Context, index, id string) (*db.Document, error) {
	resp, err := osapi.GetRequest{Index: index, DocumentID: id}.Do(ctx, s.client)
	if err := check(db.OpGet, resp, err); err != nil {
		return nil, err
	}
	defer closeBody(resp)

	doc, err := db.DecodeDocument(resp.Body)
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

	resp, err := osapi.MgetRequest{Index: index, Body: bytes.NewReader(body)}.Do(ctx, s.client)
	if err := check(db.OpMGet, resp, err); err != nil {
		return nil, err
	}
	defer closeBody(resp)

	docs, err := db.DecodeMGet(resp.Body)
	if err != nil {
		return nil, &db.Error{Op: db.OpMGet, Err: err}
	}
	return docs, nil
}

// Index stores a document and returns its id.
func (s *Store) Index(ctx context.Context, index, id string, body []byte, refresh db.Refresh) (string, error) {
	req := osapi.IndexRequest{
		Index:      index,
		DocumentID: id,
		Body:       bytes.NewReader(body),
		Refresh:    string(refresh),
	}
	resp, err := req.Do(ctx, s.client)
	if err := check(db.OpIndex, resp, err); err != nil {
		return "", err
	}
	defer closeBody(resp)

	got, err := db.DecodeIndexed(resp.Body)
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

	req := osapi.UpdateRequest{
		Index:      index,
		DocumentID: id,
		Body:       bytes.NewReader(body),
		Refresh:    string(refresh),
	}
	resp, err := req.Do(ctx, s.client)
	if err := check(db.OpUpdate, resp, err); err != nil {
		return err
	}
	closeBody(resp)
	return nil
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, index, id string, refresh db.Refresh) error {
	req := osapi.DeleteRequest{Index: index, DocumentID: id, Refresh: string(refresh)}
	resp, err := req.Do(ctx, s.client)
	if err := check(db.OpDelete, resp, err); err != nil {
		return err
	}
	closeBody(resp)
	return nil
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

	req := osapi.BulkRequest{Body: bytes.NewReader(body), Refresh: string(refresh)}
	resp, err := req.Do(ctx, s.client)
	if err := check(db.OpBulk, resp, err); err != nil {
		return nil, err
	}
	defer closeBody(resp)

	out, err := db.DecodeBulkResult(resp.Body)
	if err != nil {
		return nil, &db.Error{Op: db.OpBulk, Err: err}
	}
	return out, nil
}
