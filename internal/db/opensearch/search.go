package opensearch

import (
	"bytes"
	"context"

	osapi "github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/kailas-cloud/esmodel/internal/db"
)

// Search runs a search request. Document types are ignored: OpenSearch is typeless.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	req := osapi.SearchRequest{
		Index:          q.Index,
		Query:          q.Q,
		From:           q.From,
		Size:           q.Size,
		Sort:           q.Sort,
		Routing:        q.Routing,
		Preference:     q.Preference,
		SearchType:     q.SearchType,
		Timeout:        q.Timeout,
		TrackTotalHits: q.TrackTotalHits,
	}
	if len(q.Body) > 0 {
		req.Body = bytes.NewReader(q.Body)
	}

	resp, err := req.Do(ctx, s.client)
	if err := check(db.OpSearch, resp, err); err != nil {
		return nil, err
	}
	defer closeBody(resp)

	out, err := db.DecodeSearchResult(resp.Body)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	return out, nil
}

// Count returns the number of documents matching body (all documents when body is empty).
func (s *Store) Count(ctx context.Context, indices []string, body []byte) (int64, error) {
	req := osapi.CountRequest{Index: indices}
	if len(body) > 0 {
		req.Body = bytes.NewReader(body)
	}

	resp, err := req.Do(ctx, s.client)
	if err := check(db.OpCount, resp, err); err != nil {
		return 0, err
	}
	defer closeBody(resp)

	n, err := db.DecodeCount(resp.Body)
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return n, nil
}
