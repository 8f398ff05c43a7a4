package elastic

import (
	"bytes"
	"context"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kailas-cloud/esmodel/internal/db"
)

// Search runs a search request. Document types are ignored: 8.x is typeless.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	search := s.client.Search
	opts := []func(*esapi.SearchRequest){search.WithContext(ctx)}

	if len(q.Index) > 0 {
		opts = append(opts, search.WithIndex(q.Index...))
	}
	if q.Q != "" {
		opts = append(opts, search.WithQuery(q.Q))
	}
	if len(q.Body) > 0 {
		opts = append(opts, search.WithBody(bytes.NewReader(q.Body)))
	}
	if q.From != nil {
		opts = append(opts, search.WithFrom(*q.From))
	}
	if q.Size != nil {
		opts = append(opts, search.WithSize(*q.Size))
	}
	if len(q.Sort) > 0 {
		opts = append(opts, search.WithSort(q.Sort...))
	}
	if len(q.Routing) > 0 {
		opts = append(opts, search.WithRouting(q.Routing...))
	}
	if q.Preference != "" {
		opts = append(opts, search.WithPreference(q.Preference))
	}
	if q.SearchType != "" {
		opts = append(opts, search.WithSearchType(q.SearchType))
	}
	if q.Timeout > 0 {
		opts = append(opts, search.WithTimeout(q.Timeout))
	}
	if q.TrackTotalHits != nil {
		opts = append(opts, search.WithTrackTotalHits(q.TrackTotalHits))
	}

	res, err := search(opts...)
	if err := check(db.OpSearch, res, err); err != nil {
		return nil, err
	}
	defer res.Body.Close()

	out, err := db.DecodeSearchResult(res.Body)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	return out, nil
}

// Count returns the number of documents matching body (all documents when body is empty).
func (s *Store) Count(ctx context.Context, indices []string, body []byte) (int64, error) {
	count := s.client.Count
	opts := []func(*esapi.CountRequest){count.WithContext(ctx)}
	if len(indices) > 0 {
		opts = append(opts, count.WithIndex(indices...))
	}
	if len(body) > 0 {
		opts = append(opts, count.WithBody(bytes.NewReader(body)))
	}

	res, err := count(opts...)
	if err := check(db.OpCount, res, err); err != nil {
		return 0, err
	}
	defer res.Body.Close()

	n, err := db.DecodeCount(res.Body)
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return n, nil
}
