package db

import (
	"encoding/json"
	"time"
)

// SearchQuery is the input for a search request.
// Exactly one of Q (query-string) and Body is expected to be set; both empty means match_all.
type SearchQuery struct {
	Index []string
	// Type carries document types for engines that still have them; typeless drivers ignore it.
	Type []string

	Q    string
	Body []byte

	From           *int
	Size           *int
	Sort           []string
	Routing        []string
	Preference     string
	SearchType     string
	Timeout        time.Duration
	TrackTotalHits any // bool or int
}

// SearchResult is the raw search response.
type SearchResult struct {
	Took         int64          `json:"took"`
	TimedOut     bool           `json:"timed_out"`
	Shards       ShardStats     `json:"_shards"`
	Hits         Hits           `json:"hits"`
	Aggregations map[string]any `json:"aggregations,omitempty"`
	Suggest      map[string]any `json:"suggest,omitempty"`
	ScrollID     string         `json:"_scroll_id,omitempty"`
}

// ShardStats reports shard participation in a request.
type ShardStats struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// Hits is the hits envelope. Each hit is kept as a raw mapping
// ({_index, _type, _id, _score, _source, highlight, ...}).
type Hits struct {
	Total    TotalHits        `json:"total"`
	MaxScore *float64         `json:"max_score"`
	Hits     []map[string]any `json:"hits"`
}

// TotalHits is the total hit count.
type TotalHits struct {
	Value    int64  `json:"value"`
	Relation string `json:"relation,omitempty"`
}

// UnmarshalJSON accepts both the legacy number form and the {value, relation} object.
func (t *TotalHits) UnmarshalJSON(b []byte) error {
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		t.Value = n
		t.Relation = "eq"
		return nil
	}
	type plain TotalHits
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*t = TotalHits(p)
	return nil
}

// IDs returns the _id of every hit in order.
func (r *SearchResult) IDs() []string {
	ids := make([]string, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		ids = append(ids, StringID(h["_id"]))
	}
	return ids
}
