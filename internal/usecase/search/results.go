package search

import (
	"github.com/kailas-cloud/esmodel/internal/db"
	"github.com/kailas-cloud/esmodel/internal/domain/search/hit"
)

// Results are the hits of one executed search, in engine order.
type Results struct {
	hits     []hit.Hit
	total    db.TotalHits
	maxScore *float64
}

func newResults(res *db.SearchResult) *Results {
	return &Results{
		hits:     hit.Wrap(res.Hits.Hits),
		total:    res.Hits.Total,
		maxScore: res.Hits.MaxScore,
	}
}

// Hits returns every hit.
func (r *Results) Hits() []hit.Hit { return r.hits }

// Len returns the number of hits on this page.
func (r *Results) Len() int { return len(r.hits) }

// At returns the i-th hit.
func (r *Results) At(i int) hit.Hit { return r.hits[i] }

// IDs returns the _id of every hit.
func (r *Results) IDs() []string {
	ids := make([]string, len(r.hits))
	for i, h := range r.hits {
		ids[i] = h.ID()
	}
	return ids
}

// Total returns the total hit count across all pages.
func (r *Results) Total() int64 { return r.total.Value }

// MaxScore returns the best score, nil when the engine did not score.
func (r *Results) MaxScore() *float64 { return r.maxScore }
