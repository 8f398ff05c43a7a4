package esmodel

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// Query is a fluent builder for a bool query request body. It implements
// the query mapper accepted by every Search method.
//
//	q := esmodel.NewQuery().
//		Match("title", "quick fox").
//		Filter(esmodel.Term("status", "published")).
//		Sort("published_at", "desc").
//		Size(20)
type Query struct {
	must      []map[string]any
	filter    []map[string]any
	should    []map[string]any
	mustNot   []map[string]any
	sort      []map[string]any
	aggs      map[string]any
	highlight map[string]any
	source    []string
	from      *int
	size      *int
	minScore  *float64
	errs      []error
}

// NewQuery returns an empty builder. An empty builder matches all documents.
func NewQuery() *Query {
	return &Query{}
}

// Clause is a single leaf query.
type Clause map[string]any

// Term matches documents whose field equals value exactly.
func Term(field string, value any) Clause {
	return Clause{"term": map[string]any{field: value}}
}

// Terms matches documents whose field equals any of values.
func Terms(field string, values ...any) Clause {
	return Clause{"terms": map[string]any{field: values}}
}

// Range matches documents whose field lies within the given bounds.
// Bound keys are gt, gte, lt and lte; nil bounds are skipped.
func Range(field string, bounds map[string]any) Clause {
	r := make(map[string]any, len(bounds))
	for k, v := range bounds {
		if v != nil {
			r[k] = v
		}
	}
	return Clause{"range": map[string]any{field: r}}
}

// Exists matches documents with a value in field.
func Exists(field string) Clause {
	return Clause{"exists": map[string]any{"field": field}}
}

// Match adds a full-text match on field to the scoring clauses.
func (q *Query) Match(field, text string) *Query {
	if text == "" {
		return q
	}
	q.must = append(q.must, map[string]any{"match": map[string]any{field: text}})
	return q
}

// MultiMatch adds a full-text match across fields.
func (q *Query) MultiMatch(text string, fields ...string) *Query {
	if text == "" {
		return q
	}
	if len(fields) == 0 {
		q.errs = append(q.errs, errors.New("multi_match: at least one field is required"))
		return q
	}
	q.must = append(q.must, map[string]any{"multi_match": map[string]any{
		"query":  text,
		"fields": fields,
	}})
	return q
}

// QueryString adds a query_string clause using the engine query syntax.
func (q *Query) QueryString(text string) *Query {
	if text == "" {
		return q
	}
	q.must = append(q.must, map[string]any{"query_string": map[string]any{"query": text}})
	return q
}

// Must adds scoring clauses that every document has to match.
func (q *Query) Must(clauses ...Clause) *Query {
	q.must = appendClauses(q.must, clauses)
	return q
}

// Filter adds non-scoring clauses that every document has to match.
func (q *Query) Filter(clauses ...Clause) *Query {
	q.filter = appendClauses(q.filter, clauses)
	return q
}

// Should adds clauses that raise the score of matching documents.
func (q *Query) Should(clauses ...Clause) *Query {
	q.should = appendClauses(q.should, clauses)
	return q
}

// Not excludes documents matching any of clauses.
func (q *Query) Not(clauses ...Clause) *Query {
	q.mustNot = appendClauses(q.mustNot, clauses)
	return q
}

// Sort appends a sort on field. Order is "asc" or "desc".
func (q *Query) Sort(field, order string) *Query {
	switch order {
	case "asc", "desc":
	default:
		q.errs = append(q.errs, fmt.Errorf("sort %s: order must be asc or desc, got %q", field, order))
		return q
	}
	q.sort = append(q.sort, map[string]any{field: map[string]any{"order": order}})
	return q
}

// Highlight requests highlighted fragments for fields.
func (q *Query) Highlight(fields ...string) *Query {
	if len(fields) == 0 {
		return q
	}
	hf := make(map[string]any, len(fields))
	for _, f := range fields {
		hf[f] = map[string]any{}
	}
	q.highlight = map[string]any{"fields": hf}
	return q
}

// Aggregate adds a named aggregation, e.g. {"terms": {"field": "tags"}}.
func (q *Query) Aggregate(name string, agg map[string]any) *Query {
	if q.aggs == nil {
		q.aggs = make(map[string]any)
	}
	q.aggs[name] = agg
	return q
}

// Source restricts the returned _source to fields.
func (q *Query) Source(fields ...string) *Query {
	q.source = fields
	return q
}

// MinScore drops hits scoring below s.
func (q *Query) MinScore(s float64) *Query {
	q.minScore = &s
	return q
}

// From sets the offset of the first hit.
func (q *Query) From(n int) *Query {
	if n < 0 {
		q.errs = append(q.errs, fmt.Errorf("from must be >= 0, got %d", n))
		return q
	}
	q.from = &n
	return q
}

// Size sets the number of hits returned.
func (q *Query) Size(n int) *Query {
	if n < 0 {
		q.errs = append(q.errs, fmt.Errorf("size must be >= 0, got %d", n))
		return q
	}
	q.size = &n
	return q
}

// ToMap renders the request body. Invalid builder calls are reported here.
func (q *Query) ToMap() (map[string]any, error) {
	if len(q.errs) > 0 {
		return nil, multierr.Combine(q.errs...)
	}

	body := map[string]any{"query": q.boolQuery()}
	if len(q.sort) > 0 {
		body["sort"] = q.sort
	}
	if q.aggs != nil {
		body["aggs"] = q.aggs
	}
	if q.highlight != nil {
		body["highlight"] = q.highlight
	}
	if q.source != nil {
		body["_source"] = q.source
	}
	if q.from != nil {
		body["from"] = *q.from
	}
	if q.size != nil {
		body["size"] = *q.size
	}
	if q.minScore != nil {
		body["min_score"] = *q.minScore
	}
	return body, nil
}

func (q *Query) boolQuery() map[string]any {
	b := make(map[string]any)
	if len(q.must) > 0 {
		b["must"] = q.must
	}
	if len(q.filter) > 0 {
		b["filter"] = q.filter
	}
	if len(q.should) > 0 {
		b["should"] = q.should
	}
	if len(q.mustNot) > 0 {
		b["must_not"] = q.mustNot
	}
	if len(b) == 0 {
		return map[string]any{"match_all": map[string]any{}}
	}
	return map[string]any{"bool": b}
}

func appendClauses(dst []map[string]any, clauses []Clause) []map[string]any {
	for _, c := range clauses {
		if len(c) > 0 {
			dst = append(dst, c)
		}
	}
	return dst
}
