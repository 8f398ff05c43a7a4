package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/esmodel/internal/domain"
	"github.com/kailas-cloud/esmodel/internal/domain/search/query"
)

type matchTitle string

func (m matchTitle) ToMap() (map[string]any, error) {
	return map[string]any{"query": map[string]any{"match": map[string]any{"title": string(m)}}}, nil
}

func TestNewRequest_Discriminant(t *testing.T) {
	class, _ := newArticles()
	store := &fakeStore{}

	tests := []struct {
		name string
		in   any
		kind query.Kind
		q    string
		body string
	}{
		{"nil", nil, query.KindMatchAll, "", ""},
		{"query string", "title:foo", query.KindString, "title:foo", ""},
		{"json string", `{"query":{"match_all":{}}}`, query.KindJSON, "", `{"query":{"match_all":{}}}`},
		{"brace range string", "{1 TO 5}", query.KindString, "{1 TO 5}", ""},
		{"map", map[string]any{"size": 1}, query.KindBody, "", `{"size":1}`},
		{"mapper", matchTitle("go"), query.KindMapper, "", `{"query":{"match":{"title":"go"}}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, err := NewRequest(store, class, tc.in, Options{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			q := req.Query()
			if req.Definition().Kind() != tc.kind {
				t.Errorf("kind = %s, want %s", req.Definition().Kind(), tc.kind)
			}
			if q.Q != tc.q {
				t.Errorf("q = %q, want %q", q.Q, tc.q)
			}
			if string(q.Body) != tc.body {
				t.Errorf("body = %s, want %s", q.Body, tc.body)
			}
			if len(q.Index) != 1 || q.Index[0] != "articles" {
				t.Errorf("index = %v", q.Index)
			}
		})
	}
}

func TestNewRequest_Invalid(t *testing.T) {
	class, _ := newArticles()
	if _, err := NewRequest(&fakeStore{}, class, []byte("{broken"), Options{}); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
	if _, err := NewRequest(nil, class, nil, Options{}); err == nil {
		t.Error("expected error without store")
	}
	if _, err := NewRequest(&fakeStore{}, nil, nil, Options{}); err == nil {
		t.Error("expected error without class")
	}
}

func TestRequest_Options(t *testing.T) {
	class, _ := newArticles()
	from, size := 10, 5
	opts := Options{
		From:           &from,
		Size:           &size,
		Sort:           []string{"title:asc"},
		Routing:        []string{"r1"},
		Preference:     "_local",
		SearchType:     "dfs_query_then_fetch",
		Timeout:        time.Second,
		TrackTotalHits: true,
	}
	req, err := NewRequest(&fakeStore{}, class, nil, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	from = 99 // caller mutation must not leak into the request

	q := req.Query()
	if *q.From != 10 || *q.Size != 5 {
		t.Errorf("from/size = %d/%d", *q.From, *q.Size)
	}
	if q.Sort[0] != "title:asc" || q.Routing[0] != "r1" || q.Preference != "_local" {
		t.Errorf("options not forwarded: %+v", q)
	}
	if q.SearchType != "dfs_query_then_fetch" || q.Timeout != time.Second || q.TrackTotalHits != true {
		t.Errorf("options not forwarded: %+v", q)
	}
	if req.From() != 10 || req.Size() != 5 {
		t.Errorf("From/Size = %d/%d", req.From(), req.Size())
	}
}

func TestRequest_ExecuteCaches(t *testing.T) {
	class, _ := newArticles()
	store := &fakeStore{result: resultWithIDs(1, "1")}
	req, _ := NewRequest(store, class, "foo", Options{})

	for i := 0; i < 3; i++ {
		if _, err := req.Execute(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(store.queries) != 1 {
		t.Fatalf("searches = %d, want 1", len(store.queries))
	}

	req.Invalidate()
	if _, err := req.Execute(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.queries) != 2 {
		t.Errorf("searches = %d, want 2 after invalidate", len(store.queries))
	}
}

func TestRequest_ExecuteSendsBraceRangeAsQ(t *testing.T) {
	class, _ := newArticles()
	store := &fakeStore{result: resultWithIDs(0)}
	req, err := NewRequest(store, class, "{1 TO 5}", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := req.Execute(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q := store.queries[0]; q.Q != "{1 TO 5}" || q.Body != nil {
		t.Errorf("sent q=%q body=%q, want the text as q", q.Q, q.Body)
	}
}

func TestRequest_ExecuteError(t *testing.T) {
	class, _ := newArticles()
	boom := errors.New("connection refused")
	store := &fakeStore{err: boom}
	req, _ := NewRequest(store, class, nil, Options{})

	if _, err := req.Execute(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected transport error, got %v", err)
	}
	store.err = nil
	store.result = resultWithIDs(0)
	if _, err := req.Execute(context.Background()); err != nil {
		t.Fatalf("failed executions must not be cached: %v", err)
	}
}
