package search

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/esmodel/internal/domain/search/hit"
	"github.com/kailas-cloud/esmodel/internal/domain/search/page"
)

func newResponse(t *testing.T, store *fakeStore, paginator page.Backend) (*Response, *rowFinder) {
	t.Helper()
	class, finder := newArticles("1", "2", "3")
	req, err := NewRequest(store, class, nil, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewResponse(req, registry(), paginator), finder
}

func TestResponse_LazyAndCached(t *testing.T) {
	store := &fakeStore{result: resultWithIDs(3, "1", "2", "3")}
	resp, _ := newResponse(t, store, page.Kaminari)
	ctx := context.Background()

	if resp.State() != Unexecuted || len(store.queries) != 0 {
		t.Fatal("response must not execute before first access")
	}

	if took, err := resp.Took(ctx); err != nil || took != 3 {
		t.Fatalf("took = %d, %v", took, err)
	}
	if _, err := resp.Results(ctx); err != nil {
		t.Fatal(err)
	}
	if total, _ := resp.Total(ctx); total != 3 {
		t.Errorf("total = %d", total)
	}
	if timedOut, _ := resp.TimedOut(ctx); timedOut {
		t.Error("timed out")
	}
	if _, err := resp.Shards(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := resp.Aggregations(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := resp.Suggestions(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := resp.MaxScore(ctx); err != nil {
		t.Fatal(err)
	}
	if len(store.queries) != 1 {
		t.Errorf("searches = %d, want 1", len(store.queries))
	}
	if resp.State() != Executed {
		t.Errorf("state = %s", resp.State())
	}
}

func TestResponse_PageInvalidates(t *testing.T) {
	store := &fakeStore{result: resultWithIDs(100, "1")}
	resp, _ := newResponse(t, store, page.Kaminari)
	ctx := context.Background()

	first, _ := resp.Results(ctx)
	resp.Page(2)
	if resp.State() != Invalidated {
		t.Errorf("state = %s, want invalidated", resp.State())
	}
	second, err := resp.Results(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Error("results must be rebuilt after a page change")
	}
	if len(store.queries) != 2 {
		t.Fatalf("searches = %d, want 2", len(store.queries))
	}
	q := store.queries[1]
	if *q.From != 25 || *q.Size != 25 {
		t.Errorf("from/size = %d/%d, want 25/25", *q.From, *q.Size)
	}
}

func TestResponse_PageArithmetic(t *testing.T) {
	tests := []struct {
		name      string
		paginator page.Backend
		apply     func(*Response)
		from      int
		size      int
	}{
		{"kaminari page 4", page.Kaminari, func(r *Response) { r.Page(4) }, 75, 25},
		{"will_paginate page 2", page.WillPaginate, func(r *Response) { r.Page(2) }, 30, 30},
		{"pagy page 3", page.Pagy, func(r *Response) { r.Page(3) }, 40, 20},
		{"page then per", page.Kaminari, func(r *Response) { r.Page(3).Per(10) }, 20, 10},
		{"per then page", page.Kaminari, func(r *Response) { r.Per(10).Page(3) }, 20, 10},
		{"limit ignores zero", page.Kaminari, func(r *Response) { r.Page(2).Limit(0) }, 25, 25},
		{"offset", page.Kaminari, func(r *Response) { r.Per(10).Offset(7) }, 7, 10},
		{"page below one", page.Kaminari, func(r *Response) { r.Page(0) }, 0, 25},
		{"paginate", page.WillPaginate, func(r *Response) { r.Paginate(3, 5) }, 10, 5},
		{"paginate default per page", page.WillPaginate, func(r *Response) { r.Paginate(2, 0) }, 30, 30},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := newResponse(t, &fakeStore{}, tc.paginator)
			tc.apply(resp)
			if resp.OffsetValue() != tc.from || resp.LimitValue() != tc.size {
				t.Errorf("from/size = %d/%d, want %d/%d", resp.OffsetValue(), resp.LimitValue(), tc.from, tc.size)
			}
		})
	}
}

func TestResponse_PageWithoutPaginator(t *testing.T) {
	store := &fakeStore{result: resultWithIDs(0)}
	resp, _ := newResponse(t, store, page.None)
	resp.Page(3)
	if _, err := resp.Raw(context.Background()); err != nil {
		t.Fatal(err)
	}
	if q := store.queries[0]; q.Size != nil {
		t.Errorf("size = %d, want unset", *q.Size)
	}
}

func TestResponse_ReadSidePagination(t *testing.T) {
	store := &fakeStore{result: resultWithIDs(60, "1")}
	resp, _ := newResponse(t, store, page.Kaminari)
	ctx := context.Background()
	resp.Page(2)

	if resp.CurrentPage() != 2 || resp.IsFirstPage() {
		t.Errorf("current page = %d", resp.CurrentPage())
	}
	if p, ok := resp.PrevPage(); !ok || p != 1 {
		t.Errorf("prev = %d %v", p, ok)
	}
	if n, _ := resp.TotalPages(ctx); n != 3 {
		t.Errorf("total pages = %d", n)
	}
	if n, ok, _ := resp.NextPage(ctx); !ok || n != 3 {
		t.Errorf("next = %d %v", n, ok)
	}
	if last, _ := resp.IsLastPage(ctx); last {
		t.Error("page 2 of 3 is not last")
	}
	if out, _ := resp.IsOutOfRange(ctx); out {
		t.Error("page 2 of 3 is in range")
	}
	if c, _ := resp.TotalCount(ctx); c != 60 {
		t.Errorf("total count = %d", c)
	}
	meta, err := resp.PagyMeta(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Page != 2 || meta.From != 26 || meta.To != 50 || *meta.Prev != 1 || *meta.Next != 3 {
		t.Errorf("meta = %+v", meta)
	}

	resp.Page(5)
	if out, _ := resp.IsOutOfRange(ctx); !out {
		t.Error("page 5 of 3 is out of range")
	}
}

func TestResponse_Records(t *testing.T) {
	store := &fakeStore{result: resultWithIDs(3, "3", "missing", "1")}
	resp, finder := newResponse(t, store, page.Kaminari)
	ctx := context.Background()

	recs, err := resp.Records(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if finder.calls != 0 {
		t.Error("records must load on first enumeration")
	}
	if ids := recs.IDs(); len(ids) != 3 || ids[1] != "missing" {
		t.Errorf("ids = %v", ids)
	}

	all, err := recs.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].(map[string]any)["id"] != "3" || all[1].(map[string]any)["id"] != "1" {
		t.Errorf("records = %v, want hit order without missing", all)
	}
	if _, err := recs.All(ctx); err != nil || finder.calls != 1 {
		t.Errorf("records must be fetched once, calls = %d", finder.calls)
	}

	var seen []string
	_ = recs.Each(ctx, func(r any) error {
		seen = append(seen, r.(map[string]any)["id"].(string))
		return nil
	})
	if len(seen) != 2 {
		t.Errorf("each = %v", seen)
	}

	pairs, err := recs.MapWithHit(ctx, func(r any, h hit.Hit) (any, error) {
		return r.(map[string]any)["id"].(string) + "/" + h.ID(), nil
	})
	if err != nil || len(pairs) != 2 || pairs[0] != "3/3" || pairs[1] != "1/1" {
		t.Errorf("pairs = %v, want every record with its own hit", pairs)
	}

	again, _ := resp.Records(ctx)
	if again != recs {
		t.Error("records must be cached on the response")
	}
}

func TestRecords_Order(t *testing.T) {
	store := &fakeStore{result: resultWithIDs(2, "1", "2")}
	resp, _ := newResponse(t, store, page.Kaminari)
	ctx := context.Background()

	recs, _ := resp.Records(ctx)
	ordered := recs.Order("title")
	all, err := ordered.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// backend order of the fake is reversed ids
	if all[0].(map[string]any)["id"] != "2" {
		t.Errorf("records = %v, want backend order", all)
	}
	hitOrder, _ := recs.All(ctx)
	if hitOrder[0].(map[string]any)["id"] != "1" {
		t.Errorf("records = %v, want hit order", hitOrder)
	}

	pairs, err := ordered.MapWithHit(ctx, func(r any, h hit.Hit) (any, error) {
		return r.(map[string]any)["id"].(string) + "/" + h.ID(), nil
	})
	if err != nil || len(pairs) != 2 || pairs[0] != "2/2" || pairs[1] != "1/1" {
		t.Errorf("pairs = %v, want backend order with matching hits", pairs)
	}
}

func TestRecords_EachStopsOnError(t *testing.T) {
	store := &fakeStore{result: resultWithIDs(2, "1", "2")}
	resp, _ := newResponse(t, store, page.Kaminari)
	recs, _ := resp.Records(context.Background())

	stop := errors.New("stop")
	calls := 0
	err := recs.EachWithHit(context.Background(), func(any, hit.Hit) error { calls++; return stop })
	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestRecords_AdapterError(t *testing.T) {
	store := &fakeStore{result: resultWithIDs(1, "1")}
	req, _ := NewRequest(store, mustClass(t), nil, Options{})
	resp := NewResponse(req, registry(), page.Kaminari)

	recs, err := resp.Records(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := recs.All(context.Background()); err == nil {
		t.Fatal("expected error for a source without a finder")
	}
}

func TestResponse_ExecuteError(t *testing.T) {
	store := &fakeStore{err: errors.New("down")}
	resp, _ := newResponse(t, store, page.Kaminari)
	if _, err := resp.Results(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if resp.State() != Unexecuted {
		t.Errorf("state = %s", resp.State())
	}
}

func TestResults(t *testing.T) {
	store := &fakeStore{result: resultWithIDs(7, "a", "b")}
	resp, _ := newResponse(t, store, page.Kaminari)
	res, err := resp.Results(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Len() != 2 || res.Total() != 7 || res.At(1).ID() != "b" {
		t.Errorf("results = %+v", res)
	}
	if v, _ := res.At(0).Get("title"); v != "title a" {
		t.Errorf("title = %v, want _source fallback", v)
	}
	if ids := res.IDs(); ids[0] != "a" {
		t.Errorf("ids = %v", ids)
	}
	if res.MaxScore() != nil {
		t.Errorf("max score = %v", *res.MaxScore())
	}
}
