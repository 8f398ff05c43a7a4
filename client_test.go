package esmodel

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNew_NoAddress(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("expected error when no address provided")
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &clientConfig{driver: "unknown", addrs: []string{"localhost:1234"}}
	_, err := createStore(cfg)
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestNew_UnknownPaginator(t *testing.T) {
	_, err := New(context.Background(), WithStore(newMemStore()), WithPaginator("bootstrap"))
	if err == nil {
		t.Fatal("expected error for unknown paginator")
	}
}

func TestNew_WithStore(t *testing.T) {
	store := newMemStore()
	c, err := New(context.Background(), WithStore(store))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Close()
	if !store.closed {
		t.Error("Close did not close the store")
	}
}

func TestNew_NotReady(t *testing.T) {
	store := newMemStore()
	store.readyErr = errors.New("timeout")

	_, err := New(context.Background(), WithStore(store))
	if err == nil {
		t.Fatal("expected readiness error")
	}
	if !store.closed {
		t.Error("store must be closed after a failed readiness check")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithElasticsearch("http://a:9200", "http://b:9200").apply(cfg)
	if cfg.driver != driverElasticsearch || len(cfg.addrs) != 2 {
		t.Errorf("driver = %q, addrs = %v", cfg.driver, cfg.addrs)
	}

	WithOpenSearch("http://c:9200").apply(cfg)
	if cfg.driver != driverOpenSearch || cfg.addrs[0] != "http://c:9200" {
		t.Errorf("driver = %q, addrs = %v", cfg.driver, cfg.addrs)
	}

	WithBasicAuth("elastic", "secret").apply(cfg)
	WithAPIKey("key").apply(cfg)
	WithMaxRetries(5).apply(cfg)
	WithReadinessTimeout(time.Second).apply(cfg)
	WithPaginator(Pagy).apply(cfg)
	WithRefresh(RefreshWaitFor).apply(cfg)

	if cfg.username != "elastic" || cfg.password != "secret" || cfg.apiKey != "key" {
		t.Errorf("auth = %q/%q/%q", cfg.username, cfg.password, cfg.apiKey)
	}
	if cfg.maxRetries != 5 || cfg.readinessTimeout != time.Second {
		t.Errorf("retries = %d, readiness = %v", cfg.maxRetries, cfg.readinessTimeout)
	}
	if cfg.paginator != Pagy || cfg.refresh != RefreshWaitFor {
		t.Errorf("paginator = %q, refresh = %q", cfg.paginator, cfg.refresh)
	}
}

func TestClient_Register(t *testing.T) {
	c, _ := newTestClient(t)

	m, err := c.Register("Article", newTable(), WithIndexName("articles"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name() != "Article" || m.IndexName() != "articles" {
		t.Errorf("model = %s/%s", m.Name(), m.IndexName())
	}
	if m.Adapter() != "table" {
		t.Errorf("adapter = %q, want table", m.Adapter())
	}

	if _, err := c.Register("Article", newTable()); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if _, err := c.Register("", newTable()); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestClient_Model(t *testing.T) {
	c, _ := newTestClient(t)
	_, _ = c.Register("Article", newTable())
	_, _ = c.Register("Comment", newTable())

	m, err := c.Model("Comment")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name() != "Comment" {
		t.Errorf("Name = %q", m.Name())
	}
	if _, err := c.Model("Missing"); !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("expected ErrUnknownModel, got %v", err)
	}

	models := c.Models()
	if len(models) != 2 || models[0].Name() != "Article" || models[1].Name() != "Comment" {
		t.Errorf("models not in registration order: %v", models)
	}
}

func TestClient_AdapterFallback(t *testing.T) {
	c, _ := newTestClient(t)
	m, _ := c.Register("Thing", struct{}{})
	if m.Adapter() != "default" {
		t.Errorf("adapter = %q, want default", m.Adapter())
	}
}

func TestClient_Ping(t *testing.T) {
	c, store := newTestClient(t)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store.pingErr = errors.New("connection refused")
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error")
	}
}

func TestClient_Health(t *testing.T) {
	c, store := newTestClient(t, WithHealthCheck("postgres", func(context.Context) error {
		return errors.New("down")
	}))

	r := c.Health(context.Background())
	if r.Status != Degraded {
		t.Errorf("status = %q, want degraded", r.Status)
	}
	if r.Checks["search"] != "ok" || r.Checks["postgres"] != "error" {
		t.Errorf("checks = %v", r.Checks)
	}
	if r.Cluster != "green" {
		t.Errorf("cluster = %q", r.Cluster)
	}

	store.pingErr = errors.New("down")
	if r := c.Health(context.Background()); r.Status != Unhealthy {
		t.Errorf("status = %q, want error", r.Status)
	}
}

func TestClient_SearchAcrossModels(t *testing.T) {
	ctx := context.Background()
	c, store := newTestClient(t)
	articles, _ := c.Register("Article", newTable("1", "2"), WithIndexName("articles"))
	comments, _ := c.Register("Comment", newTable("c1"), WithIndexName("comments"))

	for _, m := range []*Model{articles, comments} {
		if err := m.CreateIndex(ctx, false); err != nil {
			t.Fatalf("create index: %v", err)
		}
	}
	tbl := articles.Class().Source().(*articleTable)
	_ = articles.IndexDocument(ctx, tbl.rows[0])
	_ = comments.IndexDocument(ctx, comments.Class().Source().(*articleTable).rows[0])
	_ = articles.IndexDocument(ctx, tbl.rows[1])

	resp, err := c.Search(nil, SearchOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.queries) != 0 {
		t.Fatal("search must not run before the response is read")
	}

	recs, err := RecordsOf[*article](ctx, resp)
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("len = %d, want 3", len(recs))
	}
	got := []string{recs[0].ID, recs[1].ID, recs[2].ID}
	want := []string{"1", "2", "c1"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("records = %v, want %v", got, want)
			break
		}
	}

	q := store.queries[0]
	if len(q.Index) != 2 || q.Index[0] != "articles" || q.Index[1] != "comments" {
		t.Errorf("indices = %v", q.Index)
	}
}

func TestClient_SearchNamedModels(t *testing.T) {
	c, store := newTestClient(t)
	_, _ = c.Register("Article", newTable(), WithIndexName("articles"))
	_, _ = c.Register("Comment", newTable(), WithIndexName("comments"))

	resp, err := c.Search("fox", SearchOptions{}, "Comment")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := resp.Total(context.Background()); err != nil {
		t.Fatalf("total: %v", err)
	}
	q := store.queries[0]
	if len(q.Index) != 1 || q.Index[0] != "comments" || q.Q != "fox" {
		t.Errorf("query = %+v", q)
	}

	if _, err := c.Search(nil, SearchOptions{}, "Missing"); !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("expected ErrUnknownModel, got %v", err)
	}
}
