package esmodel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kailas-cloud/esmodel/internal/adapter"
	"github.com/kailas-cloud/esmodel/internal/adapter/builtin"
	"github.com/kailas-cloud/esmodel/internal/db"
	"github.com/kailas-cloud/esmodel/internal/db/elastic"
	"github.com/kailas-cloud/esmodel/internal/db/opensearch"
	"github.com/kailas-cloud/esmodel/internal/domain"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
	"github.com/kailas-cloud/esmodel/internal/domain/search/page"
	healthuc "github.com/kailas-cloud/esmodel/internal/usecase/health"
	"github.com/kailas-cloud/esmodel/internal/usecase/importing"
	"github.com/kailas-cloud/esmodel/internal/usecase/indexing"
)

const (
	driverElasticsearch = "elasticsearch"
	driverOpenSearch    = "opensearch"

	defaultReadinessTimeout = 10 * time.Second
)

// Client is the esmodel entry point. It owns the engine connection, the
// adapter registry and the registered models.
type Client struct {
	store     db.Store
	registry  *adapter.Registry
	indexer   *indexing.Service
	importer  *importing.Service
	healthSvc *healthuc.Service
	paginator page.Backend
	refresh   db.Refresh
	obs       *observer

	mu     sync.RWMutex
	models map[string]*Model
	names  []string
}

// New creates a Client and waits for the cluster to be ready.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{readinessTimeout: defaultReadinessTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}
	if !cfg.paginator.IsValid() {
		return nil, fmt.Errorf("esmodel: unknown paginator %q", cfg.paginator)
	}

	store := cfg.store
	if store == nil {
		if len(cfg.addrs) == 0 {
			return nil, errors.New("esmodel: cluster address required (use WithElasticsearch, WithOpenSearch or WithStore)")
		}
		var err error
		if store, err = createStore(cfg); err != nil {
			return nil, err
		}
	}

	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("esmodel: cluster not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case driverElasticsearch:
		s, err := elastic.NewStore(elastic.Config{
			Addresses:  cfg.addrs,
			Username:   cfg.username,
			Password:   cfg.password,
			APIKey:     cfg.apiKey,
			MaxRetries: cfg.maxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("esmodel: create elasticsearch store: %w", err)
		}
		return s, nil
	case driverOpenSearch:
		s, err := opensearch.NewStore(opensearch.Config{
			Addresses:  cfg.addrs,
			Username:   cfg.username,
			Password:   cfg.password,
			MaxRetries: cfg.maxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("esmodel: create opensearch store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("esmodel: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	registry := cfg.registry
	if registry == nil {
		registry = builtin.NewRegistry()
	}

	indexer := indexing.New(store).WithRefresh(cfg.refresh)
	healthSvc := healthuc.New(store, store)
	for _, hc := range cfg.checks {
		healthSvc = healthSvc.WithBackend(hc.name, healthuc.CheckerFunc(hc.fn))
	}

	return &Client{
		store:     store,
		registry:  registry,
		indexer:   indexer,
		importer:  importing.New(store, indexer, registry),
		healthSvc: healthSvc,
		paginator: cfg.paginator,
		refresh:   cfg.refresh,
		obs:       obs,
		models:    make(map[string]*Model),
	}
}

// Close releases the engine connection.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks cluster connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", "", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Health checks the engine, the cluster and every configured backend.
func (c *Client) Health(ctx context.Context) HealthReport {
	return c.healthSvc.Check(ctx)
}

// RegisterAdapter adds a storage adapter ahead of the built-in fallback.
// Registrations are matched in order; the first matching predicate wins.
func (c *Client) RegisterAdapter(set AdapterSet, predicate Predicate) {
	c.registry.Register(set, predicate)
}

// AdapterName returns the name of the adapter serving class.
func (c *Client) AdapterName(class *Class) string {
	return c.registry.FromClass(class).Name()
}

// Register declares a model named name whose records live in source.
func (c *Client) Register(name string, source any, opts ...ModelOption) (*Model, error) {
	class, err := model.New(name, source, opts...)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.models[name]; ok {
		return nil, fmt.Errorf("model %s: %w", name, domain.ErrAlreadyExists)
	}
	m := &Model{client: c, class: class}
	c.models[name] = m
	c.names = append(c.names, name)
	return m, nil
}

// Model returns a registered model by name.
func (c *Client) Model(name string) (*Model, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownModel, name)
	}
	return m, nil
}

// Models returns every registered model in registration order.
func (c *Client) Models() []*Model {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Model, len(c.names))
	for i, name := range c.names {
		out[i] = c.models[name]
	}
	return out
}

func (c *Client) classes() []*model.Class {
	models := c.Models()
	out := make([]*model.Class, len(models))
	for i, m := range models {
		out[i] = m.class
	}
	return out
}

// Import reindexes every record of the named model.
func (c *Client) Import(ctx context.Context, name string, opts ImportOptions) (ImportResult, error) {
	m, err := c.Model(name)
	if err != nil {
		return ImportResult{}, err
	}
	return m.Import(ctx, opts)
}
