package esmodel

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esmodel/internal/adapter"
	"github.com/kailas-cloud/esmodel/internal/db"
	"github.com/kailas-cloud/esmodel/internal/domain/search/page"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type healthCheck struct {
	name string
	fn   func(ctx context.Context) error
}

type clientConfig struct {
	driver     string // "elasticsearch" or "opensearch"
	addrs      []string
	username   string
	password   string
	apiKey     string
	maxRetries int

	store            db.Store
	readinessTimeout time.Duration

	registry  *adapter.Registry
	paginator page.Backend
	refresh   db.Refresh
	checks    []healthCheck

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithElasticsearch connects the client to an Elasticsearch cluster.
func WithElasticsearch(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverElasticsearch
		c.addrs = addrs
	})
}

// WithOpenSearch connects the client to an OpenSearch cluster.
func WithOpenSearch(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverOpenSearch
		c.addrs = addrs
	})
}

// WithBasicAuth sets the cluster credentials.
func WithBasicAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.password = password
	})
}

// WithAPIKey sets an Elasticsearch API key. Ignored by OpenSearch.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = key
	})
}

// WithMaxRetries sets how many times a failed request is retried by the driver.
func WithMaxRetries(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxRetries = n
	})
}

// WithStore uses an already connected store instead of creating one.
// The client closes it on Close.
func WithStore(s db.Store) Option {
	return optionFunc(func(c *clientConfig) {
		c.store = s
	})
}

// WithReadinessTimeout bounds the initial wait for the cluster. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithRegistry replaces the adapter registry. Default: sql, mongo, redis and
// multimodel adapters.
func WithRegistry(r *adapter.Registry) Option {
	return optionFunc(func(c *clientConfig) {
		c.registry = r
	})
}

// WithPaginator selects the pagination convention of every response.
func WithPaginator(p Paginator) Option {
	return optionFunc(func(c *clientConfig) {
		c.paginator = p
	})
}

// WithRefresh sets the refresh policy of single-document writes.
func WithRefresh(r Refresh) Option {
	return optionFunc(func(c *clientConfig) {
		c.refresh = r
	})
}

// WithHealthCheck adds a named storage backend to Health.
func WithHealthCheck(name string, fn func(ctx context.Context) error) Option {
	return optionFunc(func(c *clientConfig) {
		c.checks = append(c.checks, healthCheck{name: name, fn: fn})
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
