package opensearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	osv2 "github.com/opensearch-project/opensearch-go/v2"
	osapi "github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/kailas-cloud/esmodel/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for an OpenSearch store.
type Config struct {
	Addresses  []string
	Username   string
	Password   string
	MaxRetries int
	// DiscoverNodesOnStart sniffs the cluster for additional nodes.
	DiscoverNodesOnStart bool
	Header               http.Header
	Transport            http.RoundTripper
}

// Store implements db.Store via opensearch-go v2.
type Store struct {
	client *osv2.Client
}

// NewStore creates an OpenSearch store.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("addresses is required")
	}

	client, err := osv2.NewClient(osv2.Config{
		Addresses:            cfg.Addresses,
		Username:             cfg.Username,
		Password:             cfg.Password,
		MaxRetries:           cfg.MaxRetries,
		RetryBackoff:         func(i int) time.Duration { return time.Duration(i) * 100 * time.Millisecond },
		DiscoverNodesOnStart: cfg.DiscoverNodesOnStart,
		Header:               cfg.Header,
		Transport:            cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	resp, err := osapi.PingRequest{}.Do(ctx, s.client)
	if err := check(db.OpPing, resp, err); err != nil {
		return err
	}
	closeBody(resp)
	return nil
}

// Close releases idle connections of the underlying transport.
func (s *Store) Close() {
	if t, ok := s.client.Transport.(interface{ CloseIdleConnections() }); ok {
		t.CloseIdleConnections()
	}
}

// WaitForReady polls Ping until the cluster responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for search engine: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func check(op string, resp *osapi.Response, err error) error {
	if err != nil {
		return &db.Error{Op: op, Err: err}
	}
	if !resp.IsError() {
		return nil
	}
	defer closeBody(resp)
	body, _ := io.ReadAll(resp.Body)
	return db.NewStatusError(op, resp.StatusCode, body)
}

func closeBody(resp *osapi.Response) {
	if resp != nil && resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}
