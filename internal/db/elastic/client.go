package elastic

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	esv8 "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kailas-cloud/esmodel/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for an Elasticsearch store.
type Config struct {
	Addresses  []string
	Username   string
	Password   string
	APIKey     string
	CloudID    string
	MaxRetries int
	// Transport overrides the HTTP transport (TLS, proxies).
	Transport http.RoundTripper
}

// Store implements db.Store via go-elasticsearch v8.
type Store struct {
	client *esv8.Client
}

// NewStore creates an Elasticsearch store.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addresses) == 0 && cfg.CloudID == "" {
		return nil, fmt.Errorf("addresses or cloud id is required")
	}

	client, err := esv8.NewClient(esv8.Config{
		Addresses:    cfg.Addresses,
		Username:     cfg.Username,
		Password:     cfg.Password,
		APIKey:       cfg.APIKey,
		CloudID:      cfg.CloudID,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: func(i int) time.Duration { return time.Duration(i) * 100 * time.Millisecond },
		Transport:    cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err := check(db.OpPing, res, err); err != nil {
		return err
	}
	return drain(res)
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

// check converts a transport error or a non-2xx response into *db.Error.
// On error the response body is consumed and closed.
func check(op string, res *esapi.Response, err error) error {
	if err != nil {
		return &db.Error{Op: op, Err: err}
	}
	if !res.IsError() {
		return nil
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	return db.NewStatusError(op, res.StatusCode, body)
}

func drain(res *esapi.Response) error {
	defer res.Body.Close()
	_, err := io.Copy(io.Discard, res.Body)
	return err
}
