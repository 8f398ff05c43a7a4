package elastic

import esv8 "github.com/elastic/go-elasticsearch/v8"

// NewStoreForTest creates a Store with the provided client (test-only).
func NewStoreForTest(c *esv8.Client) *Store {
	return &Store{client: c}
}
