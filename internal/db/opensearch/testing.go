package opensearch

import osv2 "github.com/opensearch-project/opensearch-go/v2"

// NewStoreForTest creates a Store with the provided client (test-only).
func NewStoreForTest(c *osv2.Client) *Store {
	return &Store{client: c}
}
