package redisadapter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/esmodel/internal/adapter"
)

// Config holds connection parameters for a Redis keyspace.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Connect creates a rueidis client.
func Connect(cfg Config) (rueidis.Client, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// Keyspace stores one JSON document per key, "<Prefix><id>".
type Keyspace struct {
	adapter.Hooks

	Client rueidis.Client
	Prefix string
	// Decode converts a stored value into a record. Default: map[string]any
	// with "id" filled from the key when absent.
	Decode func(id string, data []byte) (any, error)
}

func (k *Keyspace) validate() error {
	if k.Client == nil {
		return fmt.Errorf("redis client is required")
	}
	if k.Prefix == "" {
		return fmt.Errorf("key prefix is required")
	}
	return nil
}

// Key returns the storage key of id.
func (k *Keyspace) Key(id string) string {
	return k.Prefix + id
}

func (k *Keyspace) idOf(key string) string {
	return strings.TrimPrefix(key, k.Prefix)
}

func (k *Keyspace) decode(id string, data []byte) (any, error) {
	if k.Decode != nil {
		return k.Decode(id, data)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", k.Key(id), err)
	}
	if _, ok := m["id"]; !ok {
		m["id"] = id
	}
	return m, nil
}
