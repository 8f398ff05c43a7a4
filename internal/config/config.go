package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/esmodel/internal/db"
	"github.com/kailas-cloud/esmodel/internal/domain/search/page"
)

// Search drivers.
const (
	DriverElasticsearch = "elasticsearch"
	DriverOpenSearch    = "opensearch"
)

// Model sources.
const (
	SourcePostgres = "postgres"
	SourceMongo    = "mongo"
	SourceRedis    = "redis"
)

// Config holds the esmodel server configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Search   SearchConfig   `yaml:"search"`
	Sources  SourcesConfig  `yaml:"sources"`
	Models   []ModelConfig  `yaml:"models"`
	Import   ImportConfig   `yaml:"import"`
	Logging  LoggingConfig  `yaml:"logging"`
	Paginate PaginateConfig `yaml:"pagination"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"` // empty = auth disabled
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// SearchConfig holds search engine connection settings.
type SearchConfig struct {
	Driver           string   `yaml:"driver"` // elasticsearch, opensearch (default: elasticsearch)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	APIKey           string   `yaml:"api_key"`
	MaxRetries       int      `yaml:"max_retries"`
	Refresh          string   `yaml:"refresh"` // "", true, wait_for
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// PaginateConfig selects the pagination convention.
type PaginateConfig struct {
	Backend    string `yaml:"backend"` // kaminari, will_paginate, pagy, or empty
	MaxPerPage int    `yaml:"max_per_page"`
}

// ImportConfig holds bulk import settings.
type ImportConfig struct {
	BatchSize int `yaml:"batch_size"`
}

// SourcesConfig holds the connections of the storage backends models live in.
type SourcesConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Redis    RedisConfig    `yaml:"redis"`
}

// PostgresConfig holds the postgres connection.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// MongoConfig holds the mongo connection.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// RedisConfig holds the redis connection.
type RedisConfig struct {
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
}

// ModelConfig declares one searchable model.
type ModelConfig struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"` // postgres, mongo, redis
	Index  string `yaml:"index"`
	Type   string `yaml:"type"`

	// Table, PrimaryKey and Columns apply to postgres models.
	Table      string   `yaml:"table"`
	PrimaryKey string   `yaml:"primary_key"`
	Columns    []string `yaml:"columns"`
	// Collection applies to mongo models.
	Collection string `yaml:"collection"`
	// Prefix applies to redis models.
	Prefix string `yaml:"prefix"`

	Settings map[string]any `yaml:"settings"`
	Mappings map[string]any `yaml:"mappings"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes, completes and validates a YAML document.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Search.Driver == "" {
		c.Search.Driver = DriverElasticsearch
	}
	if c.Search.ReadinessTimeout <= 0 {
		c.Search.ReadinessTimeout = 30
	}
	if c.Search.MaxRetries <= 0 {
		c.Search.MaxRetries = 3
	}
	if c.Paginate.MaxPerPage <= 0 {
		c.Paginate.MaxPerPage = 100
	}
	if c.Import.BatchSize <= 0 {
		c.Import.BatchSize = 1000
	}
	if c.Sources.Mongo.Database == "" {
		c.Sources.Mongo.Database = "esmodel"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Search.Driver {
	case DriverElasticsearch, DriverOpenSearch:
	default:
		return fmt.Errorf("search.driver must be %q or %q, got %q", DriverElasticsearch, DriverOpenSearch, c.Search.Driver)
	}
	if len(c.Search.Addrs) == 0 {
		return fmt.Errorf("search.addrs is required")
	}
	switch db.Refresh(c.Search.Refresh) {
	case db.RefreshNone, db.RefreshTrue, db.RefreshWaitFor:
	default:
		return fmt.Errorf("search.refresh must be empty, \"true\" or \"wait_for\", got %q", c.Search.Refresh)
	}
	if _, err := page.Parse(c.Paginate.Backend); err != nil {
		return fmt.Errorf("pagination.backend: %w", err)
	}

	seen := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		if m.Name == "" {
			return fmt.Errorf("models[%d].name is required", i)
		}
		if seen[m.Name] {
			return fmt.Errorf("models[%d]: duplicate model %q", i, m.Name)
		}
		seen[m.Name] = true
		if err := c.validateSource(m); err != nil {
			return fmt.Errorf("models.%s: %w", m.Name, err)
		}
	}
	return nil
}

func (c *Config) validateSource(m ModelConfig) error {
	switch m.Source {
	case SourcePostgres:
		if c.Sources.Postgres.DSN == "" {
			return fmt.Errorf("sources.postgres.dsn is required")
		}
		if m.Table == "" {
			return fmt.Errorf("table is required")
		}
	case SourceMongo:
		if c.Sources.Mongo.URI == "" {
			return fmt.Errorf("sources.mongo.uri is required")
		}
		if m.Collection == "" {
			return fmt.Errorf("collection is required")
		}
	case SourceRedis:
		if len(c.Sources.Redis.Addrs) == 0 {
			return fmt.Errorf("sources.redis.addrs is required")
		}
		if m.Prefix == "" {
			return fmt.Errorf("prefix is required")
		}
	default:
		return fmt.Errorf("source must be %q, %q or %q, got %q", SourcePostgres, SourceMongo, SourceRedis, m.Source)
	}
	return nil
}

// Uses reports whether any model is stored in source.
func (c *Config) Uses(source string) bool {
	for _, m := range c.Models {
		if m.Source == source {
			return true
		}
	}
	return false
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
