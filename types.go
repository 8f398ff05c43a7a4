package esmodel

import (
	"github.com/kailas-cloud/esmodel/internal/adapter"
	"github.com/kailas-cloud/esmodel/internal/adapter/mongoadapter"
	"github.com/kailas-cloud/esmodel/internal/adapter/redisadapter"
	"github.com/kailas-cloud/esmodel/internal/adapter/sqladapter"
	"github.com/kailas-cloud/esmodel/internal/db"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
	"github.com/kailas-cloud/esmodel/internal/domain/search/hit"
	"github.com/kailas-cloud/esmodel/internal/domain/search/page"
	healthuc "github.com/kailas-cloud/esmodel/internal/usecase/health"
	"github.com/kailas-cloud/esmodel/internal/usecase/importing"
	"github.com/kailas-cloud/esmodel/internal/usecase/search"
)

// Search types.
type (
	Response      = search.Response
	Records       = search.Records
	Results       = search.Results
	SearchOptions = search.Options
	Hit           = hit.Hit
	PageMeta      = page.Meta
)

// Import types.
type (
	ImportOptions = importing.Options
	ImportResult  = importing.Result
	BulkOp        = db.BulkOp
	BulkResult    = db.BulkResult
	BulkItem      = db.BulkItem
)

// Model and adapter types.
type (
	Class        = model.Class
	ModelOption  = model.Option
	AdapterSet   = adapter.Set
	Predicate    = adapter.Predicate
	Lookup       = adapter.Lookup
	BatchOptions = adapter.BatchOptions
	IndexSink    = adapter.IndexSink
	Hooks        = adapter.Hooks
)

// Storage sources a model can be registered with.
type (
	SQLTable        = sqladapter.Table
	SQLScope        = sqladapter.Scope
	MongoCollection = mongoadapter.Collection
	RedisKeyspace   = redisadapter.Keyspace
)

// HealthReport is the aggregated health of the engine and the storage backends.
type HealthReport = healthuc.Report

// Health statuses.
const (
	Healthy   = healthuc.Healthy
	Degraded  = healthuc.Degraded
	Unhealthy = healthuc.Unhealthy
)

// Paginator selects a pagination convention and its default page size.
type Paginator = page.Backend

// Pagination conventions.
const (
	NoPaginator  = page.None
	Kaminari     = page.Kaminari
	WillPaginate = page.WillPaginate
	Pagy         = page.Pagy
)

// Refresh controls index refresh after writes.
type Refresh = db.Refresh

// Refresh policies.
const (
	RefreshNone    = db.RefreshNone
	RefreshTrue    = db.RefreshTrue
	RefreshWaitFor = db.RefreshWaitFor
)

// Lifecycle operations reported to Hooks.Committed.
const (
	OpCreate = adapter.OpCreate
	OpUpdate = adapter.OpUpdate
	OpDelete = adapter.OpDelete
)

// WithIndexName overrides the index derived from the model name.
func WithIndexName(name string) ModelOption { return model.WithIndexName(name) }

// WithDocumentType sets the document type for engines that still have types.
func WithDocumentType(t string) ModelOption { return model.WithDocumentType(t) }

// WithSettings sets the index settings used by CreateIndex.
func WithSettings(s map[string]any) ModelOption { return model.WithSettings(s) }

// WithMappings sets the index mappings used by CreateIndex.
func WithMappings(m map[string]any) ModelOption { return model.WithMappings(m) }

// WithIDFunc overrides how the document id of a record is found.
func WithIDFunc(fn func(record any) (string, error)) ModelOption { return model.WithIDFunc(fn) }

// WithIndexedJSON overrides the document sent to the index for a record.
func WithIndexedJSON(fn func(record any) (map[string]any, error)) ModelOption {
	return model.WithIndexedJSON(fn)
}
