// Package builtin assembles the adapter registry with every storage
// adapter shipped in this module.
package builtin

import (
	"github.com/kailas-cloud/esmodel/internal/adapter"
	"github.com/kailas-cloud/esmodel/internal/adapter/mongoadapter"
	"github.com/kailas-cloud/esmodel/internal/adapter/multimodel"
	"github.com/kailas-cloud/esmodel/internal/adapter/redisadapter"
	"github.com/kailas-cloud/esmodel/internal/adapter/sqladapter"
)

// NewRegistry returns a registry with the sql, mongo, redis and multimodel
// adapters registered in that order.
func NewRegistry() *adapter.Registry {
	r := adapter.NewRegistry()
	r.Register(sqladapter.Set(), sqladapter.Matches)
	r.Register(mongoadapter.Set(), mongoadapter.Matches)
	r.Register(redisadapter.Set(), redisadapter.Matches)
	r.Register(multimodel.Set(), multimodel.Matches)
	return r
}
