package adapter

import (
	"sync"

	"github.com/kailas-cloud/esmodel/internal/domain/model"
)

// Predicate decides whether an adapter serves a class.
type Predicate func(class *model.Class) bool

type registration struct {
	predicate Predicate
	set       Set
}

// Registry resolves classes to adapters. Registrations are evaluated in
// insertion order and the first matching predicate wins; classes nothing
// matches get the default adapter.
type Registry struct {
	mu    sync.RWMutex
	regs  []registration
	cache map[*model.Class]*Adapter
	gen   uint64
	def   *Adapter
}

// NewRegistry creates an empty registry backed by the default adapter.
func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[*model.Class]*Adapter),
		def:   &Adapter{set: Default()},
	}
}

// Register appends an adapter. Registering the same predicate again appends
// a second entry; earlier entries keep their priority.
func (r *Registry) Register(set Set, predicate Predicate) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.regs = append(r.regs, registration{predicate: predicate, set: fillDefaults(set)})
	r.gen++
	clear(r.cache)
}

// FromClass returns the adapter for class. Predicate panics propagate to the caller.
func (r *Registry) FromClass(class *model.Class) *Adapter {
	r.mu.RLock()
	if a, ok := r.cache[class]; ok {
		r.mu.RUnlock()
		return a
	}
	regs, gen := r.regs, r.gen
	r.mu.RUnlock()

	a := r.def
	for _, reg := range regs {
		if reg.predicate(class) {
			a = &Adapter{set: reg.set}
			break
		}
	}

	r.mu.Lock()
	// Skip caching if Register ran meanwhile; the next call resolves again.
	if r.gen == gen {
		r.cache[class] = a
	}
	r.mu.Unlock()
	return a
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.regs)
}

// SourceIs builds a predicate matching classes whose source has type S.
func SourceIs[S any]() Predicate {
	return func(class *model.Class) bool {
		_, ok := class.Source().(S)
		return ok
	}
}

// fillDefaults completes a partial set with the default capabilities.
func fillDefaults(set Set) Set {
	def := Default()
	if set.Records == nil {
		set.Records = def.Records
	}
	if set.Callbacks == nil {
		set.Callbacks = def.Callbacks
	}
	if set.Importing == nil {
		set.Importing = def.Importing
	}
	return set
}
