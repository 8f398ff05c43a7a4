package adapter

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/kailas-cloud/esmodel/internal/domain/model"
)

// Op is a committed write on a record.
type Op string

// Committed write kinds.
const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Hooker is implemented by sources that accept lifecycle hooks.
type Hooker interface {
	AddHook(class *model.Class, sink IndexSink)
}

// Hooks is embedded by storage sources. Storage clients have no lifecycle
// hooks of their own, so the application reports successful writes through
// Committed and every installed sink is notified.
type Hooks struct {
	mu      sync.RWMutex
	entries []hook
}

type hook struct {
	class *model.Class
	sink  IndexSink
}

// AddHook installs a sink for class.
func (h *Hooks) AddHook(class *model.Class, sink IndexSink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, hook{class: class, sink: sink})
}

// Committed notifies installed sinks of a successful write. changed lists the
// updated attributes for OpUpdate; empty means a full reindex.
func (h *Hooks) Committed(ctx context.Context, op Op, record any, changed ...string) error {
	h.mu.RLock()
	entries := h.entries
	h.mu.RUnlock()

	var errs error
	for _, e := range entries {
		var err error
		switch op {
		case OpCreate:
			err = e.sink.IndexDocument(ctx, e.class, record)
		case OpUpdate:
			err = e.sink.UpdateDocument(ctx, e.class, record, changed)
		case OpDelete:
			err = e.sink.DeleteDocument(ctx, e.class, record)
		default:
			err = fmt.Errorf("unknown op %q", op)
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s %s: %w", e.class.Name(), op, err))
		}
	}
	return errs
}

// HookCallbacks installs sinks on sources implementing Hooker.
type HookCallbacks struct{}

// Install adds sink to the class source.
func (HookCallbacks) Install(class *model.Class, sink IndexSink) error {
	h, ok := class.Source().(Hooker)
	if !ok {
		return fmt.Errorf("%s: source %T does not accept hooks", class.Name(), class.Source())
	}
	h.AddHook(class, sink)
	return nil
}
