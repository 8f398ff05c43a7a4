package redisadapter

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/esmodel/internal/adapter"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
)

// Name is the adapter name.
const Name = "redis"

// DefaultBatchSize is used when BatchOptions.Size is not positive.
const DefaultBatchSize = 1000

// Set returns the Redis capability set.
func Set() adapter.Set {
	return adapter.Set{
		Name:      Name,
		Records:   records{},
		Callbacks: adapter.HookCallbacks{},
		Importing: importing{},
	}
}

// Matches reports whether class is backed by a Redis keyspace.
func Matches(class *model.Class) bool {
	_, ok := class.Source().(*Keyspace)
	return ok
}

func keyspaceOf(class *model.Class) (*Keyspace, error) {
	k, ok := class.Source().(*Keyspace)
	if !ok {
		return nil, fmt.Errorf("%s: source %T is not a *redisadapter.Keyspace", class.Name(), class.Source())
	}
	if err := k.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", class.Name(), err)
	}
	return k, nil
}

type records struct{}

// Fetch reads every id with one GET per key in a single round trip. Results
// come back in ids order; Redis has no backend order, so Lookup.Order is ignored.
func (records) Fetch(ctx context.Context, l adapter.Lookup) ([]adapter.Hydrated, error) {
	k, err := keyspaceOf(l.Class)
	if err != nil {
		return nil, err
	}
	return k.load(ctx, l.IDs)
}

func (k *Keyspace) load(ctx context.Context, ids []string) ([]adapter.Hydrated, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(ids))
	for i, id := range ids {
		cmds[i] = k.Client.B().Get().Key(k.Key(id)).Build()
	}

	out := make([]adapter.Hydrated, 0, len(ids))
	for i, res := range k.Client.DoMulti(ctx, cmds...) {
		data, err := res.AsBytes()
		if err != nil {
			if rueidis.IsRedisNil(err) {
				continue
			}
			return nil, fmt.Errorf("get %s: %w", k.Key(ids[i]), err)
		}
		rec, err := k.decode(ids[i], data)
		if err != nil {
			return nil, err
		}
		out = append(out, adapter.Hydrated{Record: rec, Hit: i})
	}
	return out, nil
}

type importing struct{}

// FindInBatches walks the keyspace with SCAN. Scope, when a string, is a
// glob matched against ids.
func (importing) FindInBatches(ctx context.Context, class *model.Class, opts adapter.BatchOptions, fn func([]any) error) error {
	k, err := keyspaceOf(class)
	if err != nil {
		return err
	}
	size := opts.Size
	if size <= 0 {
		size = DefaultBatchSize
	}

	pattern := "*"
	switch s := opts.Scope.(type) {
	case nil:
	case string:
		pattern = s
	default:
		return fmt.Errorf("%s: unsupported scope %T", class.Name(), opts.Scope)
	}

	var (
		cursor  uint64
		pending []string
	)
	flush := func(ids []string) error {
		batch, err := k.load(ctx, ids)
		if err != nil {
			return fmt.Errorf("%s: %w", class.Name(), err)
		}
		if len(batch) == 0 {
			return nil
		}
		return fn(adapter.Values(batch))
	}

	for {
		cmd := k.Client.B().Scan().Cursor(cursor).Match(k.Key(pattern)).Count(int64(size)).Build()
		entry, err := k.Client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return fmt.Errorf("%s: scan: %w", class.Name(), err)
		}
		for _, key := range entry.Elements {
			pending = append(pending, k.idOf(key))
		}
		for len(pending) >= size {
			if err := flush(pending[:size]); err != nil {
				return err
			}
			pending = pending[size:]
		}
		cursor = entry.Cursor
		if cursor == 0 {
			break
		}
	}
	if len(pending) > 0 {
		return flush(pending)
	}
	return nil
}
