package mongoadapter

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kailas-cloud/esmodel/internal/adapter"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
)

// Name is the adapter name.
const Name = "mongo"

// DefaultBatchSize is used when BatchOptions.Size is not positive.
const DefaultBatchSize = 1000

// Set returns the mongo capability set.
func Set() adapter.Set {
	return adapter.Set{
		Name:      Name,
		Records:   records{},
		Callbacks: adapter.HookCallbacks{},
		Importing: importing{},
	}
}

// Matches reports whether class is backed by a mongo collection.
func Matches(class *model.Class) bool {
	_, ok := class.Source().(*Collection)
	return ok
}

func collectionOf(class *model.Class) (*Collection, error) {
	c, ok := class.Source().(*Collection)
	if !ok {
		return nil, fmt.Errorf("%s: source %T is not a *mongoadapter.Collection", class.Name(), class.Source())
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", class.Name(), err)
	}
	return c, nil
}

type records struct{}

// Fetch loads documents with {_id: {$in: ids}}.
func (records) Fetch(ctx context.Context, l adapter.Lookup) ([]adapter.Hydrated, error) {
	c, err := collectionOf(l.Class)
	if err != nil {
		return nil, err
	}
	if len(l.IDs) == 0 {
		return nil, nil
	}

	opts := options.Find()
	sort := c.Sort
	if l.Order != "" {
		sort = ParseSort(l.Order)
	}
	if len(sort) > 0 {
		opts.SetSort(sort)
	}

	filter := c.filter(bson.M{"_id": bson.M{"$in": toObjectIDs(l.IDs)}})
	cur, err := c.Coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", l.Class.Name(), err)
	}
	defer cur.Close(ctx)

	var out []any
	for cur.Next(ctx) {
		rec, err := c.decode(cur)
		if err != nil {
			return nil, fmt.Errorf("%s: decode: %w", l.Class.Name(), err)
		}
		out = append(out, rec)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", l.Class.Name(), err)
	}

	if len(sort) > 0 {
		return adapter.Pair(out, l.IDs, idOf(l.Class)), nil
	}
	return adapter.Reorder(out, l.IDs, idOf(l.Class)), nil
}

type importing struct{}

// FindInBatches iterates the collection by _id with one cursor.
func (importing) FindInBatches(ctx context.Context, class *model.Class, opts adapter.BatchOptions, fn func([]any) error) error {
	c, err := collectionOf(class)
	if err != nil {
		return err
	}
	size := opts.Size
	if size <= 0 {
		size = DefaultBatchSize
	}
	scope, err := scopeOf(opts.Scope)
	if err != nil {
		return fmt.Errorf("%s: %w", class.Name(), err)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetBatchSize(int32(size))
	cur, err := c.Coll.Find(ctx, c.filter(scope), findOpts)
	if err != nil {
		return fmt.Errorf("%s: find: %w", class.Name(), err)
	}
	defer cur.Close(ctx)

	batch := make([]any, 0, size)
	for cur.Next(ctx) {
		rec, err := c.decode(cur)
		if err != nil {
			return fmt.Errorf("%s: decode: %w", class.Name(), err)
		}
		batch = append(batch, rec)
		if len(batch) == size {
			if err := fn(batch); err != nil {
				return err
			}
			batch = make([]any, 0, size)
		}
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("%s: cursor: %w", class.Name(), err)
	}
	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}

func scopeOf(v any) (bson.M, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case bson.M:
		return s, nil
	case map[string]any:
		return bson.M(s), nil
	default:
		return nil, fmt.Errorf("unsupported scope %T", v)
	}
}
