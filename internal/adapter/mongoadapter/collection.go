package mongoadapter

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kailas-cloud/esmodel/internal/adapter"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
)

// Collection describes the mongo collection backing a model.
type Collection struct {
	adapter.Hooks

	Coll *mongo.Collection
	// Filter is a static scope applied to every query.
	Filter bson.M
	// Sort is a configured explicit order. When set, fetched records keep
	// this order instead of hit order.
	Sort bson.D
	// Decode converts the current document into a record. Default: bson.M.
	Decode func(cur *mongo.Cursor) (any, error)
}

// Connect opens a client and returns the named collection.
func Connect(ctx context.Context, uri, database, collection string) (*mongo.Collection, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return client.Database(database).Collection(collection), nil
}

func (c *Collection) validate() error {
	if c.Coll == nil {
		return fmt.Errorf("mongo collection is required")
	}
	return nil
}

func (c *Collection) decode(cur *mongo.Cursor) (any, error) {
	if c.Decode != nil {
		return c.Decode(cur)
	}
	var doc bson.M
	if err := cur.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// filter combines the static filter with an extra condition.
func (c *Collection) filter(extra bson.M) bson.M {
	switch {
	case len(c.Filter) == 0 && len(extra) == 0:
		return bson.M{}
	case len(c.Filter) == 0:
		return extra
	case len(extra) == 0:
		return c.Filter
	default:
		return bson.M{"$and": bson.A{c.Filter, extra}}
	}
}

// idOf returns the document id of a record: _id of documents, the class id otherwise.
func idOf(class *model.Class) func(any) (string, error) {
	return func(record any) (string, error) {
		var m map[string]any
		switch r := record.(type) {
		case bson.M:
			m = r
		case map[string]any:
			m = r
		default:
			return class.ID(record)
		}
		v, ok := m["_id"]
		if !ok || v == nil {
			return "", fmt.Errorf("document without _id")
		}
		if oid, ok := v.(primitive.ObjectID); ok {
			return oid.Hex(), nil
		}
		return model.FormatID(v), nil
	}
}

// toObjectIDs converts 24-character hex ids to ObjectIDs and keeps the rest as strings.
func toObjectIDs(ids []string) bson.A {
	out := make(bson.A, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
			continue
		}
		out = append(out, id)
	}
	return out
}

// ParseSort turns "title, -created_at" or "title asc, created_at desc" into a sort document.
func ParseSort(clause string) bson.D {
	var out bson.D
	for _, part := range strings.Split(clause, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		name, dir := fields[0], 1
		if strings.HasPrefix(name, "-") {
			name, dir = name[1:], -1
		}
		if len(fields) > 1 && strings.EqualFold(fields[1], "desc") {
			dir = -1
		}
		out = append(out, bson.E{Key: name, Value: dir})
	}
	return out
}
