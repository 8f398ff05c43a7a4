package model

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Identifier is implemented by records that know their document id.
type Identifier interface {
	DocumentID() string
}

// IndexedJSONer is implemented by records with a custom indexed representation.
type IndexedJSONer interface {
	AsIndexedJSON() (map[string]any, error)
}

// Finder is implemented by sources that can load records by id.
// The default adapter uses it for hydration.
type Finder interface {
	FindByIDs(ctx context.Context, ids []string) ([]any, error)
}

// ID extracts the document id of a record.
// Resolution: WithIDFunc, Identifier, then an "id" key of the indexed JSON.
func (c *Class) ID(record any) (string, error) {
	if c.idFunc != nil {
		return c.idFunc(record)
	}
	if r, ok := record.(Identifier); ok {
		return r.DocumentID(), nil
	}
	m, err := toMap(record)
	if err != nil {
		return "", fmt.Errorf("%s: extract id: %w", c.name, err)
	}
	for _, key := range []string{"id", "ID", "_id"} {
		if v, ok := m[key]; ok && v != nil {
			return FormatID(v), nil
		}
	}
	return "", fmt.Errorf("%s: record %T has no id", c.name, record)
}

// IndexedJSON returns the document sent to the index for a record.
// Resolution: WithIndexedJSON, IndexedJSONer, map passthrough, then a JSON round trip.
func (c *Class) IndexedJSON(record any) (map[string]any, error) {
	if c.jsonFunc != nil {
		return c.jsonFunc(record)
	}
	if r, ok := record.(IndexedJSONer); ok {
		return r.AsIndexedJSON()
	}
	return toMap(record)
}

func toMap(record any) (map[string]any, error) {
	if m, ok := record.(map[string]any); ok {
		return m, nil
	}
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("record %T is not an object: %w", record, err)
	}
	return m, nil
}

// FormatID renders an id value as the string used for _id.
func FormatID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		if id == float64(int64(id)) {
			return strconv.FormatInt(int64(id), 10)
		}
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case interface{ Hex() string }:
		return id.Hex()
	case fmt.Stringer:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}
