package hit

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Hit is a read-only view over one raw search hit.
// Attribute access tries the top-level hit first, then falls back into _source.
type Hit struct {
	raw map[string]any
}

// New wraps a raw hit mapping.
func New(raw map[string]any) Hit {
	if raw == nil {
		raw = map[string]any{}
	}
	return Hit{raw: raw}
}

// Wrap wraps every raw hit, preserving order.
func Wrap(raws []map[string]any) []Hit {
	out := make([]Hit, len(raws))
	for i, r := range raws {
		out[i] = New(r)
	}
	return out
}

// Get returns the value of key from the hit, falling back into _source.
func (h Hit) Get(key string) (any, bool) {
	if v, ok := h.raw[key]; ok {
		return v, true
	}
	if v, ok := h.Source()[key]; ok {
		return v, true
	}
	return nil, false
}

// Has reports whether key is present at the top level or in _source.
func (h Hit) Has(key string) bool {
	_, ok := h.Get(key)
	return ok
}

// Text returns Get(key) formatted as a string, empty when absent.
func (h Hit) Text(key string) string {
	v, ok := h.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Lookup follows a path of keys through nested mappings, starting with the
// same top-level/_source fallback as Get.
func (h Hit) Lookup(path ...string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	cur, ok := h.Get(path[0])
	for _, key := range path[1:] {
		if !ok {
			return nil, false
		}
		m, isMap := cur.(map[string]any)
		if !isMap {
			return nil, false
		}
		cur, ok = m[key]
	}
	return cur, ok
}

// ID returns _id as a string.
func (h Hit) ID() string {
	switch id := h.raw["_id"].(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

// Type returns _type, empty for typeless engines.
func (h Hit) Type() string {
	s, _ := h.raw["_type"].(string)
	return s
}

// Index returns _index.
func (h Hit) Index() string {
	s, _ := h.raw["_index"].(string)
	return s
}

// Score returns _score, 0 when the hit is unscored.
func (h Hit) Score() float64 {
	f, _ := h.raw["_score"].(float64)
	return f
}

// Source returns the indexed document.
func (h Hit) Source() map[string]any {
	m, _ := h.raw["_source"].(map[string]any)
	return m
}

// Highlight returns highlighted fragments by field.
func (h Hit) Highlight() map[string][]string {
	m, ok := h.raw["highlight"].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string][]string, len(m))
	for field, v := range m {
		frags, _ := v.([]any)
		for _, f := range frags {
			if s, ok := f.(string); ok {
				out[field] = append(out[field], s)
			}
		}
	}
	return out
}

// Raw returns the underlying hit mapping.
func (h Hit) Raw() map[string]any { return h.raw }

// Decode unmarshals _source into dst.
func (h Hit) Decode(dst any) error {
	data, err := json.Marshal(h.Source())
	if err != nil {
		return fmt.Errorf("marshal _source: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode _source of %s: %w", h.ID(), err)
	}
	return nil
}

// MarshalJSON renders the raw hit.
func (h Hit) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.raw)
}
