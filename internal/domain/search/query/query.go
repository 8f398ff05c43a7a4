package query

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/esmodel/internal/domain"
)

// Mapper is implemented by query builders that render themselves as a request body.
type Mapper interface {
	ToMap() (map[string]any, error)
}

// Kind tells how a query definition is sent to the engine.
type Kind int

const (
	// KindMatchAll sends neither q nor a body.
	KindMatchAll Kind = iota
	// KindMapper sends the result of Mapper.ToMap as the body.
	KindMapper
	// KindJSON sends a JSON string as the raw body.
	KindJSON
	// KindString sends a plain string as the q parameter.
	KindString
	// KindBody sends a mapping as the body.
	KindBody
)

func (k Kind) String() string {
	switch k {
	case KindMatchAll:
		return "match_all"
	case KindMapper:
		return "mapper"
	case KindJSON:
		return "json"
	case KindString:
		return "string"
	case KindBody:
		return "body"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Definition is a resolved query: either a q string or a body, never both.
type Definition struct {
	kind Kind
	q    string
	body []byte
}

// Resolve classifies a query value. Order matters:
// Mapper, JSON object string, plain string, then mappings.
func Resolve(v any) (Definition, error) {
	switch q := v.(type) {
	case nil:
		return Definition{kind: KindMatchAll}, nil
	case Mapper:
		m, err := q.ToMap()
		if err != nil {
			return Definition{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
		}
		body, err := json.Marshal(m)
		if err != nil {
			return Definition{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
		}
		return Definition{kind: KindMapper, body: body}, nil
	case string:
		if isJSONObject(q) {
			return Definition{kind: KindJSON, body: []byte(q)}, nil
		}
		return Definition{kind: KindString, q: q}, nil
	case json.RawMessage:
		return rawBody(q)
	case []byte:
		return rawBody(q)
	case map[string]any:
		body, err := json.Marshal(q)
		if err != nil {
			return Definition{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
		}
		return Definition{kind: KindBody, body: body}, nil
	default:
		// Typed request structs are sent as their JSON object form.
		body, err := json.Marshal(q)
		if err != nil {
			return Definition{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
		}
		if !isJSONObject(string(body)) {
			return Definition{}, fmt.Errorf("%w: %T does not encode to an object", domain.ErrInvalidQuery, v)
		}
		return Definition{kind: KindBody, body: body}, nil
	}
}

func rawBody(b []byte) (Definition, error) {
	if !json.Valid(b) {
		return Definition{}, fmt.Errorf("%w: body is not valid JSON", domain.ErrInvalidQuery)
	}
	return Definition{kind: KindBody, body: b}, nil
}

// isJSONObject reports whether s is a JSON object. Lucene text such as
// "{1 TO 5}" starts with a brace but does not parse, so it stays a q string.
func isJSONObject(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "{") && json.Valid([]byte(s))
}

// Kind returns how the definition is sent.
func (d Definition) Kind() Kind { return d.kind }

// Q returns the q parameter, empty unless Kind is KindString.
func (d Definition) Q() string { return d.q }

// Body returns the request body, nil for KindString and KindMatchAll.
func (d Definition) Body() []byte { return d.body }
