package db

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

func unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// StringID normalizes an identifier value (string, number) to its string form.
func StringID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		if id == float64(int64(id)) {
			return strconv.FormatInt(int64(id), 10)
		}
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case int32:
		return strconv.FormatInt(int64(id), 10)
	case uint64:
		return strconv.FormatUint(id, 10)
	case fmt.Stringer:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}

// DecodeSearchResult decodes a search response body.
func DecodeSearchResult(r io.Reader) (*SearchResult, error) {
	var res SearchResult
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &res, nil
}

// DecodeCount decodes a count response body.
func DecodeCount(r io.Reader) (int64, error) {
	var res struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return 0, fmt.Errorf("decode count response: %w", err)
	}
	return res.Count, nil
}

type rawDocument struct {
	Index   string         `json:"_index"`
	Type    string         `json:"_type"`
	ID      string         `json:"_id"`
	Version int64          `json:"_version"`
	Found   bool           `json:"found"`
	Source  map[string]any `json:"_source"`
}

func (d *rawDocument) document() *Document {
	return &Document{
		Index:   d.Index,
		Type:    d.Type,
		ID:      d.ID,
		Version: d.Version,
		Source:  d.Source,
	}
}

// DecodeDocument decodes a get response body. Returns ErrNotFound when found=false.
func DecodeDocument(r io.Reader) (*Document, error) {
	var raw rawDocument
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode get response: %w", err)
	}
	if !raw.Found {
		return nil, ErrNotFound
	}
	return raw.document(), nil
}

// MGetBody renders the {"ids": [...]} multi-get body.
func MGetBody(ids []string) ([]byte, error) {
	return json.Marshal(map[string]any{"ids": ids})
}

// DecodeMGet decodes a multi-get response. Entries for missing documents are nil,
// so the result stays positionally aligned with the requested ids.
func DecodeMGet(r io.Reader) ([]*Document, error) {
	var res struct {
		Docs []rawDocument `json:"docs"`
	}
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode mget response: %w", err)
	}
	out := make([]*Document, len(res.Docs))
	for i := range res.Docs {
		if res.Docs[i].Found {
			out[i] = res.Docs[i].document()
		}
	}
	return out, nil
}

// DecodeIndexed decodes an index response and returns the document id.
func DecodeIndexed(r io.Reader) (string, error) {
	var res struct {
		ID string `json:"_id"`
	}
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return "", fmt.Errorf("decode index response: %w", err)
	}
	return res.ID, nil
}

// DecodeHealth decodes a cluster health response.
func DecodeHealth(r io.Reader) (*Health, error) {
	var h Health
	if err := json.NewDecoder(r).Decode(&h); err != nil {
		return nil, fmt.Errorf("decode cluster health: %w", err)
	}
	return &h, nil
}

type bulkTarget struct {
	Index   string `json:"_index,omitempty"`
	Type    string `json:"_type,omitempty"`
	ID      string `json:"_id,omitempty"`
	Routing string `json:"routing,omitempty"`
}

// EncodeBulk renders bulk operations as NDJSON. defaultIndex is used by
// operations without an explicit Index.
func EncodeBulk(defaultIndex string, ops []BulkOp) ([]byte, error) {
	var buf bytes.Buffer
	for i, op := range ops {
		action := op.Action
		if action == "" {
			action = BulkIndex
		}
		target := bulkTarget{Index: op.Index, Type: op.Type, ID: op.ID, Routing: op.Routing}
		if target.Index == "" {
			target.Index = defaultIndex
		}
		meta, err := json.Marshal(map[BulkAction]bulkTarget{action: target})
		if err != nil {
			return nil, fmt.Errorf("bulk op %d: marshal meta: %w", i, err)
		}
		buf.Write(meta)
		buf.WriteByte('\n')

		if action == BulkDelete {
			continue
		}
		doc := op.Document
		if action == BulkUpdate {
			doc = map[string]any{"doc": doc}
		}
		data, err := marshalDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("bulk op %d: marshal document: %w", i, err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func marshalDocument(doc any) ([]byte, error) {
	switch d := doc.(type) {
	case json.RawMessage:
		return d, nil
	case []byte:
		return d, nil
	default:
		return json.Marshal(d)
	}
}

// DecodeBulkResult decodes a bulk response body.
func DecodeBulkResult(r io.Reader) (*BulkResult, error) {
	var res struct {
		Took   int64                       `json:"took"`
		Errors bool                        `json:"errors"`
		Items  []map[BulkAction]rawBulkRes `json:"items"`
	}
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode bulk response: %w", err)
	}
	out := &BulkResult{Took: res.Took, Errors: res.Errors, Items: make([]BulkItem, 0, len(res.Items))}
	for _, item := range res.Items {
		for action, r := range item {
			out.Items = append(out.Items, BulkItem{
				Action: action,
				Index:  r.Index,
				ID:     r.ID,
				Status: r.Status,
				Error:  r.Error,
			})
		}
	}
	return out, nil
}

type rawBulkRes struct {
	Index  string         `json:"_index"`
	ID     string         `json:"_id"`
	Status int            `json:"status"`
	Error  map[string]any `json:"error,omitempty"`
}
