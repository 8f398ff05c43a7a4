package db

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for search engine operations.
var (
	ErrNotFound      = errors.New("db: document not found")
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
)

// Op constants name engine APIs for error context.
const (
	OpPing          = "PING"
	OpSearch        = "SEARCH"
	OpCount         = "COUNT"
	OpGet           = "GET"
	OpMGet          = "MGET"
	OpIndex         = "INDEX"
	OpUpdate        = "UPDATE"
	OpDelete        = "DELETE"
	OpBulk          = "BULK"
	OpCreateIndex   = "INDICES.CREATE"
	OpDeleteIndex   = "INDICES.DELETE"
	OpIndexExists   = "INDICES.EXISTS"
	OpRefresh       = "INDICES.REFRESH"
	OpClusterHealth = "CLUSTER.HEALTH"
)

// Error wraps an underlying error with the operation name for diagnostics.
// Status, Type and Reason are filled from the engine error body when present.
type Error struct {
	Op     string
	Status int
	Type   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s: [%d] %s: %s", e.Op, e.Status, e.Type, e.Reason)
	}
	if e.Err != nil {
		return e.Op + ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// errorBody is the engine error envelope: {"status": 404, "error": {"type": ..., "reason": ...}}.
// Some APIs return "error" as a plain string.
type errorBody struct {
	Status int `json:"status"`
	Error  any `json:"error"`
}

// NewStatusError builds an *Error from a non-2xx response body.
// 404s map to ErrIndexNotFound or ErrNotFound depending on the engine error type.
func NewStatusError(op string, status int, body []byte) *Error {
	e := &Error{Op: op, Status: status}

	var eb errorBody
	if len(body) > 0 && unmarshal(body, &eb) == nil {
		switch v := eb.Error.(type) {
		case map[string]any:
			e.Type, _ = v["type"].(string)
			e.Reason, _ = v["reason"].(string)
		case string:
			e.Reason = v
		}
	}

	switch {
	case e.Type == "index_not_found_exception":
		e.Err = ErrIndexNotFound
	case e.Type == "resource_already_exists_exception":
		e.Err = ErrIndexExists
	case status == http.StatusNotFound:
		e.Err = ErrNotFound
	default:
		e.Err = fmt.Errorf("status %d", status)
	}
	return e
}

// IsNotFound reports whether err means a missing document or index.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrIndexNotFound)
}
