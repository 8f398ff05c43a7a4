package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kailas-cloud/esmodel/internal/db"
	"github.com/kailas-cloud/esmodel/internal/domain"
)

// ErrorCode is a machine-readable error code of an API error response.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeUnknownModel     ErrorCode = "unknown_model"
	CodeInvalidQuery     ErrorCode = "invalid_query"
	CodeIndexMissing     ErrorCode = "index_missing"
	CodeNotFound         ErrorCode = "not_found"
	CodeNotImplemented   ErrorCode = "not_implemented"
	CodeSearchEngine     ErrorCode = "search_engine_error"
	CodeInternalError    ErrorCode = "internal_error"
	CodeValidationFailed ErrorCode = "validation_failed"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrUnknownModel, http.StatusNotFound, CodeUnknownModel),
		sentinelHandler(domain.ErrIndexMissing, http.StatusNotFound, CodeIndexMissing),
		sentinelHandler(db.ErrIndexNotFound, http.StatusNotFound, CodeIndexMissing),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeInvalidQuery),
		sentinelHandler(domain.ErrInvalidModel, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, CodeNotImplemented),
		engineErrorHandler,
	}
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// engineErrorHandler maps engine rejections to 400 and engine failures to 502.
func engineErrorHandler(w http.ResponseWriter, err error, _ string) bool {
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		return false
	}
	if dbErr.Status >= 400 && dbErr.Status < 500 {
		msg := dbErr.Type
		if dbErr.Reason != "" {
			msg = dbErr.Type + ": " + dbErr.Reason
		}
		writeError(w, http.StatusBadRequest, CodeInvalidQuery, msg)
		return true
	}
	writeError(w, http.StatusBadGateway, CodeSearchEngine, "search engine unavailable")
	return true
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnknownModel,
		domain.ErrIndexMissing,
		db.ErrIndexNotFound,
		domain.ErrDocumentNotFound,
		domain.ErrNotFound,
		domain.ErrInvalidQuery,
		domain.ErrInvalidModel,
		domain.ErrNotImplemented,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
