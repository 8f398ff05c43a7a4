package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrIndexMissing signals an operation against an index that does not exist.
	ErrIndexMissing = errors.New("index missing")
	// ErrNoClass signals deserialization without a configured document factory.
	ErrNoClass = errors.New("no document class configured")
	// ErrUnknownModel signals a model name that is not registered.
	ErrUnknownModel = errors.New("unknown model")
	// ErrInvalidQuery signals a query definition that cannot be sent.
	ErrInvalidQuery = errors.New("invalid query definition")
	// ErrInvalidModel signals an incomplete model descriptor.
	ErrInvalidModel = errors.New("invalid model")
	// ErrNotImplemented signals an unimplemented feature.
	ErrNotImplemented = errors.New("not implemented")
)

// IndexMissingError wraps ErrIndexMissing with the index name.
type IndexMissingError struct {
	Index string
}

func (e *IndexMissingError) Error() string {
	return fmt.Sprintf("%s: %s (create it first or pass force)", ErrIndexMissing.Error(), e.Index)
}

func (e *IndexMissingError) Unwrap() error { return ErrIndexMissing }

// NewIndexMissing creates an index-missing error.
func NewIndexMissing(index string) error {
	return &IndexMissingError{Index: index}
}
