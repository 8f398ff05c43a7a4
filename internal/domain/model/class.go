package model

import (
	"fmt"
	"regexp"
	"strings"
)

var nameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_:/-]*$`)

// Class describes one searchable model: where its documents live in the
// search engine and where its records live in the application store.
// Classes are immutable and compared by pointer identity.
type Class struct {
	name         string
	indexName    string
	documentType string
	source       any
	settings     map[string]any
	mappings     map[string]any
	idFunc       func(record any) (string, error)
	jsonFunc     func(record any) (map[string]any, error)
}

// Option customizes a Class.
type Option func(*Class)

// WithIndexName overrides the index name derived from the model name.
func WithIndexName(name string) Option {
	return func(c *Class) { c.indexName = name }
}

// WithDocumentType sets the document type for engines that still use types.
func WithDocumentType(t string) Option {
	return func(c *Class) { c.documentType = t }
}

// WithSettings sets the index settings sent on index creation.
func WithSettings(s map[string]any) Option {
	return func(c *Class) { c.settings = s }
}

// WithMappings sets the index mappings sent on index creation.
func WithMappings(m map[string]any) Option {
	return func(c *Class) { c.mappings = m }
}

// WithIDFunc sets the id extractor used when indexing records.
func WithIDFunc(fn func(record any) (string, error)) Option {
	return func(c *Class) { c.idFunc = fn }
}

// WithIndexedJSON sets the serializer producing the indexed document.
func WithIndexedJSON(fn func(record any) (map[string]any, error)) Option {
	return func(c *Class) { c.jsonFunc = fn }
}

// New validates and creates a Class. source is the storage descriptor the
// adapter registry dispatches on (a SQL table, a mongo collection, ...).
func New(name string, source any, opts ...Option) (*Class, error) {
	if name == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if !nameRegex.MatchString(name) {
		return nil, fmt.Errorf("invalid model name: %q", name)
	}
	c := &Class{name: name, source: source}
	for _, opt := range opts {
		opt(c)
	}
	if c.indexName == "" {
		c.indexName = DefaultIndexName(name)
	}
	return c, nil
}

// MustNew is New that panics on error. For package-level model declarations.
func MustNew(name string, source any, opts ...Option) *Class {
	c, err := New(name, source, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultIndexName derives an index name from a model name:
// "Blog::Article" becomes "blog-articles".
func DefaultIndexName(name string) string {
	s := strings.ReplaceAll(name, "::", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = toSnake(s)
	if !strings.HasSuffix(s, "s") {
		s += "s"
	}
	return s
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && s[i-1] != '-' && s[i-1] != '_' {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Name returns the model name.
func (c *Class) Name() string { return c.name }

// IndexName returns the index holding this model's documents.
func (c *Class) IndexName() string { return c.indexName }

// DocumentType returns the document type, empty for typeless engines.
func (c *Class) DocumentType() string { return c.documentType }

// Source returns the storage descriptor.
func (c *Class) Source() any { return c.source }

// Targets is implemented by sources spanning several indices.
type Targets interface {
	IndexNames() []string
	DocumentTypes() []string
}

// IndexNames returns the indices a search on this class covers.
func (c *Class) IndexNames() []string {
	if t, ok := c.source.(Targets); ok {
		return t.IndexNames()
	}
	return []string{c.indexName}
}

// DocumentTypes returns the document types a search on this class covers.
func (c *Class) DocumentTypes() []string {
	if t, ok := c.source.(Targets); ok {
		return t.DocumentTypes()
	}
	if c.documentType == "" {
		return nil
	}
	return []string{c.documentType}
}

// Settings returns the index settings.
func (c *Class) Settings() map[string]any { return c.settings }

// Mappings returns the index mappings.
func (c *Class) Mappings() map[string]any { return c.mappings }

// Matches reports whether a hit with the given _index and _type belongs to this class.
// Typeless hits, typeless classes and the "_doc" placeholder match on index alone.
func (c *Class) Matches(index, typ string) bool {
	if index != c.indexName {
		return false
	}
	if typ == "" || typ == "_doc" || c.documentType == "" {
		return true
	}
	return typ == c.documentType
}

func (c *Class) String() string { return c.name }
