// Package multimodel searches several model classes in one request and
// hydrates the mixed hits through each class's own adapter.
package multimodel

import (
	"fmt"

	"github.com/kailas-cloud/esmodel/internal/adapter"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
)

// ClassName is the name of the descriptor class wrapping a Multimodel.
const ClassName = "Multimodel"

// Multimodel is a search target spanning several classes.
type Multimodel struct {
	classes  []*model.Class
	all      func() []*model.Class
	registry *adapter.Registry
	class    *model.Class
}

// New creates a multimodel over classes. With no classes, every class
// returned by all at search time is used. Hits are hydrated through registry.
func New(registry *adapter.Registry, all func() []*model.Class, classes ...*model.Class) (*Multimodel, error) {
	if registry == nil {
		return nil, fmt.Errorf("multimodel: registry is required")
	}
	m := &Multimodel{classes: classes, all: all, registry: registry}
	class, err := model.New(ClassName, m, model.WithIndexName("_all"))
	if err != nil {
		return nil, err
	}
	m.class = class
	return m, nil
}

// Class returns the descriptor used to search and hydrate this multimodel.
func (m *Multimodel) Class() *model.Class { return m.class }

// Models returns the classes searched.
func (m *Multimodel) Models() []*model.Class {
	if len(m.classes) > 0 || m.all == nil {
		return m.classes
	}
	return m.all()
}

// IndexNames returns one index name per class.
func (m *Multimodel) IndexNames() []string {
	models := m.Models()
	out := make([]string, 0, len(models))
	for _, c := range models {
		out = append(out, c.IndexName())
	}
	return out
}

// DocumentTypes returns the document types of the classes that have one.
func (m *Multimodel) DocumentTypes() []string {
	var out []string
	for _, c := range m.Models() {
		if t := c.DocumentType(); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// classOf returns the class a hit belongs to, nil when none matches.
func (m *Multimodel) classOf(index, typ string) *model.Class {
	for _, c := range m.Models() {
		if c.Matches(index, typ) {
			return c
		}
	}
	return nil
}
