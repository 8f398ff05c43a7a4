package esmodel

import (
	"github.com/kailas-cloud/esmodel/internal/adapter/multimodel"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
)

// Multimodel is a search target spanning several models.
type Multimodel = multimodel.Multimodel

// Multimodel returns a search target over the named models. With no names
// every model registered at search time is included.
func (c *Client) Multimodel(names ...string) (*Multimodel, error) {
	classes := make([]*model.Class, 0, len(names))
	for _, name := range names {
		m, err := c.Model(name)
		if err != nil {
			return nil, err
		}
		classes = append(classes, m.class)
	}
	return multimodel.New(c.registry, c.classes, classes...)
}

// Search builds a lazy search across the named models, or all models when
// none are named. Records are hydrated through each model's own adapter
// and come back in hit order.
func (c *Client) Search(q any, opts SearchOptions, names ...string) (*Response, error) {
	mm, err := c.Multimodel(names...)
	if err != nil {
		return nil, err
	}
	return c.search(mm.Class(), q, opts)
}
