package projector

import (
	"fmt"
	"sort"

	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/utils"
)

//Class is one entry of a ClassCatalog
type Class struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

//ClassCatalog is the ordered, immutable vocabulary of a dataset
type ClassCatalog struct {
	classes []Class
	index   map[string]int
}

//NewCatalog builds a catalog from a fixed enumeration. IDs must be unique and non empty,
//an empty label falls back to the ID.
func NewCatalog(classes []Class) (*ClassCatalog, error) {
	c := &ClassCatalog{
		classes: make([]Class, len(classes)),
		index:   make(map[string]int, len(classes)),
	}

	for i, cl := range classes {
		if cl.ID == utils.PaddingClassID {
			return nil, fmt.Errorf("NewCatalog: class number %d has an empty id", i)
		}
		if _, ok := c.index[cl.ID]; ok {
			return nil, fmt.Errorf("NewCatalog: duplicate class id '%s'", cl.ID)
		}
		if cl.Label == "" {
			cl.Label = cl.ID
		}
		c.classes[i] = cl
		c.index[cl.ID] = i
	}

	return c, nil
}

//inferCatalog ranks the distinct non empty ids by frequency, most frequent first.
//Ties keep the order of first appearance.
func inferCatalog(ids []string, labels map[string]string) *ClassCatalog {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, id := range ids {
		if id == utils.PaddingClassID {
			continue
		}
		if _, ok := counts[id]; !ok {
			order = append(order, id)
		}
		counts[id]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	classes := make([]Class, len(order))
	for i, id := range order {
		classes[i] = Class{ID: id, Label: labels[id]}
	}

	//ids are unique and non empty here
	c, _ := NewCatalog(classes)
	return c
}

//Len is the catalog size N
func (c *ClassCatalog) Len() int {
	return len(c.classes)
}

//Index returns the catalog position of id
func (c *ClassCatalog) Index(id string) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

//Classes returns a copy of the catalog entries in order
func (c *ClassCatalog) Classes() []Class {
	out := make([]Class, len(c.classes))
	copy(out, c.classes)
	return out
}

func (c *ClassCatalog) IDs() []string {
	out := make([]string, len(c.classes))
	for i, cl := range c.classes {
		out[i] = cl.ID
	}
	return out
}

func (c *ClassCatalog) Labels() []string {
	out := make([]string, len(c.classes))
	for i, cl := range c.classes {
		out[i] = cl.Label
	}
	return out
}
