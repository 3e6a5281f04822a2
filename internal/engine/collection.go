package engine

import (
	"quill/internal/domain/models"
)

// collection is the engine-owned document store. All mutation goes through
// the engine's operations; accessors hand out copies so callers can never
// mutate canonical state directly. Not internally locked - the engine's
// mutex guards it.
type collection struct {
	order []string
	docs  map[string]models.Document
}

func newCollection() *collection {
	return &collection{
		docs: make(map[string]models.Document),
	}
}

// Put inserts or replaces a document, preserving insertion order
func (c *collection) Put(doc models.Document) {
	if _, exists := c.docs[doc.ID]; !exists {
		c.order = append(c.order, doc.ID)
	}
	c.docs[doc.ID] = doc
}

// Get returns a copy of the document with the given ID
func (c *collection) Get(id string) (models.Document, bool) {
	doc, ok := c.docs[id]
	return doc, ok
}

// Remove deletes a document from the collection
func (c *collection) Remove(id string) {
	if _, ok := c.docs[id]; !ok {
		return
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// ReplaceAll swaps the whole collection for a freshly fetched one
func (c *collection) ReplaceAll(docs []models.Document) {
	c.order = c.order[:0]
	c.docs = make(map[string]models.Document, len(docs))
	for _, doc := range docs {
		c.Put(doc)
	}
}

// All returns copies of every document in insertion order
func (c *collection) All() []models.Document {
	out := make([]models.Document, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.docs[id])
	}
	return out
}

func (c *collection) Len() int {
	return len(c.docs)
}
