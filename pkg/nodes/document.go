package nodes

import (
	"strings"

	"github.com/aretw0/cuepoint/pkg/domain"
)

// Viewport holds the ambient window metrics read by viewport conditions.
type Viewport struct {
	Width  float64
	Height float64
}

// Document is the set of addressable nodes of one content unit, in document order.
// It is not safe for concurrent use; the engine serializes access.
type Document struct {
	nodes    map[string]*Node
	order    []string
	loading  bool
	viewport Viewport
	focused  string
}

// NewDocument creates an empty document that is considered loaded.
func NewDocument() *Document {
	return &Document{nodes: make(map[string]*Node)}
}

// FromConfig builds a document from node definitions.
func FromConfig(defs []domain.NodeDef) *Document {
	doc := NewDocument()
	for _, def := range defs {
		n := New(def.ID, def.Tag)
		n.AddMarker(def.Markers...)
		for k, v := range def.Attributes {
			n.SetAttr(k, v)
		}
		n.Content = def.Content
		n.Value = def.Value
		n.Checked = def.Checked
		if def.Hidden {
			n.Hide()
		}
		doc.Add(n)
	}
	return doc
}

// Add appends a node, replacing any node with the same id in place.
func (d *Document) Add(n *Node) {
	if _, exists := d.nodes[n.ID]; !exists {
		d.order = append(d.order, n.ID)
	}
	d.nodes[n.ID] = n
}

// Ensure returns the node with id, creating a generic one when missing.
func (d *Document) Ensure(id string) *Node {
	if n, ok := d.nodes[id]; ok {
		return n
	}
	n := New(id, "div")
	d.Add(n)
	return n
}

// Get returns the node with the exact id.
func (d *Document) Get(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Resolve looks up a node by id or "#id" selector.
func (d *Document) Resolve(selector string) (*Node, bool) {
	return d.Get(StripSelector(selector))
}

// StripSelector turns "#id" into "id".
func StripSelector(selector string) string {
	return strings.TrimPrefix(strings.TrimSpace(selector), "#")
}

// Nodes returns every node in document order.
func (d *Document) Nodes() []*Node {
	out := make([]*Node, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.nodes[id])
	}
	return out
}

// WithAttr returns the nodes carrying the attribute, in document order.
func (d *Document) WithAttr(name string) []*Node {
	var out []*Node
	for _, id := range d.order {
		if _, ok := d.nodes[id].Attributes[name]; ok {
			out = append(out, d.nodes[id])
		}
	}
	return out
}

// Viewport returns the current window metrics.
func (d *Document) Viewport() Viewport {
	return d.viewport
}

// SetViewport updates the window metrics.
func (d *Document) SetViewport(v Viewport) {
	d.viewport = v
}

// Focus moves focus to the node. Nodes outside the focus order are ignored.
func (d *Document) Focus(id string) bool {
	n, ok := d.Resolve(id)
	if !ok || n.Hidden {
		return false
	}
	d.focused = n.ID
	return true
}

// Focused returns the id of the focused node, if any.
func (d *Document) Focused() string {
	return d.focused
}

// SetLoading marks the document as still loading.
func (d *Document) SetLoading(loading bool) {
	d.loading = loading
}

// Loading reports whether the document is still loading.
func (d *Document) Loading() bool {
	return d.loading
}
