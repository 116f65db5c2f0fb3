// Package nodes models the addressable nodes of a content unit: the
// document the interactivity engines read from and write visual state to.
package nodes

import (
	"slices"
	"strings"
)

var nativeInteractive = map[string]bool{
	"button":   true,
	"a":        true,
	"input":    true,
	"select":   true,
	"textarea": true,
}

// Node is one addressable unit of content.
type Node struct {
	ID         string
	Tag        string
	Content    string
	Value      string
	Styles     map[string]string
	Attributes map[string]string

	Hidden         bool
	AriaHidden     bool
	Disabled       bool
	AriaDisabled   bool
	PointerBlocked bool
	Checked        bool

	// TabIndex is nil when the node relies on its native focus behavior.
	TabIndex *int

	Playing  bool
	Position float64

	markers []string
}

// New creates a node with the given id and tag.
func New(id, tag string) *Node {
	return &Node{
		ID:         id,
		Tag:        strings.ToLower(tag),
		Styles:     make(map[string]string),
		Attributes: make(map[string]string),
	}
}

// AddMarker adds visual markers, ignoring ones already present.
func (n *Node) AddMarker(markers ...string) {
	for _, m := range markers {
		if m != "" && !slices.Contains(n.markers, m) {
			n.markers = append(n.markers, m)
		}
	}
}

// RemoveMarker removes visual markers.
func (n *Node) RemoveMarker(markers ...string) {
	n.markers = slices.DeleteFunc(n.markers, func(m string) bool {
		return slices.Contains(markers, m)
	})
}

// HasMarker reports whether the marker is applied.
func (n *Node) HasMarker(marker string) bool {
	return slices.Contains(n.markers, marker)
}

// Markers returns the applied markers in application order.
func (n *Node) Markers() []string {
	return slices.Clone(n.markers)
}

// Attr returns an attribute value.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attributes[name]
	return v, ok
}

// SetAttr sets an attribute value.
func (n *Node) SetAttr(name, value string) {
	if n.Attributes == nil {
		n.Attributes = make(map[string]string)
	}
	n.Attributes[name] = value
}

// SetStyles merges styles into the node.
func (n *Node) SetStyles(styles map[string]string) {
	if n.Styles == nil {
		n.Styles = make(map[string]string)
	}
	for k, v := range styles {
		n.Styles[k] = v
	}
}

// IsNativeInteractive reports whether the tag accepts input without extra wiring.
func (n *Node) IsNativeInteractive() bool {
	return nativeInteractive[n.Tag]
}

// Visible reports whether the node is shown.
func (n *Node) Visible() bool {
	return !n.Hidden && !n.AriaHidden
}

// Show makes the node visible.
func (n *Node) Show() {
	n.Hidden = false
	n.AriaHidden = false
}

// Hide removes the node from view.
func (n *Node) Hide() {
	n.Hidden = true
	n.AriaHidden = true
}

// SetEnabled toggles whether the node accepts input.
func (n *Node) SetEnabled(enabled bool) {
	n.Disabled = !enabled
	n.AriaDisabled = !enabled
	n.PointerBlocked = !enabled
}

// Focusable reports whether the node takes part in the focus order.
func (n *Node) Focusable() bool {
	if n.Hidden || n.Disabled {
		return false
	}
	if n.TabIndex != nil {
		return *n.TabIndex >= 0
	}
	return n.IsNativeInteractive()
}

// SetTabIndex sets an explicit tab index.
func (n *Node) SetTabIndex(i int) {
	n.TabIndex = &i
}

// ClearTabIndex restores native focus behavior.
func (n *Node) ClearTabIndex() {
	n.TabIndex = nil
}

// Property reads a named property for condition evaluation.
// The boolean is false when the property is unknown.
func (n *Node) Property(name string) (any, bool) {
	switch strings.ToLower(name) {
	case "visible":
		return n.Visible(), true
	case "hidden":
		return !n.Visible(), true
	case "checked":
		return n.Checked, true
	case "value":
		return n.Value, true
	case "content", "text":
		return n.Content, true
	case "disabled":
		return n.Disabled || n.AriaDisabled, true
	case "playing":
		return n.Playing, true
	}
	if v, ok := n.Attributes[name]; ok {
		return v, true
	}
	return nil, false
}
