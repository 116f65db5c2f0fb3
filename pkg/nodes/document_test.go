package nodes_test

import (
	"testing"

	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/nodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_FromConfigKeepsOrder(t *testing.T) {
	doc := nodes.FromConfig([]domain.NodeDef{
		{ID: "b", Tag: "button", Markers: []string{"btn"}},
		{ID: "a", Tag: "div", Hidden: true, Attributes: map[string]string{"data-layer": ""}},
	})

	all := doc.Nodes()
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)
	assert.Equal(t, "a", all[1].ID)
	assert.True(t, all[0].HasMarker("btn"))
	assert.False(t, all[1].Visible())
	assert.Len(t, doc.WithAttr("data-layer"), 1)
}

func TestDocument_ResolveSelector(t *testing.T) {
	doc := nodes.NewDocument()
	doc.Add(nodes.New("btn1", "button"))

	n, ok := doc.Resolve("#btn1")
	require.True(t, ok)
	assert.Equal(t, "btn1", n.ID)

	_, ok = doc.Resolve("#missing")
	assert.False(t, ok)
}

func TestNode_MarkersAndFlags(t *testing.T) {
	n := nodes.New("x", "DIV")
	n.AddMarker("a", "b", "a")
	n.RemoveMarker("a")
	assert.Equal(t, []string{"b"}, n.Markers())

	assert.False(t, n.Focusable())
	n.SetTabIndex(0)
	assert.True(t, n.Focusable())
	n.SetEnabled(false)
	assert.False(t, n.Focusable())
	assert.True(t, n.PointerBlocked)

	v, ok := n.Property("disabled")
	assert.True(t, ok)
	assert.Equal(t, true, v)
}
