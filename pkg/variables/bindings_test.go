package variables_test

import (
	"testing"

	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/nodes"
	"github.com/aretw0/cuepoint/pkg/variables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindDocument_RendersValuesAndTemplates(t *testing.T) {
	doc := nodes.FromConfig([]domain.NodeDef{
		{ID: "score-label", Attributes: map[string]string{variables.AttrVar: "score"}},
		{ID: "greeting", Attributes: map[string]string{variables.AttrVarTemplate: "Hi %name%, you have %score% points (%missing%)"}},
	})

	s := variables.New()
	require.NoError(t, s.Define("score", domain.TypeNumber, 0, domain.ScopeProject))
	require.NoError(t, s.Define("name", domain.TypeText, "Ada", domain.ScopeProject))
	s.BindDocument(doc)

	label, _ := doc.Get("score-label")
	greeting, _ := doc.Get("greeting")
	assert.Equal(t, "0", label.Content)
	assert.Equal(t, "Hi Ada, you have 0 points (%missing%)", greeting.Content)

	require.NoError(t, s.Set("score", 12.5))
	assert.Equal(t, "12.5", label.Content)
	assert.Equal(t, "Hi Ada, you have 12.5 points (%missing%)", greeting.Content)
}
