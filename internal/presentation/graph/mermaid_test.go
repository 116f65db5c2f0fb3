package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/cuepoint/internal/presentation/graph"
	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func rules() map[string][]domain.BranchRule {
	return map[string][]domain.BranchRule{
		"quiz-1": {
			{Condition: &domain.BranchCondition{Variable: "score", Operator: domain.OpGreaterEqual, Value: 80}, Target: "advanced"},
			{
				Conditions: []domain.BranchCondition{
					{Variable: "score", Operator: domain.OpLess, Value: 80},
					{Variable: "name", Operator: domain.OpEqual, Value: `Ada "A"`},
				},
				Logic:  domain.LogicOr,
				Target: "review",
			},
			{Default: true, Target: "review", SideAction: &domain.ActionConfig{Action: "setVariable"}},
		},
		"advanced": {
			{Default: true, Target: "end"},
		},
	}
}

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(rules(), nil)

	for _, want := range []string{
		"graph TD\n",
		`quiz_1{{"quiz-1"}}`,
		`advanced{{"advanced"}}`,
		`review["review"]`,
		`quiz_1 -- "score >= 80" --> advanced`,
		`quiz_1 -- "score < 80 OR name == Ada 'A'" --> review`,
		`quiz_1 -. "⚡ setVariable" .-> review`,
		"advanced -.-> end",
	} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, 1, strings.Count(out, `review["review"]`), "targets are declared once")
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	out := graph.GenerateMermaid(rules(), &graph.Overlay{Path: []domain.PathRecord{
		{From: "quiz-1", To: "advanced"},
		{From: "advanced", To: "end"},
		{From: "ghost", To: "end"},
	}})

	assert.Contains(t, out, "classDef visited")
	assert.Contains(t, out, "class quiz_1 visited;")
	assert.Contains(t, out, "class advanced visited;")
	assert.Contains(t, out, "class end current;")
	assert.NotContains(t, out, "class ghost")
	assert.NotContains(t, out, "class end visited;")
}
