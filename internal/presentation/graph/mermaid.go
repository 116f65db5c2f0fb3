package graph

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/cuepoint/pkg/domain"
)

// Overlay carries the learner's path to highlight on the graph.
type Overlay struct {
	Path []domain.PathRecord
}

// GenerateMermaid renders the branching rules as a Mermaid flowchart.
// Decision points are drawn as {{hexagons}} and targets as [rectangles].
// Conditional rules use solid labeled arrows; default rules use dotted ones.
// With an overlay, visited nodes and the current target are styled.
func GenerateMermaid(rules map[string][]domain.BranchRule, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	points := slices.Sorted(maps.Keys(rules))
	isPoint := make(map[string]bool, len(points))
	for _, id := range points {
		isPoint[id] = true
	}

	declared := make(map[string]bool)
	declare := func(id string) {
		if declared[id] {
			return
		}
		declared[id] = true
		if isPoint[id] {
			fmt.Fprintf(&sb, "    %s{{\"%s\"}}\n", sanitizeMermaidID(id), id)
		} else {
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", sanitizeMermaidID(id), id)
		}
	}

	for _, id := range points {
		declare(id)
		for _, r := range rules[id] {
			if r.Target == "" {
				continue
			}
			declare(r.Target)

			from, to := sanitizeMermaidID(id), sanitizeMermaidID(r.Target)
			label := describe(r)
			if r.SideAction != nil {
				label = strings.TrimSpace(label + " ⚡ " + r.SideAction.Action)
			}
			switch {
			case r.Default && label == "":
				fmt.Fprintf(&sb, "    %s -.-> %s\n", from, to)
			case r.Default:
				fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", from, escape(label), to)
			default:
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, escape(label), to)
			}
		}
	}

	if overlay != nil && len(overlay.Path) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on light fills in both themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		current := overlay.Path[len(overlay.Path)-1].To
		seen := make(map[string]bool)
		for _, p := range overlay.Path {
			for _, id := range []string{p.From, p.To} {
				safeID := sanitizeMermaidID(id)
				if id == current || seen[safeID] || !declared[id] {
					continue
				}
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		if declared[current] {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(current))
		}
	}

	return sb.String()
}

// describe renders a rule's conditions as "score >= 80 AND tries < 3".
func describe(r domain.BranchRule) string {
	conds := r.Conditions
	if r.Condition != nil {
		conds = append([]domain.BranchCondition{*r.Condition}, conds...)
	}
	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		parts = append(parts, strings.TrimSpace(fmt.Sprintf("%s %s %s", c.Variable, c.Operator, domain.ToText(c.Value))))
	}
	return strings.Join(parts, " "+string(r.Logic.Normalized())+" ")
}

func escape(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return r.Replace(id)
}
