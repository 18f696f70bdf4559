package graph

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/conform/pkg/schema"
)

// ErrorOverlay marks the fields that failed validation.
type ErrorOverlay struct {
	Errors []schema.ValidationError
}

// GenerateMermaid produces a Mermaid flowchart of a schema tree.
// It applies semantic styling:
// - Root: ((Circle))
// - Nested schema: [[Subroutine]]
// - Rule: [Rectangle] labeled "field: rule"
// Fields are emitted in sorted order, so the output is stable.
// If an overlay is given, failing fields (and their ancestors) are styled.
func GenerateMermaid(name string, s schema.Schema, overlay *ErrorOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	fmt.Fprintf(&sb, "    root((\"%s\"))\n", escapeLabel(name))

	ids := map[string]string{"": "root"}
	writeBranch(&sb, s, nil, ids)

	if overlay != nil && len(overlay.Errors) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef failed fill:#ffebee,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef unexpected fill:#fff8e1,stroke:#f9a825,stroke-dasharray:4,color:#000;\n")

		styled := make(map[string]bool)
		for i, e := range overlay.Errors {
			id, known := ids[schema.JoinPath(e.Path)]
			if !known {
				// Fields outside the schema only exist in the document.
				id = fmt.Sprintf("extra%d", i)
				parent := ids[schema.JoinPath(e.Path[:max(len(e.Path)-1, 0)])]
				if parent == "" {
					parent = "root"
				}
				fmt.Fprintf(&sb, "    %s -.-> %s>\"%s\"]\n", parent, id, escapeLabel(schema.JoinPath(e.Path)))
				fmt.Fprintf(&sb, "    class %s unexpected;\n", id)
				continue
			}
			if !styled[id] {
				styled[id] = true
				fmt.Fprintf(&sb, "    class %s failed;\n", id)
			}
		}
	}

	return sb.String()
}

func writeBranch(sb *strings.Builder, s schema.Schema, path []string, ids map[string]string) {
	parent := ids[schema.JoinPath(path)]
	for _, key := range slices.Sorted(maps.Keys(s)) {
		here := append(slices.Clone(path), key)
		id := fmt.Sprintf("n%d", len(ids))
		ids[schema.JoinPath(here)] = id

		switch n := s[key].(type) {
		case schema.Schema:
			fmt.Fprintf(sb, "    %s[[\"%s\"]]\n", id, escapeLabel(key))
			fmt.Fprintf(sb, "    %s --> %s\n", parent, id)
			writeBranch(sb, n, here, ids)
		default:
			fmt.Fprintf(sb, "    %s[\"%s: %s\"]\n", id, escapeLabel(key), escapeLabel(schema.Describe(n)))
			fmt.Fprintf(sb, "    %s --> %s\n", parent, id)
		}
	}
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
