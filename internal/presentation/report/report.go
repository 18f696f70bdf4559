// Package report formats validation reports for people.
package report

import (
	"fmt"
	"strings"

	"github.com/aretw0/conform/pkg/domain"
	"github.com/aretw0/conform/pkg/schema"
)

// Markdown renders r as a markdown document: a heading with the verdict and,
// when invalid, a table of failures followed by the combinator breakdowns.
func Markdown(r *domain.Report) string {
	var sb strings.Builder
	if r.Valid {
		fmt.Fprintf(&sb, "# ✅ `%s`: valid\n", r.Schema)
		return sb.String()
	}

	fmt.Fprintf(&sb, "# ❌ `%s`: %d %s\n\n", r.Schema, len(r.Errors), plural(len(r.Errors), "error", "errors"))
	sb.WriteString("| Field | Error |\n")
	sb.WriteString("|---|---|\n")
	for _, e := range r.Errors {
		fmt.Fprintf(&sb, "| `%s` | %s |\n", fieldOf(e), escapeCell(e.Message))
	}

	var details []schema.ValidationError
	for _, e := range r.Errors {
		if len(e.Errors) > 0 {
			details = append(details, e)
		}
	}
	if len(details) > 0 {
		sb.WriteString("\n## Details\n")
		for _, e := range details {
			fmt.Fprintf(&sb, "\n`%s`:\n", fieldOf(e))
			writeTree(&sb, e.Errors, 0)
		}
	}
	return sb.String()
}

// Text renders r as plain lines, one failure per line, nested failures indented.
func Text(r *domain.Report) string {
	var sb strings.Builder
	if r.Valid {
		fmt.Fprintf(&sb, "%s: valid\n", r.Schema)
		return sb.String()
	}
	fmt.Fprintf(&sb, "%s: %d %s\n", r.Schema, len(r.Errors), plural(len(r.Errors), "error", "errors"))
	for _, e := range r.Errors {
		fmt.Fprintf(&sb, "  %s: %s\n", fieldOf(e), e.Message)
		writeTree(&sb, e.Errors, 2)
	}
	return sb.String()
}

func writeTree(sb *strings.Builder, errs []schema.ValidationError, depth int) {
	for _, e := range errs {
		fmt.Fprintf(sb, "%s- %s\n", strings.Repeat("  ", depth), e.Message)
		writeTree(sb, e.Errors, depth+1)
	}
}

func fieldOf(e schema.ValidationError) string {
	if len(e.Path) == 0 {
		return "(root)"
	}
	return schema.JoinPath(e.Path)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
