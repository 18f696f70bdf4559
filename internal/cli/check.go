package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/conform"
	"github.com/aretw0/conform/internal/presentation/report"
	"github.com/aretw0/conform/internal/presentation/tui"
	"github.com/aretw0/conform/pkg/domain"
)

// Output formats for reports.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// CheckOptions controls a single check run.
type CheckOptions struct {
	// Schema names a registered definition. When empty, Definition is read
	// from disk and registered under its file name.
	Schema     string
	Definition string
	Document   string
	AllowExtra bool
	Stdin      io.Reader
}

// Check validates one document and returns the report.
func Check(ctx context.Context, eng *conform.Engine, opts CheckOptions) (*domain.Report, error) {
	name := opts.Schema
	if name == "" {
		if opts.Definition == "" {
			return nil, fmt.Errorf("a definition file or schema name is required")
		}
		source, err := os.ReadFile(opts.Definition)
		if err != nil {
			return nil, fmt.Errorf("failed to read definition: %w", err)
		}
		name = DefinitionName(opts.Definition)
		if err := eng.Register(ctx, name, source); err != nil {
			return nil, err
		}
	}

	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	doc, err := ReadDocument(opts.Document, stdin)
	if err != nil {
		return nil, err
	}

	return eng.Validate(ctx, name, doc, conform.AllowExtra(opts.AllowExtra))
}

// WriteReport prints r to w in the given format. Markdown is rendered with
// glamour when w is a terminal.
func WriteReport(w io.Writer, r *domain.Report, format string) error {
	switch format {
	case FormatText, "":
		_, err := io.WriteString(w, report.Text(r))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatMarkdown:
		md := report.Markdown(r)
		if tui.IsTerminal(w) {
			rendered, err := tui.NewRenderer(tui.Width(w, 80))(md)
			if err == nil {
				md = rendered
			}
		}
		_, err := io.WriteString(w, md)
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}
