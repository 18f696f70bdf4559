package main

import (
	"fmt"
	"os"

	"github.com/aretw0/conform/internal/cli"
	"github.com/aretw0/conform/internal/presentation/graph"
	"github.com/aretw0/conform/pkg/definition"
	"github.com/aretw0/conform/pkg/registry"
	"github.com/aretw0/conform/pkg/schema"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <definition> [document]",
	Short: "Export the schema tree as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart of a definition's fields and rules.
When a document is given, the fields it fails are highlighted.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		source, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		s, err := definition.Parse(source, definition.WithRegistry(registry.NewRegistry()))
		if err != nil {
			return err
		}

		var overlay *graph.ErrorOverlay
		if len(args) == 2 {
			doc, err := cli.ReadDocument(args[1], cmd.InOrStdin())
			if err != nil {
				return err
			}
			errs, err := schema.Check(s, doc, schema.WithExtraProperties(cfg.AllowExtra))
			if err != nil {
				return err
			}
			overlay = &graph.ErrorOverlay{Errors: errs}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(cli.DefinitionName(args[0]), s, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
