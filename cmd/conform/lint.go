package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/conform/pkg/definition"
	"github.com/aretw0/conform/pkg/registry"
	"github.com/spf13/cobra"
)

var lintCmd = &cobra.Command{
	Use:   "lint <definition>...",
	Short: "Check definition files for mistakes",
	Long: `Checks each definition file against the definition meta schema and compiles it.
The CLI registers no custom validators, so $custom references are reported as errors.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := registry.NewRegistry()
		failed := 0
		for _, path := range args {
			source, err := os.ReadFile(path)
			if err == nil {
				_, err = definition.Parse(source, definition.WithRegistry(reg))
			}
			if err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "✘ %s\n", path)
				var lerr *definition.LintError
				if errors.As(err, &lerr) {
					for _, p := range lerr.Problems {
						fmt.Fprintf(cmd.ErrOrStderr(), "    %s\n", p)
					}
				} else {
					fmt.Fprintf(cmd.ErrOrStderr(), "    %v\n", err)
				}
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✔ %s\n", path)
		}
		if failed > 0 {
			return exitError{code: 1}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
}
