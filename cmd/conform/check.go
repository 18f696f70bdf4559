package main

import (
	"os"

	"github.com/aretw0/conform"
	"github.com/aretw0/conform/internal/cli"
	"github.com/aretw0/conform/internal/presentation/tui"
	"github.com/aretw0/conform/pkg/adapters/memory"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <definition> <document>",
	Short: "Validate a document against a definition file",
	Long: `Validates a JSON or YAML document against a schema definition file.
Use "-" as the document to read it from stdin.

Exit status is 0 when the document conforms, 1 when it does not and 2 on errors.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		quiet, _ := cmd.Flags().GetBool("quiet")

		eng := conform.New(memory.NewRepository(), conform.WithLogger(logger))
		report, err := cli.Check(cmd.Context(), eng, cli.CheckOptions{
			Definition: args[0],
			Document:   args[1],
			AllowExtra: cfg.AllowExtra,
			Stdin:      cmd.InOrStdin(),
		})
		if err != nil {
			return err
		}

		if !quiet {
			if err := cli.WriteReport(cmd.OutOrStdout(), report, format); err != nil {
				return err
			}
		}
		tui.Status(os.Stderr, report.Valid, args[1], report.Schema, len(report.Errors))

		if !report.Valid {
			return exitError{code: 1}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringP("format", "f", cli.FormatText, "Report format: text, json or markdown")
	checkCmd.Flags().BoolP("quiet", "q", false, "Only print the verdict line")
}
