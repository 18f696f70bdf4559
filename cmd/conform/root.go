package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/conform/internal/cli"
	"github.com/aretw0/conform/internal/config"
	"github.com/spf13/cobra"
)

// exitError carries a process exit code through cobra without printing anything.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

var rootCmd = &cobra.Command{
	Use:   "conform",
	Short: "Conform validates documents against declarative schemas",
	Long: `Conform checks JSON and YAML documents against schema definitions written
as plain YAML or JSON. It runs as a one-shot CLI, an HTTP service or an MCP server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if ee, ok := err.(exitError); ok {
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a conform.yaml configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides the config file)")
	rootCmd.PersistentFlags().Bool("allow-extra", false, "Accept document fields the schema does not declare")
}

// loadConfig reads the --config file and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("allow-extra") {
		cfg.AllowExtra, _ = cmd.Flags().GetBool("allow-extra")
	}

	logger, err := cli.NewLogger(cfg)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}
