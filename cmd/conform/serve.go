package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aretw0/conform/internal/cli"
	httpAdapter "github.com/aretw0/conform/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP validation service",
	Long: `Starts the conform engine as a JSON API over HTTP.
Definitions are stored with the configured driver (memory, file, redis or sqlite)
and the files in schemas_dir are registered at startup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.HTTP.Port, _ = cmd.Flags().GetString("port")
		}
		if cmd.Flags().Changed("store") {
			cfg.Store.Driver, _ = cmd.Flags().GetString("store")
		}
		if cmd.Flags().Changed("dir") {
			cfg.Store.Dir, _ = cmd.Flags().GetString("dir")
		}
		if cmd.Flags().Changed("redis-addr") {
			cfg.Store.Redis.Addr, _ = cmd.Flags().GetString("redis-addr")
		}
		if cmd.Flags().Changed("db") {
			cfg.Store.SQLite.Path, _ = cmd.Flags().GetString("db")
		}
		if cmd.Flags().Changed("schemas") {
			cfg.SchemasDir, _ = cmd.Flags().GetString("schemas")
		}
		if cmd.Flags().Changed("read-only") {
			cfg.Store.ReadOnly, _ = cmd.Flags().GetBool("read-only")
		}
		if cmd.Flags().Changed("metrics") {
			cfg.HTTP.Metrics, _ = cmd.Flags().GetBool("metrics")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		rt, err := cli.NewRuntime(sc, cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		opts := []httpAdapter.HandlerOption{httpAdapter.WithLogger(logger)}
		if cfg.HTTP.Metrics {
			opts = append(opts, httpAdapter.WithMetrics(rt.Metrics.Handler()))
		}

		srv := &http.Server{
			Addr:              ":" + cfg.HTTP.Port,
			Handler:           httpAdapter.NewHandler(rt.Engine, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting conform server", "addr", srv.Addr, "store", cfg.Store.Driver)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-sc.Done():
			logger.Info("shutting down", "signal", sc.Signal())
		}

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
			return srv.Close()
		}
		logger.Info("conform server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("store", "memory", "Definition store: memory, file, redis or sqlite")
	serveCmd.Flags().String("dir", "schemas", "Directory used by the file store")
	serveCmd.Flags().String("redis-addr", "localhost:6379", "Redis address used by the redis store")
	serveCmd.Flags().String("db", "conform.db", "Database file used by the sqlite store")
	serveCmd.Flags().String("schemas", "", "Directory of definitions to register at startup")
	serveCmd.Flags().Bool("read-only", false, "Reject schema registration and deletion")
	serveCmd.Flags().Bool("metrics", false, "Expose Prometheus metrics on /metrics")
}
