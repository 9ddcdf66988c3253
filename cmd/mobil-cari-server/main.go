// Package main provides the mobil-cari server binary.
// The server exposes an HTTP API for used car recommendations over an
// Indonesian-language catalog.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mobilcari/mobil-cari/internal/config"
	"github.com/mobilcari/mobil-cari/internal/pkg/logger"
	"github.com/mobilcari/mobil-cari/internal/server"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mobil-cari-server",
		Short: "Mobil Cari Server - used car recommendation API",
		Long: `Mobil Cari Server answers free-text Indonesian queries about used cars
with ranked, explainable recommendations.

The server exposes:
  - POST /api/recommend       structured recommendations
  - POST /api/tanya           conversational answer (requires Ollama)
  - POST /api/dataset/reload  reload the catalog CSV
  - POST /api/index           rebuild the vector index
  - GET  /api/health          liveness and dependency status

Examples:
  mobil-cari-server                          # Start with defaults
  mobil-cari-server --port 9090              # Custom HTTP port
  mobil-cari-server --dataset data/cars.csv  # Custom catalog
  mobil-cari-server --no-ml                  # Filter-only mode`,
		RunE:         runServer,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringP("config", "c", "", "config file path")
	rootCmd.Flags().BoolP("verbose", "v", false, "verbose logging")
	rootCmd.Flags().IntP("port", "p", 0, "HTTP server port (overrides config)")
	rootCmd.Flags().String("host", "", "server host (overrides config)")
	rootCmd.Flags().String("dataset", "", "catalog CSV path (overrides config)")
	rootCmd.Flags().Bool("no-ml", false, "disable similarity retrieval (filter-only)")
	rootCmd.Flags().Bool("no-narrative", false, "disable the conversational endpoint")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mobil-cari-server %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Port = port
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Host = host
	}
	if path, _ := cmd.Flags().GetString("dataset"); path != "" {
		cfg.Dataset.Path = path
	}
	if noML, _ := cmd.Flags().GetBool("no-ml"); noML {
		cfg.EnableML = false
	}
	if noNarrative, _ := cmd.Flags().GetBool("no-narrative"); noNarrative {
		cfg.EnableNarrative = false
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	log.Info("starting mobil-cari server",
		"version", version,
		"addr", cfg.Addr(),
		"dataset", cfg.Dataset.Path,
		"ml", cfg.EnableML,
	)

	server.Version = version
	srv, err := server.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		log.Info("received signal, shutting down", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return srv.Stop(ctx)
}
