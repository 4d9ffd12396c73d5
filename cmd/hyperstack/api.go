package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/hyperstack/internal/config"
	"github.com/vovakirdan/hyperstack/internal/leaderboard"
	"github.com/vovakirdan/hyperstack/internal/storage"
)

var (
	flagEnvFile string
	flagAddr    string
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the leaderboard HTTP service",
	Long: `Start the HTTP service that registers players and records scores.

Settings are read from the environment, after loading --env when the
file exists:

  HYPERSTACK_ADDR     Listen address (or PORT)     default :3000
  HYPERSTACK_STORAGE  sqlite or mongo              default sqlite
  HYPERSTACK_DB       SQLite file                  default ~/.hyperstack/scores.db
  MONGODB_URI         MongoDB connection string
  MONGODB_DB          MongoDB database             default hyperstack
  CORS_ORIGIN         Allowed origin               default *
  HYPERSTACK_RELEASE  gin release mode (true/false)

Prometheus metrics are served at /metrics.

Examples:
  hyperstack api
  hyperstack api --addr :8080
  HYPERSTACK_STORAGE=mongo hyperstack api`,
	Run: runAPI,
}

func init() {
	apiCmd.Flags().StringVar(&flagEnvFile, "env", ".env", "Env file to load")
	apiCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (overrides HYPERSTACK_ADDR)")
}

func runAPI(cmd *cobra.Command, _ []string) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "hyperstack-api",
	})

	cfg, err := config.LoadServer(flagEnvFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flagAddr != "" {
		cfg.Addr = flagAddr
	}
	// An explicit --db wins over the environment.
	if cmd.Flags().Changed("db") {
		cfg.DBPath = flagDBPath
	}

	repo, err := openRepository(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("storage ready", "backend", cfg.Storage)

	server := leaderboard.NewServer(leaderboard.ServerOptions{
		Repo:       repo,
		CORSOrigin: cfg.CORSOrigin,
		Release:    cfg.Release,
		Logger:     logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.ListenAndServe(ctx, cfg.Addr); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func openRepository(cfg config.ServerConfig) (storage.Repository, error) {
	if cfg.Storage == config.StorageMongo {
		store, err := storage.OpenMongo(storage.MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDB,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return store, nil
}
