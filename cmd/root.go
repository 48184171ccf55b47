package cmd

import (
	"fmt"
	"os"

	"reddit-archiver/core/config"
	"reddit-archiver/core/database"
	"reddit-archiver/core/logger"
	"reddit-archiver/core/reddit"
	"reddit-archiver/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// dbPath is the --db flag shared by the archiving commands; it overrides the
// configured SQLite path.
var dbPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "reddit-archiver",
	Short: "Reddit Account Archiver",
	Long: `Reddit Archiver stores an account's comments and posts in a local database.
It pulls recent history from the live API and reconciles GDPR data exports
to recover everything the API no longer serves.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Use the application's standard logger for error reporting
		// We default to console format to match user expectations (CLI tool)
		// We use "debug" level configuration to get ISO8601 timestamps (DevConfig) instead of Epoch (ProdConfig)
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			// Log the error with structured logger (Console encoding will make it pretty)
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

// setup wires the shared stack both archiving commands run on: config,
// logger, database and the sync service.
func setup() (*sync.Service, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(l)

	if dbPath != "" {
		cfg.Database.Driver = "sqlite"
		cfg.Database.Path = dbPath
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	api := reddit.NewClient(cfg.Reddit, l)
	store := sync.NewStore(db, l)
	service := sync.NewService(cfg.Sync, api, store, l)

	return service, l, nil
}

func init() {
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database file (overrides configured database)")
}
