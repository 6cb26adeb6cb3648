// Command orderdesk runs maintenance tasks against the order database.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"orderdesk/internal/config"
	"orderdesk/internal/database"
	"orderdesk/internal/logger"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "orderdesk",
		Short:         "Order verification dashboard maintenance",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env holds what every subcommand needs
type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *sql.DB
}

func (e *env) close() {
	e.db.Close()
	_ = e.log.Sync()
}

func setup(ctx context.Context) (*env, error) {
	// Load .env file (ignore error if not present)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewForEnvironment(cfg.Env, cfg.Log.Level)

	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, log: log, db: db}, nil
}
