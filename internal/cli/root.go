// Package cli holds the cobra commands of the ledger binary.
package cli

import (
	"context"
	"fmt"
	"os"

	"invoice-ledger-backend/internal/config"
	"invoice-ledger-backend/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "invoice-ledger",
	Short: "Invoice ledger backend",
	Long: `Invoice ledger backend keeps invoice totals consistent with their line
items and payments and serves them over an HTTP API.

Configuration is read from the environment (and a .env file if present).
DATABASE_URL is required by every command.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// deps is what every command needs before doing work.
type deps struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func bootstrap() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	return &deps{cfg: cfg, log: log, db: db}, nil
}

func (rt *deps) close() {
	if sqlDB, err := rt.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = rt.log.Sync()
}
