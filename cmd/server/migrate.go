package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mmynk/tripledger/internal/config"
	"github.com/mmynk/tripledger/internal/storage/sqlite"
	"github.com/mmynk/tripledger/pkg/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the SQLite schema and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logging.SetupWithOptions(cfg.LogLevel, cfg.LogFormat)

		if cfg.StorageBackend != config.BackendSQLite {
			return fmt.Errorf("migrate needs STORAGE_BACKEND=%s, got %s", config.BackendSQLite, cfg.StorageBackend)
		}
		// Opening the store applies pending migrations.
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			slog.Error("Migration failed", "database", cfg.DBPath, "error", err)
			return err
		}
		slog.Info("Schema is up to date", "database", cfg.DBPath)
		return store.Close()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
