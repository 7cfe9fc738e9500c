package main

import (
	"github.com/spf13/cobra"

	coredatabase "github.com/m3rciful/vocabot/core/database"
	"github.com/m3rciful/vocabot/core/logger"
	"github.com/m3rciful/vocabot/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadStorageConfig()
		if err != nil {
			return err
		}
		if err := logger.InitLogger(cfg.CoreConfig()); err != nil {
			return err
		}
		defer func() { _ = logger.Shutdown() }()

		if err := coredatabase.RunMigrations(cfg.Database, store.Migrations()); err != nil {
			return err
		}
		cmd.Println("migrations applied")
		return nil
	},
}
