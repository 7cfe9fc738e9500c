package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/m3rciful/vocabot/core/bootstrap"
	"github.com/m3rciful/vocabot/core/logger"
	"github.com/m3rciful/vocabot/internal/app"
	"github.com/m3rciful/vocabot/internal/store"
)

var (
	importOwner   int64
	importFile    string
	importReplace bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import entries from a text file, one \"word — translation\" per line",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadStorageConfig()
		if err != nil {
			return err
		}

		f, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer f.Close()

		im := &app.Importer{Owner: importOwner, Source: f, Replace: importReplace}
		res, err := bootstrap.Run(cmd.Context(), bootstrap.Options{
			Config:     cfg.CoreConfig(),
			Database:   cfg.Database,
			Migrations: store.Migrations(),
			Modules:    bootstrap.Modules{Seeders: []bootstrap.Seeder{im}},
		})
		defer func() { _ = logger.Shutdown() }()
		if err != nil {
			return err
		}
		defer res.DB.Close()

		cmd.Printf("removed: %d\nsaved: %d\nskipped: %d\n", im.Removed, im.Saved, len(im.Skipped))
		for _, line := range im.Skipped {
			cmd.Printf("  %s\n", line)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().Int64Var(&importOwner, "owner", 0, "Telegram user id that owns the entries")
	importCmd.Flags().StringVar(&importFile, "file", "", "path to the text file")
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "delete the owner's entries before importing")
	_ = importCmd.MarkFlagRequired("owner")
	_ = importCmd.MarkFlagRequired("file")
}
