package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	corecmd "github.com/m3rciful/vocabot/core/cmd"
	"github.com/m3rciful/vocabot/internal/app"
	"github.com/m3rciful/vocabot/internal/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot (long polling or webhook)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return corecmd.Run(runnerOptions())
	},
}

func runnerOptions() corecmd.Options {
	return corecmd.Options{
		ConfigPath:        configFile,
		ConfigEnvVar:      configEnvVar,
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: func(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			appCfg, ok := cfg.(*config.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", cfg)
			}
			return app.Bootstrap(ctx, appCfg)
		},
	}
}

// loadStorageConfig resolves the config path like run does and loads it without Telegram checks.
func loadStorageConfig() (*config.Config, error) {
	path, err := corecmd.ResolveConfigPath(runnerOptions())
	if err != nil {
		return nil, err
	}
	return config.LoadStorage(path)
}
