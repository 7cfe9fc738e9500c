package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/vocabot/core/config"
	coretelegram "github.com/m3rciful/vocabot/core/telegram"
)

type carrier struct{ cfg *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

type app struct{}

func (app) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{}, nil
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("VOCAB_CONFIG", "")
	_, err := ResolveConfigPath(Options{ConfigEnvVar: "VOCAB_CONFIG"})
	assert.Error(t, err)

	p, err := ResolveConfigPath(Options{ConfigEnvVar: "VOCAB_CONFIG", DefaultConfigPath: "config.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", p)

	t.Setenv("VOCAB_CONFIG", "/etc/vocab.yaml")
	p, err = ResolveConfigPath(Options{ConfigEnvVar: "VOCAB_CONFIG", DefaultConfigPath: "config.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "/etc/vocab.yaml", p)

	p, err = ResolveConfigPath(Options{ConfigPath: "flag.yaml", ConfigEnvVar: "VOCAB_CONFIG"})
	require.NoError(t, err)
	assert.Equal(t, "flag.yaml", p)
}

func TestRunWiresLifecycleHooks(t *testing.T) {
	var loaded string
	var started bool
	err := Run(Options{
		ConfigPath: "test.yaml",
		LoadConfig: func(path string) (ConfigCarrier, error) {
			loaded = path
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(context.Context, ConfigCarrier) (TelegramApp, error) {
			return app{}, nil
		},
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			require.NotNil(t, opts.OnStart)
			require.NotNil(t, opts.OnStop)
			started = opts.OnStart(ctx, coretelegram.Runtime{}) == nil
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "test.yaml", loaded)
	assert.True(t, started)
}

func TestRunRejectsMissingCoreConfig(t *testing.T) {
	err := Run(Options{
		ConfigPath: "x.yaml",
		LoadConfig: func(string) (ConfigCarrier, error) { return carrier{}, nil },
		Bootstrap: func(context.Context, ConfigCarrier) (TelegramApp, error) {
			t.Fatal("bootstrap must not run")
			return nil, nil
		},
	})
	assert.Error(t, err)
}
