// Package config loads the vocabot configuration: the shared bot core settings
// plus the database and dictionary sections.
package config

import (
	"fmt"

	coreconfig "github.com/m3rciful/vocabot/core/config"
	coredatabase "github.com/m3rciful/vocabot/core/database"
)

// VocabConfig tunes the dictionary views and flows.
type VocabConfig struct {
	PageSize             int `yaml:"page_size" envconfig:"VOCAB_PAGE_SIZE"`
	SearchTokensPerOwner int `yaml:"search_tokens_per_owner" envconfig:"VOCAB_SEARCH_TOKENS_PER_OWNER"`
	BulkPreview          int `yaml:"bulk_preview" envconfig:"VOCAB_BULK_PREVIEW"`
	EditMatches          int `yaml:"edit_matches" envconfig:"VOCAB_EDIT_MATCHES"`
}

const (
	defaultPageSize       = 15
	defaultTokensPerOwner = 32
	defaultBulkPreview    = 5
	defaultEditMatches    = 10
)

// Normalize fills defaults and rejects negative values.
func (v *VocabConfig) Normalize() error {
	if v.PageSize < 0 || v.SearchTokensPerOwner < 0 || v.BulkPreview < 0 || v.EditMatches < 0 {
		return fmt.Errorf("vocab settings must not be negative")
	}
	if v.PageSize == 0 {
		v.PageSize = defaultPageSize
	}
	if v.PageSize > 50 {
		return fmt.Errorf("vocab.page_size must be <= 50")
	}
	if v.SearchTokensPerOwner == 0 {
		v.SearchTokensPerOwner = defaultTokensPerOwner
	}
	if v.BulkPreview == 0 {
		v.BulkPreview = defaultBulkPreview
	}
	if v.EditMatches == 0 {
		v.EditMatches = defaultEditMatches
	}
	// Telegram allows at most 100 inline buttons per message.
	if v.EditMatches > 50 {
		return fmt.Errorf("vocab.edit_matches must be <= 50")
	}
	return nil
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Vocab    VocabConfig         `yaml:"vocab"`
}

// CoreConfig exposes the embedded core section.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads the YAML file at path, overlays environment variables and validates the result.
func Load(path string) (*Config, error) {
	cfg, err := Parse(path)
	if err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadStorage is Load without the Telegram checks, for commands that only touch the database.
func LoadStorage(path string) (*Config, error) {
	return Parse(path)
}

// Parse reads and overlays configuration, validating only the database and vocab sections.
func Parse(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Database.Normalize(); err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if err := cfg.Vocab.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
