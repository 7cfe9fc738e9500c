package database

import (
	"fmt"
	"strings"
)

const (
	// DriverPostgres selects PostgreSQL through lib/pq.
	DriverPostgres = "postgres"
	// DriverSQLite selects an embedded SQLite file through modernc.org/sqlite.
	DriverSQLite = "sqlite"
)

// Config holds database connection settings shared across bots.
type Config struct {
	Driver         string `yaml:"driver" envconfig:"DB_DRIVER"`
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	Path           string `yaml:"path" envconfig:"DB_PATH"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// Normalize validates the driver specific fields and fills defaults.
func (c *Config) Normalize() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	switch c.Driver {
	case "", DriverPostgres, "postgresql", "pg":
		c.Driver = DriverPostgres
		if strings.TrimSpace(c.Host) == "" {
			return fmt.Errorf("database.host is required for postgres")
		}
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("database.name is required for postgres")
		}
		if c.Port == "" {
			c.Port = "5432"
		}
		if c.SSLMode == "" {
			c.SSLMode = "disable"
		}
		if c.MaxConnections <= 0 {
			c.MaxConnections = 10
		}
	case DriverSQLite, "sqlite3":
		c.Driver = DriverSQLite
		if strings.TrimSpace(c.Path) == "" {
			c.Path = "vocab.db"
		}
		// modernc sqlite serializes writers; a single connection avoids SQLITE_BUSY.
		c.MaxConnections = 1
	default:
		return fmt.Errorf("invalid database.driver %q; allowed: postgres, sqlite", c.Driver)
	}
	return nil
}

// DSN returns the database/sql data source name for the configured driver.
func (c Config) DSN() string {
	if c.Driver == DriverSQLite {
		return c.Path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// MigrateURL returns the golang-migrate database URL for the configured driver.
func (c Config) MigrateURL() string {
	if c.Driver == DriverSQLite {
		return "sqlite://" + c.Path
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}
