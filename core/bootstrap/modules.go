package bootstrap

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Storage is the shared infrastructure handed to seeders.
type Storage = *sqlx.DB

// Seeder loads data into storage after migrations have been applied.
type Seeder interface {
	Seed(ctx context.Context, storage Storage) error
}

// SeederFunc adapts a bare function to the Seeder interface.
type SeederFunc func(ctx context.Context, storage Storage) error

// Seed executes the underlying function.
func (f SeederFunc) Seed(ctx context.Context, storage Storage) error {
	return f(ctx, storage)
}

// Modules groups optional bootstrapping hooks.
type Modules struct {
	Seeders []Seeder
}
