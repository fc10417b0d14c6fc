package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"applyfollow-backend/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/lock"
)

// Migrate applies every pending goose migration in files and returns the
// versions it ran, in order. A Postgres advisory lock keeps concurrent
// instances from migrating at the same time.
func Migrate(ctx context.Context, pool *pgxpool.Pool, files fs.FS) ([]string, error) {
	locker, err := lock.NewPostgresSessionLocker()
	if err != nil {
		return nil, fmt.Errorf("migration lock: %w", err)
	}

	provider, err := newMigrationProvider(stdlib.OpenDBFromPool(pool), files, goose.WithSessionLocker(locker))
	if err != nil {
		return nil, err
	}
	// Releases the borrowed connections back to the pool.
	defer provider.Close()

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	ran := make([]string, 0, len(results))
	for _, res := range results {
		version := migrationName(res.Source)
		logger.Log.Info("migration applied", "version", version, "duration", res.Duration)
		ran = append(ran, version)
	}
	return ran, nil
}

func newMigrationProvider(db *sql.DB, files fs.FS, opts ...goose.ProviderOption) (*goose.Provider, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, files, opts...)
	if err != nil {
		return nil, fmt.Errorf("migration provider: %w", err)
	}
	return provider, nil
}

func migrationName(src *goose.Source) string {
	if src == nil {
		return ""
	}
	if src.Path == "" {
		return fmt.Sprintf("%05d", src.Version)
	}
	return strings.TrimSuffix(path.Base(src.Path), ".sql")
}
