// Package repositories wires the local database: it opens the sqlite file,
// applies migrations and hands out repository instances.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/bookmarksync/internal/repositories/bookmarks"
	"github.com/dmitrijs2005/bookmarksync/internal/repositories/migrations"
)

// Repositories groups the store interfaces backed by one database handle.
type Repositories struct {
	Bookmarks bookmarks.Repository
	DB        *sql.DB
}

// RunMigrations brings the schema up to date.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the bookmark database at dsn,
// applies migrations and returns the repositories. The caller owns closing
// Repositories.DB.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repositories{
		Bookmarks: bookmarks.NewSQLiteRepository(db),
		DB:        db,
	}, nil
}
