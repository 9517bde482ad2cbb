// Package store opens the local SQLite database that backs the journal cache
// and wires the repositories on top of it.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophjournal/internal/client/migrations"
	"github.com/dmitrijs2005/gophjournal/internal/client/repositories/chunks"
	"github.com/dmitrijs2005/gophjournal/internal/client/repositories/metadata"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Repositories groups the local stores.
type Repositories struct {
	Chunks   chunks.Repository
	Metadata metadata.Repository
}

// NewRepositories builds repositories over an opened database.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Chunks:   chunks.NewSQLiteRepository(db),
		Metadata: metadata.NewSQLiteRepository(db),
	}
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate local cache: %w", err)
	}
	return nil
}

// InitDatabase opens the database at dsn and migrates it. The connection
// pool is limited to one connection so in-memory databases stay coherent
// and SQLite never sees concurrent writers from this process.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", dsn, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", dsn, err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
