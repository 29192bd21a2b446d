package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	*sqlStore
}

type SQLiteOptions struct {
	// MigrationsDir overrides the migrations compiled into the binary.
	MigrationsDir string
}

func NewSQLiteStore(ctx context.Context, path string, opts SQLiteOptions) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serialises writers and keeps transactions on one
	// handle.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	source, err := migrationsFS(sqliteDialect, opts.MigrationsDir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applyMigrations(ctx, db, sqliteDialect, source); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{sqlStore: &sqlStore{
		db:      db,
		dialect: sqliteDialect,
		timeArg: timeValueString,
	}}, nil
}
