package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStore struct {
	*sqlStore
}

type PostgresOptions struct {
	MigrationsDir string
	MaxOpenConns  int
}

func NewPostgresStore(ctx context.Context, dsn string, opts PostgresOptions) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	source, err := migrationsFS(postgresDialect, opts.MigrationsDir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applyMigrations(ctx, db, postgresDialect, source); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{sqlStore: &sqlStore{
		db:      db,
		dialect: postgresDialect,
		timeArg: func(t time.Time) any { return t.UTC() },
	}}, nil
}
