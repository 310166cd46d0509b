// Package sqlite implements db.Store over an SQLite database with FTS5.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kailas-cloud/reportdex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for an SQLite store.
type Config struct {
	DSN          string
	MaxOpenConns int
	AutoMigrate  bool
}

// Store implements db.Store via database/sql.
type Store struct {
	db *sql.DB
}

// Open opens the database and, when configured, applies pending migrations.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	sqlDB, err := openDatabase(ctx, cfg.DSN, cfg.MaxOpenConns)
	if err != nil {
		return nil, &db.Error{Op: db.OpOpen, Err: err}
	}
	if cfg.AutoMigrate {
		if err := Migrate(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, &db.Error{Op: db.OpMigrate, Err: err}
		}
	}
	return &Store{db: sqlDB}, nil
}

func openDatabase(ctx context.Context, dsn string, maxOpen int) (*sql.DB, error) {
	sqlDB, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, err
	}

	// WAL lets readers proceed while the corpus is being reloaded.
	if _, err := sqlDB.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if maxOpen <= 0 {
		maxOpen = 4
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	sqlDB.SetConnMaxLifetime(0)

	return sqlDB, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Read runs fn inside a read-only transaction. The transaction is always
// rolled back or committed before Read returns.
func (s *Store) Read(ctx context.Context, fn func(q db.Querier) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return &db.Error{Op: db.OpBegin, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(querier{tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return &db.Error{Op: db.OpCommit, Err: err}
	}
	return nil
}

// Exec runs a write statement outside of Read. The service itself never
// writes; this is used to load fixtures and by offline tooling.
func (s *Store) Exec(ctx context.Context, query string, args ...any) error {
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return &db.Error{Op: db.OpQuery, Err: err}
	}
	return nil
}

// sqlQuerier is satisfied by both *sql.DB and *sql.Tx.
type sqlQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type querier struct {
	q sqlQuerier
}

func (q querier) Query(ctx context.Context, query string, args ...any) ([]db.Row, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	defer func() { _ = rows.Close() }()

	out, err := scanRows(rows)
	if err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}
	return out, nil
}

func scanRows(rows *sql.Rows) ([]db.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []db.Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(db.Row, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
