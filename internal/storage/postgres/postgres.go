package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/gocraft/dbr/v2"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Store owns the archived_jobs relation. The connection is created by the
// composition root and closed at shutdown; nothing re-initializes it.
type Store struct {
	conn   *dbr.Connection
	sess   *dbr.Session
	logger *zap.Logger
}

func New(dsn string, logger *zap.Logger) (*Store, error) {
	conn, err := dbr.Open("postgres", dsn, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// set up connection pool
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	// check connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{
		conn:   conn,
		sess:   conn.NewSession(nil),
		logger: logger,
	}

	if err := store.migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info("successfully connected to PostgreSQL")

	return store, nil
}

// NewWithConnection wraps an already opened connection. Used by tests to run
// the store against the sqlite dialect.
func NewWithConnection(conn *dbr.Connection, logger *zap.Logger) (*Store, error) {
	store := &Store{
		conn:   conn,
		sess:   conn.NewSession(nil),
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.migrate(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// migrate creates the archive table. The DDL sticks to types both the
// postgres and sqlite dialects accept.
func (s *Store) migrate(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS archived_jobs (
			id             TEXT PRIMARY KEY,
			title          TEXT NOT NULL,
			company        TEXT NOT NULL,
			salary         TEXT,
			level          TEXT NOT NULL,
			format         TEXT NOT NULL,
			url            TEXT NOT NULL,
			description    TEXT,
			requirements   TEXT,
			benefits       TEXT,
			location       TEXT,
			published_at   TEXT,
			archived_at    TIMESTAMP NOT NULL,
			archive_reason TEXT
		)
	`

	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create archived_jobs table: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

// Ping reports whether the database is still reachable. The status endpoint
// uses it to decide if the archive is actually available.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}
