// Package sqlite implements the default, file-backed schedule store on top of
// the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// ErrConnectionClosed indicates the database handle is closed.
var ErrConnectionClosed = errors.New("sqlite: database is closed")

// DefaultPath is the database file used when none is configured.
const DefaultPath = "schedule.db"

// Config holds SQLite configuration.
type Config struct {
	// Path is the database file. ":memory:" keeps everything in memory.
	Path string

	// BusyTimeoutMS is how long a statement waits on a locked database.
	BusyTimeoutMS int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Path:          DefaultPath,
		BusyTimeoutMS: 5000,
	}
}

// DSN returns the driver connection string with foreign keys enforced.
func (c Config) DSN() string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", c.BusyTimeoutMS))
	return "file:" + c.Path + "?" + q.Encode()
}

// Connection wraps a *sql.DB limited to a single connection.
// SQLite serializes writers anyway; one connection also keeps ":memory:"
// databases alive across calls.
type Connection struct {
	db     *sql.DB
	closed bool
	mu     sync.RWMutex
}

// Open opens (creating if needed) the database described by cfg.
func Open(ctx context.Context, cfg Config) (*Connection, error) {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}

	if cfg.Path != ":memory:" {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite: failed to create directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to ping database: %w", err)
	}

	return &Connection{db: db}, nil
}

// Close closes the database.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	return c.db.Close()
}

// DB returns the underlying handle.
func (c *Connection) DB() *sql.DB {
	return c.db
}

// WithTx executes fn within a transaction.
// The transaction is committed if fn returns nil, rolled back otherwise.
func (c *Connection) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrConnectionClosed
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit error: %w", err)
	}

	return nil
}
