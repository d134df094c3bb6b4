// Package store persists sample sets and measurement records with their
// extended analysis attributes in a single SQLite file.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrNotFound is returned when a requested set or measurement is absent.
var ErrNotFound = errors.New("not found")

// Options configures a Store.
type Options struct {
	// RetryDelay is the pause before the single retry of an operation that
	// failed with a busy or locked database.
	RetryDelay time.Duration
	// Logger receives schema and retry events. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns default store options.
func DefaultOptions() Options {
	return Options{
		RetryDelay: 250 * time.Millisecond,
	}
}

// Store is the durable record store.
type Store struct {
	db     *sql.DB
	path   string
	opts   Options
	logger *slog.Logger
}

// Open opens or creates the database at path and initializes its schema.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	if path == "" {
		return nil, models.NewValidationError("path", "", "database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, models.NewStorageError("open", fmt.Errorf("create dirs: %w", err), false)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, models.NewStorageError("open", err, false)
	}
	// One connection: operations are sequential and single-row.
	db.SetMaxOpenConns(1)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{db: db, path: path, opts: opts, logger: logger.With("component", "store")}
	if err := s.InitializeSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle. Later calls fail with a StorageError.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return models.NewStorageError("ping", err, isTransient(err))
	}
	return nil
}

// withRetry runs fn and retries it once after RetryDelay when it failed with
// a busy or locked database. Validation and not-found errors pass through;
// other failures become a StorageError.
func (s *Store) withRetry(ctx context.Context, op string, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	if isTransient(err) {
		s.logger.Warn("database busy, retrying", "op", op, "delay", s.opts.RetryDelay, "error", err)
		timer := time.NewTimer(s.opts.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return models.NewStorageError(op, ctx.Err(), true)
		case <-timer.C:
		}
		err = fn()
		if err == nil {
			return nil
		}
	}
	if errors.Is(err, models.ErrValidation) || errors.Is(err, ErrNotFound) || errors.Is(err, models.ErrStorage) {
		return err
	}
	return models.NewStorageError(op, err, isTransient(err))
}

// isTransient reports whether err is a busy or locked condition.
func isTransient(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}

const timeLayout = "2006-01-02 15:04:05"

var nowFunc = time.Now

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

// parseTime accepts the driver's time.Time or the text forms written by
// this package and by older tools.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05.999999999"} {
			if parsed, err := time.ParseInLocation(layout, t, time.Local); err == nil {
				return parsed
			}
		}
	case []byte:
		return parseTime(string(t))
	}
	return time.Time{}
}
