package cache

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"

	"github.com/snowq-dev/snowq/internal/schema"
)

//go:embed schema.sql
var schemaSQL string

// Store is a SQLite-backed Cache. It gives schema reuse across process
// restarts; the serialized PathSchema round-trips through JSON.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Open creates or opens a SQLite cache database at the given path.
// Applies required pragmas and the cache schema automatically; safe to
// call repeatedly. A non-positive TTL falls back to DefaultTTL.
func Open(path string, ttl time.Duration) (*Store, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to cache database: %w", err)
	}

	// SQLite only supports one writer at a time; keep a single connection
	// to avoid SQLITE_BUSY errors.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply cache schema: %w", err)
	}

	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get implements Cache. Expired rows count as misses and are purged lazily.
func (s *Store) Get(ctx context.Context, key Key) (*schema.PathSchema, bool, error) {
	var payload string
	var storedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT schema_json, stored_at FROM schema_cache WHERE table_name = ? AND column_name = ?`,
		key.Table, key.Column,
	).Scan(&payload, &storedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}

	if s.now().Sub(time.Unix(storedAt, 0)) >= s.ttl {
		_, _ = s.db.ExecContext(ctx,
			`DELETE FROM schema_cache WHERE table_name = ? AND column_name = ?`,
			key.Table, key.Column)
		return nil, false, nil
	}

	var ps schema.PathSchema
	if err := json.Unmarshal([]byte(payload), &ps); err != nil {
		return nil, false, fmt.Errorf("decode cached schema: %w", err)
	}
	return &ps, true, nil
}

// Put implements Cache.
func (s *Store) Put(ctx context.Context, key Key, ps *schema.PathSchema) error {
	payload, err := json.Marshal(ps)
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO schema_cache (table_name, column_name, schema_json, stored_at) VALUES (?, ?, ?, ?)`,
		key.Table, key.Column, string(payload), s.now().Unix())
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}
