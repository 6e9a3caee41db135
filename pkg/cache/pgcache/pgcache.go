// Package pgcache implements cache.Cache on a PostgreSQL table, for deployments
// where several processes share resolver ids and access tokens.
package pgcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/foxy/foxy-go/pkg/cache"
)

// DefaultTable is the table used when Options.Table is empty.
const DefaultTable = "foxy_cache"

var validTableNameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

var (
	ErrInvalidTable = cache.ErrCache.New("invalid table name")
	ErrConnect      = cache.ErrCache.New("unable to connect to cache database")
)

// Options configures the cache.
type Options struct {
	DSN    string
	Table  string
	Logger zerolog.Logger
}

// Cache stores entries in a two column key/value table.
type Cache struct {
	db     *sql.DB
	table  string
	logger zerolog.Logger
}

var _ cache.Cache = (*Cache)(nil)

// ValidateTableName reports whether name can be used as a (schema qualified) table name.
func ValidateTableName(name string) error {
	if !validTableNameRegex.MatchString(name) {
		return ErrInvalidTable.Msg("invalid table name: " + name)
	}
	return nil
}

// QuoteTable quotes each component of a schema qualified table name.
func QuoteTable(name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return pq.QuoteIdentifier(name[:i]) + "." + pq.QuoteIdentifier(name[i+1:])
		}
	}
	return pq.QuoteIdentifier(name)
}

// Open connects to the database and creates the table if it does not exist.
func Open(ctx context.Context, opts Options) (*Cache, error) {
	table := opts.Table
	if table == "" {
		table = DefaultTable
	}
	if err := ValidateTableName(table); err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", opts.DSN)
	if err != nil {
		return nil, ErrConnect.Err(err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		opts.Logger.Error().Err(err).Msg("failed to ping cache database")
		return nil, ErrConnect.Err(err)
	}

	c := &Cache{db: db, table: QuoteTable(table), logger: opts.Logger}
	if err := c.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) migrate(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, c.table)
	if _, err := c.db.ExecContext(ctx, stmt); err != nil {
		return cache.ErrCacheWrite.MsgErr("unable to create cache table", err)
	}
	return nil
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := c.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, c.table), key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, cache.ErrCacheRead.Err(err)
	}
	return v, true, nil
}

func (c *Cache) Set(ctx context.Context, key, value string) error {
	stmt := fmt.Sprintf(`INSERT INTO %s (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, c.table)
	if _, err := c.db.ExecContext(ctx, stmt, key, value); err != nil {
		return cache.ErrCacheWrite.Err(err)
	}
	c.logger.Trace().Str("key", key).Msg("cache entry stored")
	return nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}
