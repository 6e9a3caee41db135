package pgcache

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTableName(t *testing.T) {
	for _, name := range []string{"foxy_cache", "cache.entries", "_t1"} {
		assert.NoError(t, ValidateTableName(name), name)
	}
	for _, name := range []string{"", "1table", "a.b.c", "drop table;", `x"y`} {
		assert.ErrorIs(t, ValidateTableName(name), ErrInvalidTable, name)
	}
}

func TestQuoteTable(t *testing.T) {
	assert.Equal(t, `"foxy_cache"`, QuoteTable("foxy_cache"))
	assert.Equal(t, `"cache"."entries"`, QuoteTable("cache.entries"))
}

func TestOpenRejectsBadTable(t *testing.T) {
	_, err := Open(context.Background(), Options{DSN: "postgres://localhost/none", Table: "bad-name"})
	assert.ErrorIs(t, err, ErrInvalidTable)
}

func TestCacheRoundTrip(t *testing.T) {
	dsn := os.Getenv("FOXY_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("FOXY_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	c, err := Open(ctx, Options{DSN: dsn, Table: "foxy_cache_test", Logger: zerolog.Nop()})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "fx_resolver_store", "123"))
	require.NoError(t, c.Set(ctx, "fx_resolver_store", "124"))
	v, ok, err := c.Get(ctx, "fx_resolver_store")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "124", v)

	_, ok, err = c.Get(ctx, "fx_missing_key")
	require.NoError(t, err)
	assert.False(t, ok)
}
