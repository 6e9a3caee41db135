package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	_, ok, err := c.Get(ctx, "fx_resolver_store")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "fx_resolver_store", "123"))
	require.NoError(t, c.Set(ctx, "fx_resolver_store", "124"))
	v, ok, err := c.Get(ctx, "fx_resolver_store")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "124", v)
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCacheConcurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			_ = c.Set(ctx, key, fmt.Sprint(i))
			_, _, _ = c.Get(ctx, key)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 4, c.Len())
}

func TestDiskCache(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested")
	c, err := NewDiskCache(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, c.Dir())

	_, ok, err := c.Get(ctx, "fx_auth_access_token")
	require.NoError(t, err)
	assert.False(t, ok)

	token := `{"value":"abc","expiresAt":1700000000000}`
	require.NoError(t, c.Set(ctx, "fx_auth_access_token", token))
	_, err = os.Stat(filepath.Join(dir, "fx_auth_access_token.sz"))
	require.NoError(t, err)

	// a second instance over the same directory sees the entry
	other, err := NewDiskCache(dir)
	require.NoError(t, err)
	v, ok, err := other.Get(ctx, "fx_auth_access_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, token, v)
}

func TestDiskCacheInvalidKey(t *testing.T) {
	c, err := NewDiskCache(t.TempDir())
	require.NoError(t, err)
	err = c.Set(context.Background(), "../escape", "x")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, _, err = c.Get(context.Background(), "a/b")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestDiskCacheCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c, err := NewDiskCache(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.sz"), []byte("not snappy"), 0o600))
	_, ok, err := c.Get(context.Background(), "broken")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrCacheRead)
}

type failingCache struct{}

var errFailing = errors.New("unavailable")

func (failingCache) Get(context.Context, string) (string, bool, error) { return "", false, errFailing }
func (failingCache) Set(context.Context, string, string) error         { return errFailing }

func TestMixedCache(t *testing.T) {
	ctx := context.Background()
	first := NewMemoryCache()
	second := NewMemoryCache()
	c, err := NewMixedCache(first, nil, second)
	require.NoError(t, err)

	require.NoError(t, second.Set(ctx, "fx_resolver_user", "456"))
	v, ok, err := c.Get(ctx, "fx_resolver_user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "456", v)

	require.NoError(t, c.Set(ctx, "fx_resolver_store", "123"))
	for _, p := range []*MemoryCache{first, second} {
		v, ok, err := p.Get(ctx, "fx_resolver_store")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "123", v)
	}

	_, err = NewMixedCache()
	assert.ErrorIs(t, err, ErrNoProviders)
}

func TestMixedCacheProviderFailure(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryCache()
	c, err := NewMixedCache(failingCache{}, mem)
	require.NoError(t, err)

	err = c.Set(ctx, "k", "v")
	assert.ErrorIs(t, err, errFailing)
	v, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	only, err := NewMixedCache(failingCache{})
	require.NoError(t, err)
	_, _, err = only.Get(ctx, "k")
	assert.ErrorIs(t, err, errFailing)
}
