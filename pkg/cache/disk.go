package cache

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// DefaultDiskDir is the directory used by NewDiskCache when none is given.
var DefaultDiskDir = filepath.Join(os.TempDir(), "foxy-go")

var validKeyRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// DiskCache stores each entry in its own snappy framed file under a directory,
// so values survive process restarts.
type DiskCache struct {
	dir string
	mu  sync.RWMutex
}

// NewDiskCache returns a cache rooted at dir, creating the directory if needed.
func NewDiskCache(dir string) (*DiskCache, error) {
	if dir == "" {
		dir = DefaultDiskDir
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, ErrCacheWrite.Err(errors.Wrapf(err, "creating cache directory %s", dir))
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the directory holding the cache files.
func (c *DiskCache) Dir() string {
	return c.dir
}

func (c *DiskCache) path(key string) (string, error) {
	if !validKeyRegex.MatchString(key) {
		return "", ErrInvalidKey.Msg("invalid cache key: " + key)
	}
	return filepath.Join(c.dir, key+".sz"), nil
}

func (c *DiskCache) Get(_ context.Context, key string) (string, bool, error) {
	p, err := c.path(key)
	if err != nil {
		return "", false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, ErrCacheRead.Err(errors.Wrapf(err, "opening %s", p))
	}
	defer f.Close()

	data, err := io.ReadAll(snappy.NewReader(f))
	if err != nil {
		return "", false, ErrCacheRead.Err(errors.Wrapf(err, "decompressing %s", p))
	}
	return string(data), true, nil
}

func (c *DiskCache) Set(_ context.Context, key, value string) error {
	p, err := c.path(key)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := snappy.NewBufferedWriter(&buf)
	if _, err := w.Write([]byte(value)); err != nil {
		return ErrCacheWrite.Err(errors.Wrap(err, "compressing entry"))
	}
	if err := w.Close(); err != nil {
		return ErrCacheWrite.Err(errors.Wrap(err, "compressing entry"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return ErrCacheWrite.Err(errors.Wrapf(err, "writing %s", tmp))
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return ErrCacheWrite.Err(errors.Wrapf(err, "renaming %s", tmp))
	}
	return nil
}
