// Package config loads client settings from a TOML or YAML file, a .env
// file and FOXY_* environment variables, in increasing order of precedence.
package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/foxy/foxy-go/internal/common/logtrace"
	"github.com/foxy/foxy-go/pkg/auth"
	"github.com/foxy/foxy-go/pkg/cache"
	"github.com/foxy/foxy-go/pkg/cache/pgcache"
)

// FormatVersion is the config file format written by this version.
const FormatVersion = "0.1.0"

// Cache kinds.
const (
	CacheMemory   = "memory"
	CacheDisk     = "disk"
	CacheMixed    = "mixed"
	CachePostgres = "postgres"
)

// CacheConfig selects where tokens and resolver ids are kept.
type CacheConfig struct {
	Kind  string `toml:"kind" yaml:"kind" mapstructure:"FOXY_CACHE_KIND" validate:"oneof=memory disk mixed postgres"`
	Dir   string `toml:"dir" yaml:"dir,omitempty" mapstructure:"FOXY_CACHE_DIR"`
	DSN   string `toml:"dsn" yaml:"dsn,omitempty" mapstructure:"FOXY_CACHE_DSN" validate:"required_if=Kind postgres"`
	Table string `toml:"table" yaml:"table,omitempty" mapstructure:"FOXY_CACHE_TABLE"`
}

// Config holds every setting of the client and the CLI.
type Config struct {
	FormatVersion string `toml:"format_version" yaml:"format_version" mapstructure:"-" validate:"required,formatversion"`

	ClientID     string `toml:"client_id" yaml:"client_id,omitempty" mapstructure:"FOXY_API_CLIENT_ID"`
	ClientSecret string `toml:"client_secret" yaml:"client_secret,omitempty" mapstructure:"FOXY_API_CLIENT_SECRET"`
	RefreshToken string `toml:"refresh_token" yaml:"refresh_token,omitempty" mapstructure:"FOXY_API_REFRESH_TOKEN"`
	Endpoint     string `toml:"endpoint" yaml:"endpoint" mapstructure:"FOXY_API_URL" validate:"required,url"`
	APIVersion   string `toml:"api_version" yaml:"api_version" mapstructure:"FOXY_API_VERSION" validate:"required,apiversion"`

	LogLevel string `toml:"log_level" yaml:"log_level" mapstructure:"FOXY_LOG_LEVEL" validate:"loglevel"`
	Silent   bool   `toml:"silent" yaml:"silent" mapstructure:"FOXY_LOG_SILENT"`

	// Store secret used for link signing and SSO; the client secret is used when empty.
	StoreSecret string `toml:"store_secret" yaml:"store_secret,omitempty" mapstructure:"FOXY_STORE_SECRET"`
	// Webhook encryption key.
	WebhookKey string `toml:"webhook_key" yaml:"webhook_key,omitempty" mapstructure:"FOXY_WEBHOOK_KEY"`

	Cache CacheConfig `toml:"cache" yaml:"cache" mapstructure:",squash"`
}

// Default returns the settings used before any source is applied.
func Default() *Config {
	return &Config{
		FormatVersion: FormatVersion,
		Endpoint:      auth.DefaultEndpoint,
		APIVersion:    "1",
		LogLevel:      "error",
		Cache:         CacheConfig{Kind: CacheMemory},
	}
}

// Load reads file (skipped when empty), then the given env files (.env in
// the working directory when none are given), then the environment, and
// validates the result.
func Load(file string, envFiles ...string) (*Config, error) {
	cfg := Default()
	if file != "" {
		if err := cfg.decodeFile(file); err != nil {
			return nil, err
		}
	}

	if len(envFiles) == 0 {
		if cwd, err := os.Getwd(); err == nil {
			envFiles = []string{filepath.Join(cwd, ".env")}
		}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f) // a missing file is not an error
	}

	if err := cfg.applyEnv(os.Environ()); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(file string) error {
	content, err := os.ReadFile(file)
	if err != nil {
		return ErrReadConfig.MsgErr("unable to read config file "+file, err)
	}
	switch strings.ToLower(filepath.Ext(file)) {
	case ".toml":
		if _, err := toml.Decode(string(content), c); err != nil {
			return ErrParseConfig.MsgErr("unable to parse config file "+file, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, c); err != nil {
			return ErrParseConfig.MsgErr("unable to parse config file "+file, err)
		}
	default:
		return ErrUnsupportedFormat.Msg("unsupported config file extension: " + filepath.Ext(file))
	}
	return nil
}

// applyEnv overlays non-empty FOXY_* variables from environ onto c.
func (c *Config) applyEnv(environ []string) error {
	values := map[string]any{}
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || v == "" || !strings.HasPrefix(k, "FOXY_") {
			continue
		}
		values[k] = v
	}
	if len(values) == 0 {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           c,
	})
	if err != nil {
		return ErrParseConfig.Err(err)
	}
	if err := dec.Decode(values); err != nil {
		return ErrParseConfig.MsgErr("invalid environment", err)
	}
	return nil
}

// AuthOptions returns the options for auth.New and client.New. Missing
// credentials are reported by those constructors.
func (c *Config) AuthOptions(ctx context.Context) (auth.Options, error) {
	cc, err := c.OpenCache(ctx)
	if err != nil {
		return auth.Options{}, err
	}
	return auth.Options{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RefreshToken: c.RefreshToken,
		Endpoint:     c.Endpoint,
		Version:      c.APIVersion,
		Cache:        cc,
		Logger:       logtrace.New(c.LogOptions()),
	}, nil
}

// LogOptions returns the logger settings.
func (c *Config) LogOptions() logtrace.Options {
	return logtrace.Options{Level: c.LogLevel, Silent: c.Silent, Console: true}
}

// SigningSecret returns the secret for link signing and SSO.
func (c *Config) SigningSecret() string {
	if c.StoreSecret != "" {
		return c.StoreSecret
	}
	return c.ClientSecret
}

// OpenCache builds the configured cache provider. Postgres caches hold a
// connection pool; callers close them through io.Closer.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Kind {
	case "", CacheMemory:
		return cache.NewMemoryCache(), nil
	case CacheDisk:
		disk, err := cache.NewDiskCache(c.Cache.Dir)
		if err != nil {
			return nil, err
		}
		return disk, nil
	case CacheMixed:
		disk, err := cache.NewDiskCache(c.Cache.Dir)
		if err != nil {
			return nil, err
		}
		mixed, err := cache.NewMixedCache(cache.NewMemoryCache(), disk)
		if err != nil {
			return nil, err
		}
		return mixed, nil
	case CachePostgres:
		pg, err := pgcache.Open(ctx, pgcache.Options{
			DSN:    c.Cache.DSN,
			Table:  c.Cache.Table,
			Logger: logtrace.New(c.LogOptions()),
		})
		if err != nil {
			return nil, err
		}
		return pg, nil
	}
	return nil, ErrInvalidConfig.Msg("unknown cache kind: " + c.Cache.Kind)
}

// Redacted returns a copy safe to print: secrets are masked.
func (c *Config) Redacted() *Config {
	cp := *c
	cp.ClientSecret = mask(cp.ClientSecret)
	cp.RefreshToken = mask(cp.RefreshToken)
	cp.StoreSecret = mask(cp.StoreSecret)
	cp.WebhookKey = mask(cp.WebhookKey)
	cp.Cache.DSN = mask(cp.Cache.DSN)
	return &cp
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
