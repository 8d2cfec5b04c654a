// Package config loads the memocached configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/memocache/codec"
	"github.com/unkn0wn-root/memocache/internal/greeting"
)

// Store backends.
const (
	StoreMemory    = "memory"
	StoreRistretto = "ristretto"
	StoreBigCache  = "bigcache"
)

// Log backends.
const (
	LogZap    = "zap"
	LogLogrus = "logrus"
	LogSlog   = "slog"
)

var (
	ErrInvalidStore      = errors.New("config: invalid cache.store")
	ErrInvalidCodec      = errors.New("config: invalid cache.codec")
	ErrInvalidLogBackend = errors.New("config: invalid log.backend")
	ErrMissingNamespace  = errors.New("config: cache.namespace is required")
	ErrMissingAddr       = errors.New("config: server.addr is required")
	ErrNegativeDuration  = errors.New("config: durations must not be negative")
	ErrDecodeLimit       = errors.New("config: cache.max_decode_bytes cannot hold greeting.messages")
)

type Config struct {
	Server   Server   `yaml:"server"`
	Cache    Cache    `yaml:"cache"`
	Greeting Greeting `yaml:"greeting"`
	Log      Log      `yaml:"log"`
}

type Server struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

type Cache struct {
	Namespace      string        `yaml:"namespace"`
	Store          string        `yaml:"store"`
	Codec          string        `yaml:"codec"`
	WaitTimeout    time.Duration `yaml:"wait_timeout"`     // 0 => wait for the computation
	MaxDecodeBytes int           `yaml:"max_decode_bytes"` // 0 => unlimited; must fit greeting.messages
	Disabled       bool          `yaml:"disabled"`

	Ristretto Ristretto `yaml:"ristretto"`
	BigCache  BigCache  `yaml:"bigcache"`
}

type Ristretto struct {
	NumCounters int64 `yaml:"num_counters"`
	MaxCost     int64 `yaml:"max_cost"` // bytes
	BufferItems int64 `yaml:"buffer_items"`
}

type BigCache struct {
	Shards             int           `yaml:"shards"`
	LifeWindow         time.Duration `yaml:"life_window"`
	Expire             bool          `yaml:"expire"` // false => entries never expire by life window
	HardMaxCacheSizeMB int           `yaml:"hard_max_cache_size_mb"`
}

type Greeting struct {
	Delay    time.Duration `yaml:"delay"`
	Messages []string      `yaml:"messages"`
}

type Log struct {
	Backend    string `yaml:"backend"`
	Level      string `yaml:"level"`
	Hooks      bool   `yaml:"hooks"`
	HookSample uint64 `yaml:"hook_sample"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: Server{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Cache: Cache{
			Namespace: "greeting",
			Store:     StoreMemory,
			Codec:     codec.NameJSON,
			Ristretto: Ristretto{NumCounters: 10_000, MaxCost: 1 << 20, BufferItems: 64},
			BigCache:  BigCache{Shards: 16, LifeWindow: 24 * time.Hour},
		},
		Greeting: Greeting{
			Delay:    greeting.DefaultDelay,
			Messages: append([]string(nil), greeting.DefaultMessages...),
		},
		Log: Log{
			Backend:    LogZap,
			Level:      "info",
			Hooks:      true,
			HookSample: 100,
		},
	}
}

// Load reads path over Default. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, ErrMissingAddr)
	}
	if c.Cache.Namespace == "" {
		errs = append(errs, ErrMissingNamespace)
	}
	switch c.Cache.Store {
	case StoreMemory, StoreRistretto, StoreBigCache:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidStore, c.Cache.Store))
	}
	switch c.Cache.Codec {
	case codec.NameJSON, codec.NameMsgpack, codec.NameCBOR:
		if err := c.checkDecodeLimit(); err != nil {
			errs = append(errs, err)
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidCodec, c.Cache.Codec))
	}
	switch c.Log.Backend {
	case LogZap, LogLogrus, LogSlog:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogBackend, c.Log.Backend))
	}
	for _, d := range []time.Duration{
		c.Server.ReadHeaderTimeout, c.Server.ShutdownTimeout,
		c.Cache.WaitTimeout, c.Greeting.Delay, c.Cache.BigCache.LifeWindow,
	} {
		if d < 0 {
			errs = append(errs, ErrNegativeDuration)
			break
		}
	}
	return errors.Join(errs...)
}

// checkDecodeLimit rejects a limit under which the greeting could never be
// stored: every request would recompute it.
func (c Config) checkDecodeLimit() error {
	limit := c.Cache.MaxDecodeBytes
	if limit < 0 {
		return fmt.Errorf("%w: negative limit %d", ErrDecodeLimit, limit)
	}
	if limit == 0 {
		return nil
	}
	cd, err := codec.ByName[[]string](c.Cache.Codec)
	if err != nil {
		return err
	}
	msgs := c.Greeting.Messages
	if msgs == nil {
		msgs = greeting.DefaultMessages
	}
	b, err := cd.Encode(msgs)
	if err != nil {
		return fmt.Errorf("config: encode greeting.messages: %w", err)
	}
	if len(b) > limit {
		return fmt.Errorf("%w: need %d bytes, limit is %d", ErrDecodeLimit, len(b), limit)
	}
	return nil
}
