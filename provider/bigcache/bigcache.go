// Package bigcache is a provider backed by allegro/bigcache.
// BigCache has no per-entry TTL. Entries older than LifeWindow are dropped by
// the clean loop and also on any later Set, when the oldest entry in a shard
// has outlived the window. NoCleanup disables both by using a life window of
// noExpiry. Entries can still be overwritten once HardMaxCacheSizeMB is reached.
package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	pr "github.com/unkn0wn-root/memocache/provider"
)

type Provider struct {
	c *bc.BigCache
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	NoCleanup          bool // ignore LifeWindow; no clean loop and no age-based eviction
	Shards             int  // power of two; 0 => bigcache default
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

// noExpiry stands in for "never" as a LifeWindow. bigcache evicts a shard's
// oldest entry on Set once it is older than the window, so 0 cleaning alone
// does not keep entries.
const noExpiry = 100 * 365 * 24 * time.Hour

func New(cfg Config) (*Provider, error) {
	c, err := bc.NewBigCache(bcConfig(cfg))
	if err != nil {
		return nil, err
	}
	return &Provider{c: c}, nil
}

func bcConfig(cfg Config) bc.Config {
	life := cfg.LifeWindow
	if cfg.NoCleanup {
		life = noExpiry
	}
	conf := bc.DefaultConfig(life)
	conf.Verbose = false
	if cfg.NoCleanup {
		conf.CleanWindow = 0
	} else if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.Shards > 0 {
		conf.Shards = cfg.Shards
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	return conf
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := p.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, _ time.Duration) (bool, error) {
	// BigCache does not support per-entry TTL; uses global LifeWindow.
	if err := p.c.Set(key, value); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	err := p.c.Delete(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (p *Provider) Close(_ context.Context) error {
	return p.c.Close()
}
