// Package app assembles memocached from a config.Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/unkn0wn-root/memocache"
	"github.com/unkn0wn-root/memocache/codec"
	async "github.com/unkn0wn-root/memocache/hooks/async"
	"github.com/unkn0wn-root/memocache/internal/config"
	"github.com/unkn0wn-root/memocache/internal/greeting"
	"github.com/unkn0wn-root/memocache/internal/server"
	logruslog "github.com/unkn0wn-root/memocache/log/logrus"
	slogadapter "github.com/unkn0wn-root/memocache/log/slog"
	zaplog "github.com/unkn0wn-root/memocache/log/zap"
	"github.com/unkn0wn-root/memocache/loghooks"
	pr "github.com/unkn0wn-root/memocache/provider"
	bcp "github.com/unkn0wn-root/memocache/provider/bigcache"
	"github.com/unkn0wn-root/memocache/provider/memory"
	rp "github.com/unkn0wn-root/memocache/provider/ristretto"
)

const (
	hookWorkers = 1
	hookQueue   = 1024
)

type App struct {
	Log      memocache.Logger
	Memo     memocache.Memo[[]string]
	Greeting *greeting.Service
	Server   *server.Server

	hooks *async.Hooks
	sync  func() error
}

// New wires every component. out receives logs for the logrus and slog
// backends; zap always writes to stderr.
func New(cfg config.Config, out io.Writer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{sync: func() error { return nil }}

	l, err := a.newLogger(cfg.Log, out)
	if err != nil {
		return nil, err
	}
	a.Log = l

	p, setCost, err := newProvider(cfg.Cache)
	if err != nil {
		return nil, err
	}

	cd, err := codec.ByName[[]string](cfg.Cache.Codec)
	if err != nil {
		_ = p.Close(context.Background())
		return nil, err
	}

	var hooks memocache.Hooks
	if cfg.Log.Hooks {
		a.hooks = async.New(loghooks.New(l, loghooks.Options{
			HitEvery:      cfg.Log.HookSample,
			MissEvery:     1,
			SelfHealEvery: 1,
		}), hookWorkers, hookQueue)
		hooks = a.hooks
	}

	m, err := memocache.New(memocache.Options[[]string]{
		Namespace:      cfg.Cache.Namespace,
		Provider:       p,
		Codec:          codec.LimitCodec[[]string]{Inner: cd, MaxDecode: cfg.Cache.MaxDecodeBytes},
		Logger:         l,
		Hooks:          hooks,
		WaitTimeout:    cfg.Cache.WaitTimeout,
		Disabled:       cfg.Cache.Disabled,
		ComputeSetCost: setCost,
	})
	if err != nil {
		_ = p.Close(context.Background())
		if a.hooks != nil {
			a.hooks.Close()
		}
		return nil, err
	}
	a.Memo = m

	a.Greeting = greeting.New(m, l, greeting.Config{
		Delay:    cfg.Greeting.Delay,
		Messages: cfg.Greeting.Messages,
	})
	a.Server = server.New(a.Greeting, l, server.Config{
		Addr:              cfg.Server.Addr,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
	})

	l.Info("memocached configured", memocache.Fields{
		"store":        cfg.Cache.Store,
		"codec":        cfg.Cache.Codec,
		"delay":        cfg.Greeting.Delay,
		"wait_timeout": cfg.Cache.WaitTimeout,
	})
	return a, nil
}

// Run serves until ctx is done, then releases every component.
func (a *App) Run(ctx context.Context) error {
	runErr := a.Server.Run(ctx)
	return errors.Join(runErr, a.Close(context.Background()))
}

func (a *App) Close(ctx context.Context) error {
	if a.hooks != nil {
		a.hooks.Close()
	}
	err := a.Memo.Close(ctx)
	// zap returns EINVAL/ENOTTY when syncing a terminal; not worth reporting
	_ = a.sync()
	return err
}

func (a *App) newLogger(cfg config.Log, out io.Writer) (memocache.Logger, error) {
	switch cfg.Backend {
	case config.LogZap:
		z, err := zaplog.New(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("app: zap logger: %w", err)
		}
		a.sync = z.Sync
		return z, nil
	case config.LogLogrus:
		l, err := logruslog.New(cfg.Level, out)
		if err != nil {
			return nil, fmt.Errorf("app: logrus logger: %w", err)
		}
		return l, nil
	case config.LogSlog:
		l, err := slogadapter.New(cfg.Level, out)
		if err != nil {
			return nil, fmt.Errorf("app: slog logger: %w", err)
		}
		return l, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidLogBackend, cfg.Backend)
	}
}

// newProvider returns the store and the Set cost it expects. Ristretto
// budgets by bytes, so cost is the frame length there.
func newProvider(cfg config.Cache) (pr.Provider, memocache.SetCostFunc, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return memory.New(), nil, nil
	case config.StoreRistretto:
		p, err := rp.New(rp.Config{
			NumCounters: cfg.Ristretto.NumCounters,
			MaxCost:     cfg.Ristretto.MaxCost,
			BufferItems: cfg.Ristretto.BufferItems,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("app: ristretto: %w", err)
		}
		return p, func(_ string, raw []byte) int64 { return int64(len(raw)) }, nil
	case config.StoreBigCache:
		p, err := bcp.New(bcp.Config{
			LifeWindow:         cfg.BigCache.LifeWindow,
			NoCleanup:          !cfg.BigCache.Expire,
			Shards:             cfg.BigCache.Shards,
			HardMaxCacheSizeMB: cfg.BigCache.HardMaxCacheSizeMB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("app: bigcache: %w", err)
		}
		return p, nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrInvalidStore, cfg.Store)
	}
}
