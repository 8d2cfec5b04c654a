package commands

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/memocache/internal/config"
)

var errNoServe = errors.New("serve: not configured")

type serveFlags struct {
	config      string
	addr        string
	delay       time.Duration
	store       string
	codec       string
	logBackend  string
	logLevel    string
	waitTimeout time.Duration
}

func (c *CLI) newServeCmd() *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.serve == nil {
				return errNoServe
			}
			cfg, err := config.Load(f.config)
			if err != nil {
				return err
			}
			applyFlags(cmd, f, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.serve(cmd.Context(), cfg, cmd.ErrOrStderr())
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.config, "config", "c", "", "YAML config file")
	fl.StringVar(&f.addr, "addr", "", "listen address (default :8080)")
	fl.DurationVar(&f.delay, "delay", 0, "time taken to produce the greeting (default 3s)")
	fl.StringVar(&f.store, "store", "", "cache store: memory, ristretto or bigcache")
	fl.StringVar(&f.codec, "codec", "", "cache value codec: json, msgpack or cbor")
	fl.StringVar(&f.logBackend, "log-backend", "", "logger: zap, logrus or slog")
	fl.StringVar(&f.logLevel, "log-level", "", "log level")
	fl.DurationVar(&f.waitTimeout, "wait-timeout", 0, "max time a request waits for the greeting; 0 waits forever")
	return cmd
}

// applyFlags overrides cfg with every flag set on the command line.
func applyFlags(cmd *cobra.Command, f serveFlags, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("addr") {
		cfg.Server.Addr = f.addr
	}
	if changed("delay") {
		cfg.Greeting.Delay = f.delay
	}
	if changed("store") {
		cfg.Cache.Store = f.store
	}
	if changed("codec") {
		cfg.Cache.Codec = f.codec
	}
	if changed("log-backend") {
		cfg.Log.Backend = f.logBackend
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("wait-timeout") {
		cfg.Cache.WaitTimeout = f.waitTimeout
	}
}
