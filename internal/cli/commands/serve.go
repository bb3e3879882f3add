package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/docschema/internal/cache"
	"github.com/conduit-lang/docschema/internal/catalog"
	"github.com/conduit-lang/docschema/internal/cli/config"
	"github.com/conduit-lang/docschema/internal/logging"
	"github.com/conduit-lang/docschema/internal/server"
)

func newServeCommand(e *env) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve schemas over HTTP",
		Long: `Serve rendered schemas over HTTP.

Routes:
  GET    /healthz                 liveness and model count
  GET    /schemas                 list of available schemas
  GET    /schemas/{model}         schema document (?strict=false for lax)
  DELETE /schemas/{model}/cache   drop cached renderings of a model

Examples:
  docschema serve
  docschema serve --port 9000 --models models.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.setup(cmd, map[string]string{
				"server.host": "host",
				"server.port": "port",
			}); err != nil {
				return err
			}

			logger, err := logging.New(e.cfg.Log.Level, e.cfg.Log.Development)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			registry, err := e.registry()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := newCache(ctx, e.cfg.Cache)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat := catalog.New(registry,
				catalog.WithCache(store, e.cfg.Cache.TTL),
				catalog.WithLogger(logger.Named("catalog")),
			)

			srv, err := server.New(
				server.DefaultConfig(e.cfg.Server.Address()),
				server.NewRouter(cat, logger.Named("http")),
				logger,
			)
			if err != nil {
				return err
			}

			logger.Info("serving schemas",
				zap.String("addr", e.cfg.Server.Address()),
				zap.Int("models", len(cat.Models())),
				zap.String("version", cat.Version()),
				zap.String("cache", e.cfg.Cache.Backend),
			)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")

	return cmd
}

// newCache builds the configured cache backend
func newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	shared := cache.DefaultConfig()
	if cfg.TTL > 0 {
		shared.DefaultTTL = cfg.TTL
	}

	switch cfg.Backend {
	case config.CacheMemory:
		return cache.NewMemoryCacheWithConfig(shared), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Cache:    shared,
		})
	case config.CacheNone:
		return cache.Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %s", cfg.Backend)
	}
}
