package main

import (
	"context"
	"fmt"
	"pprbitcoin/internal/cache"
	"pprbitcoin/internal/config"
	"pprbitcoin/internal/engine"
	"pprbitcoin/internal/logging"
	"pprbitcoin/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type app struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "pprbitcoin",
		Short:         "Backtest a PPR fund blended with Bitcoin",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			logging.Setup(cfg.LogLevel, cfg.LogFormat)
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		a.simulateCmd(),
		a.compareCmd(),
		a.sweepCmd(),
		a.chartCmd(),
		a.serveCmd(),
		a.importCmd(),
	)
	return root
}

// openStore connects to PostgreSQL and, when a Redis URL is configured, puts
// the read-through cache in front of it. The returned func releases both.
func (a *app) openStore(ctx context.Context) (cache.Store, func(), error) {
	db, err := repository.NewDatabase(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if a.cfg.RedisURL == "" {
		return db, db.Close, nil
	}

	opts, err := redis.ParseURL(a.cfg.RedisURL)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, cache calls will fall through to the database")
	}
	closeAll := func() {
		_ = rdb.Close()
		db.Close()
	}
	return cache.NewCachedStore(db, rdb, a.cfg.CacheTTL), closeAll, nil
}

func (a *app) newEngine(store cache.Store) *engine.Engine {
	return engine.NewEngine(store, engine.NewReportingConfig(a.cfg.RiskFreeRate), log.Logger)
}
