package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pario-ai/answercache/pkg/analytics"
	"github.com/pario-ai/answercache/pkg/answer"
	cachepkg "github.com/pario-ai/answercache/pkg/cache"
	"github.com/pario-ai/answercache/pkg/config"
	"github.com/pario-ai/answercache/pkg/logging"
	"github.com/pario-ai/answercache/pkg/metrics"
	"github.com/pario-ai/answercache/pkg/querylog"
	"github.com/pario-ai/answercache/pkg/server"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		listen     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the answer cache HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if listen != "" {
				cfg.Listen = listen
			}

			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			m := metrics.New()
			svc := newService(cfg, m, logger)

			var journal *querylog.Logger
			if cfg.QueryLog.Enabled {
				journal, err = querylog.New(cfg.QueryLog)
				if err != nil {
					return fmt.Errorf("init query log: %w", err)
				}
				defer func() { _ = journal.Close() }()
			}

			srv := server.New(cfg, svc, journal, m, logger)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("starting answercache",
				zap.String("config", configPath),
				zap.Int("max_size", cfg.Cache.MaxSize),
				zap.Duration("ttl", cfg.Cache.TTL),
				zap.Bool("query_log", cfg.QueryLog.Enabled),
			)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to answercache config file")
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	return cmd
}

// newService builds the cache service from cfg. It is shared by serve and
// the in-process mcp mode.
func newService(cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) *cachepkg.Service {
	c := cachepkg.New(cachepkg.Options{
		MaxSize:             cfg.Cache.MaxSize,
		TTL:                 cfg.Cache.TTL,
		AvgTokensPerRequest: cfg.Pricing.AvgTokensPerRequest,
		Metrics:             m,
		Logger:              logger.Named("cache"),
	})
	return cachepkg.NewService(c, answer.Stub{}, cachepkg.ServiceOptions{
		HitLatency:  cfg.Latency.HitMs,
		MissLatency: cfg.Latency.MissMs,
		Analytics: analytics.Settings{
			CostPerMillionTokens: cfg.Pricing.CostPerMillionTokens,
			IncludeSavingsPct:    cfg.Analytics.SavingsPercent,
		},
		Logger: logger.Named("service"),
	})
}
