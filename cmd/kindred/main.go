package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kindred-protocol/kindred/internal/config"
	"github.com/kindred-protocol/kindred/internal/domain"
	"github.com/kindred-protocol/kindred/internal/infra/database"
	"github.com/kindred-protocol/kindred/internal/infra/providers"
	"github.com/kindred-protocol/kindred/internal/logging"
	"github.com/kindred-protocol/kindred/internal/observability"
	"github.com/kindred-protocol/kindred/internal/service"
)

func main() {
	configPath := flag.String("config", "/etc/kindred/config.yaml", "path to node configuration")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logging.NewLogger(conf.Server.LogLevel)
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if conf.Server.EnableTrace {
		shutdown, err := observability.SetupTraceProvider(ctx, conf.Server.TraceEndpoint, "kindred-node")
		if err != nil {
			logger.Fatal("failed to set up tracing", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Warn("trace provider shutdown failed", zap.Error(err))
			}
		}()
	}

	db, err := providers.NewDatabase(conf.Server)
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	if err := providers.MigrateDatabase(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB)
	mc := providers.NewMemcache(conf.Server.MemcachedAddr)
	cl := providers.NewClient(conf.Server)
	sig := service.NewSignalService(rdb, conf.Server.EventChannel)

	app := providers.NewApp(conf, db, mc, cl, sig, logger)

	logger.Info("kindred node started",
		zap.String("node", conf.NodeInfo.Name),
		zap.Duration("schedulerInterval", conf.Protocol.SchedulerInterval),
	)

	runScheduler(ctx, app, conf.Protocol.SchedulerInterval, logger)

	logger.Info("kindred node stopped")
}

// runScheduler drives the matching engine: the round itself decides whether
// enough time has passed, so the ticker only has to fire often enough.
func runScheduler(ctx context.Context, app *providers.App, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			matches, err := app.Matching.ExecuteRound(ctx, now.UTC())
			if err != nil {
				if errors.Is(err, domain.ErrTooEarly) {
					logger.Debug("matching round skipped, interval not elapsed")
					continue
				}
				logger.Error("matching round failed", zap.Error(err))
				continue
			}
			logger.Info("matching round completed", zap.Int("matches", len(matches)))
		}
	}
}
