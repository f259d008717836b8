package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"PolyWatch/internal/usecase"
	"PolyWatch/pkg/config"
	xhttp "PolyWatch/pkg/http"
	pkgkafka "PolyWatch/pkg/kafka"
	applogger "PolyWatch/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg      *config.Config
	log      *applogger.Logger
	tracker  *usecase.Tracker
	handler  xhttp.Handler
	producer *pkgkafka.Producer
	rdb      *redis.Client

	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	tracker *usecase.Tracker,
	handler xhttp.Handler,
	producer *pkgkafka.Producer,
	rdb *redis.Client,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		tracker:  tracker,
		handler:  handler,
		producer: producer,
		rdb:      rdb,
	}
}

// Run starts the tracker and the ops HTTP server, then blocks until a
// shutdown signal arrives.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.log.Info("starting",
		applogger.String("feed_mode", a.cfg.Feed.Mode),
		applogger.Float64("min_trade_usd", a.cfg.Detector.MinTradeUSD),
		applogger.Float64("large_trade_usd", a.cfg.Detector.LargeTradeUSD),
		applogger.Int("fresh_market_limit", a.cfg.Detector.FreshMarketLimit),
		applogger.Float64("max_price_threshold", a.cfg.Detector.MaxPriceThreshold),
		applogger.Duration("poll_interval", a.cfg.Feed.PollInterval),
	)

	if err := a.tracker.Start(ctx); err != nil {
		return err
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services. The in-flight cycle is given
// the shutdown timeout to finish.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.tracker.Shutdown(ctx); err != nil {
		a.log.Warn("tracker stop error", applogger.Error(err))
	}

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Warn("http shutdown error", applogger.Error(err))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Warn("redis close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
