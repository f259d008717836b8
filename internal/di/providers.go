package di

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"PolyWatch/internal/alert"
	"PolyWatch/internal/detector"
	"PolyWatch/internal/domain/repository"
	"PolyWatch/internal/handler/api"
	"PolyWatch/internal/service/cache"
	"PolyWatch/internal/service/polymarket"
	"PolyWatch/internal/usecase"
	"PolyWatch/pkg/config"
	xhttp "PolyWatch/pkg/http"
	pkgkafka "PolyWatch/pkg/kafka"
	"PolyWatch/pkg/logger"
	"PolyWatch/pkg/metrics"
	"PolyWatch/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideHTTPClient creates the shared JSON HTTP client.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(cfg.Feed.RequestTimeout))
}

// ProvideDataClient creates the rate-limited Polymarket API client.
func ProvideDataClient(cfg *config.Config, httpClient *xhttp.Client, log *logger.Logger, m repository.Metrics) *polymarket.Client {
	backoff := polymarket.NewBackoff(cfg.Backoff.Initial, cfg.Backoff.Max, cfg.Backoff.Multiplier)
	return polymarket.NewClient(httpClient, backoff, log, m,
		polymarket.WithEndpoints(cfg.Feed.DataAPIURL, cfg.Feed.GammaAPIURL),
		polymarket.WithRateLimit(cfg.RateLimit.RequestsPerSec, cfg.RateLimit.Burst),
		polymarket.WithActivityLimit(cfg.Detector.ActivityLimit),
	)
}

// ProvideTradeSource selects the feed mode: poll fetches a page per cycle,
// websocket drains a buffered live subscription.
func ProvideTradeSource(cfg *config.Config, client *polymarket.Client, log *logger.Logger, m repository.Metrics) repository.TradeSource {
	if cfg.Feed.Mode == "websocket" {
		return polymarket.NewStream(cfg.Feed.WebSocketURL, cfg.Feed.BufferSize, log, m)
	}
	return polymarket.NewPollSource(client, cfg.Feed.BatchLimit)
}

// ProvideRedis creates the optional shared cache client. Returns nil when
// the tier is disabled.
func ProvideRedis(cfg *config.Config) *redis.Client {
	if !cfg.Cache.Redis.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
}

// ProvideWalletCache creates the wallet-history cache.
func ProvideWalletCache(cfg *config.Config, client *polymarket.Client, rdb *redis.Client, log *logger.Logger, m repository.Metrics) *cache.WalletCache {
	opts := []cache.WalletOption{
		cache.WithTTL(cfg.Cache.WalletTTL),
		cache.WithMaxEntries(cfg.Cache.WalletMaxEntries),
	}
	if rdb != nil {
		opts = append(opts, cache.WithRemote(rdb, cfg.Cache.Redis.Prefix))
	}
	return cache.NewWalletCache(client, log, m, opts...)
}

// ProvideMarketCache creates the market-metadata cache.
func ProvideMarketCache(client *polymarket.Client, log *logger.Logger, m repository.Metrics) *cache.MarketCache {
	return cache.NewMarketCache(client, log, m)
}

// ProvideClassifier creates the tier classifier.
func ProvideClassifier(cfg *config.Config) *detector.Classifier {
	return detector.NewClassifier(cfg.Detector.LargeTradeUSD, cfg.Detector.FreshMarketLimit)
}

// ProvideSeenSet creates the bounded dedup set.
func ProvideSeenSet(cfg *config.Config) *detector.SeenSet {
	return detector.NewSeenSet(cfg.Cache.DedupMaxEntries)
}

// ProvideNoiseFilter creates the noise-market filter.
func ProvideNoiseFilter(cfg *config.Config) *detector.NoiseFilter {
	return detector.NewNoiseFilter(cfg.Detector.ExcludeKeywords)
}

// ProvideKafkaProducer creates the alert producer, or nil when the Kafka
// sink is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Alerting.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(pkgkafka.WithBrokers(cfg.Alerting.Kafka.Brokers))
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideDispatcher assembles the sink chain: console always, webhook and
// Kafka when configured.
func ProvideDispatcher(cfg *config.Config, httpClient *xhttp.Client, producer *pkgkafka.Producer, log *logger.Logger, m repository.Metrics) *alert.Dispatcher {
	sinks := []repository.Sink{alert.NewConsoleSink(log)}
	if cfg.Alerting.Telegram.BotToken != "" && cfg.Alerting.Telegram.ChatID != "" {
		sinks = append(sinks, alert.NewTelegramSink(httpClient, cfg.Alerting.Telegram.BotToken, cfg.Alerting.Telegram.ChatID))
	}
	if cfg.Alerting.WebhookURL != "" {
		sinks = append(sinks, alert.NewWebhookSink(httpClient, cfg.Alerting.WebhookURL))
	}
	if producer != nil {
		sinks = append(sinks, alert.NewKafkaSink(producer, cfg.Alerting.Kafka.Topic))
	}
	return alert.NewDispatcher(log, m, sinks...)
}

// ProvideTracker creates the pipeline orchestrator.
func ProvideTracker(
	cfg *config.Config,
	source repository.TradeSource,
	wallets *cache.WalletCache,
	markets *cache.MarketCache,
	classifier *detector.Classifier,
	dedup *detector.SeenSet,
	noise *detector.NoiseFilter,
	dispatcher *alert.Dispatcher,
	log *logger.Logger,
	m repository.Metrics,
) *usecase.Tracker {
	return usecase.NewTracker(source, wallets, markets, classifier, dedup, noise, dispatcher,
		usecase.Config{
			MinTradeUSD:       cfg.Detector.MinTradeUSD,
			MaxPriceThreshold: cfg.Detector.MaxPriceThreshold,
			PollInterval:      cfg.Feed.PollInterval,
		},
		log, m,
	)
}

// ProvideStatusHandler creates the ops HTTP handler.
func ProvideStatusHandler(log *logger.Logger, tracker *usecase.Tracker) *api.StatusHandler {
	return api.NewStatusHandler(log, tracker)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	tracker *usecase.Tracker,
	handler *api.StatusHandler,
	producer *pkgkafka.Producer,
	rdb *redis.Client,
) *server.App {
	return server.New(cfg, log, tracker, handler, producer, rdb)
}
