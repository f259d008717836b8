package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

type Config struct {
	Environment string `yaml:"environment" default:"production" validate:"required"`

	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`

	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`

	Feed struct {
		Mode           string        `yaml:"mode" default:"poll" validate:"oneof=poll websocket"`
		DataAPIURL     string        `yaml:"data_api_url" default:"https://data-api.polymarket.com" validate:"url"`
		GammaAPIURL    string        `yaml:"gamma_api_url" default:"https://gamma-api.polymarket.com" validate:"url"`
		WebSocketURL   string        `yaml:"websocket_url" default:"wss://ws-live-data.polymarket.com"`
		BatchLimit     int           `yaml:"batch_limit" default:"100" validate:"gt=0"`
		PollInterval   time.Duration `yaml:"poll_interval" default:"2s" validate:"gt=0"`
		BufferSize     int           `yaml:"buffer_size" default:"2048" validate:"gt=0"`
		RequestTimeout time.Duration `yaml:"request_timeout" default:"10s" validate:"gt=0"`
	} `yaml:"feed"`

	Detector struct {
		MinTradeUSD       float64  `yaml:"min_trade_usd" default:"1000" validate:"gt=0"`
		LargeTradeUSD     float64  `yaml:"large_trade_usd" default:"5000" validate:"gt=0"`
		FreshMarketLimit  int      `yaml:"fresh_market_limit" default:"5" validate:"gte=1"`
		MaxPriceThreshold float64  `yaml:"max_price_threshold" default:"0.35" validate:"gt=0,lte=1"`
		ActivityLimit     int      `yaml:"activity_limit" default:"500" validate:"gt=0"`
		ExcludeKeywords   []string `yaml:"exclude_keywords"`
	} `yaml:"detector"`

	Backoff struct {
		Initial    time.Duration `yaml:"initial" default:"1s" validate:"gt=0"`
		Max        time.Duration `yaml:"max" default:"60s" validate:"gt=0"`
		Multiplier float64       `yaml:"multiplier" default:"2" validate:"gt=1"`
	} `yaml:"backoff"`

	RateLimit struct {
		RequestsPerSec float64 `yaml:"requests_per_sec" default:"5" validate:"gt=0"`
		Burst          int     `yaml:"burst" default:"10" validate:"gt=0"`
	} `yaml:"ratelimit"`

	Cache struct {
		WalletTTL        time.Duration `yaml:"wallet_ttl" default:"60s" validate:"gt=0"`
		WalletMaxEntries int           `yaml:"wallet_max_entries" default:"1000" validate:"gt=0"`
		DedupMaxEntries  int           `yaml:"dedup_max_entries" default:"10000" validate:"gt=0"`
		Redis            struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"polywatch"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Alerting struct {
		WebhookURL string `yaml:"webhook_url"` // empty disables the webhook sink
		Telegram   struct {
			BotToken string `yaml:"bot_token"`
			ChatID   string `yaml:"chat_id"`
		} `yaml:"telegram"`
		Kafka struct {
			Enabled bool     `yaml:"enabled"`
			Brokers []string `yaml:"brokers"`
			Topic   string   `yaml:"topic" default:"polywatch.alerts"`
		} `yaml:"kafka"`
	} `yaml:"alerting"`
}

// DefaultExcludeKeywords marks short-horizon gambling markets that are
// noise for insider detection.
var DefaultExcludeKeywords = []string{
	"up or down", "up/down", "updown",
	"15m", "15 min", "30m", "30 min", "hourly", "1 hour",
	"bitcoin up", "bitcoin down", "btc up", "btc down", "eth up", "eth down",
	"price above", "price below", "over/under", "o/u",
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return finish(&c)
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	applyEnv(c)
	return finish(c)
}

// Default returns a config built purely from defaults and env overrides,
// used when no config file is present.
func Default() (*Config, error) {
	c := &Config{}
	applyEnv(c)
	return finish(c)
}

func finish(c *Config) (*Config, error) {
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if len(c.Detector.ExcludeKeywords) == 0 {
		c.Detector.ExcludeKeywords = DefaultExcludeKeywords
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func applyEnv(c *Config) {
	if v := os.Getenv("FEED_MODE"); v != "" {
		c.Feed.Mode = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("MIN_TRADE_USD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Detector.MinTradeUSD = f
		}
	}
	if v := os.Getenv("FRESH_MARKET_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Detector.FreshMarketLimit = n
		}
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		c.Alerting.WebhookURL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Alerting.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Alerting.Telegram.ChatID = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Enabled = true
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Alerting.Kafka.Enabled = true
		c.Alerting.Kafka.Brokers = strings.Split(v, ",")
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Backoff.Max < c.Backoff.Initial {
		return fmt.Errorf("backoff.max must be >= backoff.initial")
	}
	if c.Detector.LargeTradeUSD < c.Detector.MinTradeUSD {
		return fmt.Errorf("detector.large_trade_usd must be >= detector.min_trade_usd")
	}
	if c.Alerting.Kafka.Enabled && len(c.Alerting.Kafka.Brokers) == 0 {
		return fmt.Errorf("alerting.kafka.brokers required when kafka is enabled")
	}
	if (c.Alerting.Telegram.BotToken == "") != (c.Alerting.Telegram.ChatID == "") {
		return fmt.Errorf("alerting.telegram requires both bot_token and chat_id")
	}
	return nil
}
