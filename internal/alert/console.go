package alert

import (
	"context"

	"PolyWatch/internal/domain/models"
	"PolyWatch/pkg/logger"
	"PolyWatch/pkg/util"
)

// ConsoleSink writes each alert as a structured log record. It is the
// primary sink and the only guaranteed delivery target.
type ConsoleSink struct {
	log *logger.Logger
}

// NewConsoleSink creates the console sink.
func NewConsoleSink(log *logger.Logger) *ConsoleSink {
	return &ConsoleSink{log: log}
}

func (s *ConsoleSink) Name() string { return "console" }

// Deliver logs the alert. High severity logs at warn so it stands out in
// a level-filtered stream.
func (s *ConsoleSink) Deliver(_ context.Context, a *models.Alert) error {
	fields := []logger.Field{
		logger.String("severity", a.Severity.String()),
		logger.String("market", marketQuestion(a)),
		logger.String("outcome", a.Trade.Outcome),
		logger.Float64("value_usd", a.Trade.ValueUSD),
		logger.Float64("price", a.Trade.Price.Float64()),
		logger.String("wallet", util.MaskAddress(a.Wallet.Address)),
		logger.Int("lifetime_markets", a.Wallet.UniqueMarkets),
		logger.String("reason", a.Reason),
		logger.String("url", a.Trade.MarketURL()),
	}

	if a.Severity == models.SeverityHigh {
		s.log.Warn("insider-pattern trade detected", fields...)
	} else {
		s.log.Info("insider-pattern trade detected", fields...)
	}
	return nil
}

func marketQuestion(a *models.Alert) string {
	if a.Market != nil && a.Market.Question != "" {
		return a.Market.Question
	}
	return a.Trade.Title
}
