package alert

import (
	"context"

	"PolyWatch/internal/domain/models"
	"PolyWatch/internal/domain/repository"
	"PolyWatch/pkg/logger"
)

// Dispatcher fans one alert out to every configured sink. The console
// sink is always present; webhook and Kafka sinks are optional. A sink
// failure is logged and dropped so one broken destination cannot stall
// the pipeline or suppress the others.
type Dispatcher struct {
	sinks   []repository.Sink
	log     *logger.Logger
	metrics repository.Metrics
}

// NewDispatcher creates a dispatcher over the given sinks.
func NewDispatcher(log *logger.Logger, metrics repository.Metrics, sinks ...repository.Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks, log: log, metrics: metrics}
}

// Dispatch delivers the alert to every sink.
func (d *Dispatcher) Dispatch(ctx context.Context, a *models.Alert) {
	d.metrics.RecordAlert(a.Severity.String())

	for _, sink := range d.sinks {
		if err := sink.Deliver(ctx, a); err != nil {
			d.metrics.RecordError("sink_" + sink.Name())
			d.log.Warn("alert delivery failed",
				logger.String("sink", sink.Name()),
				logger.Error(err),
			)
		}
	}
}

// Sinks returns the configured sink names, for the startup summary.
func (d *Dispatcher) Sinks() []string {
	names := make([]string, 0, len(d.sinks))
	for _, s := range d.sinks {
		names = append(names, s.Name())
	}
	return names
}
