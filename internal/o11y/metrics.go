package o11y

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// EstimatorMetrics holds the instruments the estimator records against on every call.
type EstimatorMetrics struct {
	duration metric.Float64Histogram
	rounds   metric.Int64Histogram
}

// NewEstimatorMetrics creates the estimator's instruments against the global meter provider.
// Safe to call even when no collector is configured: the no-op meter provider is installed by
// default, so recording against these instruments is simply discarded.
func NewEstimatorMetrics() *EstimatorMetrics {
	meter := otel.Meter("gasestimator")
	duration, _ := meter.Float64Histogram(
		"gasestimator.estimate.duration",
		metric.WithDescription("wall-clock duration of one EstimateOpGas call, in seconds"),
		metric.WithUnit("s"),
	)
	rounds, _ := meter.Int64Histogram(
		"gasestimator.search.rounds",
		metric.WithDescription("number of binary-search rounds a single search component performed"),
	)
	return &EstimatorMetrics{duration: duration, rounds: rounds}
}

// RecordDuration records the wall-clock cost of one EstimateOpGas call.
func (m *EstimatorMetrics) RecordDuration(ctx context.Context, seconds float64, component string) {
	m.duration.Record(ctx, seconds, metric.WithAttributes(attribute.String("component", component)))
}

// RecordRounds records how many binary-search rounds a search component performed.
func (m *EstimatorMetrics) RecordRounds(ctx context.Context, rounds int64, component string) {
	m.rounds.Record(ctx, rounds, metric.WithAttributes(attribute.String("component", component)))
}
