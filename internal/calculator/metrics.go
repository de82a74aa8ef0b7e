package calculator

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metric instruments, initialized once via InitMetrics().
var (
	keyCounter       metric.Int64Counter
	batchHistogram   metric.Float64Histogram
	errorCounter     metric.Int64Counter
	divByZeroCounter metric.Int64Counter
	activeSessions   metric.Int64UpDownCounter
)

// InitMetrics registers custom OTel metric instruments for the calculator domain.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	keyCounter, err = meter.Int64Counter("calculator.keys.total",
		metric.WithDescription("Total number of calculator keys pressed"),
		metric.WithUnit("{key}"),
	)
	if err != nil {
		return fmt.Errorf("creating key counter: %w", err)
	}

	batchHistogram, err = meter.Float64Histogram("calculator.key_batch.duration",
		metric.WithDescription("Time spent applying one request's keys in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10),
	)
	if err != nil {
		return fmt.Errorf("creating key batch histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of rejected calculator requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	divByZeroCounter, err = meter.Int64Counter("calculator.division_by_zero.total",
		metric.WithDescription("Total number of evaluators that entered the error state"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating division by zero counter: %w", err)
	}

	activeSessions, err = meter.Int64UpDownCounter("calculator.sessions.active",
		metric.WithDescription("Number of live calculator sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return fmt.Errorf("creating active sessions counter: %w", err)
	}

	return nil
}

// RecordSessionsExpired lowers the active session count after the store
// evicts idle sessions.
func RecordSessionsExpired(ctx context.Context, n int) {
	if n > 0 {
		activeSessions.Add(ctx, -int64(n))
	}
}
