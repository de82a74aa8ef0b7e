package main

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"keypad-calculator/internal/calculator"
	"keypad-calculator/internal/config"
	"keypad-calculator/internal/observability"
	"keypad-calculator/internal/session"
)

// initTelemetry initialises all OTel providers and the calculator's metric
// instruments.
func initTelemetry(ctx context.Context, cfg config.Config) (func(context.Context) error, error) {
	shutdown, err := observability.Setup(ctx, cfg.OTelLogs)
	if err != nil {
		return nil, err
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, errors.Join(err, shutdown(ctx))
	}

	return shutdown, nil
}

// newCalculator builds the session store, starts its idle sweeper for the
// lifetime of ctx and returns the HTTP handler serving it.
func newCalculator(ctx context.Context, cfg config.Config) *calculator.Handler {
	store := session.NewStore(cfg.MaxSessions, cfg.SessionTTL)

	go store.Run(ctx, cfg.SweepInterval, func(removed int) {
		if removed == 0 {
			return
		}
		calculator.RecordSessionsExpired(ctx, removed)
		observability.Logger.Info("expired idle calculator sessions",
			zap.Int("removed", removed),
			zap.Int("remaining", store.Len()),
		)
	})

	return calculator.NewHandler(store)
}
