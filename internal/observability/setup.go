package observability

import (
	"context"
	"errors"
	"fmt"
)

type initStep struct {
	name string
	init func(context.Context) (func(context.Context) error, error)
}

// Setup initialises tracing, metrics and, when otlpLogs is set, OTLP log
// export. The returned function shuts every initialised provider down.
func Setup(ctx context.Context, otlpLogs bool) (func(context.Context) error, error) {
	var shutdowns []func(context.Context) error

	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	inits := []initStep{
		{name: "tracing", init: InitTracing},
		{name: "metrics", init: InitMetrics},
	}
	if otlpLogs {
		inits = append(inits, initStep{name: "logging", init: InitLogging})
	}

	for _, step := range inits {
		fn, err := step.init(ctx)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("init %s: %w", step.name, err), shutdown(ctx))
		}
		shutdowns = append(shutdowns, fn)
	}

	return shutdown, nil
}
