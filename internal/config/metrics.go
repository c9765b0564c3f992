package config

import (
	"context"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var loadCounter = sync.OnceValue(func() metric.Int64Counter {
	c, err := otel.Meter("projex-server/config").Int64Counter("config.validation.events")
	if err != nil {
		return nil
	}
	return c
})

func recordConfigValidationEvent(ctx context.Context, env, outcome, errorClass string) {
	c := loadCounter()
	if c == nil {
		return
	}
	env = strings.ToLower(strings.TrimSpace(env))
	if env == "" {
		env = "unset"
	}
	c.Add(ctx, 1, metric.WithAttributes(
		attribute.String("env", env),
		attribute.String("outcome", outcome),
		attribute.String("error_class", errorClass),
	))
}

// classifyConfigLoadError buckets a Load error by the config area it names.
// Markers are checked in order, so a joined error reports one class only.
func classifyConfigLoadError(err error) string {
	if err == nil {
		return "none"
	}
	msg := err.Error()
	if strings.Contains(msg, "parse ") {
		return "parse"
	}
	if !strings.HasPrefix(msg, "validate config:") {
		return "load"
	}
	for _, c := range []struct{ marker, class string }{
		{"TOKEN_", "token"},
		{"DATABASE_", "database"},
		{"REDIS_URL", "redis"},
		{"rate limit", "rate_limit"},
	} {
		if strings.Contains(msg, c.marker) {
			return c.class
		}
	}
	return "validation"
}
