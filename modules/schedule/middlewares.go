package schedule

import (
	"context"
	"log/slog"
	"time"

	"go.elastic.co/apm/v2"

	"github.com/tempora-io/tempora/core"
)

// LoggingMiddleware logs every firing with its outcome and publish latency.
func LoggingMiddleware(logger *slog.Logger) core.FireMiddleware {
	return func(next core.FireFunc) core.FireFunc {
		return func(ctx context.Context, event core.TriggerEvent) error {
			started := time.Now()
			err := next(ctx, event)
			if err != nil {
				logger.Error("trigger fired, publish failed", "trigger", event.Name,
					"fire_time", event.FireTime, "took", time.Since(started), "error", err)
				return err
			}
			logger.Info("trigger fired", "trigger", event.Name,
				"fire_time", event.FireTime, "took", time.Since(started))
			return nil
		}
	}
}

// APMMiddleware records one APM transaction per firing. Passing a nil
// tracer uses the default one.
func APMMiddleware(tracer *apm.Tracer) core.FireMiddleware {
	if tracer == nil {
		tracer = apm.DefaultTracer()
	}
	return func(next core.FireFunc) core.FireFunc {
		return func(ctx context.Context, event core.TriggerEvent) error {
			tx := tracer.StartTransaction("fire "+event.Name, "scheduler")
			defer tx.End()
			ctx = apm.ContextWithTransaction(ctx, tx)

			err := next(ctx, event)
			if err != nil {
				apm.CaptureError(ctx, err).Send()
			}
			return err
		}
	}
}
