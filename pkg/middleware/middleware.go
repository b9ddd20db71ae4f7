// Package middleware provides the stock onion layers: logging, retries,
// response caching, audit and metrics. Each constructor returns a named
// manager.Middleware ready for registration.
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	xerrors "OpenWeb3-Client/internal/errors"
	"OpenWeb3-Client/internal/manager"
	"OpenWeb3-Client/internal/observability/metrics"
)

// Logging emits one structured line per dispatched request.
func Logging(log *slog.Logger) manager.Middleware {
	return manager.Middleware{
		Name: "logging",
		Wrap: func(next manager.CallFunc) manager.CallFunc {
			return func(ctx context.Context, method string, params []any) (json.RawMessage, error) {
				start := time.Now()
				result, err := next(ctx, method, params)
				elapsed := time.Since(start)
				if err != nil {
					log.WarnContext(ctx, "rpc request failed",
						"method", method,
						"duration", elapsed,
						"code", string(xerrors.CodeOf(err)),
						"error", err)
					return nil, err
				}
				log.DebugContext(ctx, "rpc request served",
					"method", method,
					"duration", elapsed)
				return result, nil
			}
		},
	}
}

// Retry re-dispatches requests that fail with a retryable coded error, up to
// attempts tries in total with a fixed pause between them.
func Retry(attempts int, pause time.Duration) manager.Middleware {
	if attempts < 1 {
		attempts = 1
	}
	return manager.Middleware{
		Name: "retry",
		Wrap: func(next manager.CallFunc) manager.CallFunc {
			return func(ctx context.Context, method string, params []any) (json.RawMessage, error) {
				var result json.RawMessage
				var err error
				for attempt := 0; attempt < attempts; attempt++ {
					if attempt > 0 {
						select {
						case <-ctx.Done():
							return nil, xerrors.Wrap(xerrors.CodeTimeout, ctx.Err(), method)
						case <-time.After(pause):
						}
					}
					result, err = next(ctx, method, params)
					if err == nil || !xerrors.RetryableError(err) {
						return result, err
					}
				}
				return nil, err
			}
		},
	}
}

// Metrics records counters and latency for every dispatched request.
func Metrics() manager.Middleware {
	return manager.Middleware{
		Name: "metrics",
		Wrap: func(next manager.CallFunc) manager.CallFunc {
			return func(ctx context.Context, method string, params []any) (json.RawMessage, error) {
				start := time.Now()
				result, err := next(ctx, method, params)
				code := metrics.OKCode
				if err != nil {
					code = string(xerrors.CodeOf(err))
				}
				metrics.ObserveRPCRequest(method, code, time.Since(start))
				return result, err
			}
		},
	}
}
