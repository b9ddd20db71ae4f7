package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	xerrors "OpenWeb3-Client/internal/errors"
	"OpenWeb3-Client/internal/manager"
	"OpenWeb3-Client/internal/observability/alerting"
)

// Alerting notifies the dispatcher about failures whose error code carries
// the alert attribute. Notification is best effort and never blocks the
// call result.
func Alerting(dispatcher alerting.Dispatcher, endpoint string, log *slog.Logger) manager.Middleware {
	return manager.Middleware{
		Name: "alerting",
		Wrap: func(next manager.CallFunc) manager.CallFunc {
			return func(ctx context.Context, method string, params []any) (json.RawMessage, error) {
				result, err := next(ctx, method, params)
				if err == nil || dispatcher == nil || !xerrors.AlertError(err) {
					return result, err
				}
				event := alerting.Event{
					Code:       xerrors.CodeOf(err),
					Message:    err.Error(),
					Severity:   xerrors.SeverityOf(err),
					Method:     method,
					Endpoint:   endpoint,
					OccurredAt: time.Now(),
				}
				if notifyErr := dispatcher.Notify(ctx, event); notifyErr != nil {
					log.WarnContext(ctx, "alert delivery failed",
						"method", method, "error", notifyErr)
				}
				return result, err
			}
		},
	}
}
