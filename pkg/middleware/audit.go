package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"OpenWeb3-Client/internal/audit"
	xerrors "OpenWeb3-Client/internal/errors"
	"OpenWeb3-Client/internal/manager"
)

// Audit records every dispatched request into the given recorder. Recording
// is best effort: a recorder failure is logged and the call result stands.
func Audit(recorder audit.Recorder, log *slog.Logger) manager.Middleware {
	return manager.Middleware{
		Name: "audit",
		Wrap: func(next manager.CallFunc) manager.CallFunc {
			return func(ctx context.Context, method string, params []any) (json.RawMessage, error) {
				start := time.Now()
				result, err := next(ctx, method, params)

				encodedParams, encodeErr := json.Marshal(params)
				if encodeErr != nil {
					encodedParams = []byte("[]")
				}
				rec := audit.Record{
					ID:         uuid.NewString(),
					Method:     method,
					Params:     string(encodedParams),
					Duration:   time.Since(start),
					Success:    err == nil,
					OccurredAt: start,
				}
				if err != nil {
					rec.ErrorCode = string(xerrors.CodeOf(err))
				}
				if recordErr := recorder.Record(ctx, rec); recordErr != nil {
					log.WarnContext(ctx, "audit record dropped",
						"method", method, "error", recordErr)
				}
				return result, err
			}
		},
	}
}
