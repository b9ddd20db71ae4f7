// Package audit persists a record of every dispatched RPC call. Recorders
// are fire-and-forget sinks: a failing recorder must never fail the call it
// observes.
package audit

import (
	"context"
	"time"
)

// Record captures one dispatched request.
type Record struct {
	ID         string        `json:"id"`
	Method     string        `json:"method"`
	Params     string        `json:"params"`
	Duration   time.Duration `json:"duration"`
	Success    bool          `json:"success"`
	ErrorCode  string        `json:"error_code,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// Recorder is a sink for audit records.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
	Close() error
}
