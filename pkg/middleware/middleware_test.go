package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"OpenWeb3-Client/internal/audit"
	xerrors "OpenWeb3-Client/internal/errors"
	"OpenWeb3-Client/internal/manager"
	"OpenWeb3-Client/internal/observability/alerting"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRetryRecoversFromTransientFailures(t *testing.T) {
	attempts := 0
	base := func(context.Context, string, []any) (json.RawMessage, error) {
		attempts++
		if attempts < 3 {
			return nil, xerrors.New(xerrors.CodeTransport, "connection reset")
		}
		return json.RawMessage(`"ok"`), nil
	}

	wrapped := Retry(3, time.Millisecond).Wrap(base)
	result, err := wrapped(context.Background(), "net_version", nil)
	if err != nil {
		t.Fatalf("retry should have recovered: %v", err)
	}
	if string(result) != `"ok"` {
		t.Fatalf("unexpected result %s", result)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryGivesUpAfterBudget(t *testing.T) {
	attempts := 0
	base := func(context.Context, string, []any) (json.RawMessage, error) {
		attempts++
		return nil, xerrors.New(xerrors.CodeTransport, "still down")
	}

	_, err := Retry(2, time.Millisecond).Wrap(base)(context.Background(), "net_version", nil)
	if xerrors.CodeOf(err) != xerrors.CodeTransport {
		t.Fatalf("expected the last transport error, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestRetrySkipsNonRetryableErrors(t *testing.T) {
	attempts := 0
	base := func(context.Context, string, []any) (json.RawMessage, error) {
		attempts++
		return nil, xerrors.New(xerrors.CodeRPC, "execution reverted")
	}

	_, err := Retry(3, time.Millisecond).Wrap(base)(context.Background(), "eth_call", nil)
	if xerrors.CodeOf(err) != xerrors.CodeRPC {
		t.Fatalf("expected the rpc error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("rpc errors must not be retried, got %d attempts", attempts)
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	base := func(context.Context, string, []any) (json.RawMessage, error) {
		cancel()
		return nil, xerrors.New(xerrors.CodeTransport, "down")
	}

	_, err := Retry(5, time.Minute).Wrap(base)(ctx, "net_version", nil)
	if xerrors.CodeOf(err) != xerrors.CodeTimeout {
		t.Fatalf("expected TIMEOUT after cancellation, got %v", err)
	}
}

// memoryRecorder collects audit records in memory.
type memoryRecorder struct {
	records []audit.Record
	fail    bool
}

func (r *memoryRecorder) Record(_ context.Context, rec audit.Record) error {
	if r.fail {
		return xerrors.New(xerrors.CodeAuditFailure, "sink unavailable")
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *memoryRecorder) Close() error { return nil }

func TestAuditRecordsOutcomes(t *testing.T) {
	recorder := &memoryRecorder{}
	mw := Audit(recorder, discardLogger())

	ok := func(context.Context, string, []any) (json.RawMessage, error) {
		return json.RawMessage(`"0x1"`), nil
	}
	if _, err := mw.Wrap(ok)(context.Background(), "eth_blockNumber", []any{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	failing := func(context.Context, string, []any) (json.RawMessage, error) {
		return nil, xerrors.New(xerrors.CodeTransport, "down")
	}
	if _, err := mw.Wrap(failing)(context.Background(), "net_version", []any{}); err == nil {
		t.Fatalf("failure must propagate")
	}

	if len(recorder.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recorder.records))
	}
	first, second := recorder.records[0], recorder.records[1]
	if first.Method != "eth_blockNumber" || !first.Success || first.ErrorCode != "" {
		t.Fatalf("unexpected success record %+v", first)
	}
	if second.Method != "net_version" || second.Success || second.ErrorCode != string(xerrors.CodeTransport) {
		t.Fatalf("unexpected failure record %+v", second)
	}
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("records must carry distinct ids")
	}
}

func TestAuditFailuresDoNotFailTheCall(t *testing.T) {
	recorder := &memoryRecorder{fail: true}
	mw := Audit(recorder, discardLogger())

	base := func(context.Context, string, []any) (json.RawMessage, error) {
		return json.RawMessage(`"0x1"`), nil
	}
	result, err := mw.Wrap(base)(context.Background(), "eth_blockNumber", nil)
	if err != nil {
		t.Fatalf("recorder failure must not surface: %v", err)
	}
	if string(result) != `"0x1"` {
		t.Fatalf("result lost: %s", result)
	}
}

func TestCachePassesThroughUncacheableMethods(t *testing.T) {
	// The Redis client is lazy, so a middleware built against a dead
	// address still serves methods outside the cacheable set.
	mw, err := Cache(CacheConfig{Address: "127.0.0.1:1"}, discardLogger())
	if err != nil {
		t.Fatalf("build cache middleware: %v", err)
	}

	dispatched := 0
	base := func(context.Context, string, []any) (json.RawMessage, error) {
		dispatched++
		return json.RawMessage(`"0x10"`), nil
	}
	result, err := mw.Wrap(base)(context.Background(), "eth_blockNumber", nil)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if dispatched != 1 || string(result) != `"0x10"` {
		t.Fatalf("uncacheable method must go straight to dispatch")
	}
}

func TestCacheKeyIsStablePerRequest(t *testing.T) {
	a, err := cacheKey("eth_chainId", []any{})
	if err != nil {
		t.Fatalf("cache key: %v", err)
	}
	b, err := cacheKey("eth_chainId", []any{})
	if err != nil {
		t.Fatalf("cache key: %v", err)
	}
	if a != b {
		t.Fatalf("same request must derive the same key: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "openweb3:rpc:eth_chainId:") {
		t.Fatalf("unexpected key shape %q", a)
	}

	other, err := cacheKey("net_version", []any{})
	if err != nil {
		t.Fatalf("cache key: %v", err)
	}
	if a == other {
		t.Fatalf("different methods must not collide")
	}
}

func TestLoggingPassesResultThrough(t *testing.T) {
	mw := Logging(discardLogger())
	base := func(context.Context, string, []any) (json.RawMessage, error) {
		return json.RawMessage(`"0x1"`), nil
	}
	result, err := mw.Wrap(base)(context.Background(), "eth_blockNumber", nil)
	if err != nil || string(result) != `"0x1"` {
		t.Fatalf("logging must be transparent: %s %v", result, err)
	}
}

// recordingDispatcher captures alert events.
type recordingDispatcher struct {
	events []alerting.Event
}

func (d *recordingDispatcher) Notify(_ context.Context, event alerting.Event) error {
	d.events = append(d.events, event)
	return nil
}

func TestAlertingFiresOnAlertFlaggedErrors(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	mw := Alerting(dispatcher, "http://127.0.0.1:8545", discardLogger())

	// TRANSPORT carries the alert attribute, RPC_ERROR does not.
	alertable := func(context.Context, string, []any) (json.RawMessage, error) {
		return nil, xerrors.New(xerrors.CodeTransport, "down")
	}
	quiet := func(context.Context, string, []any) (json.RawMessage, error) {
		return nil, xerrors.New(xerrors.CodeRPC, "execution reverted")
	}

	if _, err := mw.Wrap(alertable)(context.Background(), "net_version", nil); err == nil {
		t.Fatalf("error must propagate")
	}
	if _, err := mw.Wrap(quiet)(context.Background(), "eth_call", nil); err == nil {
		t.Fatalf("error must propagate")
	}

	if len(dispatcher.events) != 1 {
		t.Fatalf("expected exactly one alert, got %d", len(dispatcher.events))
	}
	event := dispatcher.events[0]
	if event.Code != xerrors.CodeTransport || event.Method != "net_version" {
		t.Fatalf("unexpected event %+v", event)
	}
	if event.Endpoint != "http://127.0.0.1:8545" {
		t.Fatalf("event must carry the endpoint, got %q", event.Endpoint)
	}
}

func TestMetricsPassesResultThrough(t *testing.T) {
	var mw manager.Middleware = Metrics()
	base := func(context.Context, string, []any) (json.RawMessage, error) {
		return nil, xerrors.New(xerrors.CodeTransport, "down")
	}
	if _, err := mw.Wrap(base)(context.Background(), "net_version", nil); xerrors.CodeOf(err) != xerrors.CodeTransport {
		t.Fatalf("metrics must be transparent, got %v", err)
	}
}
