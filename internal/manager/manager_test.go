package manager

import (
	"context"
	"encoding/json"
	"testing"

	xerrors "OpenWeb3-Client/internal/errors"
	"OpenWeb3-Client/pkg/provider"
)

func tagging(name string, trace *[]string) Middleware {
	return Middleware{
		Name: name,
		Wrap: func(next CallFunc) CallFunc {
			return func(ctx context.Context, method string, params []any) (json.RawMessage, error) {
				*trace = append(*trace, name)
				return next(ctx, method, params)
			}
		},
	}
}

func TestOnionOrdering(t *testing.T) {
	var trace []string
	onion, err := NewOnion(tagging("outer", &trace), tagging("inner", &trace))
	if err != nil {
		t.Fatalf("build onion: %v", err)
	}

	base := func(context.Context, string, []any) (json.RawMessage, error) {
		trace = append(trace, "base")
		return json.RawMessage(`"ok"`), nil
	}
	if _, err := onion.apply(base)(context.Background(), "test_method", nil); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	want := []string{"outer", "inner", "base"}
	if len(trace) != len(want) {
		t.Fatalf("unexpected trace %v", trace)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("layer order wrong: got %v, want %v", trace, want)
		}
	}
}

func TestOnionMutations(t *testing.T) {
	var trace []string
	onion, err := NewOnion(tagging("a", &trace), tagging("c", &trace))
	if err != nil {
		t.Fatalf("build onion: %v", err)
	}

	if err := onion.InjectAfter("a", tagging("b", &trace)); err != nil {
		t.Fatalf("inject after: %v", err)
	}
	if err := onion.Add(tagging("outermost", &trace)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := onion.Append(tagging("innermost", &trace)); err != nil {
		t.Fatalf("append: %v", err)
	}

	names := onion.Names()
	want := []string{"outermost", "a", "b", "c", "innermost"}
	if len(names) != len(want) {
		t.Fatalf("unexpected names %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("unexpected order: got %v, want %v", names, want)
		}
	}

	if err := onion.Add(tagging("a", &trace)); xerrors.CodeOf(err) != xerrors.CodeInvalidArgument {
		t.Fatalf("duplicate name must fail, got %v", err)
	}
	if err := onion.Remove("b"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := onion.Remove("b"); xerrors.CodeOf(err) != xerrors.CodeInvalidArgument {
		t.Fatalf("removing a missing layer must fail, got %v", err)
	}
	if err := onion.Replace("c", tagging("c2", &trace)); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if onion.Len() != 4 {
		t.Fatalf("expected 4 layers, got %d", onion.Len())
	}
}

func TestManagerDispatchAndDecode(t *testing.T) {
	stub := provider.NewMemoryProvider().Stub("eth_blockNumber", "0x10")
	mgr, err := New(stub)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	var out string
	if err := mgr.Request(context.Background(), "eth_blockNumber", &out); err != nil {
		t.Fatalf("request: %v", err)
	}
	if out != "0x10" {
		t.Fatalf("unexpected result %q", out)
	}

	calls := stub.Calls()
	if len(calls) != 1 || calls[0].Method != "eth_blockNumber" {
		t.Fatalf("unexpected recorded calls %+v", calls)
	}
}

func TestManagerProviderSwapKeepsOnion(t *testing.T) {
	var trace []string
	first := provider.NewMemoryProvider().Stub("net_version", "1")
	mgr, err := New(first, tagging("witness", &trace))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	if err := mgr.Request(context.Background(), "net_version", nil); err != nil {
		t.Fatalf("request against first provider: %v", err)
	}

	second := provider.NewMemoryProvider().Stub("net_version", "5")
	mgr.SetProvider(second)

	var out string
	if err := mgr.Request(context.Background(), "net_version", &out); err != nil {
		t.Fatalf("request against second provider: %v", err)
	}
	if out != "5" {
		t.Fatalf("swap did not take effect, got %q", out)
	}
	if len(trace) != 2 {
		t.Fatalf("middleware must keep wrapping after a provider swap, saw %d passes", len(trace))
	}
	if mgr.Provider() != second {
		t.Fatalf("Provider() should report the installed transport")
	}
}

func TestManagerWithoutProvider(t *testing.T) {
	mgr, err := New(nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if mgr.IsConnected(context.Background()) {
		t.Fatalf("nil provider cannot be connected")
	}
	if err := mgr.Request(context.Background(), "net_version", nil); xerrors.CodeOf(err) != xerrors.CodeTransport {
		t.Fatalf("expected TRANSPORT error, got %v", err)
	}
}

func TestManagerOnionChangesApply(t *testing.T) {
	stub := provider.NewMemoryProvider().Stub("net_version", "1")
	mgr, err := New(stub)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if err := mgr.Request(context.Background(), "net_version", nil); err != nil {
		t.Fatalf("request: %v", err)
	}

	var trace []string
	if err := mgr.Onion().Add(tagging("late", &trace)); err != nil {
		t.Fatalf("add middleware: %v", err)
	}
	if err := mgr.Request(context.Background(), "net_version", nil); err != nil {
		t.Fatalf("request after onion change: %v", err)
	}
	if len(trace) != 1 {
		t.Fatalf("late middleware must apply to later requests, saw %d passes", len(trace))
	}
}
