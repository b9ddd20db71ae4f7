package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	xerrors "OpenWeb3-Client/internal/errors"
)

func TestMemoryProviderServesStubsInOrder(t *testing.T) {
	stub := NewMemoryProvider().
		Stub("eth_blockNumber", "0x1").
		Stub("eth_blockNumber", "0x2")

	ctx := context.Background()
	for _, want := range []string{`"0x1"`, `"0x2"`, `"0x2"`} {
		raw, err := stub.Call(ctx, "eth_blockNumber", nil)
		if err != nil {
			t.Fatalf("call: %v", err)
		}
		if string(raw) != want {
			t.Fatalf("got %s, want %s", raw, want)
		}
	}

	if len(stub.Calls()) != 3 {
		t.Fatalf("expected 3 recorded calls, got %d", len(stub.Calls()))
	}
}

func TestMemoryProviderUnstubbedMethod(t *testing.T) {
	stub := NewMemoryProvider()
	_, err := stub.Call(context.Background(), "eth_blockNumber", nil)
	if xerrors.CodeOf(err) != xerrors.CodeRPC {
		t.Fatalf("expected RPC_ERROR for unstubbed method, got %v", err)
	}
}

func TestMemoryProviderClose(t *testing.T) {
	stub := NewMemoryProvider().Stub("net_version", "1")
	if err := stub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if stub.IsConnected(context.Background()) {
		t.Fatalf("closed provider cannot be connected")
	}
	if _, err := stub.Call(context.Background(), "net_version", nil); xerrors.CodeOf(err) != xerrors.CodeTransport {
		t.Fatalf("closed provider must fail with TRANSPORT, got %v", err)
	}
}

func TestNewHTTPProviderValidatesEndpoint(t *testing.T) {
	for _, endpoint := range []string{"ws://localhost:8546", "ipc:///tmp/geth.ipc", "://bad"} {
		if _, err := NewHTTPProvider(endpoint); xerrors.CodeOf(err) != xerrors.CodeInvalidArgument {
			t.Fatalf("endpoint %q must be rejected, got %v", endpoint, err)
		}
	}
	if _, err := NewHTTPProvider("https://rpc.example.org"); err != nil {
		t.Fatalf("https endpoint rejected: %v", err)
	}
}

func TestHTTPProviderRoundTrip(t *testing.T) {
	var received jsonrpcRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected HTTP method %s", r.Method)
		}
		if got := r.Header.Get("X-Api-Key"); got != "secret" {
			t.Errorf("custom header missing, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":"` + received.ID + `","result":"0x2a"}`))
	}))
	defer server.Close()

	p, err := NewHTTPProvider(server.URL, WithHeader("X-Api-Key", "secret"))
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	defer p.Close()

	raw, err := p.Call(context.Background(), "eth_blockNumber", nil)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if string(raw) != `"0x2a"` {
		t.Fatalf("unexpected result %s", raw)
	}

	if received.JSONRPC != "2.0" || received.Method != "eth_blockNumber" {
		t.Fatalf("malformed request on the wire: %+v", received)
	}
	if received.ID == "" {
		t.Fatalf("requests must carry an id")
	}
	if received.Params == nil {
		t.Fatalf("nil params must be sent as an empty array")
	}
}

func TestHTTPProviderErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":"1","error":{"code":-32601,"message":"method not found"}}`))
	}))
	defer server.Close()

	p, err := NewHTTPProvider(server.URL)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	_, err = p.Call(context.Background(), "eth_unknown", nil)
	if xerrors.CodeOf(err) != xerrors.CodeRPC {
		t.Fatalf("expected RPC_ERROR, got %v", err)
	}
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) || rpcErr.Code != -32601 {
		t.Fatalf("error object lost: %v", err)
	}
}

func TestHTTPProviderServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	p, err := NewHTTPProvider(server.URL)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	_, err = p.Call(context.Background(), "net_version", nil)
	if xerrors.CodeOf(err) != xerrors.CodeTransport {
		t.Fatalf("expected TRANSPORT for HTTP %d, got %v", http.StatusBadGateway, err)
	}
}

func TestHTTPProviderIsConnected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":"1","result":"Geth/v1.14.0"}`))
	}))

	p, err := NewHTTPProvider(server.URL)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if !p.IsConnected(context.Background()) {
		t.Fatalf("healthy endpoint should probe true")
	}

	server.Close()
	if p.IsConnected(context.Background()) {
		t.Fatalf("dead endpoint should probe false")
	}
}
