package provider

import (
	"context"
	"encoding/json"
	"sync"

	xerrors "OpenWeb3-Client/internal/errors"
)

// MemoryProvider serves canned responses without any network dependency.
// It backs tests and offline tooling.
type MemoryProvider struct {
	mu        sync.Mutex
	responses map[string][]json.RawMessage
	calls     []RecordedCall
	connected bool
	closed    bool
}

// RecordedCall captures one request the provider received.
type RecordedCall struct {
	Method string
	Params []any
}

// NewMemoryProvider returns an empty, connected in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		responses: make(map[string][]json.RawMessage),
		connected: true,
	}
}

// Stub queues a response for a method. Multiple stubs for the same method
// are consumed in order; the last one is then repeated.
func (p *MemoryProvider) Stub(method string, result any) *MemoryProvider {
	raw, err := json.Marshal(result)
	if err != nil {
		panic(err)
	}
	p.mu.Lock()
	p.responses[method] = append(p.responses[method], raw)
	p.mu.Unlock()
	return p
}

// SetConnected controls the outcome of connectivity probes.
func (p *MemoryProvider) SetConnected(connected bool) {
	p.mu.Lock()
	p.connected = connected
	p.mu.Unlock()
}

// Calls returns a copy of every request received so far.
func (p *MemoryProvider) Calls() []RecordedCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]RecordedCall, len(p.calls))
	copy(out, p.calls)
	return out
}

// Call implements the Provider interface.
func (p *MemoryProvider) Call(_ context.Context, method string, params []any) (json.RawMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, xerrors.New(xerrors.CodeTransport, "provider is closed")
	}
	p.calls = append(p.calls, RecordedCall{Method: method, Params: params})

	queued := p.responses[method]
	if len(queued) == 0 {
		return nil, xerrors.Newf(xerrors.CodeRPC, "no stubbed response for %s", method)
	}
	raw := queued[0]
	if len(queued) > 1 {
		p.responses[method] = queued[1:]
	}
	return raw, nil
}

// IsConnected reports the configured connectivity state.
func (p *MemoryProvider) IsConnected(context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected && !p.closed
}

// Close marks the provider closed; later calls fail.
func (p *MemoryProvider) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}
