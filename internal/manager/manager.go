// Package manager coordinates request dispatch between the facade and its
// provider. Every remote call funnels through one composed middleware chain
// wrapped around the active transport.
package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	xerrors "OpenWeb3-Client/internal/errors"
	"OpenWeb3-Client/pkg/provider"
)

// CallFunc is the dispatch signature every middleware layer wraps.
type CallFunc func(ctx context.Context, method string, params []any) (json.RawMessage, error)

// Manager owns the active provider and the middleware onion. The facade
// delegates its transport accessors here.
type Manager struct {
	mu       sync.RWMutex
	provider provider.Provider
	onion    *Onion

	chainMu      sync.Mutex
	chain        CallFunc
	chainVersion uint64
	chainValid   bool
}

// New wires a manager around a provider with the given onion layers,
// outermost first.
func New(p provider.Provider, layers ...Middleware) (*Manager, error) {
	onion, err := NewOnion(layers...)
	if err != nil {
		return nil, err
	}
	return &Manager{provider: p, onion: onion}, nil
}

// Provider returns the active transport.
func (m *Manager) Provider() provider.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.provider
}

// SetProvider installs a new transport. The onion is untouched, so every
// registered middleware keeps wrapping the replacement.
func (m *Manager) SetProvider(p provider.Provider) {
	m.mu.Lock()
	m.provider = p
	m.mu.Unlock()
}

// Onion returns the live interceptor chain.
func (m *Manager) Onion() *Onion {
	return m.onion
}

// base resolves the provider at call time so a provider swap is visible to
// in-flight compositions without rebuilding the chain.
func (m *Manager) base(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	p := m.Provider()
	if p == nil {
		return nil, xerrors.New(xerrors.CodeTransport, "no provider configured")
	}
	return p.Call(ctx, method, params)
}

func (m *Manager) composed() CallFunc {
	version := m.onion.Version()
	m.chainMu.Lock()
	defer m.chainMu.Unlock()
	if !m.chainValid || m.chainVersion != version {
		m.chain = m.onion.apply(m.base)
		m.chainVersion = version
		m.chainValid = true
	}
	return m.chain
}

// Call dispatches one request through the onion and returns the raw result.
func (m *Manager) Call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	return m.composed()(ctx, method, params)
}

// Request dispatches a request and decodes the result into out. A nil out
// discards the result.
func (m *Manager) Request(ctx context.Context, method string, out any, params ...any) error {
	raw, err := m.Call(ctx, method, params)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return xerrors.Wrap(xerrors.CodeRPC, err, fmt.Sprintf("decode %s result", method))
	}
	return nil
}

// IsConnected forwards the connectivity probe to the active provider.
// A missing provider simply reports false.
func (m *Manager) IsConnected(ctx context.Context) bool {
	p := m.Provider()
	if p == nil {
		return false
	}
	return p.IsConnected(ctx)
}

// Close releases the active provider.
func (m *Manager) Close() error {
	p := m.Provider()
	if p == nil {
		return nil
	}
	return p.Close()
}
