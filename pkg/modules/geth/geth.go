// Package geth groups the geth-specific namespaces. Unlike the flat modules
// it hosts submodules of its own, such as personal.
package geth

import (
	"context"
	"sync"

	xerrors "OpenWeb3-Client/internal/errors"
	"OpenWeb3-Client/internal/manager"
	"OpenWeb3-Client/pkg/compose"
	"OpenWeb3-Client/pkg/modules/personal"
)

// Module is a namespace that can itself host attached submodules.
type Module struct {
	mgr *manager.Manager

	mu         sync.RWMutex
	submodules map[string]any
	personal   *personal.Module
}

// New returns an unattached module.
func New() *Module {
	return &Module{submodules: make(map[string]any)}
}

// Attach implements compose.Capability.
func (m *Module) Attach(host compose.Host, name string) error {
	if host == nil {
		return xerrors.New(xerrors.CodeComposition, "geth module requires a host")
	}
	m.mgr = host.Coordinator()
	return host.Bind(name, m)
}

// Bind implements compose.Host for submodule attachment.
func (m *Module) Bind(name string, module any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.submodules[name]; taken {
		return xerrors.Newf(xerrors.CodeComposition, "submodule name %s is already bound", name)
	}
	m.submodules[name] = module
	if p, ok := module.(*personal.Module); ok && m.personal == nil {
		m.personal = p
	}
	return nil
}

// Resolve implements compose.Host.
func (m *Module) Resolve(name string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	module, ok := m.submodules[name]
	return module, ok
}

// Coordinator implements compose.Host.
func (m *Module) Coordinator() *manager.Manager {
	return m.mgr
}

// Personal returns the attached personal submodule, or nil when the
// composition did not declare one.
func (m *Module) Personal() *personal.Module {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.personal
}

// Syncing reports whether the node is still importing blocks. eth_syncing
// answers false once fully synced and a progress object otherwise.
func (m *Module) Syncing(ctx context.Context) (bool, error) {
	var out any
	if err := m.mgr.Request(ctx, "eth_syncing", &out); err != nil {
		return false, err
	}
	synced, isBool := out.(bool)
	if isBool && !synced {
		return false, nil
	}
	return true, nil
}
