// Package pm is the package management namespace. It is feature gated on the
// facade: the namespace exists only after an explicit activation call.
package pm

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	xerrors "OpenWeb3-Client/internal/errors"
	"OpenWeb3-Client/internal/manager"
	"OpenWeb3-Client/pkg/compose"
)

// Module talks to an on-chain package registry.
type Module struct {
	mgr *manager.Manager

	mu       sync.RWMutex
	registry common.Address
	bound    bool
}

// New returns an unattached module.
func New() *Module {
	return &Module{}
}

// Attach implements compose.Capability.
func (m *Module) Attach(host compose.Host, name string) error {
	if host == nil {
		return xerrors.New(xerrors.CodeComposition, "pm module requires a host")
	}
	m.mgr = host.Coordinator()
	return host.Bind(name, m)
}

// SetRegistry points the namespace at a deployed package registry.
func (m *Module) SetRegistry(addr common.Address) error {
	if addr == (common.Address{}) {
		return xerrors.New(xerrors.CodeInvalidArgument, "registry address cannot be the zero address")
	}
	m.mu.Lock()
	m.registry = addr
	m.bound = true
	m.mu.Unlock()
	return nil
}

// Registry returns the configured registry address.
func (m *Module) Registry() (common.Address, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.bound {
		return common.Address{}, xerrors.New(xerrors.CodeInvalidArgument, "no package registry configured; call SetRegistry first")
	}
	return m.registry, nil
}

// RegistryCode fetches the registry contract code, mostly as an existence
// check before issuing package lookups.
func (m *Module) RegistryCode(ctx context.Context) (string, error) {
	registry, err := m.Registry()
	if err != nil {
		return "", err
	}
	var out string
	if err := m.mgr.Request(ctx, "eth_getCode", &out, registry, "latest"); err != nil {
		return "", err
	}
	return out, nil
}
