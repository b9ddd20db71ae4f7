// Package version reports client and protocol version strings.
package version

import (
	"context"

	xerrors "OpenWeb3-Client/internal/errors"
	"OpenWeb3-Client/internal/manager"
	"OpenWeb3-Client/pkg/compose"
)

// APIVersion is the version of this client library.
const APIVersion = "0.3.0"

// Module issues version lookups through the host's request manager.
type Module struct {
	mgr *manager.Manager
}

// New returns an unattached module.
func New() *Module {
	return &Module{}
}

// Attach implements compose.Capability.
func (m *Module) Attach(host compose.Host, name string) error {
	if host == nil {
		return xerrors.New(xerrors.CodeComposition, "version module requires a host")
	}
	m.mgr = host.Coordinator()
	return host.Bind(name, m)
}

// API returns the library version. No network call is involved.
func (m *Module) API() string {
	return APIVersion
}

// Node returns the connected node's client version string.
func (m *Module) Node(ctx context.Context) (string, error) {
	var out string
	if err := m.mgr.Request(ctx, "web3_clientVersion", &out); err != nil {
		return "", err
	}
	return out, nil
}

// Ethereum returns the protocol version the node speaks.
func (m *Module) Ethereum(ctx context.Context) (string, error) {
	var out string
	if err := m.mgr.Request(ctx, "eth_protocolVersion", &out); err != nil {
		return "", err
	}
	return out, nil
}
