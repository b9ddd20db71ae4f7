// Package net is the net_* namespace of the client facade.
package net

import (
	"context"

	"github.com/ethereum/go-ethereum/common/hexutil"

	xerrors "OpenWeb3-Client/internal/errors"
	"OpenWeb3-Client/internal/manager"
	"OpenWeb3-Client/pkg/compose"
)

// Module issues net_* requests through the host's request manager.
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
		return xerrors.New(xerrors.CodeComposition, "net module requires a host")
	}
	m.mgr = host.Coordinator()
	return host.Bind(name, m)
}

// Version returns the network identifier as a decimal string.
func (m *Module) Version(ctx context.Context) (string, error) {
	var out string
	if err := m.mgr.Request(ctx, "net_version", &out); err != nil {
		return "", err
	}
	return out, nil
}

// PeerCount returns the number of connected peers.
func (m *Module) PeerCount(ctx context.Context) (uint64, error) {
	var out hexutil.Uint64
	if err := m.mgr.Request(ctx, "net_peerCount", &out); err != nil {
		return 0, err
	}
	return uint64(out), nil
}

// Listening reports whether the node accepts inbound connections.
func (m *Module) Listening(ctx context.Context) (bool, error) {
	var out bool
	if err := m.mgr.Request(ctx, "net_listening", &out); err != nil {
		return false, err
	}
	return out, nil
}
