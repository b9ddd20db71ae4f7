// Package miner is the miner_* namespace of the client facade.
package miner

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	xerrors "OpenWeb3-Client/internal/errors"
	"OpenWeb3-Client/internal/manager"
	"OpenWeb3-Client/pkg/compose"
)

// Module issues miner_* requests through the host's request manager.
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
		return xerrors.New(xerrors.CodeComposition, "miner module requires a host")
	}
	m.mgr = host.Coordinator()
	return host.Bind(name, m)
}

// Start asks the node to begin mining with the given thread count.
func (m *Module) Start(ctx context.Context, threads int) error {
	return m.mgr.Request(ctx, "miner_start", nil, threads)
}

// Stop asks the node to stop mining.
func (m *Module) Stop(ctx context.Context) error {
	return m.mgr.Request(ctx, "miner_stop", nil)
}

// SetEtherbase changes the coinbase rewards are credited to.
func (m *Module) SetEtherbase(ctx context.Context, etherbase common.Address) error {
	return m.mgr.Request(ctx, "miner_setEtherbase", nil, etherbase)
}

// SetGasPrice sets the minimal gas price for accepted transactions, given in
// wei as a decimal or hex string per the node's convention.
func (m *Module) SetGasPrice(ctx context.Context, price string) error {
	return m.mgr.Request(ctx, "miner_setGasPrice", nil, price)
}
