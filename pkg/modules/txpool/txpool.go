// Package txpool is the txpool_* namespace of the client facade.
package txpool

import (
	"context"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"

	xerrors "OpenWeb3-Client/internal/errors"
	"OpenWeb3-Client/internal/manager"
	"OpenWeb3-Client/pkg/compose"
)

// Module issues txpool_* requests through the host's request manager.
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
		return xerrors.New(xerrors.CodeComposition, "txpool module requires a host")
	}
	m.mgr = host.Coordinator()
	return host.Bind(name, m)
}

// Status summarises the pool occupancy.
type Status struct {
	Pending hexutil.Uint `json:"pending"`
	Queued  hexutil.Uint `json:"queued"`
}

// Status returns the number of pending and queued transactions.
func (m *Module) Status(ctx context.Context) (Status, error) {
	var out Status
	if err := m.mgr.Request(ctx, "txpool_status", &out); err != nil {
		return Status{}, err
	}
	return out, nil
}

// Content returns the full pool grouped by account and nonce. The payload
// shape varies per node, so it stays raw.
func (m *Module) Content(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := m.mgr.Request(ctx, "txpool_content", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Inspect returns the pool in the node's human readable summary form.
func (m *Module) Inspect(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := m.mgr.Request(ctx, "txpool_inspect", &out); err != nil {
		return nil, err
	}
	return out, nil
}
