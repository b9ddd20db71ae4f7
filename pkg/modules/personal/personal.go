// Package personal is the account management namespace usually nested under
// the geth module.
package personal

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	xerrors "OpenWeb3-Client/internal/errors"
	"OpenWeb3-Client/internal/manager"
	"OpenWeb3-Client/pkg/compose"
)

// Module issues personal_* requests through the host's request manager.
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
		return xerrors.New(xerrors.CodeComposition, "personal module requires a host")
	}
	m.mgr = host.Coordinator()
	return host.Bind(name, m)
}

// ListAccounts returns the addresses in the node's keystore.
func (m *Module) ListAccounts(ctx context.Context) ([]common.Address, error) {
	var out []common.Address
	if err := m.mgr.Request(ctx, "personal_listAccounts", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NewAccount creates a keystore account protected by the passphrase.
func (m *Module) NewAccount(ctx context.Context, passphrase string) (common.Address, error) {
	var out common.Address
	if err := m.mgr.Request(ctx, "personal_newAccount", &out, passphrase); err != nil {
		return common.Address{}, err
	}
	return out, nil
}

// UnlockAccount unlocks the account for the given duration. A zero duration
// uses the node's default.
func (m *Module) UnlockAccount(ctx context.Context, account common.Address, passphrase string, duration time.Duration) (bool, error) {
	var out bool
	seconds := uint64(duration / time.Second)
	if err := m.mgr.Request(ctx, "personal_unlockAccount", &out, account, passphrase, seconds); err != nil {
		return false, err
	}
	return out, nil
}

// LockAccount locks the account again.
func (m *Module) LockAccount(ctx context.Context, account common.Address) (bool, error) {
	var out bool
	if err := m.mgr.Request(ctx, "personal_lockAccount", &out, account); err != nil {
		return false, err
	}
	return out, nil
}
