// Package admin is the admin_* namespace of the client facade.
package admin

import (
	"context"

	xerrors "OpenWeb3-Client/internal/errors"
	"OpenWeb3-Client/internal/manager"
	"OpenWeb3-Client/pkg/compose"
)

// Module issues admin_* requests through the host's request manager.
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
		return xerrors.New(xerrors.CodeComposition, "admin module requires a host")
	}
	m.mgr = host.Coordinator()
	return host.Bind(name, m)
}

// NodeInfo is the subset of admin_nodeInfo fields this facade surfaces.
type NodeInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Enode string `json:"enode"`
	IP    string `json:"ip"`
}

// Peer describes one connected peer.
type Peer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enode   string `json:"enode"`
	Network struct {
		LocalAddress  string `json:"localAddress"`
		RemoteAddress string `json:"remoteAddress"`
	} `json:"network"`
}

// NodeInfo returns identity details of the connected node.
func (m *Module) NodeInfo(ctx context.Context) (NodeInfo, error) {
	var out NodeInfo
	if err := m.mgr.Request(ctx, "admin_nodeInfo", &out); err != nil {
		return NodeInfo{}, err
	}
	return out, nil
}

// Peers lists the node's connected peers.
func (m *Module) Peers(ctx context.Context) ([]Peer, error) {
	var out []Peer
	if err := m.mgr.Request(ctx, "admin_peers", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddPeer asks the node to connect to the given enode URL.
func (m *Module) AddPeer(ctx context.Context, enode string) (bool, error) {
	var out bool
	if err := m.mgr.Request(ctx, "admin_addPeer", &out, enode); err != nil {
		return false, err
	}
	return out, nil
}

// Datadir returns the node's data directory path.
func (m *Module) Datadir(ctx context.Context) (string, error) {
	var out string
	if err := m.mgr.Request(ctx, "admin_datadir", &out); err != nil {
		return "", err
	}
	return out, nil
}
