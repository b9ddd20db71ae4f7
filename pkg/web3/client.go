// Package web3 exposes the composed client facade. A Client is assembled
// once from a list of module specs, dispatches every remote call through the
// request manager's middleware onion, and carries the hashing utilities that
// match Solidity's keccak256 semantics.
package web3

import (
	"context"
	"sync"

	xerrors "OpenWeb3-Client/internal/errors"
	"OpenWeb3-Client/internal/manager"
	"OpenWeb3-Client/pkg/compose"
	"OpenWeb3-Client/pkg/ens"
	"OpenWeb3-Client/pkg/modules/admin"
	"OpenWeb3-Client/pkg/modules/eth"
	"OpenWeb3-Client/pkg/modules/geth"
	"OpenWeb3-Client/pkg/modules/miner"
	netmod "OpenWeb3-Client/pkg/modules/net"
	"OpenWeb3-Client/pkg/modules/personal"
	"OpenWeb3-Client/pkg/modules/txpool"
	"OpenWeb3-Client/pkg/modules/version"
	"OpenWeb3-Client/pkg/pm"
	"OpenWeb3-Client/pkg/provider"
)

// gate for the lazily bound package management namespace
const pmBinding = "_pm"

type ensState int

const (
	ensUnset ensState = iota
	ensExplicit
	ensNone
)

// Client is the facade. Composition runs once inside New; afterwards the
// attached namespaces are reachable by their declared names and every remote
// call routes through the manager.
type Client struct {
	manager *manager.Manager

	mu      sync.RWMutex
	modules map[string]any

	eth     *eth.Module
	net     *netmod.Module
	version *version.Module
	txpool  *txpool.Module
	miner   *miner.Module
	admin   *admin.Module
	geth    *geth.Module
	pm      *pm.Module

	ensMu       sync.Mutex
	ensState    ensState
	ensResolver ens.Resolver
}

// Option customises client construction.
type Option func(*settings)

type settings struct {
	middlewares []manager.Middleware
	specs       []compose.ModuleSpec
	specsSet    bool
	resolver    ens.Resolver
	ensState    ensState
}

// WithMiddlewares seeds the onion, outermost first.
func WithMiddlewares(layers ...manager.Middleware) Option {
	return func(s *settings) { s.middlewares = append(s.middlewares, layers...) }
}

// WithModules replaces the default module list.
func WithModules(specs []compose.ModuleSpec) Option {
	return func(s *settings) {
		s.specs = specs
		s.specsSet = true
	}
}

// WithResolver installs an explicit name resolver instead of the lazily
// constructed default.
func WithResolver(r ens.Resolver) Option {
	return func(s *settings) {
		s.resolver = r
		s.ensState = ensExplicit
	}
}

// WithoutResolver disables name resolution entirely. This is distinct from
// leaving the resolver unset, which builds a default on first use.
func WithoutResolver() Option {
	return func(s *settings) {
		s.resolver = nil
		s.ensState = ensNone
	}
}

// New builds a manager around the provider, composes the module list onto
// the facade and returns it. Construction is single threaded by contract.
func New(p provider.Provider, opts ...Option) (*Client, error) {
	cfg := settings{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	mgr, err := manager.New(p, cfg.middlewares...)
	if err != nil {
		return nil, err
	}

	c := &Client{
		manager:     mgr,
		modules:     make(map[string]any),
		ensState:    cfg.ensState,
		ensResolver: cfg.resolver,
	}

	specs := cfg.specs
	if !cfg.specsSet {
		specs = DefaultModules()
	}
	if err := compose.Compose(c, specs); err != nil {
		return nil, err
	}
	return c, nil
}

// Bind implements compose.Host. A second binding under a taken name fails
// instead of overwriting.
func (c *Client) Bind(name string, module any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, taken := c.modules[name]; taken {
		return xerrors.Newf(xerrors.CodeComposition, "module name %s is already bound", name)
	}
	c.modules[name] = module

	// Resolve the well-known namespaces into typed fields once.
	switch m := module.(type) {
	case *eth.Module:
		if c.eth == nil {
			c.eth = m
		}
	case *netmod.Module:
		if c.net == nil {
			c.net = m
		}
	case *version.Module:
		if c.version == nil {
			c.version = m
		}
	case *txpool.Module:
		if c.txpool == nil {
			c.txpool = m
		}
	case *miner.Module:
		if c.miner == nil {
			c.miner = m
		}
	case *admin.Module:
		if c.admin == nil {
			c.admin = m
		}
	case *geth.Module:
		if c.geth == nil {
			c.geth = m
		}
	}
	return nil
}

// Resolve implements compose.Host.
func (c *Client) Resolve(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	module, ok := c.modules[name]
	return module, ok
}

// Coordinator implements compose.Host.
func (c *Client) Coordinator() *manager.Manager {
	return c.manager
}

// Module returns any attached namespace by its declared name.
func (c *Client) Module(name string) (any, bool) {
	return c.Resolve(name)
}

// Eth returns the eth namespace.
func (c *Client) Eth() *eth.Module { return c.eth }

// Net returns the net namespace.
func (c *Client) Net() *netmod.Module { return c.net }

// Version returns the version namespace.
func (c *Client) Version() *version.Module { return c.version }

// TxPool returns the txpool namespace.
func (c *Client) TxPool() *txpool.Module { return c.txpool }

// Miner returns the miner namespace.
func (c *Client) Miner() *miner.Module { return c.miner }

// Admin returns the admin namespace.
func (c *Client) Admin() *admin.Module { return c.admin }

// Geth returns the geth namespace.
func (c *Client) Geth() *geth.Module { return c.geth }

// Provider returns the active transport.
func (c *Client) Provider() provider.Provider {
	return c.manager.Provider()
}

// SetProvider installs a new transport without touching the onion.
func (c *Client) SetProvider(p provider.Provider) {
	c.manager.SetProvider(p)
}

// MiddlewareOnion returns the live interceptor chain so callers can inspect
// or extend cross-cutting behaviour. The facade itself implements none.
func (c *Client) MiddlewareOnion() *manager.Onion {
	return c.manager.Onion()
}

// IsConnected forwards the probe to the active provider. Probe failure is
// false, never an error.
func (c *Client) IsConnected(ctx context.Context) bool {
	return c.manager.IsConnected(ctx)
}

// Close releases the active provider.
func (c *Client) Close() error {
	return c.manager.Close()
}

// ENS returns the resolver this client uses for name resolution. With no
// explicit choice a registry resolver bound to this client is built lazily;
// after DisableENS it returns nil.
func (c *Client) ENS() ens.Resolver {
	c.ensMu.Lock()
	defer c.ensMu.Unlock()
	switch c.ensState {
	case ensExplicit:
		return c.ensResolver
	case ensNone:
		return nil
	default:
		if c.ensResolver == nil {
			c.ensResolver = ens.NewRegistryResolver(c.manager)
		}
		return c.ensResolver
	}
}

// SetENS installs an explicit resolver. Passing nil disables resolution,
// equivalent to DisableENS.
func (c *Client) SetENS(r ens.Resolver) {
	c.ensMu.Lock()
	defer c.ensMu.Unlock()
	if r == nil {
		c.ensState = ensNone
		c.ensResolver = nil
		return
	}
	c.ensState = ensExplicit
	c.ensResolver = r
}

// DisableENS switches the client to the explicit "no resolver" state.
func (c *Client) DisableENS() {
	c.SetENS(nil)
}

// PM returns the package management namespace. The feature is disabled until
// EnableUnstablePackageManagementAPI has been called.
func (c *Client) PM() (*pm.Module, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.pm == nil {
		return nil, xerrors.New(xerrors.CodeFeatureDisabled,
			"the package management feature is disabled by default until its API stabilizes; enable it with EnableUnstablePackageManagementAPI and try again")
	}
	return c.pm, nil
}

// EnableUnstablePackageManagementAPI activates the gated pm namespace.
// Calling it again is a no-op.
func (c *Client) EnableUnstablePackageManagementAPI() error {
	c.mu.RLock()
	enabled := c.pm != nil
	c.mu.RUnlock()
	if enabled {
		return nil
	}
	module := pm.New()
	if err := module.Attach(c, pmBinding); err != nil {
		return err
	}
	c.mu.Lock()
	c.pm = module
	c.mu.Unlock()
	return nil
}

// DefaultModules is the composition list New uses when the caller does not
// supply one.
func DefaultModules() []compose.ModuleSpec {
	return []compose.ModuleSpec{
		{Name: "eth", Module: eth.New()},
		{Name: "net", Module: netmod.New()},
		{Name: "version", Module: version.New()},
		{Name: "txpool", Module: txpool.New()},
		{Name: "miner", Module: miner.New()},
		{Name: "admin", Module: admin.New()},
		{Name: "geth", Module: geth.New(), Submodules: []compose.SubmoduleSpec{
			{Name: "personal", Module: personal.New()},
		}},
	}
}
