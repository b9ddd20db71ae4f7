package web3

import (
	"context"
	"testing"

	xerrors "OpenWeb3-Client/internal/errors"
	"OpenWeb3-Client/pkg/compose"
	"OpenWeb3-Client/pkg/modules/eth"
	netmod "OpenWeb3-Client/pkg/modules/net"
	"OpenWeb3-Client/pkg/provider"
)

func newTestClient(t *testing.T, opts ...Option) (*Client, *provider.MemoryProvider) {
	t.Helper()
	stub := provider.NewMemoryProvider()
	client, err := New(stub, opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, stub
}

func TestNewComposesDefaultNamespaces(t *testing.T) {
	client, _ := newTestClient(t)

	if client.Eth() == nil || client.Net() == nil || client.Version() == nil ||
		client.TxPool() == nil || client.Miner() == nil || client.Admin() == nil ||
		client.Geth() == nil {
		t.Fatalf("default composition must populate every typed namespace")
	}
	if client.Geth().Personal() == nil {
		t.Fatalf("personal must be attached under geth")
	}

	for _, name := range []string{"eth", "net", "version", "txpool", "miner", "admin", "geth"} {
		if _, ok := client.Module(name); !ok {
			t.Fatalf("namespace %s not reachable by name", name)
		}
	}
	if _, ok := client.Module("shh"); ok {
		t.Fatalf("unknown namespace must not resolve")
	}
}

func TestNewRejectsDuplicateModuleNames(t *testing.T) {
	stub := provider.NewMemoryProvider()
	_, err := New(stub, WithModules([]compose.ModuleSpec{
		{Name: "eth", Module: eth.New()},
		{Name: "eth", Module: netmod.New()},
	}))
	if xerrors.CodeOf(err) != xerrors.CodeComposition {
		t.Fatalf("expected COMPOSITION error, got %v", err)
	}
}

func TestWithModulesReplacesDefaults(t *testing.T) {
	client, _ := newTestClient(t, WithModules([]compose.ModuleSpec{
		{Name: "eth", Module: eth.New()},
	}))
	if client.Eth() == nil {
		t.Fatalf("eth should be attached")
	}
	if client.Net() != nil {
		t.Fatalf("net must not be attached when the module list omits it")
	}
	if _, ok := client.Module("miner"); ok {
		t.Fatalf("miner must not be attached when the module list omits it")
	}
}

func TestNamespacesShareOneDispatch(t *testing.T) {
	client, stub := newTestClient(t)
	stub.Stub("eth_blockNumber", "0x2a").Stub("net_version", "1")

	ctx := context.Background()
	block, err := client.Eth().BlockNumber(ctx)
	if err != nil {
		t.Fatalf("blockNumber: %v", err)
	}
	if block != 42 {
		t.Fatalf("unexpected block number %d", block)
	}
	if _, err := client.Net().Version(ctx); err != nil {
		t.Fatalf("net version: %v", err)
	}

	calls := stub.Calls()
	if len(calls) != 2 || calls[0].Method != "eth_blockNumber" || calls[1].Method != "net_version" {
		t.Fatalf("unexpected dispatch history %+v", calls)
	}
}

func TestProviderSwap(t *testing.T) {
	client, first := newTestClient(t)
	first.Stub("net_version", "1")

	ctx := context.Background()
	if v, err := client.Net().Version(ctx); err != nil || v != "1" {
		t.Fatalf("first provider: %v %q", err, v)
	}

	second := provider.NewMemoryProvider().Stub("net_version", "5")
	client.SetProvider(second)
	if client.Provider() != second {
		t.Fatalf("Provider() should report the replacement")
	}
	if v, err := client.Net().Version(ctx); err != nil || v != "5" {
		t.Fatalf("second provider: %v %q", err, v)
	}
}

func TestIsConnected(t *testing.T) {
	client, stub := newTestClient(t)
	if !client.IsConnected(context.Background()) {
		t.Fatalf("connected stub should probe true")
	}
	stub.SetConnected(false)
	if client.IsConnected(context.Background()) {
		t.Fatalf("disconnected stub should probe false")
	}
}

func TestPackageManagementGate(t *testing.T) {
	client, _ := newTestClient(t)

	if _, err := client.PM(); xerrors.CodeOf(err) != xerrors.CodeFeatureDisabled {
		t.Fatalf("pm must start disabled, got %v", err)
	}

	if err := client.EnableUnstablePackageManagementAPI(); err != nil {
		t.Fatalf("enable pm: %v", err)
	}
	module, err := client.PM()
	if err != nil {
		t.Fatalf("pm after enabling: %v", err)
	}
	if module == nil {
		t.Fatalf("enabled pm namespace is nil")
	}

	// Enabling twice is a no-op and keeps the same instance.
	if err := client.EnableUnstablePackageManagementAPI(); err != nil {
		t.Fatalf("re-enable pm: %v", err)
	}
	again, err := client.PM()
	if err != nil || again != module {
		t.Fatalf("re-enabling must not rebuild the namespace: %v", err)
	}
}

func TestResolverStates(t *testing.T) {
	// Unset: a default registry resolver is built on first use and reused.
	client, _ := newTestClient(t)
	first := client.ENS()
	if first == nil {
		t.Fatalf("unset state must build a default resolver")
	}
	if client.ENS() != first {
		t.Fatalf("default resolver must be built once")
	}

	// Explicitly disabled: nil, never a default.
	disabled, _ := newTestClient(t, WithoutResolver())
	if disabled.ENS() != nil {
		t.Fatalf("disabled client must report no resolver")
	}

	// Explicit resolver wins over the default.
	fake := &staticResolver{}
	explicit, _ := newTestClient(t, WithResolver(fake))
	if explicit.ENS() != fake {
		t.Fatalf("explicit resolver not returned")
	}

	// SetENS(nil) disables after the fact.
	explicit.SetENS(nil)
	if explicit.ENS() != nil {
		t.Fatalf("SetENS(nil) must disable resolution")
	}
}
