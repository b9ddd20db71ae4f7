// Package ens resolves human readable names to addresses through the EIP-137
// registry contract.
package ens

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	xerrors "OpenWeb3-Client/internal/errors"
)

// DefaultRegistry is the canonical ENS registry deployment shared by mainnet
// and the public testnets.
var DefaultRegistry = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

// Function selectors on the registry and resolver contracts.
var (
	selectorResolver = hexutil.MustDecode("0x0178b8bf") // resolver(bytes32)
	selectorAddr     = hexutil.MustDecode("0x3b3b57de") // addr(bytes32)
)

// Caller dispatches eth_call requests. The request manager satisfies it.
type Caller interface {
	Request(ctx context.Context, method string, out any, params ...any) error
}

// Resolver turns a name into an address.
type Resolver interface {
	Resolve(ctx context.Context, name string) (common.Address, error)
}

// IsName reports whether a value looks like a resolvable name rather than a
// literal address.
func IsName(value string) bool {
	if value == "" || common.IsHexAddress(value) {
		return false
	}
	return strings.Contains(value, ".")
}

// Namehash computes the EIP-137 node for a name. Labels are hashed right to
// left into the accumulating node; the empty name is the zero node.
func Namehash(name string) common.Hash {
	node := make([]byte, 32)
	if name == "" {
		return common.BytesToHash(node)
	}
	labels := strings.Split(strings.ToLower(strings.TrimSpace(name)), ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		node = crypto.Keccak256(node, labelHash)
	}
	return common.BytesToHash(node)
}

// RegistryResolver resolves names via on-chain registry lookups dispatched
// through a Caller.
type RegistryResolver struct {
	caller   Caller
	registry common.Address
}

// RegistryOption customises a RegistryResolver.
type RegistryOption func(*RegistryResolver)

// WithRegistry overrides the registry contract address.
func WithRegistry(addr common.Address) RegistryOption {
	return func(r *RegistryResolver) { r.registry = addr }
}

// NewRegistryResolver binds a resolver to a caller.
func NewRegistryResolver(caller Caller, opts ...RegistryOption) *RegistryResolver {
	r := &RegistryResolver{caller: caller, registry: DefaultRegistry}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve looks the name's resolver up in the registry, then asks that
// resolver for the address record.
func (r *RegistryResolver) Resolve(ctx context.Context, name string) (common.Address, error) {
	if r == nil || r.caller == nil {
		return common.Address{}, xerrors.New(xerrors.CodeResolution, "resolver has no caller configured")
	}
	if !IsName(name) {
		return common.Address{}, xerrors.Newf(xerrors.CodeResolution, "%q is not a resolvable name", name)
	}
	node := Namehash(name)

	resolverAddr, err := r.contractAddress(ctx, r.registry, selectorResolver, node)
	if err != nil {
		return common.Address{}, xerrors.Wrap(xerrors.CodeResolution, err, fmt.Sprintf("look up resolver for %s", name))
	}
	if resolverAddr == (common.Address{}) {
		return common.Address{}, xerrors.Newf(xerrors.CodeResolution, "no resolver registered for %s", name)
	}

	addr, err := r.contractAddress(ctx, resolverAddr, selectorAddr, node)
	if err != nil {
		return common.Address{}, xerrors.Wrap(xerrors.CodeResolution, err, fmt.Sprintf("resolve %s", name))
	}
	if addr == (common.Address{}) {
		return common.Address{}, xerrors.Newf(xerrors.CodeResolution, "%s has no address record", name)
	}
	return addr, nil
}

// contractAddress performs an eth_call returning a single address word.
func (r *RegistryResolver) contractAddress(ctx context.Context, to common.Address, selector []byte, node common.Hash) (common.Address, error) {
	data := make([]byte, 0, len(selector)+common.HashLength)
	data = append(data, selector...)
	data = append(data, node.Bytes()...)

	var result string
	call := map[string]string{
		"to":   to.Hex(),
		"data": hexutil.Encode(data),
	}
	if err := r.caller.Request(ctx, "eth_call", &result, call, "latest"); err != nil {
		return common.Address{}, err
	}

	word, err := hexutil.Decode(result)
	if err != nil {
		return common.Address{}, fmt.Errorf("malformed eth_call result %q: %w", result, err)
	}
	if len(word) < common.AddressLength {
		return common.Address{}, fmt.Errorf("eth_call result %q is shorter than an address", result)
	}
	return common.BytesToAddress(word), nil
}
