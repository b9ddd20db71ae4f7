package web3

import (
	"context"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	xerrors "OpenWeb3-Client/internal/errors"
	"OpenWeb3-Client/pkg/abi"
	"OpenWeb3-Client/pkg/ens"
	"OpenWeb3-Client/pkg/keccak"
)

// Keccak hashes exactly one of the accepted input representations. It is the
// unbound form of (*Client).Keccak.
func Keccak(inputs ...keccak.Input) (common.Hash, error) {
	return keccak.Sum(inputs...)
}

// Keccak hashes exactly one of the accepted input representations.
func (c *Client) Keccak(inputs ...keccak.Input) (common.Hash, error) {
	return keccak.Sum(inputs...)
}

// SolidityKeccak executes keccak256 exactly as Solidity does over the packed
// encoding of the values. The unbound form attempts no name resolution:
// name-like values pass through as literal strings.
func SolidityKeccak(abiTypes []string, values []any) (common.Hash, error) {
	return solidityKeccak(context.Background(), nil, abiTypes, values)
}

// SolidityKeccak is the bound form; address-typed values that look like
// resolvable names are substituted through the client's resolver first.
func (c *Client) SolidityKeccak(ctx context.Context, abiTypes []string, values []any) (common.Hash, error) {
	return solidityKeccak(ctx, c.ENS(), abiTypes, values)
}

func solidityKeccak(ctx context.Context, resolver ens.Resolver, abiTypes []string, values []any) (common.Hash, error) {
	if len(abiTypes) != len(values) {
		return common.Hash{}, xerrors.Newf(xerrors.CodeArityMismatch,
			"length mismatch between abi types and values: got %d types and %d values", len(abiTypes), len(values))
	}

	packed := make([]byte, 0, 32*len(values))
	for i, typeTag := range abiTypes {
		value, err := normalizeValue(ctx, resolver, typeTag, values[i])
		if err != nil {
			return common.Hash{}, err
		}
		chunk, err := abi.EncodePacked(typeTag, value)
		if err != nil {
			return common.Hash{}, err
		}
		packed = append(packed, chunk...)
	}
	return crypto.Keccak256Hash(packed), nil
}

// normalizeValue substitutes resolvable names with addresses for address
// typed values. Everything else passes through unchanged; resolution is
// best-effort and never required when no resolver is present.
func normalizeValue(ctx context.Context, resolver ens.Resolver, typeTag string, value any) (any, error) {
	if resolver == nil {
		return value, nil
	}
	base := strings.TrimSpace(typeTag)
	for strings.HasSuffix(base, "]") {
		open := strings.LastIndex(base, "[")
		if open <= 0 {
			return value, nil
		}
		base = base[:open]
	}
	if base != "address" {
		return value, nil
	}

	if base == typeTag {
		return resolveIfName(ctx, resolver, value)
	}

	// Address array: rebuild the collection with each name substituted.
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return value, nil
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		resolved, err := resolveIfName(ctx, resolver, rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}

func resolveIfName(ctx context.Context, resolver ens.Resolver, value any) (any, error) {
	name, isString := value.(string)
	if !isString || !ens.IsName(name) {
		return value, nil
	}
	addr, err := resolver.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	return addr, nil
}
