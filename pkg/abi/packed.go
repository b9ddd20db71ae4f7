// Package abi implements Solidity's non-padded ("packed") ABI encoding,
// the rule set behind abi.encodePacked. Values are encoded at their exact
// declared width with no length prefixes, so digests computed over the
// concatenation match keccak256(abi.encodePacked(...)) on chain.
package abi

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	xerrors "OpenWeb3-Client/internal/errors"
)

// EncodePacked encodes one value under the given ABI type tag.
func EncodePacked(typeTag string, value any) ([]byte, error) {
	tag := strings.TrimSpace(typeTag)
	if tag == "" {
		return nil, xerrors.New(xerrors.CodeEncoding, "empty abi type tag")
	}

	if elem, size, ok := splitArrayTag(tag); ok {
		return encodeArray(elem, size, value)
	}

	switch {
	case tag == "bool":
		return encodeBool(value)
	case tag == "address":
		return encodeAddress(value)
	case tag == "string":
		return encodeString(value)
	case tag == "bytes":
		return encodeDynamicBytes(value)
	case strings.HasPrefix(tag, "bytes"):
		size, err := strconv.Atoi(tag[len("bytes"):])
		if err != nil || size < 1 || size > 32 {
			return nil, xerrors.Newf(xerrors.CodeEncoding, "unsupported abi type %q", tag)
		}
		return encodeFixedBytes(size, value)
	case strings.HasPrefix(tag, "uint"):
		bits, err := intBits(tag[len("uint"):])
		if err != nil {
			return nil, xerrors.Newf(xerrors.CodeEncoding, "unsupported abi type %q", tag)
		}
		return encodeUint(bits, value)
	case strings.HasPrefix(tag, "int"):
		bits, err := intBits(tag[len("int"):])
		if err != nil {
			return nil, xerrors.Newf(xerrors.CodeEncoding, "unsupported abi type %q", tag)
		}
		return encodeInt(bits, value)
	default:
		return nil, xerrors.Newf(xerrors.CodeEncoding, "unsupported abi type %q", tag)
	}
}

// splitArrayTag peels the trailing array suffix off a type tag. The returned
// size is -1 for dynamic arrays.
func splitArrayTag(tag string) (elem string, size int, ok bool) {
	if !strings.HasSuffix(tag, "]") {
		return "", 0, false
	}
	open := strings.LastIndex(tag, "[")
	if open <= 0 {
		return "", 0, false
	}
	inner := tag[open+1 : len(tag)-1]
	if inner == "" {
		return tag[:open], -1, true
	}
	n, err := strconv.Atoi(inner)
	if err != nil || n < 0 {
		return "", 0, false
	}
	return tag[:open], n, true
}

// intBits parses the bit suffix of uintN/intN. A bare uint/int means 256.
func intBits(suffix string) (int, error) {
	if suffix == "" {
		return 256, nil
	}
	bits, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, err
	}
	if bits < 8 || bits > 256 || bits%8 != 0 {
		return 0, fmt.Errorf("invalid bit width %d", bits)
	}
	return bits, nil
}

func encodeArray(elemTag string, size int, value any) ([]byte, error) {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, xerrors.Newf(xerrors.CodeEncoding, "abi type %s[] requires a slice or array value, got %T", elemTag, value)
	}
	if size >= 0 && rv.Len() != size {
		return nil, xerrors.Newf(xerrors.CodeEncoding, "abi type %s[%d] requires exactly %d elements, got %d", elemTag, size, size, rv.Len())
	}
	var out []byte
	for i := 0; i < rv.Len(); i++ {
		chunk, err := EncodePacked(elemTag, rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

func encodeBool(value any) ([]byte, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, xerrors.Newf(xerrors.CodeEncoding, "abi type bool requires a bool value, got %T", value)
	}
	if b {
		return []byte{0x01}, nil
	}
	return []byte{0x00}, nil
}

func encodeAddress(value any) ([]byte, error) {
	switch v := value.(type) {
	case common.Address:
		return v.Bytes(), nil
	case *common.Address:
		if v == nil {
			return nil, xerrors.New(xerrors.CodeEncoding, "abi type address received a nil address pointer")
		}
		return v.Bytes(), nil
	case [20]byte:
		return append([]byte(nil), v[:]...), nil
	case []byte:
		if len(v) != common.AddressLength {
			return nil, xerrors.Newf(xerrors.CodeEncoding, "abi type address requires %d bytes, got %d", common.AddressLength, len(v))
		}
		return append([]byte(nil), v...), nil
	case string:
		if !common.IsHexAddress(v) {
			return nil, xerrors.Newf(xerrors.CodeEncoding, "abi type address received %q, which is not a hex address", v)
		}
		return common.HexToAddress(v).Bytes(), nil
	default:
		return nil, xerrors.Newf(xerrors.CodeEncoding, "abi type address cannot encode value of type %T", value)
	}
}

func encodeString(value any) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return append([]byte(nil), v...), nil
	default:
		return nil, xerrors.Newf(xerrors.CodeEncoding, "abi type string cannot encode value of type %T", value)
	}
}

func encodeDynamicBytes(value any) ([]byte, error) {
	buf, err := bytesValue(value)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeEncoding, err, "abi type bytes received an unsupported value")
	}
	return buf, nil
}

func encodeFixedBytes(size int, value any) ([]byte, error) {
	buf, err := bytesValue(value)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeEncoding, err, fmt.Sprintf("abi type bytes%d received an unsupported value", size))
	}
	if len(buf) != size {
		return nil, xerrors.Newf(xerrors.CodeEncoding, "abi type bytes%d requires exactly %d bytes, got %d", size, size, len(buf))
	}
	return buf, nil
}

func bytesValue(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return append([]byte(nil), v...), nil
	case string:
		if !strings.HasPrefix(v, "0x") && !strings.HasPrefix(v, "0X") {
			return nil, fmt.Errorf("hex string must carry a 0x prefix, got %q", v)
		}
		buf, err := hexutil.Decode(v)
		if err != nil {
			return nil, err
		}
		return buf, nil
	case common.Hash:
		return v.Bytes(), nil
	default:
		rv := reflect.ValueOf(value)
		if rv.IsValid() && rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
			buf := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(buf), rv)
			return buf, nil
		}
		return nil, fmt.Errorf("cannot interpret %T as bytes", value)
	}
}

func encodeUint(bits int, value any) ([]byte, error) {
	v, err := integerValue(value)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeEncoding, err, fmt.Sprintf("abi type uint%d received an unsupported value", bits))
	}
	if v.Sign() < 0 {
		return nil, xerrors.Newf(xerrors.CodeEncoding, "abi type uint%d cannot encode negative value %s", bits, v)
	}
	if v.BitLen() > bits {
		return nil, xerrors.Newf(xerrors.CodeEncoding, "value %s overflows uint%d", v, bits)
	}
	out := make([]byte, bits/8)
	v.FillBytes(out)
	return out, nil
}

func encodeInt(bits int, value any) ([]byte, error) {
	v, err := integerValue(value)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeEncoding, err, fmt.Sprintf("abi type int%d received an unsupported value", bits))
	}

	limit := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	low := new(big.Int).Neg(limit)
	high := new(big.Int).Sub(limit, big.NewInt(1))
	if v.Cmp(low) < 0 || v.Cmp(high) > 0 {
		return nil, xerrors.Newf(xerrors.CodeEncoding, "value %s overflows int%d", v, bits)
	}

	// Two's complement at the declared width.
	encoded := new(big.Int).Set(v)
	if encoded.Sign() < 0 {
		modulus := new(big.Int).Lsh(big.NewInt(1), uint(bits))
		encoded.Add(encoded, modulus)
	}
	out := make([]byte, bits/8)
	encoded.FillBytes(out)
	return out, nil
}

func integerValue(value any) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("nil *big.Int")
		}
		return v, nil
	case big.Int:
		return &v, nil
	case int:
		return big.NewInt(int64(v)), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("cannot interpret %T as an integer", value)
	}
}
