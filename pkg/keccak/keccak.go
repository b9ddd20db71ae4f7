// Package keccak computes legacy Keccak-256 digests as used by EVM chains.
// The permutation matches keccak256 inside the EVM and predates the NIST
// SHA-3 padding change, so digests are interchangeable with Solidity's.
package keccak

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	xerrors "OpenWeb3-Client/internal/errors"
)

type selection struct {
	primitive []byte
	integer   *big.Int
	text      *string
	hexstr    *string
}

// Input selects exactly one representation of the bytes to hash.
type Input func(*selection)

// Bytes hashes a raw byte slice.
func Bytes(b []byte) Input {
	return func(s *selection) {
		if b == nil {
			b = []byte{}
		}
		s.primitive = b
	}
}

// Int hashes the minimal big-endian representation of a non-negative integer.
func Int(v *big.Int) Input {
	return func(s *selection) { s.integer = v }
}

// Text hashes the UTF-8 bytes of a string.
func Text(t string) Input {
	return func(s *selection) { s.text = &t }
}

// Hex hashes the bytes described by a hex string. The 0x prefix is optional
// and an odd number of digits is interpreted with an implied leading zero.
func Hex(h string) Input {
	return func(s *selection) { s.hexstr = &h }
}

// Sum converts the single provided input to its canonical byte buffer and
// returns its Keccak-256 digest. Zero inputs or more than one input fail
// with an INVALID_INPUT error naming the combination received.
func Sum(inputs ...Input) (common.Hash, error) {
	var sel selection
	for _, input := range inputs {
		if input != nil {
			input(&sel)
		}
	}

	buf, err := sel.bytes()
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(buf), nil
}

func (s *selection) bytes() ([]byte, error) {
	provided := make([]string, 0, 4)
	if s.primitive != nil {
		provided = append(provided, "bytes")
	}
	if s.integer != nil {
		provided = append(provided, "int")
	}
	if s.text != nil {
		provided = append(provided, "text")
	}
	if s.hexstr != nil {
		provided = append(provided, "hexstr")
	}

	switch len(provided) {
	case 0:
		return nil, xerrors.New(xerrors.CodeInvalidInput,
			"keccak called without input; provide exactly one of keccak.Bytes, keccak.Int, keccak.Text or keccak.Hex")
	case 1:
	default:
		return nil, xerrors.Newf(xerrors.CodeInvalidInput,
			"keccak called with mutually exclusive inputs (%s); provide exactly one of keccak.Bytes, keccak.Int, keccak.Text or keccak.Hex",
			strings.Join(provided, ", "))
	}

	switch {
	case s.primitive != nil:
		return s.primitive, nil
	case s.integer != nil:
		return intToBytes(s.integer)
	case s.text != nil:
		return []byte(*s.text), nil
	default:
		return hexToBytes(*s.hexstr)
	}
}

func intToBytes(v *big.Int) ([]byte, error) {
	if v.Sign() < 0 {
		return nil, xerrors.Newf(xerrors.CodeInvalidInput, "keccak.Int requires a non-negative integer, got %s", v)
	}
	if v.Sign() == 0 {
		return []byte{0x00}, nil
	}
	return v.Bytes(), nil
}

func hexToBytes(h string) ([]byte, error) {
	cleaned := strings.TrimPrefix(strings.TrimPrefix(h, "0x"), "0X")
	if len(cleaned)%2 == 1 {
		cleaned = "0" + cleaned
	}
	buf, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeInvalidInput, err, "keccak.Hex received a malformed hex string")
	}
	return buf, nil
}
