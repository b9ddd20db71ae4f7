package keccak

import (
	"math/big"
	"strings"
	"testing"

	xerrors "OpenWeb3-Client/internal/errors"
)

func TestSumRepresentationsAgree(t *testing.T) {
	fromText, err := Sum(Text("abc"))
	if err != nil {
		t.Fatalf("hash text: %v", err)
	}
	fromHex, err := Sum(Hex("0x616263"))
	if err != nil {
		t.Fatalf("hash hex: %v", err)
	}
	fromBytes, err := Sum(Bytes([]byte("abc")))
	if err != nil {
		t.Fatalf("hash bytes: %v", err)
	}

	if fromText != fromHex || fromText != fromBytes {
		t.Fatalf("representations disagree: text=%s hex=%s bytes=%s", fromText, fromHex, fromBytes)
	}

	const want = "0x4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"
	if fromText.Hex() != want {
		t.Fatalf("unexpected digest for \"abc\": %s", fromText)
	}
}

func TestSumEmptyBytes(t *testing.T) {
	digest, err := Sum(Bytes(nil))
	if err != nil {
		t.Fatalf("hash empty: %v", err)
	}
	const want = "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	if digest.Hex() != want {
		t.Fatalf("unexpected empty digest: %s", digest)
	}
}

func TestSumHexWithoutPrefixAndOddLength(t *testing.T) {
	withPrefix, err := Sum(Hex("0x0616263"))
	if err != nil {
		t.Fatalf("hash odd hex: %v", err)
	}
	bare, err := Sum(Hex("00616263"))
	if err != nil {
		t.Fatalf("hash bare hex: %v", err)
	}
	if withPrefix != bare {
		t.Fatalf("odd and padded hex disagree: %s vs %s", withPrefix, bare)
	}
}

func TestSumInt(t *testing.T) {
	fromInt, err := Sum(Int(big.NewInt(0x616263)))
	if err != nil {
		t.Fatalf("hash int: %v", err)
	}
	fromText, err := Sum(Text("abc"))
	if err != nil {
		t.Fatalf("hash text: %v", err)
	}
	if fromInt != fromText {
		t.Fatalf("int and text digests disagree: %s vs %s", fromInt, fromText)
	}

	if _, err := Sum(Int(big.NewInt(-1))); xerrors.CodeOf(err) != xerrors.CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT for negative int, got %v", err)
	}
}

func TestSumInputSelection(t *testing.T) {
	if _, err := Sum(); xerrors.CodeOf(err) != xerrors.CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT for no input, got %v", err)
	}

	_, err := Sum(Text("abc"), Hex("0x616263"))
	if xerrors.CodeOf(err) != xerrors.CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT for two inputs, got %v", err)
	}
	if got := err.Error(); got == "" || !strings.Contains(got, "text") || !strings.Contains(got, "hexstr") {
		t.Fatalf("error should name the received combination, got %q", got)
	}

	if _, err := Sum(Hex("0xzz")); xerrors.CodeOf(err) != xerrors.CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT for malformed hex, got %v", err)
	}
}
