package web3

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	xerrors "OpenWeb3-Client/internal/errors"
)

// denominations maps unit names to their value in wei, including the
// historical aliases.
var denominations = map[string]*big.Int{
	"wei":        exp10(0),
	"kwei":       exp10(3),
	"babbage":    exp10(3),
	"femtoether": exp10(3),
	"mwei":       exp10(6),
	"lovelace":   exp10(6),
	"picoether":  exp10(6),
	"gwei":       exp10(9),
	"shannon":    exp10(9),
	"nanoether":  exp10(9),
	"nano":       exp10(9),
	"szabo":      exp10(12),
	"microether": exp10(12),
	"micro":      exp10(12),
	"finney":     exp10(15),
	"milliether": exp10(15),
	"milli":      exp10(15),
	"ether":      exp10(18),
	"kether":     exp10(21),
	"grand":      exp10(21),
	"mether":     exp10(24),
	"gether":     exp10(27),
	"tether":     exp10(30),
}

func exp10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}

// ToWei converts a decimal amount in the given unit to wei. The conversion
// must land on an integer number of wei.
func ToWei(amount string, unit string) (*big.Int, error) {
	factor, ok := denominations[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return nil, xerrors.Newf(xerrors.CodeInvalidArgument, "unknown denomination %q", unit)
	}
	value, ok := new(big.Rat).SetString(strings.TrimSpace(amount))
	if !ok {
		return nil, xerrors.Newf(xerrors.CodeInvalidArgument, "cannot parse amount %q", amount)
	}
	value.Mul(value, new(big.Rat).SetInt(factor))
	if !value.IsInt() {
		return nil, xerrors.Newf(xerrors.CodeInvalidArgument, "%s %s is not a whole number of wei", amount, unit)
	}
	return new(big.Int).Set(value.Num()), nil
}

// FromWei converts a wei amount into the given unit, rendered as an exact
// decimal string.
func FromWei(amount *big.Int, unit string) (string, error) {
	if amount == nil {
		return "", xerrors.New(xerrors.CodeInvalidArgument, "amount cannot be nil")
	}
	factor, ok := denominations[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return "", xerrors.Newf(xerrors.CodeInvalidArgument, "unknown denomination %q", unit)
	}
	value := new(big.Rat).SetFrac(amount, factor)
	return ratToDecimal(value), nil
}

// ratToDecimal renders a rational with a power-of-ten denominator without
// trailing zeros.
func ratToDecimal(value *big.Rat) string {
	if value.IsInt() {
		return value.Num().String()
	}
	// Denominators here are always 10^n, so FloatString(30) is exact for
	// every supported denomination.
	s := value.FloatString(30)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// IsAddress reports whether the value parses as a hex address, checksummed
// or not.
func IsAddress(value string) bool {
	return common.IsHexAddress(value)
}

// IsChecksumAddress reports whether the value is a valid EIP-55 checksummed
// address.
func IsChecksumAddress(value string) bool {
	if !common.IsHexAddress(value) {
		return false
	}
	return common.HexToAddress(value).Hex() == value
}

// ToChecksumAddress normalises a hex address to its EIP-55 form.
func ToChecksumAddress(value string) (string, error) {
	if !common.IsHexAddress(value) {
		return "", xerrors.Newf(xerrors.CodeInvalidArgument, "%q is not a hex address", value)
	}
	return common.HexToAddress(value).Hex(), nil
}
