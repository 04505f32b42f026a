package chain

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
)

// IsValidAddress reports whether s is a well-formed hex address.
func IsValidAddress(s string) bool {
	return common.IsHexAddress(s)
}

var (
	// ErrInvalidAmount marks a value that is not a positive decimal number.
	ErrInvalidAmount = errors.New("chain: invalid amount")
	// ErrSubWeiAmount marks a value finer than one wei.
	ErrSubWeiAmount = errors.New("chain: amount below one wei")
)

// EtherToWei converts a decimal ether amount (e.g. "0.5") to wei. Amounts
// must be positive and representable as a whole number of wei.
func EtherToWei(amount string) (*big.Int, error) {
	rat, ok := new(big.Rat).SetString(amount)
	if !ok {
		return nil, ErrInvalidAmount
	}
	if rat.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	wei := new(big.Rat).Mul(rat, new(big.Rat).SetInt64(params.Ether))
	if !wei.IsInt() {
		return nil, ErrSubWeiAmount
	}
	return new(big.Int).Set(wei.Num()), nil
}
