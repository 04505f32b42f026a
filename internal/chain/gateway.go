// Package chain defines the boundary to the external Ethereum ledger:
// account derivation, transaction parameter discovery, signing and
// broadcast. Implementations live in subpackages; everything above this
// boundary treats nonce, gas price and gas limit as point-in-time reads
// against an eventually consistent system.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrInvalidKey marks structurally malformed key material.
	ErrInvalidKey = errors.New("chain: invalid private key")
	// ErrUnavailable marks a transport failure or timeout. The outcome of
	// the submitted transaction is unknown: it may still have been accepted
	// by the node.
	ErrUnavailable = errors.New("chain: ledger unavailable")
)

// RejectedError reports that the node refused a transaction. Terminal for
// the attempt; a retry needs a fresh nonce and gas quote.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("chain: transaction rejected: %s", e.Reason)
}

// Account is a sending identity derived from a private key.
type Account struct {
	Address string
}

// TxParams describes a plain value transfer.
type TxParams struct {
	From     string
	To       string
	ValueWei *big.Int
	Nonce    uint64
	GasPrice *big.Int
	GasLimit uint64
}

// Gateway abstracts all ledger interaction. It performs no retries; retry
// policy belongs to callers, who must also bound each call with a context
// deadline and treat a deadline hit as ErrUnavailable.
type Gateway interface {
	// DeriveAccount computes the sending address for a key.
	DeriveAccount(key PrivateKey) (Account, error)
	// CurrentNonce returns the next unused sequence number for an address.
	// The value is race-prone: concurrent senders from the same address can
	// observe the same nonce.
	CurrentNonce(ctx context.Context, address string) (uint64, error)
	// SuggestGasPrice quotes the current gas price.
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	// EstimateGas estimates the gas limit for the given transfer shape.
	EstimateGas(ctx context.Context, params TxParams) (uint64, error)
	// SignAndSend signs the transfer and submits it, returning the
	// transaction hash once the node accepts it into its pool. Pool
	// acceptance does not imply on-chain confirmation.
	SignAndSend(ctx context.Context, key PrivateKey, params TxParams) (string, error)
}
