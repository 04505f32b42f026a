// Package eth implements chain.Gateway on top of the go-ethereum JSON-RPC
// client.
package eth

import (
	"context"
	"errors"
	"math/big"
	"net"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"givechain.org/internal/chain"
	"givechain.org/internal/obs"
)

// Client talks to a single Ethereum node. The chain id is resolved once at
// dial time and reused for EIP-155 signing.
type Client struct {
	rpc     *ethclient.Client
	chainID *big.Int
}

var _ chain.Gateway = (*Client)(nil)

// Dial connects to the node and resolves its chain id.
func Dial(ctx context.Context, rawURL string) (*Client, error) {
	ec, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, shapeErr(err)
	}
	chainID, err := ec.ChainID(ctx)
	if err != nil {
		ec.Close()
		return nil, shapeErr(err)
	}
	return &Client{rpc: ec, chainID: chainID}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() {
	if c != nil && c.rpc != nil {
		c.rpc.Close()
	}
}

func (c *Client) DeriveAccount(key chain.PrivateKey) (chain.Account, error) {
	priv, err := crypto.HexToECDSA(key.Reveal())
	if err != nil {
		return chain.Account{}, chain.ErrInvalidKey
	}
	return chain.Account{Address: crypto.PubkeyToAddress(priv.PublicKey).Hex()}, nil
}

func (c *Client) CurrentNonce(ctx context.Context, address string) (uint64, error) {
	if !common.IsHexAddress(address) {
		return 0, &chain.RejectedError{Reason: "malformed sender address"}
	}
	nonce, err := c.rpc.PendingNonceAt(ctx, common.HexToAddress(address))
	if err != nil {
		obs.ObserveChainRequest("nonce", "error")
		return 0, shapeErr(err)
	}
	obs.ObserveChainRequest("nonce", "ok")
	return nonce, nil
}

func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	price, err := c.rpc.SuggestGasPrice(ctx)
	if err != nil {
		obs.ObserveChainRequest("gas_price", "error")
		return nil, shapeErr(err)
	}
	obs.ObserveChainRequest("gas_price", "ok")
	return price, nil
}

func (c *Client) EstimateGas(ctx context.Context, params chain.TxParams) (uint64, error) {
	if !common.IsHexAddress(params.To) {
		return 0, &chain.RejectedError{Reason: "malformed recipient address"}
	}
	to := common.HexToAddress(params.To)
	msg := ethereum.CallMsg{
		From:     common.HexToAddress(params.From),
		To:       &to,
		Value:    params.ValueWei,
		GasPrice: params.GasPrice,
	}
	limit, err := c.rpc.EstimateGas(ctx, msg)
	if err != nil {
		obs.ObserveChainRequest("estimate_gas", "error")
		return 0, shapeErr(err)
	}
	obs.ObserveChainRequest("estimate_gas", "ok")
	return limit, nil
}

func (c *Client) SignAndSend(ctx context.Context, key chain.PrivateKey, params chain.TxParams) (string, error) {
	priv, err := crypto.HexToECDSA(key.Reveal())
	if err != nil {
		return "", chain.ErrInvalidKey
	}
	if !common.IsHexAddress(params.To) {
		return "", &chain.RejectedError{Reason: "malformed recipient address"}
	}

	to := common.HexToAddress(params.To)
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    params.Nonce,
		To:       &to,
		Value:    params.ValueWei,
		Gas:      params.GasLimit,
		GasPrice: params.GasPrice,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), priv)
	if err != nil {
		return "", shapeErr(err)
	}

	if err := c.rpc.SendTransaction(ctx, signed); err != nil {
		obs.ObserveChainRequest("send", "error")
		return "", shapeErr(err)
	}
	obs.ObserveChainRequest("send", "ok")
	return signed.Hash().Hex(), nil
}

// shapeErr classifies node errors into the gateway taxonomy: anything the
// node answered with is a rejection carrying the node's reason; transport
// failures and deadline hits are ErrUnavailable because the outcome is
// unknown.
func shapeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return chain.ErrUnavailable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return chain.ErrUnavailable
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return &chain.RejectedError{Reason: rpcErr.Error()}
	}
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return chain.ErrUnavailable
	}
	// Anything else that came back over a live connection is a refusal
	// (insufficient funds, nonce collision, underpriced, ...).
	return &chain.RejectedError{Reason: err.Error()}
}
