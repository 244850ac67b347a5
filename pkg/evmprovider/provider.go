// Package evmprovider wraps the small slice of JSON-RPC calls the gas estimator needs: reading
// code and the latest block, and making a state-overridden eth_call. It is the estimator's only
// point of contact with a real or simulated EVM node.
package evmprovider

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/ethclient/gethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/AO-Metaplayer/gasestimator/pkg/state"
)

// Provider is a thin façade over an RPC connection to an EVM execution client. It exposes only
// the handful of read calls a gas estimate needs: no transaction broadcast, no subscriptions.
type Provider struct {
	rpc  *rpc.Client
	eth  *ethclient.Client
	geth *gethclient.Client
}

// New wraps an already-dialed JSON-RPC client.
func New(client *rpc.Client) *Provider {
	return &Provider{
		rpc:  client,
		eth:  ethclient.NewClient(client),
		geth: gethclient.New(client),
	}
}

// LatestBlockHash returns the hash of the chain head. The estimator does not call it: its
// eth_calls and code reads run against the node's latest block, not a pinned block hash.
func (p *Provider) LatestBlockHash(ctx context.Context) (common.Hash, error) {
	head, err := p.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, err
	}
	return head.Hash(), nil
}

// GetCode returns the deployed bytecode at addr at the latest block.
func (p *Provider) GetCode(ctx context.Context, addr common.Address) ([]byte, error) {
	return p.eth.CodeAt(ctx, addr, nil)
}

// Call performs a state-overridden eth_call. The call itself is never expected to have side
// effects: callers simulate with overrides rather than sending a transaction.
func (p *Provider) Call(ctx context.Context, msg ethereum.CallMsg, overrides state.Override) ([]byte, error) {
	return p.geth.CallContract(ctx, msg, nil, overrides.AsGethClientMap())
}

// SuggestGasTipCap proxies the node's priority fee suggestion. The Optimism L1 data-gas surcharge
// does not use it: it prices the L2 side from BaseFee and the operation's own fee fields.
func (p *Provider) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return p.eth.SuggestGasTipCap(ctx)
}

// BaseFee returns the latest block's base fee, or nil on a pre-EIP-1559 chain.
func (p *Provider) BaseFee(ctx context.Context) (*big.Int, error) {
	head, err := p.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, err
	}
	return head.BaseFee, nil
}

// RawClient exposes the underlying *rpc.Client, for callers that need to issue a raw eth_call
// against a fixed precompile address rather than a contract bound through ethclient. The
// Arbitrum/Optimism helpers in this package use the same client through the Provider directly.
func (p *Provider) RawClient() *rpc.Client {
	return p.rpc
}
