// Package state models the eth_call state-override protocol consumed by the gas estimator: a
// per-address set of {code, balance, nonce, storage} fields that exist only for the duration of a
// single call and are never persisted.
package state

import (
	"math/big"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient/gethclient"
)

// Override is a map of address to the fields to override for that address during one eth_call.
// Merging two Overrides is last-write-wins per field (see Merge).
type Override map[common.Address]gethclient.OverrideAccount

// New returns an empty Override.
func New() Override {
	return Override{}
}

// WithCode returns a copy of o with addr's code overridden to code.
func (o Override) WithCode(addr common.Address, code []byte) Override {
	out := o.clone()
	acc := out[addr]
	acc.Code = code
	out[addr] = acc
	return out
}

// WithMaxBalance returns a new Override with addr's balance overridden to the maximum possible
// uint256, so that fee and deposit checks can never fail for lack of funds during simulation.
func WithMaxBalance(addr common.Address) Override {
	return New().WithMaxBalance(addr)
}

// WithMaxBalance returns a copy of o with addr's balance overridden to the maximum possible
// uint256.
func (o Override) WithMaxBalance(addr common.Address) Override {
	out := o.clone()
	acc := out[addr]
	acc.Balance = maxUint256()
	out[addr] = acc
	return out
}

// Merge combines o with other. Fields set in other take precedence over fields already set in o
// for the same address (last-write-wins per field, not per address).
func (o Override) Merge(other Override) Override {
	out := o.clone()
	for addr, acc := range other {
		merged := out[addr]
		if acc.Nonce != 0 {
			merged.Nonce = acc.Nonce
		}
		if acc.Code != nil {
			merged.Code = acc.Code
		}
		if acc.Balance != nil {
			merged.Balance = acc.Balance
		}
		if acc.State != nil {
			merged.State = acc.State
		}
		if acc.StateDiff != nil {
			merged.StateDiff = acc.StateDiff
		}
		out[addr] = merged
	}
	return out
}

// TouchedAddresses returns the set of addresses that carry at least one overridden field, useful
// for logging which accounts a spoofed simulation actually touched.
func (o Override) TouchedAddresses() mapset.Set[common.Address] {
	set := mapset.NewSet[common.Address]()
	for addr := range o {
		set.Add(addr)
	}
	return set
}

// AsGethClientMap returns the underlying representation accepted by gethclient.Client.CallContract.
func (o Override) AsGethClientMap() *map[common.Address]gethclient.OverrideAccount {
	m := map[common.Address]gethclient.OverrideAccount(o.clone())
	return &m
}

func (o Override) clone() Override {
	out := make(Override, len(o))
	for addr, acc := range o {
		out[addr] = acc
	}
	return out
}

func maxUint256() *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), 256)
	return max.Sub(max, big.NewInt(1))
}
