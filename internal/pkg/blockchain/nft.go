package blockchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type NftCollection struct {
	boundContract
}

func NewNftCollection(address common.Address, backend Backend) *NftCollection {
	return &NftCollection{boundContract{address: address, abi: NftCollectionAbi, backend: backend}}
}

func (n *NftCollection) Address() common.Address {
	return n.address
}

func (n *NftCollection) TokensOfOwner(ctx context.Context, owner common.Address) ([]uint64, error) {
	values, err := n.call(ctx, "tokensOfOwner", owner)
	if err != nil {
		return nil, err
	}
	return toUint64s(values[0].([]*big.Int))
}

func (n *NftCollection) IsApprovedForAll(ctx context.Context, owner common.Address, operator common.Address) (bool, error) {
	values, err := n.call(ctx, "isApprovedForAll", owner, operator)
	if err != nil {
		return false, err
	}
	return values[0].(bool), nil
}

func (n *NftCollection) SetApprovalForAll(operator common.Address, approved bool) ContractCall {
	return n.prepare(CommandSetApproval, "setApprovalForAll", operator, approved)
}
