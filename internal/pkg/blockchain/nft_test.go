package blockchain_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mymilios/mymilios-backend/internal/pkg/blockchain"
	"github.com/mymilios/mymilios-backend/internal/pkg/blockchain/blockchaintest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNftCollectionReads(t *testing.T) {
	chain := blockchaintest.NewChain()
	contract := chain.Register(nftAddress, blockchain.NftCollectionAbi)
	contract.Return("tokensOfOwner", blockchaintest.Uints(1, 2, 3))
	contract.Handle("isApprovedForAll", func(args []any) ([]any, error) {
		return []any{args[1].(common.Address) == coinFlipAddress}, nil
	})

	nft := blockchain.NewNftCollection(nftAddress, chain)

	tokens, err := nft.TokensOfOwner(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, tokens)

	approved, err := nft.IsApprovedForAll(context.Background(), alice, coinFlipAddress)
	require.NoError(t, err)
	assert.True(t, approved)

	approved, err = nft.IsApprovedForAll(context.Background(), alice, bob)
	require.NoError(t, err)
	assert.False(t, approved)
}

func TestNftCollectionUnstubbedCallFails(t *testing.T) {
	chain := blockchaintest.NewChain()
	chain.Register(nftAddress, blockchain.NftCollectionAbi)

	_, err := blockchain.NewNftCollection(nftAddress, chain).TokensOfOwner(context.Background(), alice)
	assert.ErrorContains(t, err, "calling tokensOfOwner")
}
