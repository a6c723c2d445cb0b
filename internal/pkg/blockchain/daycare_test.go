package blockchain_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mymilios/mymilios-backend/internal/pkg/blockchain"
	"github.com/mymilios/mymilios-backend/internal/pkg/blockchain/blockchaintest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var daycareAddress = common.HexToAddress("0x000000000000000000000000000000000000dcdc")

func TestDaycareReads(t *testing.T) {
	chain := blockchaintest.NewChain()
	contract := chain.Register(daycareAddress, blockchain.DaycareAbi)
	contract.Return("getDaycares", blockchaintest.Uints(4, 9))
	contract.Return("getPendingPoints", big.NewInt(15))
	contract.Return("getTotalPoints", big.NewInt(120))
	contract.Return("getLeaderboard", []common.Address{alice, bob}, blockchaintest.Uints(50, 70))

	daycare := blockchain.NewDaycare(daycareAddress, chain)
	ctx := context.Background()

	ids, err := daycare.Daycares(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []uint64{4, 9}, ids)

	pending, err := daycare.PendingPoints(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(15), pending.Int64())

	total, err := daycare.TotalPoints(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(120), total.Int64())

	players, points, err := daycare.Leaderboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{alice, bob}, players)
	assert.Equal(t, int64(70), points[1].Int64())
}

func TestDaycareLeaderboardLengthMismatch(t *testing.T) {
	chain := blockchaintest.NewChain()
	chain.Register(daycareAddress, blockchain.DaycareAbi).
		Return("getLeaderboard", []common.Address{alice, bob}, blockchaintest.Uints(50))

	_, _, err := blockchain.NewDaycare(daycareAddress, chain).Leaderboard(context.Background())
	assert.ErrorContains(t, err, "2 players but 1")
}

func TestDaycarePreparedCalls(t *testing.T) {
	daycare := blockchain.NewDaycare(daycareAddress, blockchaintest.NewChain())

	assert.Equal(t, "dropOffMultiple", daycare.DropOffMultiple([]uint64{1, 2}).Method)
	assert.Equal(t, "pickUpMultiple", daycare.PickUpMultiple([]uint64{1, 2}).Method)
	assert.Equal(t, "pickUp", daycare.PickUp(1).Method)
	assert.Equal(t, "claimPoints", daycare.ClaimPoints(1).Method)
	assert.Equal(t, "claimMultiple", daycare.ClaimMultiple([]uint64{1}).Method)
}
