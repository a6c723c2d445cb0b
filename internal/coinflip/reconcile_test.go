package coinflip

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mymilios/mymilios-backend/internal/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol = common.HexToAddress("0x00000000000000000000000000000000000ca201")
)

func ids(games []model.DisplayGame) []uint64 {
	out := []uint64{}
	for _, g := range games {
		out = append(out, g.Id)
	}
	return out
}

func statusOf(t *testing.T, games []model.DisplayGame, id uint64) model.GameStatus {
	for _, g := range games {
		if g.Id == id {
			return g.Status
		}
	}
	t.Fatalf("game %d not displayed", id)
	return ""
}

func TestReconcileCreatedGameNotYetOpen(t *testing.T) {
	result := reconcile(reconcileInput{
		player:  alice,
		openIds: []uint64{5, 3},
		details: map[uint64]model.Game{},
		created: trackedIds{7},
	})

	assert.Equal(t, []uint64{7, 5, 3}, ids(result.games))
	assert.Equal(t, model.GameCreating, statusOf(t, result.games, 7))
	assert.Equal(t, model.GameOpen, statusOf(t, result.games, 5))
	assert.Equal(t, []uint64{7}, result.resolving)
}

func TestReconcileResolvedOpenGameShownOnlyWhenTracked(t *testing.T) {
	notifications := []model.Notification{{GameId: 3, Player1: alice, Player2: bob, Result: model.OutcomeWon}}

	untracked := reconcile(reconcileInput{
		player:        alice,
		openIds:       []uint64{5, 3},
		notifications: notifications,
	})
	assert.Equal(t, []uint64{5}, ids(untracked.games))

	tracked := reconcile(reconcileInput{
		player:        alice,
		openIds:       []uint64{5, 3},
		notifications: notifications,
		created:       trackedIds{3},
	})
	assert.Equal(t, []uint64{5, 3}, ids(tracked.games))
	assert.Equal(t, model.GameCompleted, statusOf(t, tracked.games, 3))
	assert.Empty(t, tracked.created, "resolved id must be pruned from created")
}

func TestReconcileNeverDuplicates(t *testing.T) {
	result := reconcile(reconcileInput{
		player:  alice,
		openIds: []uint64{4, 4, 2},
		created: trackedIds{9, 2},
		joined:  trackedIds{9, 6},
		notifications: []model.Notification{
			{GameId: 6, Player1: bob, Player2: alice},
			{GameId: 6, Player1: bob, Player2: alice},
		},
	})

	assert.Equal(t, []uint64{9, 6, 4, 2}, ids(result.games))
	assert.Equal(t, []uint64{9}, result.resolving)
	assert.Equal(t, trackedIds{9, 2}, result.created)
	assert.Equal(t, trackedIds{9}, result.joined)
}

func TestReconcileStatuses(t *testing.T) {
	result := reconcile(reconcileInput{
		player:  alice,
		openIds: []uint64{10, 11, 12, 13},
		details: map[uint64]model.Game{
			10: {Id: 10, Player1: alice},
			11: {Id: 11, Player1: bob},
			12: {Id: 12, Player1: bob, Player2: carol},
			13: {Id: 13, Player1: carol},
		},
		joined: trackedIds{13},
	})

	require.Len(t, result.games, 4)
	assert.Equal(t, model.GameWaiting, statusOf(t, result.games, 10))
	assert.Equal(t, model.GameOpen, statusOf(t, result.games, 11))
	assert.Equal(t, model.GameResolving, statusOf(t, result.games, 12))
	assert.Equal(t, model.GameResolving, statusOf(t, result.games, 13))

	for _, g := range result.games {
		assert.Equal(t, g.Id == 11, g.CanJoin, "game %d", g.Id)
	}
}

func TestReconcileComparesAddressesIgnoringCase(t *testing.T) {
	result := reconcile(reconcileInput{
		player:  common.HexToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"),
		openIds: []uint64{1},
		details: map[uint64]model.Game{
			1: {Id: 1, Player1: common.HexToAddress("0x5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED")},
		},
	})

	assert.True(t, result.games[0].IsCreator)
	assert.Equal(t, model.GameWaiting, result.games[0].Status)
}

func TestAdoptCreatedGame(t *testing.T) {
	details := map[uint64]model.Game{
		8: {Id: 8, Player1: bob},
		7: {Id: 7, Player1: alice},
	}

	id, ok := adoptCreatedGame(alice, []uint64{5, 3}, []uint64{8, 7, 6, 5, 3}, details)
	require.True(t, ok)
	assert.Equal(t, uint64(7), id)

	_, ok = adoptCreatedGame(alice, []uint64{5, 3}, []uint64{5, 3}, details)
	assert.False(t, ok)
}

func TestMergeNotifications(t *testing.T) {
	old := []model.Notification{
		{GameId: 1, Timestamp: 1000, TransactionHash: common.HexToHash("0x01"), Resolved: true},
		{GameId: 2, Timestamp: 2000, TransactionHash: common.HexToHash("0x02")},
	}
	fetched := []model.Notification{
		{GameId: 2, Timestamp: 2000, TransactionHash: common.HexToHash("0x02")},
		{GameId: 3, Timestamp: 3000, TransactionHash: common.HexToHash("0x03")},
	}

	incremental := mergeNotifications(old, fetched, false)
	require.Len(t, incremental, 3)
	assert.Equal(t, []int64{3000, 2000, 1000}, []int64{incremental[0].Timestamp, incremental[1].Timestamp, incremental[2].Timestamp})
	assert.True(t, incremental[2].Resolved)

	full := mergeNotifications(old, fetched, true)
	require.Len(t, full, 2)
	assert.Equal(t, uint64(3), full[0].GameId)
	assert.Equal(t, uint64(2), full[1].GameId)
}

func TestTrackedIds(t *testing.T) {
	var set trackedIds
	set = set.add(3).add(1).add(3)
	assert.Equal(t, trackedIds{3, 1}, set)
	assert.True(t, set.has(1))

	set = set.remove(3)
	assert.Equal(t, trackedIds{1}, set)
	assert.Empty(t, set.without(map[uint64]bool{1: true}))
}
