package coinflip

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mymilios/mymilios-backend/internal/pkg/blockchain"
	"github.com/mymilios/mymilios-backend/internal/pkg/model"
)

func newNotification(player common.Address, resolved blockchain.GameResolved, game model.Game, blockTime uint64) model.Notification {
	result := model.OutcomeLost
	if model.SameAddress(resolved.Winner, player) {
		result = model.OutcomeWon
	}

	return model.Notification{
		GameId:          resolved.GameId,
		Result:          result,
		TokenId1:        resolved.TokenId1,
		TokenId2:        resolved.TokenId2,
		Timestamp:       int64(blockTime) * 1000,
		Player1:         game.Player1,
		Player2:         game.Player2,
		TransactionHash: resolved.TxHash,
		BlockNumber:     resolved.BlockNumber,
	}
}

// mergeNotifications combines a fetch result with the previous list. A full fetch replaces
// the list, an incremental one is prepended to the previous entries it does not repeat.
// Acknowledgements carry over by transaction hash either way.
func mergeNotifications(previous []model.Notification, fetched []model.Notification, full bool) []model.Notification {
	merged := make([]model.Notification, 0, len(previous)+len(fetched))
	for _, n := range fetched {
		for _, p := range previous {
			if p.SameTransaction(n) && p.GameId == n.GameId {
				n.Resolved = p.Resolved
				break
			}
		}
		merged = append(merged, n)
	}

	if !full {
		for _, p := range previous {
			repeated := false
			for _, n := range fetched {
				if p.SameTransaction(n) {
					repeated = true
					break
				}
			}
			if !repeated {
				merged = append(merged, p)
			}
		}
	}

	sortNotifications(merged)
	return merged
}

func sortNotifications(notifications []model.Notification) {
	sort.SliceStable(notifications, func(i, j int) bool {
		if notifications[i].Timestamp != notifications[j].Timestamp {
			return notifications[i].Timestamp > notifications[j].Timestamp
		}
		return notifications[i].GameId > notifications[j].GameId
	})
}

func unresolvedCount(notifications []model.Notification) int {
	count := 0
	for _, n := range notifications {
		if !n.Resolved {
			count++
		}
	}
	return count
}
