package coinflip

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mymilios/mymilios-backend/internal/pkg/model"
)

type reconcileInput struct {
	player        common.Address
	openIds       []uint64
	details       map[uint64]model.Game
	notifications []model.Notification
	created       trackedIds
	joined        trackedIds
}

type reconcileResult struct {
	games     []model.DisplayGame
	resolving []uint64
	created   trackedIds
	joined    trackedIds
}

// reconcile merges the open-game poll, resolution notifications and the locally tracked
// games into one lobby list. The returned tracking sets no longer hold resolved ids; the
// list itself is built before that pruning so a game resolved this round is shown once
// as completed.
func reconcile(in reconcileInput) reconcileResult {
	open := map[uint64]bool{}
	for _, id := range in.openIds {
		open[id] = true
	}

	resolved := map[uint64]bool{}
	for _, n := range in.notifications {
		resolved[n.GameId] = true
	}

	seen := map[uint64]bool{}
	var ids []uint64
	collect := func(id uint64) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, id := range in.openIds {
		if !resolved[id] {
			collect(id)
		}
	}
	for _, id := range in.created {
		if !open[id] && !resolved[id] {
			collect(id)
		}
	}
	for _, id := range in.joined {
		if !open[id] && !resolved[id] {
			collect(id)
		}
	}
	for _, n := range in.notifications {
		if n.Involves(in.player) && (in.created.has(n.GameId) || in.joined.has(n.GameId)) {
			collect(n.GameId)
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	games := make([]model.DisplayGame, 0, len(ids))
	for _, id := range ids {
		games = append(games, in.displayGame(id, open[id], resolved[id]))
	}

	resolving := trackedIds{}
	for _, id := range append(append(trackedIds{}, in.created...), in.joined...) {
		if !open[id] && !resolved[id] {
			resolving = resolving.add(id)
		}
	}

	return reconcileResult{
		games:     games,
		resolving: []uint64(resolving),
		created:   in.created.without(resolved),
		joined:    in.joined.without(resolved),
	}
}

func (in reconcileInput) displayGame(id uint64, isOpen bool, isResolved bool) model.DisplayGame {
	game := model.DisplayGame{Id: id}

	details, hasDetails := in.details[id]
	if hasDetails {
		d := details
		game.Details = &d
	}

	game.IsCreator = in.created.has(id) || (hasDetails && details.IsCreator(in.player))
	game.IsJoined = in.joined.has(id) || (hasDetails && details.IsSecondPlayer(in.player))
	secondPlayer := hasDetails && details.HasSecondPlayer()

	switch {
	case isResolved:
		game.Status = model.GameCompleted
	case in.created.has(id) && !isOpen:
		game.Status = model.GameCreating
	case game.IsCreator && isOpen && !secondPlayer:
		game.Status = model.GameWaiting
	case game.IsJoined || secondPlayer:
		game.Status = model.GameResolving
	default:
		game.Status = model.GameOpen
	}

	game.CanJoin = game.Status == model.GameOpen && !game.IsCreator && !game.IsJoined
	return game
}

// adoptCreatedGame picks the game a pending creation produced: the newest open id that was
// not in the previous poll. Ids whose details name another creator are skipped.
func adoptCreatedGame(player common.Address, previousOpen []uint64, openIds []uint64, details map[uint64]model.Game) (uint64, bool) {
	previous := map[uint64]bool{}
	for _, id := range previousOpen {
		previous[id] = true
	}

	var newest uint64
	found := false
	for _, id := range openIds {
		if previous[id] {
			continue
		}
		if d, ok := details[id]; ok && !d.IsCreator(player) {
			continue
		}
		if !found || id > newest {
			newest = id
			found = true
		}
	}
	return newest, found
}
