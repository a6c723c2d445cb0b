package coinflip

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mymilios/mymilios-backend/internal/pkg/model"
)

const (
	statusSubmitted = "SUBMITTED"
	statusFailed    = "FAILED"
)

// session is one player's coin-flip state. All fields are guarded by mu, which is held for
// a whole refresh round so rounds of one player never interleave.
type session struct {
	mu     sync.Mutex
	player common.Address

	initialized    bool
	needsFullFetch bool
	lastAccess     time.Time

	notifications  []model.Notification
	created        trackedIds
	joined         trackedIds
	pendingCreates int
	createRounds   int
	joining        *uint64
	joinRounds     int

	lastOpen []uint64
	details  map[uint64]model.Game

	openGamesErr string
	historyErr   string
	createStatus string
	createErr    string
	joinStatus   string
	joinErr      string

	lobby model.Lobby
}

func newSession(player common.Address, now time.Time) *session {
	return &session{
		player:         player,
		needsFullFetch: true,
		lastAccess:     now,
		details:        map[uint64]model.Game{},
	}
}

func (s *session) isOpen(gameId uint64) bool {
	for _, id := range s.lastOpen {
		if id == gameId {
			return true
		}
	}
	return false
}

// hasPending reports whether the session still tracks games or submitted transactions.
func (s *session) hasPending() bool {
	return s.joining != nil || s.pendingCreates > 0 || len(s.created) > 0 || len(s.joined) > 0
}
