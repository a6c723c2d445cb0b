package coinflip

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mymilios/mymilios-backend/internal/pkg/blockchain"
	"github.com/mymilios/mymilios-backend/internal/pkg/model"
	"github.com/mymilios/mymilios-backend/internal/pkg/reject"
	"github.com/mymilios/mymilios-backend/internal/pkg/store"
	"github.com/mymilios/mymilios-backend/internal/pkg/utils"
	"github.com/mymilios/mymilios-backend/internal/pkg/ws"
	"github.com/rs/zerolog/log"
)

const (
	joinInProgress = "error.coinflip.join-in-progress"
	gameNotOpen    = "error.coinflip.game-not-open"
	ownGame        = "error.coinflip.own-game"
	signerMismatch = "error.signer.mismatch"

	notConfirmed = "transaction not confirmed"

	commandRetention = time.Hour
	// Rounds an optimistic create or join may wait for the chain before it is dropped.
	pendingRoundLimit = 10
)

type coinFlipContract interface {
	Address() common.Address
	OpenGames(ctx context.Context) ([]uint64, error)
	Game(ctx context.Context, gameId uint64) (model.Game, error)
	ResolvedSince(ctx context.Context, fromBlock uint64) ([]blockchain.GameResolved, error)
	BlockTime(ctx context.Context, blockNumber uint64) (uint64, error)
	LatestBlock(ctx context.Context) (uint64, error)
	CreateGame(tokenId uint64) blockchain.ContractCall
	JoinGame(gameId uint64, tokenId uint64) blockchain.ContractCall
}

type tokenGuard interface {
	RequireApproval(ctx context.Context, owner common.Address, operator common.Address, tokenIds ...uint64) *reject.ProblemWithTrace
	ImageUrl(ctx context.Context, tokenId uint64) string
}

type LobbyPublisher interface {
	Publish(topic string, event any)
	ListenerCount(topic string) int
}

type commandKind int

const (
	commandCreate commandKind = iota
	commandJoin
)

type submittedCommand struct {
	player      common.Address
	kind        commandKind
	gameId      uint64
	submittedAt time.Time
}

type Service struct {
	coinFlip   coinFlipContract
	tokens     tokenGuard
	watermarks store.WatermarkStore
	hub        LobbyPublisher
	bridge     *coinFlipContractBridge
	idleTTL    time.Duration
	now        func() time.Time

	sessionsMutex sync.RWMutex
	sessions      map[string]*session

	commandsMutex sync.Mutex
	commands      map[string]submittedCommand
}

func NewService(
	coinFlip coinFlipContract,
	tokens tokenGuard,
	signer blockchain.Signer,
	watermarks store.WatermarkStore,
	hub LobbyPublisher,
	idleTTL time.Duration,
) *Service {
	s := &Service{
		coinFlip:   coinFlip,
		tokens:     tokens,
		watermarks: watermarks,
		hub:        hub,
		idleTTL:    idleTTL,
		now:        time.Now,
		sessions:   map[string]*session{},
		commands:   map[string]submittedCommand{},
	}
	s.bridge = &coinFlipContractBridge{
		coinFlip: coinFlip,
		signer:   signer,
		onFailed: s.commandFailed,
	}
	return s
}

func (s *Service) Lobby(ctx context.Context, player common.Address) model.Lobby {
	sess, _ := s.lockSession(ctx, player)
	defer sess.mu.Unlock()

	return sess.lobby
}

// Refresh runs an on-demand round for the player.
func (s *Service) Refresh(ctx context.Context, player common.Address) model.Lobby {
	sess, fresh := s.lockSession(ctx, player)
	defer sess.mu.Unlock()

	if !fresh {
		s.round(ctx, sess)
	}
	return sess.lobby
}

func (s *Service) CreateGame(ctx context.Context, player common.Address, tokenId uint64) (model.Lobby, *reject.ProblemWithTrace) {
	if problem := s.tokens.RequireApproval(ctx, player, s.coinFlip.Address(), tokenId); problem != nil {
		return model.Lobby{}, problem
	}

	sess, _ := s.lockSession(ctx, player)
	defer sess.mu.Unlock()

	ref, err := s.bridge.sendCreateGameTx(ctx, player, tokenId)
	if err != nil {
		log.Warn().Err(err).Str("player", player.Hex()).Uint64("tokenId", tokenId).Msg("Create game failed")
		sess.createStatus = statusFailed
		sess.createErr = err.Error()
		s.rebuild(ctx, sess, false)
		return model.Lobby{}, txProblem(err)
	}

	log.Info().Str("player", player.Hex()).Uint64("tokenId", tokenId).Str("ref", ref).Msg("Create game submitted")
	sess.createStatus = statusSubmitted
	sess.createErr = ""
	sess.pendingCreates++
	sess.createRounds = 0
	s.trackCommand(ref, submittedCommand{player: player, kind: commandCreate})

	s.round(ctx, sess)
	return sess.lobby, nil
}

func (s *Service) JoinGame(ctx context.Context, player common.Address, gameId uint64, tokenId uint64) (model.Lobby, *reject.ProblemWithTrace) {
	if problem := s.tokens.RequireApproval(ctx, player, s.coinFlip.Address(), tokenId); problem != nil {
		return model.Lobby{}, problem
	}

	sess, _ := s.lockSession(ctx, player)
	defer sess.mu.Unlock()

	if sess.joining != nil {
		return model.Lobby{}, reject.Conflict("Another join is in progress", joinInProgress, nil)
	}
	if !sess.isOpen(gameId) {
		return model.Lobby{}, reject.Conflict("Game is not open", gameNotOpen, nil)
	}
	if details, ok := sess.details[gameId]; ok && details.IsCreator(player) {
		return model.Lobby{}, reject.Conflict("Cannot join your own game", ownGame, nil)
	}

	joining := gameId
	sess.joining = &joining
	sess.joinRounds = 0
	sess.joined = sess.joined.add(gameId)

	ref, err := s.bridge.sendJoinGameTx(ctx, player, gameId, tokenId)
	if err != nil {
		log.Warn().Err(err).Str("player", player.Hex()).Uint64("gameId", gameId).Msg("Join game failed")
		sess.joined = sess.joined.remove(gameId)
		sess.joining = nil
		sess.joinStatus = statusFailed
		sess.joinErr = err.Error()
		s.rebuild(ctx, sess, false)
		return model.Lobby{}, txProblem(err)
	}

	log.Info().Str("player", player.Hex()).Uint64("gameId", gameId).Str("ref", ref).Msg("Join game submitted")
	sess.joinStatus = statusSubmitted
	sess.joinErr = ""
	s.trackCommand(ref, submittedCommand{player: player, kind: commandJoin, gameId: gameId})

	s.round(ctx, sess)
	return sess.lobby, nil
}

func (s *Service) Notifications(ctx context.Context, player common.Address, page utils.PageRequest) *utils.PageResponse[model.Notification] {
	sess, _ := s.lockSession(ctx, player)
	defer sess.mu.Unlock()

	return utils.Paginate(sess.notifications, page)
}

// RefreshNotifications refetches the player's whole resolution history.
func (s *Service) RefreshNotifications(ctx context.Context, player common.Address, page utils.PageRequest) *utils.PageResponse[model.Notification] {
	sess, fresh := s.lockSession(ctx, player)
	defer sess.mu.Unlock()

	if !fresh {
		s.fetchNotifications(ctx, sess, true)
		s.rebuild(ctx, sess, true)
	}
	return utils.Paginate(sess.notifications, page)
}

func (s *Service) MarkResolved(ctx context.Context, player common.Address, txHash common.Hash) *reject.ProblemWithTrace {
	sess, _ := s.lockSession(ctx, player)
	defer sess.mu.Unlock()

	found := false
	for i := range sess.notifications {
		if sess.notifications[i].TransactionHash == txHash {
			sess.notifications[i].Resolved = true
			found = true
		}
	}
	if !found {
		return &reject.ProblemWithTrace{
			Problem: reject.NotFoundProblem(),
			Cause:   fmt.Errorf("no notification for transaction %s", txHash.Hex()),
		}
	}

	sess.lobby.UnresolvedCount = unresolvedCount(sess.notifications)
	s.hub.Publish(ws.CoinFlipTopic(sess.player), sess.lobby)
	return nil
}

// RefreshAll runs a round for every known session. Idle sessions are evicted instead.
func (s *Service) RefreshAll(ctx context.Context) {
	s.sessionsMutex.RLock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.sessionsMutex.RUnlock()

	for _, sess := range sessions {
		if ctx.Err() != nil {
			return
		}
		sess.mu.Lock()
		if s.idle(sess) {
			sess.mu.Unlock()
			s.evict(sess)
			continue
		}
		s.round(ctx, sess)
		sess.initialized = true
		sess.mu.Unlock()
	}
}

// idle reports whether nobody has asked for the session within idleTTL and it has no
// websocket listeners or optimistic state left. Callers hold sess.mu.
func (s *Service) idle(sess *session) bool {
	if s.idleTTL <= 0 || s.now().Sub(sess.lastAccess) < s.idleTTL {
		return false
	}
	return !sess.hasPending() && s.hub.ListenerCount(ws.CoinFlipTopic(sess.player)) == 0
}

func (s *Service) evict(sess *session) {
	key := strings.ToLower(sess.player.Hex())

	s.sessionsMutex.Lock()
	defer s.sessionsMutex.Unlock()

	if s.sessions[key] == sess {
		delete(s.sessions, key)
		log.Debug().Str("player", sess.player.Hex()).Msg("Evicted idle session")
	}
}

func (s *Service) session(player common.Address) *session {
	key := strings.ToLower(player.Hex())

	s.sessionsMutex.RLock()
	sess, ok := s.sessions[key]
	s.sessionsMutex.RUnlock()
	if ok {
		return sess
	}

	s.sessionsMutex.Lock()
	defer s.sessionsMutex.Unlock()

	if sess, ok = s.sessions[key]; !ok {
		sess = newSession(player, s.now())
		s.sessions[key] = sess
	}
	return sess
}

// lockSession returns the player's session with its lock held. The first access runs the
// initial round and reports fresh.
func (s *Service) lockSession(ctx context.Context, player common.Address) (sess *session, fresh bool) {
	sess = s.session(player)
	sess.mu.Lock()
	sess.lastAccess = s.now()

	if !sess.initialized {
		s.round(ctx, sess)
		sess.initialized = true
		return sess, true
	}
	return sess, false
}

func (s *Service) round(ctx context.Context, sess *session) {
	s.pollOpenGames(ctx, sess)
	s.fetchNotifications(ctx, sess, sess.needsFullFetch)
	s.rebuild(ctx, sess, true)
}

func (s *Service) pollOpenGames(ctx context.Context, sess *session) {
	openIds, err := s.coinFlip.OpenGames(ctx)
	if err != nil {
		log.Warn().Err(err).Str("player", sess.player.Hex()).Msg("Error polling open games")
		sess.openGamesErr = err.Error()
		return
	}
	sess.openGamesErr = ""

	details := make(map[uint64]model.Game, len(openIds))
	for _, id := range openIds {
		game, err := s.coinFlip.Game(ctx, id)
		if err != nil {
			log.Warn().Err(err).Uint64("gameId", id).Msg("Error reading open game")
			continue
		}
		details[id] = game
	}

	previous := append([]uint64{}, sess.lastOpen...)
	for sess.pendingCreates > 0 {
		id, ok := adoptCreatedGame(sess.player, previous, openIds, details)
		if !ok {
			break
		}
		log.Info().Str("player", sess.player.Hex()).Uint64("gameId", id).Msg("Pending creation adopted")
		sess.created = sess.created.add(id)
		sess.pendingCreates--
		sess.createRounds = 0
		previous = append(previous, id)
	}

	if sess.pendingCreates > 0 {
		sess.createRounds++
		if sess.createRounds >= pendingRoundLimit {
			log.Warn().Str("player", sess.player.Hex()).Int("pending", sess.pendingCreates).Msg("Pending creation not confirmed, dropping it")
			sess.pendingCreates = 0
			sess.createRounds = 0
			sess.createStatus = statusFailed
			sess.createErr = notConfirmed
		}
	}

	if sess.joining != nil {
		id := *sess.joining
		stillOpen := false
		for _, open := range openIds {
			stillOpen = stillOpen || open == id
		}

		switch {
		case !stillOpen || details[id].HasSecondPlayer():
			sess.joining = nil
		default:
			sess.joinRounds++
			if sess.joinRounds >= pendingRoundLimit {
				log.Warn().Str("player", sess.player.Hex()).Uint64("gameId", id).Msg("Join not confirmed, dropping it")
				sess.joined = sess.joined.remove(id)
				sess.joining = nil
				sess.joinStatus = statusFailed
				sess.joinErr = notConfirmed
			}
		}
	}

	sess.lastOpen = openIds
	sess.details = details
}

// fetchNotifications loads resolution logs past the watermark, or the whole history when
// full is set. A failed incremental fetch is retried once as a full fetch; if that fails
// too the list stays as it was.
func (s *Service) fetchNotifications(ctx context.Context, sess *session, full bool) {
	err := s.loadNotifications(ctx, sess, full)
	if err != nil && !full {
		log.Warn().Err(err).Str("player", sess.player.Hex()).Msg("Incremental GameResolved fetch failed, fetching full history")
		full = true
		err = s.loadNotifications(ctx, sess, true)
	}

	if err != nil {
		log.Warn().Err(err).Str("player", sess.player.Hex()).Msg("Error fetching GameResolved history")
		sess.historyErr = err.Error()
		return
	}

	sess.historyErr = ""
	if full {
		sess.needsFullFetch = false
	}
}

func (s *Service) loadNotifications(ctx context.Context, sess *session, full bool) error {
	watermark, err := s.watermarks.Load(ctx, sess.player)
	if err != nil {
		return fmt.Errorf("loading watermark: %w", err)
	}

	fromBlock := uint64(0)
	if !full {
		fromBlock = watermark + 1
	}

	head, err := s.coinFlip.LatestBlock(ctx)
	if err != nil {
		return fmt.Errorf("reading chain head: %w", err)
	}

	resolved, err := s.coinFlip.ResolvedSince(ctx, fromBlock)
	if err != nil {
		return err
	}

	fetched := []model.Notification{}
	highest := head
	for _, r := range resolved {
		if r.BlockNumber > highest {
			highest = r.BlockNumber
		}

		n, err := s.notification(ctx, sess.player, r)
		if err != nil {
			log.Warn().Err(err).Uint64("gameId", r.GameId).Str("tx", r.TxHash.Hex()).Msg("Dropping GameResolved log")
			continue
		}
		if n.Involves(sess.player) {
			fetched = append(fetched, n)
		}
	}

	sess.notifications = mergeNotifications(sess.notifications, fetched, full)

	if len(resolved) > 0 && highest > watermark {
		if err := s.watermarks.Save(ctx, sess.player, highest); err != nil {
			log.Warn().Err(err).Str("player", sess.player.Hex()).Msg("Error saving watermark")
		}
	}
	return nil
}

func (s *Service) notification(ctx context.Context, player common.Address, resolved blockchain.GameResolved) (model.Notification, error) {
	blockTime, err := s.coinFlip.BlockTime(ctx, resolved.BlockNumber)
	if err != nil {
		return model.Notification{}, err
	}
	game, err := s.coinFlip.Game(ctx, resolved.GameId)
	if err != nil {
		return model.Notification{}, err
	}
	return newNotification(player, resolved, game, blockTime), nil
}

// rebuild recomputes the lobby from the session state and pushes it to websocket listeners.
// Resolved ids are dropped from the tracking sets only when prune is set.
func (s *Service) rebuild(ctx context.Context, sess *session, prune bool) {
	result := reconcile(reconcileInput{
		player:        sess.player,
		openIds:       sess.lastOpen,
		details:       sess.details,
		notifications: sess.notifications,
		created:       sess.created,
		joined:        sess.joined,
	})

	for i := range result.games {
		if details := result.games[i].Details; details != nil {
			result.games[i].ImageUrl = s.tokens.ImageUrl(ctx, details.TokenId1)
		}
	}

	if prune {
		sess.created = result.created
		sess.joined = result.joined
	}

	var joining *uint64
	if sess.joining != nil {
		id := *sess.joining
		joining = &id
	}

	sess.lobby = model.Lobby{
		Player:           sess.player.Hex(),
		Games:            result.games,
		Resolving:        result.resolving,
		UnresolvedCount:  unresolvedCount(sess.notifications),
		JoiningGameId:    joining,
		OpenGamesError:   sess.openGamesErr,
		HistoryError:     sess.historyErr,
		CreateGameStatus: sess.createStatus,
		CreateGameError:  sess.createErr,
		JoinGameStatus:   sess.joinStatus,
		JoinGameError:    sess.joinErr,
	}

	s.hub.Publish(ws.CoinFlipTopic(sess.player), sess.lobby)
}

func (s *Service) trackCommand(ref string, command submittedCommand) {
	s.commandsMutex.Lock()
	defer s.commandsMutex.Unlock()

	now := time.Now()
	for id, c := range s.commands {
		if now.Sub(c.submittedAt) > commandRetention {
			delete(s.commands, id)
		}
	}

	command.submittedAt = now
	s.commands[ref] = command
}

// commandFailed undoes the optimistic state recorded for a command the signer could not send.
func (s *Service) commandFailed(ctx context.Context, failed blockchain.CommandFailed) {
	s.commandsMutex.Lock()
	command, ok := s.commands[failed.CommandId]
	delete(s.commands, failed.CommandId)
	s.commandsMutex.Unlock()

	if !ok {
		log.Info().Str("commandId", failed.CommandId).Msg("Ignoring failure of unknown command")
		return
	}

	sess := s.session(command.player)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch command.kind {
	case commandCreate:
		if sess.pendingCreates > 0 {
			sess.pendingCreates--
		}
		sess.createStatus = statusFailed
		sess.createErr = failed.Reason
	case commandJoin:
		sess.joined = sess.joined.remove(command.gameId)
		if sess.joining != nil && *sess.joining == command.gameId {
			sess.joining = nil
		}
		sess.joinStatus = statusFailed
		sess.joinErr = failed.Reason
	}

	s.rebuild(ctx, sess, false)
}

func txProblem(err error) *reject.ProblemWithTrace {
	if errors.Is(err, blockchain.ErrSignerMismatch) {
		return reject.Forbidden("Signer cannot act for this player", signerMismatch, err)
	}
	return reject.ChainProblem(err)
}
