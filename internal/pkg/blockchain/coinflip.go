package blockchain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mymilios/mymilios-backend/internal/pkg/model"
)

const GameResolvedEvent = "GameResolved"

// GameResolved is a decoded GameResolved log.
type GameResolved struct {
	GameId      uint64
	Winner      common.Address
	TokenId1    uint64
	TokenId2    uint64
	TxHash      common.Hash
	BlockNumber uint64
}

type gameTuple struct {
	Player1         common.Address
	TokenId1        *big.Int
	Player2         common.Address
	TokenId2        *big.Int
	Active          bool
	RequestId       *big.Int
	Data            []byte
	JoinTimestamp   *big.Int
	CreateTimestamp *big.Int
}

type gameResolvedData struct {
	GameId   *big.Int
	Winner   common.Address
	TokenId1 *big.Int
	TokenId2 *big.Int
}

type CoinFlip struct {
	boundContract
}

func NewCoinFlip(address common.Address, backend Backend) *CoinFlip {
	return &CoinFlip{boundContract{address: address, abi: CoinFlipAbi, backend: backend}}
}

func (c *CoinFlip) Address() common.Address {
	return c.address
}

func (c *CoinFlip) OpenGames(ctx context.Context) ([]uint64, error) {
	values, err := c.call(ctx, "getOpenGames")
	if err != nil {
		return nil, err
	}
	return toUint64s(values[0].([]*big.Int))
}

func (c *CoinFlip) Game(ctx context.Context, gameId uint64) (model.Game, error) {
	values, err := c.call(ctx, "getGame", new(big.Int).SetUint64(gameId))
	if err != nil {
		return model.Game{}, err
	}

	raw := *abi.ConvertType(values[0], new(gameTuple)).(*gameTuple)

	game := model.Game{
		Id:      gameId,
		Player1: raw.Player1,
		Player2: raw.Player2,
		Active:  raw.Active,
	}
	if raw.RequestId != nil {
		game.RequestId = raw.RequestId.String()
	}
	for _, f := range []struct {
		dst *uint64
		src *big.Int
	}{
		{&game.TokenId1, raw.TokenId1},
		{&game.TokenId2, raw.TokenId2},
		{&game.JoinTimestamp, raw.JoinTimestamp},
		{&game.CreateTimestamp, raw.CreateTimestamp},
	} {
		if *f.dst, err = toUint64(f.src); err != nil {
			return model.Game{}, fmt.Errorf("game %d: %w", gameId, err)
		}
	}

	return game, nil
}

// ResolvedSince returns GameResolved logs from fromBlock up to the chain head.
func (c *CoinFlip) ResolvedSince(ctx context.Context, fromBlock uint64) ([]GameResolved, error) {
	event := c.abi.Events[GameResolvedEvent]
	logs, err := c.backend.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		Addresses: []common.Address{c.address},
		Topics:    [][]common.Hash{{event.ID}},
	})
	if err != nil {
		return nil, fmt.Errorf("filtering %s logs: %w", GameResolvedEvent, err)
	}

	resolved := make([]GameResolved, 0, len(logs))
	for _, l := range logs {
		if l.Removed {
			continue
		}

		var data gameResolvedData
		if err := c.abi.UnpackIntoInterface(&data, GameResolvedEvent, l.Data); err != nil {
			return nil, fmt.Errorf("decoding %s log %s: %w", GameResolvedEvent, l.TxHash.Hex(), err)
		}

		gameId, err := toUint64(data.GameId)
		if err != nil {
			return nil, err
		}
		tokenId1, err := toUint64(data.TokenId1)
		if err != nil {
			return nil, err
		}
		tokenId2, err := toUint64(data.TokenId2)
		if err != nil {
			return nil, err
		}

		resolved = append(resolved, GameResolved{
			GameId:      gameId,
			Winner:      data.Winner,
			TokenId1:    tokenId1,
			TokenId2:    tokenId2,
			TxHash:      l.TxHash,
			BlockNumber: l.BlockNumber,
		})
	}

	return resolved, nil
}

// BlockTime returns the block timestamp in unix seconds.
func (c *CoinFlip) BlockTime(ctx context.Context, blockNumber uint64) (uint64, error) {
	header, err := c.backend.HeaderByNumber(ctx, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return 0, fmt.Errorf("reading header %d: %w", blockNumber, err)
	}
	return header.Time, nil
}

func (c *CoinFlip) LatestBlock(ctx context.Context) (uint64, error) {
	return c.backend.BlockNumber(ctx)
}

func (c *CoinFlip) CreateGame(tokenId uint64) ContractCall {
	return c.prepare(CommandCreateGame, "createGame", new(big.Int).SetUint64(tokenId))
}

func (c *CoinFlip) JoinGame(gameId uint64, tokenId uint64) ContractCall {
	return c.prepare(CommandJoinGame, "joinGame", new(big.Int).SetUint64(gameId), new(big.Int).SetUint64(tokenId))
}
