package model

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Game mirrors CoinFlipGame.Game as returned by getGame.
type Game struct {
	Id              uint64         `json:"id"`
	Player1         common.Address `json:"player1"`
	TokenId1        uint64         `json:"tokenId1"`
	Player2         common.Address `json:"player2"`
	TokenId2        uint64         `json:"tokenId2"`
	Active          bool           `json:"active"`
	RequestId       string         `json:"requestId"`
	JoinTimestamp   uint64         `json:"joinTimestamp"`
	CreateTimestamp uint64         `json:"createTimestamp"`
}

func (g Game) HasSecondPlayer() bool {
	return g.Player2 != (common.Address{})
}

func (g Game) IsCreator(player common.Address) bool {
	return g.Player1 != (common.Address{}) && SameAddress(g.Player1, player)
}

func (g Game) IsSecondPlayer(player common.Address) bool {
	return g.HasSecondPlayer() && SameAddress(g.Player2, player)
}

// SameAddress compares addresses case-insensitively on their hex form.
func SameAddress(a, b common.Address) bool {
	return strings.EqualFold(a.Hex(), b.Hex())
}
