package model

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

type Outcome string

const (
	OutcomeWon  Outcome = "Won"
	OutcomeLost Outcome = "Lost"
)

// Notification is a GameResolved log seen from one player's perspective.
type Notification struct {
	GameId          uint64         `json:"gameId"`
	Result          Outcome        `json:"result"`
	TokenId1        uint64         `json:"tokenId1"`
	TokenId2        uint64         `json:"tokenId2"`
	Timestamp       int64          `json:"timestamp"`
	Player1         common.Address `json:"player1"`
	Player2         common.Address `json:"player2"`
	TransactionHash common.Hash    `json:"transactionHash"`
	BlockNumber     uint64         `json:"blockNumber"`
	Resolved        bool           `json:"resolved"`
}

func (n Notification) Involves(player common.Address) bool {
	return SameAddress(n.Player1, player) || SameAddress(n.Player2, player)
}

func (n Notification) SameTransaction(other Notification) bool {
	return strings.EqualFold(n.TransactionHash.Hex(), other.TransactionHash.Hex())
}
