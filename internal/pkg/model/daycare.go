package model

import "github.com/ethereum/go-ethereum/common"

type Daycare struct {
	Owner         common.Address `json:"owner"`
	TokenIds      []uint64       `json:"tokenIds"`
	PendingPoints string         `json:"pendingPoints"`
	TotalPoints   string         `json:"totalPoints"`
}

type LeaderboardEntry struct {
	Rank   int            `json:"rank"`
	Player common.Address `json:"player"`
	Points string         `json:"points"`
}
