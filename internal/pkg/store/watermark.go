package store

import (
	"context"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// WatermarkStore persists the last block scanned for GameResolved logs per player.
// Save never lowers a stored value.
type WatermarkStore interface {
	Load(ctx context.Context, player common.Address) (uint64, error)
	Save(ctx context.Context, player common.Address, block uint64) error
}

func playerKey(player common.Address) string {
	return strings.ToLower(player.Hex())
}

type MemoryWatermarkStore struct {
	mu     sync.Mutex
	blocks map[string]uint64
}

func NewMemoryWatermarkStore() *MemoryWatermarkStore {
	return &MemoryWatermarkStore{blocks: map[string]uint64{}}
}

func (s *MemoryWatermarkStore) Load(_ context.Context, player common.Address) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocks[playerKey(player)], nil
}

func (s *MemoryWatermarkStore) Save(_ context.Context, player common.Address, block uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key := playerKey(player); block > s.blocks[key] {
		s.blocks[key] = block
	}
	return nil
}
