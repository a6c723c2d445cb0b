package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
)

const KeyWatermark = "watermark:%s"

var saveWatermarkScript = redis.NewScript(`
	local current = tonumber(redis.call("GET", KEYS[1]) or "0")
	local next = tonumber(ARGV[1])
	if next > current then
		redis.call("SET", KEYS[1], ARGV[1])
		return ARGV[1]
	end
	return tostring(current)
`)

type RedisWatermarkStore struct {
	client *redis.Client
}

func NewRedisWatermarkStore(ctx context.Context, addr string, db int) (*RedisWatermarkStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisWatermarkStore{client: client}, nil
}

func (s *RedisWatermarkStore) Load(ctx context.Context, player common.Address) (uint64, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(KeyWatermark, playerKey(player))).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get watermark: %w", err)
	}
	return strconv.ParseUint(data, 10, 64)
}

func (s *RedisWatermarkStore) Save(ctx context.Context, player common.Address, block uint64) error {
	key := fmt.Sprintf(KeyWatermark, playerKey(player))
	return saveWatermarkScript.Run(ctx, s.client, []string{key}, strconv.FormatUint(block, 10)).Err()
}

func (s *RedisWatermarkStore) Delete(ctx context.Context, player common.Address) error {
	return s.client.Del(ctx, fmt.Sprintf(KeyWatermark, playerKey(player))).Err()
}

func (s *RedisWatermarkStore) Close() error {
	return s.client.Close()
}
