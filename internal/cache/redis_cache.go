package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Lutefd/tasas-board/internal/model"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr, password string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	_, err := client.Ping(context.Background()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (*model.Board, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrBoardNotFound
		}
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var board model.Board
	if err := json.Unmarshal(val, &board); err != nil {
		return nil, fmt.Errorf("failed to parse cached board: %w", err)
	}

	return &board, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, board *model.Board, expiration time.Duration) error {
	data, err := json.Marshal(board)
	if err != nil {
		return fmt.Errorf("failed to encode board: %w", err)
	}
	if err := c.client.Set(ctx, key, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set in cache: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
