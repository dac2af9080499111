package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Lutefd/tasas-board/internal/model"
)

type memoryEntry struct {
	board     *model.Board
	expiresAt time.Time
}

// MemoryCache is the single-process board store. Boards are replaced
// wholesale, never mutated in place.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (*model.Board, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, model.ErrBoardNotFound
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		return nil, model.ErrBoardNotFound
	}
	return copyBoard(entry.board), nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, board *model.Board, expiration time.Duration) error {
	entry := memoryEntry{board: copyBoard(board)}
	if expiration > 0 {
		entry.expiresAt = c.now().Add(expiration)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Close() error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}

func copyBoard(board *model.Board) *model.Board {
	if board == nil {
		return nil
	}
	copied := *board
	copied.Cards = make([]model.Card, len(board.Cards))
	copy(copied.Cards, board.Cards)
	return &copied
}
