package cache

import (
	"context"
	"time"

	"github.com/Lutefd/tasas-board/internal/model"
)

// Cache holds the current render plan. A miss returns model.ErrBoardNotFound.
type Cache interface {
	Get(ctx context.Context, key string) (*model.Board, error)
	Set(ctx context.Context, key string, board *model.Board, expiration time.Duration) error
	Close() error
}
