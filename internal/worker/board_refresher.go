package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Lutefd/tasas-board/internal/cache"
	"github.com/Lutefd/tasas-board/internal/commons"
	"github.com/Lutefd/tasas-board/internal/logger"
	"github.com/Lutefd/tasas-board/internal/model"
	"github.com/Lutefd/tasas-board/internal/service"
)

type BoardRefresher struct {
	source       RowSource
	builder      service.BoardBuilder
	cache        cache.Cache
	interval     time.Duration
	fetchTimeout time.Duration
	boardTTL     time.Duration
	now          func() time.Time

	running int32
	// last successful board; only touched while running is held.
	last *model.Board
}

type RefresherOption func(*BoardRefresher)

func WithFetchTimeout(timeout time.Duration) RefresherOption {
	return func(br *BoardRefresher) {
		if timeout > 0 {
			br.fetchTimeout = timeout
		}
	}
}

func WithBoardTTL(ttl time.Duration) RefresherOption {
	return func(br *BoardRefresher) {
		if ttl > 0 {
			br.boardTTL = ttl
		}
	}
}

func WithRefresherClock(now func() time.Time) RefresherOption {
	return func(br *BoardRefresher) {
		br.now = now
	}
}

func NewBoardRefresher(source RowSource, builder service.BoardBuilder, cache cache.Cache, interval time.Duration, opts ...RefresherOption) *BoardRefresher {
	br := &BoardRefresher{
		source:       source,
		builder:      builder,
		cache:        cache,
		interval:     interval,
		fetchTimeout: interval,
		boardTTL:     commons.BoardTTLFactor * interval,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(br)
	}
	return br
}

// Start runs a cycle right away and then one per interval until ctx is
// done. A failed cycle never stops the loop; the next tick is the retry.
func (br *BoardRefresher) Start(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	br.refresh(ctx)

	ticker := time.NewTicker(br.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Board refresher stopped")
			return
		case <-ticker.C:
			br.refresh(ctx)
		}
	}
}

// refresh runs one cycle for the loop. RunOnce already logged the outcome
// of any cycle it started.
func (br *BoardRefresher) refresh(ctx context.Context) {
	if err := br.RunOnce(ctx); errors.Is(err, model.ErrCycleInProgress) {
		logger.Info("Skipping board refresh: previous cycle still running")
	}
}

// IsRunning reports whether a cycle is in flight.
func (br *BoardRefresher) IsRunning() bool {
	return atomic.LoadInt32(&br.running) == 1
}

// RunOnce performs a single fetch, build and publish cycle. It returns
// model.ErrCycleInProgress instead of overlapping a running cycle. Every
// cycle logs under the CycleID of the board it published.
func (br *BoardRefresher) RunOnce(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&br.running, 0, 1) {
		return model.ErrCycleInProgress
	}
	defer atomic.StoreInt32(&br.running, 0)

	fetchCtx, cancel := context.WithTimeout(ctx, br.fetchTimeout)
	rows, err := br.source.FetchRows(fetchCtx)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		board := br.builder.Reconnecting(br.previous(ctx), br.now())
		logger.CycleErrorf(board.CycleID, "Failed to fetch rates: %v", err)
		if pubErr := br.publish(ctx, board); pubErr != nil {
			logger.CycleErrorf(board.CycleID, "Failed to publish reconnecting board: %v", pubErr)
		}
		return fmt.Errorf("failed to fetch rates: %w", err)
	}

	board := br.builder.Build(rows, br.now())
	if err := br.publish(ctx, board); err != nil {
		logger.CycleErrorf(board.CycleID, "%v", err)
		return err
	}
	br.last = board

	logger.CycleInfof(board.CycleID, "Board refreshed: state=%s cards=%d columns=%d", board.State, len(board.Cards), board.Columns)
	return nil
}

func (br *BoardRefresher) publish(ctx context.Context, board *model.Board) error {
	if err := br.cache.Set(ctx, commons.BoardCacheKey, board, br.boardTTL); err != nil {
		return fmt.Errorf("failed to publish board: %w", err)
	}
	return nil
}

// previous falls back to the stored board so a restarted worker keeps the
// label another process last published.
func (br *BoardRefresher) previous(ctx context.Context) *model.Board {
	if br.last != nil {
		return br.last
	}
	board, err := br.cache.Get(ctx, commons.BoardCacheKey)
	if err != nil {
		return nil
	}
	return board
}
