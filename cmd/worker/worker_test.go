package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Lutefd/tasas-board/internal/cache"
	"github.com/Lutefd/tasas-board/internal/commons"
	"github.com/Lutefd/tasas-board/internal/model"
	"github.com/Lutefd/tasas-board/internal/repository"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCache struct {
	cache.Cache
	closeCalled bool
	closeErr    error
}

func (m *mockCache) Close() error {
	m.closeCalled = true
	return m.closeErr
}

type mockLogRepository struct {
	repository.LogRepository
	closeCalled bool
	closeErr    error
}

func (m *mockLogRepository) SaveLog(ctx context.Context, log model.Log) error {
	return nil
}

func (m *mockLogRepository) Close() error {
	m.closeCalled = true
	return m.closeErr
}

type mockBoardRefresher struct {
	startCalled atomic.Bool
}

func (m *mockBoardRefresher) Start(ctx context.Context) {
	m.startCalled.Store(true)
	<-ctx.Done()
}

type mockPartitionManager struct {
	startErr error
}

func (m *mockPartitionManager) Start(ctx context.Context) error {
	return m.startErr
}

func TestRunWorker(t *testing.T) {
	tests := []struct {
		name                 string
		deps                 *dependencies
		expectedErrMsg       string
		expectRefresherStart bool
		setupContext         func() (context.Context, context.CancelFunc)
	}{
		{
			name: "Success case",
			deps: &dependencies{
				cache:        &mockCache{},
				logRepo:      &mockLogRepository{},
				refresher:    &mockBoardRefresher{},
				partitionMgr: &mockPartitionManager{},
			},
			expectedErrMsg:       "context deadline exceeded",
			expectRefresherStart: true,
			setupContext: func() (context.Context, context.CancelFunc) {
				return context.WithTimeout(context.Background(), 100*time.Millisecond)
			},
		},
		{
			name: "Partition manager start error",
			deps: &dependencies{
				cache:        &mockCache{},
				logRepo:      &mockLogRepository{},
				refresher:    &mockBoardRefresher{},
				partitionMgr: &mockPartitionManager{startErr: errors.New("partition manager error")},
			},
			expectedErrMsg:       "failed to start partition manager: partition manager error",
			expectRefresherStart: false,
			setupContext: func() (context.Context, context.CancelFunc) {
				return context.WithTimeout(context.Background(), 100*time.Millisecond)
			},
		},
		{
			name: "Context cancelled immediately",
			deps: &dependencies{
				cache:        &mockCache{},
				logRepo:      &mockLogRepository{},
				refresher:    &mockBoardRefresher{},
				partitionMgr: &mockPartitionManager{},
			},
			expectedErrMsg:       "context canceled",
			expectRefresherStart: false,
			setupContext: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx, func() {}
			},
		},
		{
			name: "Close errors are only logged",
			deps: &dependencies{
				cache:        &mockCache{closeErr: errors.New("redis gone")},
				logRepo:      &mockLogRepository{closeErr: errors.New("postgres gone")},
				refresher:    &mockBoardRefresher{},
				partitionMgr: &mockPartitionManager{},
			},
			expectedErrMsg:       "context deadline exceeded",
			expectRefresherStart: true,
			setupContext: func() (context.Context, context.CancelFunc) {
				return context.WithTimeout(context.Background(), 50*time.Millisecond)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.setupContext()
			defer cancel()

			err := runWorker(ctx, tt.deps)

			require.Error(t, err)
			assert.Equal(t, tt.expectedErrMsg, err.Error())

			refresher := tt.deps.refresher.(*mockBoardRefresher)
			assert.Equal(t, tt.expectRefresherStart, refresher.startCalled.Load())
			assert.True(t, tt.deps.cache.(*mockCache).closeCalled, "expected cache Close to be called")
			assert.True(t, tt.deps.logRepo.(*mockLogRepository).closeCalled, "expected log repository Close to be called")
		})
	}
}

func TestRunWorker_WithoutLogSink(t *testing.T) {
	deps := &dependencies{
		cache:     &mockCache{},
		refresher: &mockBoardRefresher{},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := runWorker(ctx, deps)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, deps.refresher.(*mockBoardRefresher).startCalled.Load())
	assert.True(t, deps.cache.(*mockCache).closeCalled)
}

func TestInitDependencies(t *testing.T) {
	mr := miniredis.RunT(t)
	config := commons.Config{
		SheetURL:        commons.DefaultSheetURL,
		SheetFormat:     "csv",
		RefreshInterval: time.Minute,
		FetchTimeout:    time.Minute,
		BoardTTL:        3 * time.Minute,
		Location:        time.UTC,
	}

	_, err := initDependencies(config)
	assert.EqualError(t, err, "REDIS_ADDR is required to publish boards")

	config.RedisAddr = mr.Addr()
	deps, err := initDependencies(config)
	require.NoError(t, err)
	defer deps.cache.Close()
	assert.IsType(t, &cache.RedisCache{}, deps.cache)
	assert.NotNil(t, deps.refresher)
	assert.Nil(t, deps.logRepo)
	assert.Nil(t, deps.partitionMgr)

	config.SheetFormat = "ods"
	_, err = initDependencies(config)
	assert.Error(t, err)
}
