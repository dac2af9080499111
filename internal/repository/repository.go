package repository

import (
	"context"
	"time"

	"github.com/Lutefd/tasas-board/internal/model"
)

// LogRepository persists application log entries into monthly partitions.
// Entries tagged with a refresh cycle can be read back per cycle.
type LogRepository interface {
	SaveLog(ctx context.Context, log model.Log) error
	EnsureSchema(ctx context.Context) error
	CreatePartition(ctx context.Context, month time.Time) error
	DropPartitionsBefore(ctx context.Context, cutoff time.Time) ([]string, error)
	Close() error
}
