package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Lutefd/tasas-board/internal/repository"
	"github.com/robfig/cron/v3"
)

const (
	partitionSchedule    = "0 0 1 * *"
	partitionMonthsAhead = 3
	logRetentionMonths   = 6
)

// PartitionManager keeps the logs table sliced into monthly partitions:
// the current month and partitionMonthsAhead months after it always exist,
// and months older than logRetentionMonths are dropped together with the
// cycle history they hold.
type PartitionManager struct {
	repo repository.LogRepository
	cron *cron.Cron
	now  func() time.Time
}

func NewPartitionManager(repo repository.LogRepository) *PartitionManager {
	c := cron.New()
	pm := &PartitionManager{
		repo: repo,
		cron: c,
		now:  time.Now,
	}

	_, err := c.AddFunc(partitionSchedule, pm.maintainWrapper)
	if err != nil {
		Errorf("failed to add cron job: %v", err)
	}

	return pm
}

// Start creates the schema and runs one maintenance pass before handing
// off to the monthly schedule. Only a schema failure is fatal.
func (pm *PartitionManager) Start(ctx context.Context) error {
	if err := pm.repo.EnsureSchema(ctx); err != nil {
		return err
	}

	if err := pm.maintain(ctx); err != nil {
		Errorf("failed to maintain log partitions: %v", err)
	}

	pm.cron.Start()

	go func() {
		<-ctx.Done()
		pm.cron.Stop()
	}()

	return nil
}

func (pm *PartitionManager) maintain(ctx context.Context) error {
	current := firstOfMonth(pm.now())

	var errs []error
	for i := 0; i <= partitionMonthsAhead; i++ {
		if err := pm.repo.CreatePartition(ctx, current.AddDate(0, i, 0)); err != nil {
			errs = append(errs, err)
		}
	}

	dropped, err := pm.repo.DropPartitionsBefore(ctx, current.AddDate(0, -logRetentionMonths, 0))
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to apply log retention: %w", err))
	}
	if len(dropped) > 0 {
		Infof("Dropped %d expired log partitions: %v", len(dropped), dropped)
	}

	return errors.Join(errs...)
}

func (pm *PartitionManager) maintainWrapper() {
	if err := pm.maintain(context.Background()); err != nil {
		Errorf("failed to maintain log partitions: %v", err)
	}
}

func firstOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
