package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Lutefd/tasas-board/internal/model"
	_ "github.com/lib/pq"
)

const (
	createLogsTable = `
	CREATE TABLE IF NOT EXISTS logs (
		id UUID NOT NULL,
		cycle_id UUID,
		level VARCHAR(10) NOT NULL,
		message TEXT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL,
		source VARCHAR(100) NOT NULL,
		PRIMARY KEY (id, timestamp)
	) PARTITION BY RANGE (timestamp)
`
	createCycleIndex = `CREATE INDEX IF NOT EXISTS logs_cycle_id_idx ON logs (cycle_id)`

	listPartitions = `
	SELECT child.relname
	FROM pg_inherits
	JOIN pg_class parent ON parent.oid = pg_inherits.inhparent
	JOIN pg_class child ON child.oid = pg_inherits.inhrelid
	WHERE parent.relname = 'logs'
	ORDER BY child.relname
`
	partitionNameFormat = "logs_y%04dm%02d"
)

type PostgresLogRepository struct {
	db *sql.DB
}

func NewPostgresLogRepository(connURL string, db *sql.DB) (*PostgresLogRepository, error) {
	if db == nil {
		var err error
		db, err = sql.Open("postgres", connURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		err = db.Ping()
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
	}

	return &PostgresLogRepository{db: db}, nil
}

func (r *PostgresLogRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createLogsTable); err != nil {
		return fmt.Errorf("failed to create logs table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createCycleIndex); err != nil {
		return fmt.Errorf("failed to create cycle index: %w", err)
	}
	return nil
}

// SaveLog stores one entry. Entries logged outside a refresh cycle get a
// NULL cycle_id.
func (r *PostgresLogRepository) SaveLog(ctx context.Context, log model.Log) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO logs (id, cycle_id, level, message, timestamp, source)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, log.ID, log.CycleID, log.Level, log.Message, log.Timestamp, log.Source)
	if err != nil {
		return fmt.Errorf("failed to save log: %w", err)
	}
	return nil
}

// CreatePartition creates the partition covering the calendar month of
// month, in UTC.
func (r *PostgresLogRepository) CreatePartition(ctx context.Context, month time.Time) error {
	startDate := monthStart(month)
	endDate := startDate.AddDate(0, 1, 0)
	partitionName := fmt.Sprintf(partitionNameFormat, startDate.Year(), startDate.Month())

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s PARTITION OF logs
		FOR VALUES FROM ('%s') TO ('%s')
	`, partitionName, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))

	_, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create partition %s: %w", partitionName, err)
	}

	return nil
}

// DropPartitionsBefore drops every monthly partition whose month ends on
// or before the start of cutoff's month and returns the dropped names.
// Children of logs that do not follow the monthly naming are left alone.
func (r *PostgresLogRepository) DropPartitionsBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	names, err := r.partitionNames(ctx)
	if err != nil {
		return nil, err
	}

	limit := monthStart(cutoff)
	dropped := []string{}
	for _, name := range names {
		month, ok := parsePartitionName(name)
		if !ok || !month.Before(limit) {
			continue
		}
		if _, err := r.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", name)); err != nil {
			return dropped, fmt.Errorf("failed to drop partition %s: %w", name, err)
		}
		dropped = append(dropped, name)
	}
	return dropped, nil
}

func (r *PostgresLogRepository) partitionNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listPartitions)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan partition name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}
	return names, nil
}

func (r *PostgresLogRepository) Close() error {
	return r.db.Close()
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func parsePartitionName(name string) (time.Time, bool) {
	var year, month int
	if _, err := fmt.Sscanf(name, partitionNameFormat, &year, &month); err != nil {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || fmt.Sprintf(partitionNameFormat, year, month) != name {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
}
