package logger

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/Lutefd/tasas-board/internal/model"
	"github.com/Lutefd/tasas-board/internal/repository"
	"github.com/google/uuid"
)

const logSource = "tasas-board"

var (
	InfoLogger       *log.Logger
	ErrorLogger      *log.Logger
	mu               sync.RWMutex
	logChan          chan model.Log
	logRepo          repository.LogRepository
	drained          chan struct{}
	loggerBufferSize = 1000
)

func init() {
	InfoLogger = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
}

// InitLogger starts persisting entries through repo. Without it, entries
// only go to the console loggers.
func InitLogger(repo repository.LogRepository) {
	mu.Lock()
	defer mu.Unlock()

	logRepo = repo
	logChan = make(chan model.Log, loggerBufferSize)
	drained = make(chan struct{})
	go processLogs(logChan, repo, drained)
}

func processLogs(entries <-chan model.Log, repo repository.LogRepository, done chan<- struct{}) {
	defer close(done)
	for logEntry := range entries {
		if err := repo.SaveLog(context.Background(), logEntry); err != nil {
			ErrorLogger.Printf("failed to save log: %v", err)
		}
	}
}

func logAsync(level model.LogLevel, cycleID uuid.NullUUID, message string) {
	console := message
	if cycleID.Valid {
		console = fmt.Sprintf("cycle=%s %s", cycleID.UUID, message)
	}
	if level == model.LogLevelInfo {
		InfoLogger.Output(3, console)
	} else {
		ErrorLogger.Output(3, console)
	}

	mu.RLock()
	defer mu.RUnlock()
	if logChan == nil {
		return
	}

	logEntry := model.Log{
		ID:        uuid.New(),
		CycleID:   cycleID,
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
		Source:    logSource,
	}

	select {
	case logChan <- logEntry:
	default:
		ErrorLogger.Printf("log channel full. Dropping log: %v", logEntry)
	}
}

func Info(v ...interface{}) {
	logAsync(model.LogLevelInfo, uuid.NullUUID{}, fmt.Sprint(v...))
}

func Infof(format string, v ...interface{}) {
	logAsync(model.LogLevelInfo, uuid.NullUUID{}, fmt.Sprintf(format, v...))
}

func Error(v ...interface{}) {
	logAsync(model.LogLevelError, uuid.NullUUID{}, fmt.Sprint(v...))
}

func Errorf(format string, v ...interface{}) {
	logAsync(model.LogLevelError, uuid.NullUUID{}, fmt.Sprintf(format, v...))
}

// CycleInfof logs on behalf of the refresh cycle that produced the board
// identified by cycleID.
func CycleInfof(cycleID uuid.UUID, format string, v ...interface{}) {
	logAsync(model.LogLevelInfo, uuid.NullUUID{UUID: cycleID, Valid: true}, fmt.Sprintf(format, v...))
}

func CycleErrorf(cycleID uuid.UUID, format string, v ...interface{}) {
	logAsync(model.LogLevelError, uuid.NullUUID{UUID: cycleID, Valid: true}, fmt.Sprintf(format, v...))
}

// Shutdown stops accepting entries, waits for the queue to drain and
// closes the repository.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	entries, repo, done := logChan, logRepo, drained
	logChan, logRepo, drained = nil, nil, nil
	mu.Unlock()

	if entries == nil {
		return nil
	}
	close(entries)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return repo.Close()
	}
}
