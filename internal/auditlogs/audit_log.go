package auditlogs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"galaxy-datagen/internal/models"
	"galaxy-datagen/internal/shared/metrics"
)

const errorCodeAppendFailed = "AUD_9000"

var (
	ErrInvalidPath = errors.New("invalid audit log path")
	ErrShortWrite  = errors.New("audit line partially written")
)

// AuditLog is the append-only record of every dispatch decision. Each Append
// writes exactly one line, and lines of concurrent appends never interleave.
//
//go:generate mockgen -source=audit_log.go -destination=./mocks/audit_log_mock.go -package=mocks
type AuditLog interface {
	Append(ctx context.Context, entry *models.AuditEntry) error
}

// fileAuditLog appends to a file shared with other processes (the one-shot
// CLI, other replicas). The file is opened per append and the whole line goes
// out in a single write while an exclusive flock is held.
type fileAuditLog struct {
	path string
	mu   sync.Mutex
}

func NewFileAuditLog(path string) (AuditLog, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", ErrInvalidPath)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to resolve absolute path: %w", ErrInvalidPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	return &fileAuditLog{path: absPath}, nil
}

func (l *fileAuditLog) Append(ctx context.Context, entry *models.AuditEntry) error {
	err := l.append(ctx, []byte(entry.Line()))
	recordAppend(err)
	return err
}

func (l *fileAuditLog) append(ctx context.Context, line []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := lockExclusive(file); err != nil {
		return fmt.Errorf("failed to lock audit log: %w", err)
	}
	defer func() { _ = unlock(file) }()

	return writeLine(file, line)
}

// writerAuditLog appends to an arbitrary writer, e.g. an in-memory buffer.
type writerAuditLog struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWriterAuditLog returns an AuditLog writing to w. Appends are serialized
// so w does not need to be safe for concurrent use.
func NewWriterAuditLog(w io.Writer) AuditLog {
	return &writerAuditLog{w: w}
}

func (l *writerAuditLog) Append(ctx context.Context, entry *models.AuditEntry) error {
	if err := ctx.Err(); err != nil {
		recordAppend(err)
		return err
	}

	l.mu.Lock()
	err := writeLine(l.w, []byte(entry.Line()))
	l.mu.Unlock()

	recordAppend(err)
	return err
}

func writeLine(w io.Writer, line []byte) error {
	n, err := w.Write(line)
	if err != nil {
		return fmt.Errorf("failed to write audit line: %w", err)
	}
	if n != len(line) {
		return ErrShortWrite
	}
	return nil
}

func recordAppend(err error) {
	if err != nil {
		metricAuditAppendedTotal.WithLabelValues(errorCodeAppendFailed).Inc()
		return
	}
	metricAuditAppendedTotal.WithLabelValues(metrics.ValueNoError).Inc()
}
