// Package audit records who did what. Writes are best-effort and never block the caller.
package audit

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"invoiceapi/internal/config"
	"invoiceapi/internal/model"
	"invoiceapi/internal/repository"
)

// Logger is the audit surface used by the services.
type Logger interface {
	Append(ctx context.Context, actor, action, message string, severity model.Severity)
	Query(ctx context.Context, limit int) ([]model.AuditEntry, error)
}

// Log writes audit entries through a repository in background goroutines.
type Log struct {
	repo         repository.AuditRepository
	logger       *slog.Logger
	writeTimeout time.Duration
	defaultLimit int
	maxLimit     int
	now          func() time.Time

	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

var _ Logger = (*Log)(nil)

// New builds a Log over repo. A nil logger uses slog.Default.
func New(repo repository.AuditRepository, cfg config.AuditConfig, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Log{
		repo:         repo,
		logger:       logger.With("component", "audit"),
		writeTimeout: time.Duration(cfg.WriteTimeoutSec) * time.Second,
		defaultLimit: cfg.DefaultPageSize,
		maxLimit:     cfg.MaxPageSize,
		now:          func() time.Time { return time.Now().UTC() },
	}
	if l.writeTimeout <= 0 {
		l.writeTimeout = 5 * time.Second
	}
	if l.defaultLimit <= 0 {
		l.defaultLimit = 100
	}
	if l.maxLimit <= 0 {
		l.maxLimit = 1000
	}
	return l
}

// Append schedules one entry. Blank messages are dropped. The write outlives the
// caller's context but is bounded by the configured timeout; failures are logged only.
func (l *Log) Append(ctx context.Context, actor, action, message string, severity model.Severity) {
	if strings.TrimSpace(message) == "" {
		return
	}
	entry := model.AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: l.now(),
		Severity:  severity,
		Actor:     strings.TrimSpace(actor),
		Action:    action,
		Message:   message,
	}
	if entry.Severity == "" {
		entry.Severity = model.SeverityDefault
	}
	if entry.Actor == "" {
		entry.Actor = model.DefaultActor
	}
	if entry.Action == "" {
		entry.Action = model.DefaultAction
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		l.logger.Warn("audit entry dropped after close", "action", entry.Action, "actor", entry.Actor)
		return
	}
	l.wg.Add(1)
	go l.write(context.WithoutCancel(ctx), entry)
}

func (l *Log) write(ctx context.Context, e model.AuditEntry) {
	defer l.wg.Done()
	ctx, cancel := context.WithTimeout(ctx, l.writeTimeout)
	defer cancel()
	if err := l.repo.Insert(ctx, e); err != nil {
		l.logger.Error("audit write failed",
			"error", err,
			"action", e.Action,
			"actor", e.Actor,
			"severity", string(e.Severity),
		)
	}
}

// Query returns at most limit entries, newest first. limit <= 0 selects the default
// page size; larger values are clamped to the maximum.
func (l *Log) Query(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 {
		limit = l.defaultLimit
	}
	if limit > l.maxLimit {
		limit = l.maxLimit
	}
	entries, err := l.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	out := make([]model.AuditEntry, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.Message) == "" {
			continue
		}
		if e.Severity == "" {
			e.Severity = model.SeverityDefault
		}
		if e.Actor == "" {
			e.Actor = model.DefaultActor
		}
		if e.Action == "" {
			e.Action = model.DefaultAction
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close stops accepting entries and waits for in-flight writes.
func (l *Log) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.wg.Wait()
}
