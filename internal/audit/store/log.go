package store

import (
	"context"

	"github.com/serroba/admission-gate/internal/audit"
	"go.uber.org/zap"
)

// Log is an audit.Store that writes denial events to the logger instead of
// persisting them. The default for deployments without an audit database.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a new log-only audit store.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) SaveDenial(_ context.Context, event *audit.DenialEvent) error {
	l.logger.Info("request denied",
		zap.String("eventId", event.EventID),
		zap.String("requestId", event.RequestID),
		zap.String("clientKey", event.ClientKey),
		zap.String("clientIp", event.ClientIP),
		zap.String("method", event.Method),
		zap.String("path", event.Path),
		zap.Int("limit", event.Limit),
		zap.String("window", event.Window),
		zap.Int64("retryAfter", event.RetryAfter),
		zap.Time("deniedAt", event.DeniedAt),
	)

	return nil
}
