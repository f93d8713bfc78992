// Package logging provides structured logging with request trace IDs.
package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	// TraceIDKey carries the per-request trace identifier.
	TraceIDKey contextKey = "trace_id"
	// UserKey carries the authenticated display name, when known.
	UserKey contextKey = "user"
)

// Logger wraps logrus with component and context awareness.
type Logger struct {
	entry *logrus.Entry
}

// New creates a logger for the named component at the given level.
// Unknown levels fall back to info.
func New(component, level string) *Logger {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	base.SetLevel(parsed)

	return &Logger{entry: base.WithField("component", component)}
}

// NewDefault creates an info-level logger for the named component.
func NewDefault(component string) *Logger {
	return New(component, "info")
}

// WithField returns a logger with an extra structured field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithError returns a logger with the error attached.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

// WithContext returns a logger annotated with the trace ID and user from ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	entry := l.entry
	if trace := GetTraceID(ctx); trace != "" {
		entry = entry.WithField("trace_id", trace)
	}
	if user := GetUser(ctx); user != "" {
		entry = entry.WithField("user", user)
	}
	return &Logger{entry: entry}
}

func (l *Logger) Debug(msg string) { l.entry.Debug(msg) }
func (l *Logger) Info(msg string)  { l.entry.Info(msg) }
func (l *Logger) Warn(msg string)  { l.entry.Warn(msg) }
func (l *Logger) Error(msg string) { l.entry.Error(msg) }

// LogRequest emits a single per-request access log line.
func (l *Logger) LogRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	l.WithContext(ctx).
		WithField("method", method).
		WithField("path", path).
		WithField("status", status).
		WithField("duration_ms", duration.Milliseconds()).
		Info("request completed")
}

// NewTraceID generates a fresh trace identifier.
func NewTraceID() string {
	return uuid.NewString()
}

// WithTraceID stores a trace ID on the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		return ctx
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID returns the trace ID stored on the context, or "".
func GetTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(TraceIDKey).(string); ok {
		return v
	}
	return ""
}

// WithUser stores the authenticated display name on the context.
func WithUser(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, UserKey, name)
}

// GetUser returns the display name stored on the context, or "".
func GetUser(ctx context.Context) string {
	if v, ok := ctx.Value(UserKey).(string); ok {
		return v
	}
	return ""
}
