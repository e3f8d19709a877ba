package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger defines the interface for audit logging
type Logger interface {
	// Log logs an audit event
	Log(ctx context.Context, event *Event) error

	// LogAnalysis logs analysis lifecycle events
	LogAnalysisStarted(ctx context.Context, planningID int, provider, model string) error
	LogAnalysisCompleted(ctx context.Context, planningID int, suggestions int, duration time.Duration) error
	LogAnalysisFallback(ctx context.Context, planningID int, duration time.Duration) error
	LogAnalysisFailed(ctx context.Context, planningID int, err error) error

	// LogQuickAdvice logs quick advice lifecycle events
	LogQuickAdviceCompleted(ctx context.Context, duration time.Duration) error
	LogQuickAdviceFailed(ctx context.Context, err error) error

	// App returns the application logger for structured non-audit logging
	App() *zap.Logger

	// Sync flushes buffered log entries
	Sync() error

	// Close closes the audit logger
	Close() error
}

// Config represents audit logger configuration
type Config struct {
	// AuditLogPath is the path to the audit log file
	AuditLogPath string

	// AppLogPath is the path to the application log file
	AppLogPath string

	// MaxSize is the maximum size in megabytes before rotation
	MaxSize int

	// MaxBackups is the maximum number of old log files to retain
	MaxBackups int

	// MaxAge is the maximum number of days to retain old log files
	MaxAge int

	// Compress determines if rotated files should be compressed
	Compress bool

	// LogLevel is the minimum log level (debug, info, warn, error)
	LogLevel string
}

// DefaultConfig returns default audit logger configuration
func DefaultConfig() *Config {
	return &Config{
		AuditLogPath: "logs/audit.log",
		AppLogPath:   "logs/app.log",
		MaxSize:      100, // megabytes
		MaxBackups:   10,
		MaxAge:       30, // days
		Compress:     true,
		LogLevel:     "info",
	}
}

// auditLogger implements the Logger interface
type auditLogger struct {
	appLogger   *zap.Logger
	auditLogger *zap.Logger
	config      *Config
	mu          sync.Mutex
	buffer      []*Event
	flushTicker *time.Ticker
	stopCh      chan struct{}
}

// NewLogger creates a new audit logger
func NewLogger(config *Config) (Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	level, err := zapcore.ParseLevel(config.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %s: %w", config.LogLevel, err)
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	// Application logger with rotation
	appRotator := &lumberjack.Logger{
		Filename:   config.AppLogPath,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	}

	appCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(appRotator),
		level,
	)

	appLogger := zap.New(appCore, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	// Audit logger with rotation (always INFO level, append-only)
	auditRotator := &lumberjack.Logger{
		Filename:   config.AuditLogPath,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	}

	auditCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(auditRotator),
		zapcore.InfoLevel,
	)

	auditZapLogger := zap.New(auditCore)

	logger := &auditLogger{
		appLogger:   appLogger,
		auditLogger: auditZapLogger,
		config:      config,
		buffer:      make([]*Event, 0, 100),
		flushTicker: time.NewTicker(1 * time.Second),
		stopCh:      make(chan struct{}),
	}

	go logger.autoFlush()

	return logger, nil
}

// Log logs an audit event
func (l *auditLogger) Log(ctx context.Context, event *Event) error {
	if event.CorrelationID == "" {
		event.CorrelationID = GetCorrelationID(ctx)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.buffer = append(l.buffer, event)

	if len(l.buffer) >= 100 {
		return l.flushLocked()
	}

	return nil
}

// flushLocked flushes the buffer (caller must hold lock)
func (l *auditLogger) flushLocked() error {
	if len(l.buffer) == 0 {
		return nil
	}

	for _, event := range l.buffer {
		eventJSON, err := json.Marshal(event)
		if err != nil {
			l.appLogger.Error("failed to marshal audit event",
				zap.Error(err),
				zap.String("event_type", string(event.EventType)),
			)
			continue
		}

		l.auditLogger.Info(string(eventJSON),
			zap.String("correlation_id", event.CorrelationID),
			zap.String("event_type", string(event.EventType)),
			zap.String("result", string(event.Result)),
		)
	}

	l.buffer = l.buffer[:0]

	return nil
}

// autoFlush periodically flushes the buffer
func (l *auditLogger) autoFlush() {
	for {
		select {
		case <-l.flushTicker.C:
			l.mu.Lock()
			_ = l.flushLocked()
			l.mu.Unlock()
		case <-l.stopCh:
			return
		}
	}
}

// LogAnalysisStarted logs when a planning analysis starts
func (l *auditLogger) LogAnalysisStarted(ctx context.Context, planningID int, provider, model string) error {
	event := NewEvent(EventAnalysisStarted).
		WithPlanningID(planningID).
		WithBackend(provider, model).
		WithResult(ResultPending).
		WithDescription(fmt.Sprintf("Analysis of planning %d started", planningID))

	return l.Log(ctx, event)
}

// LogAnalysisCompleted logs when a planning analysis completes
func (l *auditLogger) LogAnalysisCompleted(ctx context.Context, planningID int, suggestions int, duration time.Duration) error {
	event := NewEvent(EventAnalysisCompleted).
		WithPlanningID(planningID).
		WithResult(ResultSuccess).
		WithDuration(duration).
		WithMetadata("suggestions", suggestions).
		WithDescription(fmt.Sprintf("Analysis of planning %d completed with %d suggestions", planningID, suggestions))

	return l.Log(ctx, event)
}

// LogAnalysisFallback logs when a backend reply could not be parsed
// and raw-content advice was returned instead
func (l *auditLogger) LogAnalysisFallback(ctx context.Context, planningID int, duration time.Duration) error {
	event := NewEvent(EventAnalysisFallback).
		WithPlanningID(planningID).
		WithResult(ResultFallback).
		WithDuration(duration).
		WithDescription(fmt.Sprintf("Analysis of planning %d returned unstructured advice", planningID))

	return l.Log(ctx, event)
}

// LogAnalysisFailed logs when a planning analysis fails
func (l *auditLogger) LogAnalysisFailed(ctx context.Context, planningID int, err error) error {
	event := NewEvent(EventAnalysisFailed).
		WithPlanningID(planningID).
		WithError(err, "analysis_error").
		WithDescription(fmt.Sprintf("Analysis of planning %d failed", planningID))

	return l.Log(ctx, event)
}

// LogQuickAdviceCompleted logs when a quick advice round-trip completes
func (l *auditLogger) LogQuickAdviceCompleted(ctx context.Context, duration time.Duration) error {
	event := NewEvent(EventQuickAdviceCompleted).
		WithResult(ResultSuccess).
		WithDuration(duration).
		WithDescription("Quick advice completed")

	return l.Log(ctx, event)
}

// LogQuickAdviceFailed logs when a quick advice round-trip fails
func (l *auditLogger) LogQuickAdviceFailed(ctx context.Context, err error) error {
	event := NewEvent(EventQuickAdviceFailed).
		WithError(err, "quick_advice_error").
		WithDescription("Quick advice failed")

	return l.Log(ctx, event)
}

// App returns the application logger
func (l *auditLogger) App() *zap.Logger {
	return l.appLogger
}

// Sync flushes buffered log entries
func (l *auditLogger) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.flushLocked(); err != nil {
		return err
	}

	if err := l.auditLogger.Sync(); err != nil {
		return err
	}

	return l.appLogger.Sync()
}

// Close closes the audit logger
func (l *auditLogger) Close() error {
	close(l.stopCh)
	l.flushTicker.Stop()

	if err := l.Sync(); err != nil {
		return err
	}

	return nil
}

type correlationIDKey struct{}

// GetCorrelationID extracts correlation ID from context
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithCorrelationID adds correlation ID to context
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// GenerateCorrelationID generates a new correlation ID
func GenerateCorrelationID() string {
	return uuid.NewString()
}
