package audit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLogger(t *testing.T) Logger {
	t.Helper()
	dir := t.TempDir()

	logger, err := NewLogger(&Config{
		AuditLogPath: filepath.Join(dir, "audit.log"),
		AppLogPath:   filepath.Join(dir, "app.log"),
		MaxSize:      1,
		MaxBackups:   1,
		MaxAge:       1,
		LogLevel:     "debug",
	})
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}
	return logger
}

func TestEventBuilder(t *testing.T) {
	err := errors.New("boom")
	event := NewEvent(EventAnalysisFailed).
		WithCorrelationID("cid-1").
		WithPlanningID(9).
		WithBackend("deepseek", "deepseek-reasoner").
		WithDuration(1500 * time.Millisecond).
		WithError(err, "analysis_error").
		WithMetadata("attempt", 1)

	if event.CorrelationID != "cid-1" {
		t.Errorf("Unexpected correlation ID %q", event.CorrelationID)
	}
	if event.PlanningID != 9 {
		t.Errorf("Unexpected planning ID %d", event.PlanningID)
	}
	if event.Provider != "deepseek" || event.Model != "deepseek-reasoner" {
		t.Errorf("Backend not recorded: %s/%s", event.Provider, event.Model)
	}
	if event.DurationMs != 1500 {
		t.Errorf("Expected duration 1500ms, got %d", event.DurationMs)
	}
	if event.Result != ResultFailure {
		t.Errorf("WithError should mark the event failed, got %s", event.Result)
	}
	if event.Error != "boom" {
		t.Errorf("Unexpected error text %q", event.Error)
	}
}

func TestLoggerWritesAuditLog(t *testing.T) {
	dir := t.TempDir()
	auditPath := filepath.Join(dir, "audit.log")

	logger, err := NewLogger(&Config{
		AuditLogPath: auditPath,
		AppLogPath:   filepath.Join(dir, "app.log"),
		MaxSize:      1,
		MaxBackups:   1,
		MaxAge:       1,
		LogLevel:     "info",
	})
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}

	ctx := context.Background()
	if err := logger.LogAnalysisStarted(ctx, 42, "deepseek", "deepseek-reasoner"); err != nil {
		t.Fatalf("LogAnalysisStarted() error: %v", err)
	}
	if err := logger.LogAnalysisCompleted(ctx, 42, 5, 2*time.Second); err != nil {
		t.Fatalf("LogAnalysisCompleted() error: %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(auditPath)
	if err != nil {
		t.Fatalf("Reading audit log: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, string(EventAnalysisStarted)) {
		t.Error("Audit log missing analysis.started event")
	}
	if !strings.Contains(content, string(EventAnalysisCompleted)) {
		t.Error("Audit log missing analysis.completed event")
	}
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := NewLogger(&Config{LogLevel: "loud"})
	if err == nil {
		t.Fatal("Expected error for invalid log level")
	}
}

func TestCorrelationIDContext(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "cid-42")
	if got := GetCorrelationID(ctx); got != "cid-42" {
		t.Errorf("Expected cid-42, got %q", got)
	}

	if got := GetCorrelationID(context.Background()); got != "" {
		t.Errorf("Expected empty ID on bare context, got %q", got)
	}

	if GenerateCorrelationID() == GenerateCorrelationID() {
		t.Error("Generated correlation IDs should be unique")
	}
}

func TestLoggerFromContext(t *testing.T) {
	logger := newTestLogger(t)
	defer logger.Close()

	ctx := WithCorrelationID(context.Background(), "ctx-id")
	event := NewEvent(EventQuickAdviceCompleted).WithResult(ResultSuccess)

	if err := logger.Log(ctx, event); err != nil {
		t.Fatalf("Log() error: %v", err)
	}
	if event.CorrelationID != "ctx-id" {
		t.Errorf("Log should adopt the context correlation ID, got %q", event.CorrelationID)
	}
}
