package log

import (
	"testing"

	"perpsim/internal/config"
)

func TestNewLoggerBuildsFromConfig(t *testing.T) {
	cfg := config.LoggingConfig{
		Level:            "debug",
		Encoding:         "json",
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	logger, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer logger.Sync()
	if logger == nil {
		t.Fatal("expected a non-nil logger")
	}
}

func TestNewLoggerAppliesDefaultOutputPaths(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Encoding: "console"}
	logger, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer logger.Sync()
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	cfg := config.LoggingConfig{Level: "not-a-level", Encoding: "console"}
	if _, err := NewLogger(cfg); err == nil {
		t.Fatal("expected an error for an invalid log level")
	}
}
