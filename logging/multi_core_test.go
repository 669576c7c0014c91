package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// syncBuffer wraps bytes.Buffer to satisfy zapcore.WriteSyncer.
type syncBuffer struct {
	bytes.Buffer
}

func (b *syncBuffer) Sync() error { return nil }

// TestNewMultiCoreWithWriters_TeesOutput tests that entries reach both sinks.
func TestNewMultiCoreWithWriters_TeesOutput(t *testing.T) {
	var console, file syncBuffer

	core := NewMultiCoreWithWriters(zapcore.DebugLevel, zapcore.DebugLevel, &console, &file, false)
	logger := zap.New(core)

	logger.Info("tee check", zap.Int("angle", 45))
	_ = logger.Sync()

	if !strings.Contains(console.String(), "tee check") {
		t.Errorf("console output missing entry: %q", console.String())
	}
	if !strings.Contains(file.String(), "tee check") {
		t.Errorf("file output missing entry: %q", file.String())
	}
}

// TestNewMultiCoreWithWriters_FileIsJSON tests that the file sink always
// receives structured JSON with the standard field names.
func TestNewMultiCoreWithWriters_FileIsJSON(t *testing.T) {
	var console, file syncBuffer

	core := NewMultiCoreWithWriters(zapcore.InfoLevel, zapcore.InfoLevel, &console, &file, true)
	logger := zap.New(core)

	logger.Info("structured entry", zap.String("image", "product.jpg"))
	_ = logger.Sync()

	var entry map[string]interface{}
	if err := json.Unmarshal(file.Bytes(), &entry); err != nil {
		t.Fatalf("file output is not JSON: %v (%q)", err, file.String())
	}

	if entry[FieldMessage] != "structured entry" {
		t.Errorf("expected message field, got %v", entry[FieldMessage])
	}
	if entry[FieldLevel] != "info" {
		t.Errorf("expected lowercase level, got %v", entry[FieldLevel])
	}
	if entry["image"] != "product.jpg" {
		t.Errorf("expected image field, got %v", entry["image"])
	}
}

// TestNewMultiCoreWithWriters_IndependentLevels tests that a raised console
// level does not filter the file sink.
func TestNewMultiCoreWithWriters_IndependentLevels(t *testing.T) {
	var console, file syncBuffer

	core := NewMultiCoreWithWriters(zapcore.WarnLevel, zapcore.DebugLevel, &console, &file, false)
	logger := zap.New(core)

	logger.Debug("debug entry")
	logger.Warn("warn entry")
	_ = logger.Sync()

	if strings.Contains(console.String(), "debug entry") {
		t.Error("console should filter debug entries at warn level")
	}
	if !strings.Contains(console.String(), "warn entry") {
		t.Error("console should pass warn entries")
	}
	if !strings.Contains(file.String(), "debug entry") {
		t.Error("file should keep debug entries")
	}
}

// TestNewMultiCore_CreatesLogFile tests the file-backed constructor.
func TestNewMultiCore_CreatesLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	core := NewMultiCore(zapcore.InfoLevel, zapcore.InfoLevel, logPath, true)
	logger := zap.New(core)

	logger.Info("file creation check")
	_ = logger.Sync()

	// lumberjack creates the file lazily on first write
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("expected log file to exist: %v", err)
	}
	if !strings.Contains(string(data), "file creation check") {
		t.Errorf("log file missing entry: %q", string(data))
	}
}
