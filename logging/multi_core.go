package logging

import (
	"os"
	"time"

	"go.uber.org/zap/zapcore"
)

// Standard field names for structured logging.
// These constants define the JSON keys used in log output.
const (
	FieldTimestamp  = "timestamp"
	FieldLevel      = "level"
	FieldSource     = "source"
	FieldMessage    = "message"
	FieldStacktrace = "stacktrace"
	FieldCaller     = "caller"
)

// NewEncoderConfig returns a zapcore.EncoderConfig with standardized field
// names for JSON log output: ISO8601 timestamps, lowercase level names,
// short caller paths.
func NewEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:       FieldTimestamp,
		LevelKey:      FieldLevel,
		NameKey:       FieldSource,
		CallerKey:     FieldCaller,
		MessageKey:    FieldMessage,
		StacktraceKey: FieldStacktrace,
		LineEnding:    zapcore.DefaultLineEnding,

		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// NewConsoleEncoderConfig returns a zapcore.EncoderConfig optimized for
// console output: colored levels and compact timestamps.
func NewConsoleEncoderConfig() zapcore.EncoderConfig {
	cfg := NewEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeTime = shortTimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}

// shortTimeEncoder encodes time in a compact format for console output.
// Format: 15:04:05.000
func shortTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05.000"))
}

// NewMultiCore creates a zapcore.Core that tees output to both console and a
// rotated log file. The two outputs have independent levels so that quiet
// mode can silence the console while the file keeps the full record.
//
// Parameters:
//   - consoleLevel: minimum level for console output
//   - fileLevel: minimum level for file output
//   - filePath: path to the rotated log file
//   - isDev: when true, console uses the colored human-readable encoder;
//     when false, both outputs use JSON
//
// The file output always uses JSON encoding for structured log processing.
//
// Example:
//
//	core := NewMultiCore(zapcore.InfoLevel, zapcore.DebugLevel, "turntable.log", true)
//	logger := zap.New(core)
func NewMultiCore(consoleLevel, fileLevel zapcore.Level, filePath string, isDev bool) zapcore.Core {
	fileWriter := NewFileWriter(filePath)
	return NewMultiCoreWithWriters(consoleLevel, fileLevel, zapcore.AddSync(os.Stdout), fileWriter, isDev)
}

// NewMultiCoreWithWriters creates a tee core over the provided writers.
// This variant allows custom writers, useful for testing.
//
// Example:
//
//	var buf bytes.Buffer
//	core := NewMultiCoreWithWriters(zapcore.DebugLevel, zapcore.DebugLevel,
//	    zapcore.AddSync(os.Stdout), zapcore.AddSync(&buf), true)
func NewMultiCoreWithWriters(consoleLevel, fileLevel zapcore.Level, consoleWriter, fileWriter zapcore.WriteSyncer, isDev bool) zapcore.Core {
	fileEncoder := zapcore.NewJSONEncoder(NewEncoderConfig())
	fileCore := zapcore.NewCore(
		fileEncoder,
		fileWriter,
		fileLevel,
	)

	var consoleEncoder zapcore.Encoder
	if isDev {
		consoleEncoder = zapcore.NewConsoleEncoder(NewConsoleEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(NewEncoderConfig())
	}

	consoleCore := zapcore.NewCore(
		consoleEncoder,
		consoleWriter,
		consoleLevel,
	)

	return zapcore.NewTee(consoleCore, fileCore)
}
