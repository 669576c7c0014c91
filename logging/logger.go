package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls logger construction. Components receive a configured
// *Logger at construction time; there is no package-level verbosity state.
type Config struct {
	// Development selects the colored console encoder and debug level.
	// Production uses JSON console output at info level.
	Development bool

	// Quiet raises the console output threshold to warn. The log file keeps
	// the full record regardless.
	Quiet bool

	// FilePath is the rotated log file path. Required.
	FilePath string

	// File overrides the default rotation settings when any field is non-zero.
	File FileWriterConfig
}

// Logger wraps zap.Logger and provides structured logging with automatic
// sensitive data redaction.
//
// This organism composes:
//   - FileWriter molecule (log file rotation via lumberjack)
//   - MultiCore molecule (tee output to console + file)
//   - SensitiveFilter atom (API credential redaction)
//
// Example:
//
//	logger, err := NewLogger(Config{Development: true, FilePath: "turntable.log"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("generation started", zap.Int("total_views", 72))
type Logger struct {
	zap   *zap.Logger
	sugar *zap.SugaredLogger
	cfg   Config
}

// NewLogger creates a Logger from the given Config.
//
// Console and file levels derive from the config:
//   - Development: console debug, file debug
//   - Production: console info, file info
//   - Quiet: console warn, file level unchanged
//
// The file output rotates automatically (100MB / 5 backups / 30 days by
// default) and always uses JSON encoding.
func NewLogger(cfg Config) (*Logger, error) {
	var consoleLevel, fileLevel zapcore.Level
	if cfg.Development {
		consoleLevel = zapcore.DebugLevel
		fileLevel = zapcore.DebugLevel
	} else {
		consoleLevel = zapcore.InfoLevel
		fileLevel = zapcore.InfoLevel
	}
	if cfg.Quiet {
		consoleLevel = zapcore.WarnLevel
	}

	fileWriter := NewFileWriterWithConfig(cfg.FilePath, cfg.File)
	core := NewMultiCoreWithWriters(consoleLevel, fileLevel,
		zapcore.AddSync(os.Stdout), fileWriter, cfg.Development)

	zapLogger := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1), // Skip this wrapper layer
	)

	return &Logger{
		zap:   zapLogger,
		sugar: zapLogger.Sugar(),
		cfg:   cfg,
	}, nil
}

// Sync flushes any buffered log entries.
// Applications should call Sync before exiting to ensure all logs are written.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

// Debug logs a message at DebugLevel with optional structured fields.
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(msg, l.redactFields(fields)...)
}

// Info logs a message at InfoLevel with optional structured fields.
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(msg, l.redactFields(fields)...)
}

// Warn logs a message at WarnLevel with optional structured fields.
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(msg, l.redactFields(fields)...)
}

// Error logs a message at ErrorLevel with optional structured fields.
func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zap.Error(msg, l.redactFields(fields)...)
}

// Fatal logs a message at FatalLevel then calls os.Exit(1).
func (l *Logger) Fatal(msg string, fields ...zap.Field) {
	l.zap.Fatal(msg, l.redactFields(fields)...)
}

// Debugf logs a formatted message at DebugLevel.
func (l *Logger) Debugf(template string, args ...interface{}) {
	l.sugar.Debugf(template, args...)
}

// Infof logs a formatted message at InfoLevel.
func (l *Logger) Infof(template string, args ...interface{}) {
	l.sugar.Infof(template, args...)
}

// Warnf logs a formatted message at WarnLevel.
func (l *Logger) Warnf(template string, args ...interface{}) {
	l.sugar.Warnf(template, args...)
}

// Errorf logs a formatted message at ErrorLevel.
func (l *Logger) Errorf(template string, args ...interface{}) {
	l.sugar.Errorf(template, args...)
}

// With creates a child logger with additional fields that will be included
// in all log entries from the child. Useful for per-run context such as the
// run correlation ID.
//
// Example:
//
//	runLogger := logger.With(zap.String("run_id", runID))
func (l *Logger) With(fields ...zap.Field) *Logger {
	newZap := l.zap.With(l.redactFields(fields)...)
	return &Logger{
		zap:   newZap,
		sugar: newZap.Sugar(),
		cfg:   l.cfg,
	}
}

// Named adds a sub-logger name. Logger names appear in log output and
// help identify the source of log entries.
//
// Example:
//
//	apiLogger := logger.Named("falapi")
func (l *Logger) Named(name string) *Logger {
	newZap := l.zap.Named(name)
	return &Logger{
		zap:   newZap,
		sugar: newZap.Sugar(),
		cfg:   l.cfg,
	}
}

// Zap returns the underlying zap.Logger for direct access to
// Logger methods not exposed by this wrapper.
func (l *Logger) Zap() *zap.Logger {
	return l.zap
}

// IsDevelopment returns true if the logger is configured for development mode.
func (l *Logger) IsDevelopment() bool {
	return l.cfg.Development
}

// FilePath returns the path to the log file.
func (l *Logger) FilePath() string {
	return l.cfg.FilePath
}

// redactFields filters sensitive data from zap.Field values.
// This is called before every log operation so credentials never reach a sink.
func (l *Logger) redactFields(fields []zap.Field) []zap.Field {
	if len(fields) == 0 {
		return fields
	}

	result := make([]zap.Field, len(fields))
	for i, field := range fields {
		result[i] = redactField(field)
	}
	return result
}

// redactField redacts a single zap.Field if it contains sensitive data.
func redactField(field zap.Field) zap.Field {
	if IsSensitiveField(field.Key) {
		return zap.String(field.Key, RedactedPlaceholder)
	}

	if field.Type == zapcore.StringType {
		redacted := RedactSensitiveData(field.String)
		if redacted != field.String {
			return zap.String(field.Key, redacted)
		}
	}

	return field
}
