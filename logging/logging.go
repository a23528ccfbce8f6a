// Package logging implements the Logger (A2, SPEC_FULL.md §4.13): a thin
// wrapper over *zap.Logger exposing exactly §7's four log-site taxonomy
// methods, each attaching structured fields instead of formatting them
// into the message.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config mirrors the teacher's LoggingConfig shape (level + console/json
// format switch).
type Config struct {
	Level  string
	Format string
}

// Logger implements the narrow Logger seams referenced by dispatch/,
// chatcore/, authgate/, region/ — Malicious, StateWarn, ConfigError, and
// Resource, each a distinct §7 severity class rather than a single
// generic Log call.
type Logger struct {
	base *zap.Logger
}

// New builds the zap core the same way the teacher's newLogger does:
// production (JSON) encoding for "json" format, a colorized console
// encoding otherwise.
func New(cfg Config) (*Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	base, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{base: base}, nil
}

// NewNop returns a Logger that discards everything, for tests and
// collaborators that don't care about log output.
func NewNop() *Logger {
	return &Logger{base: zap.NewNop()}
}

// Malicious logs a player attempting something disallowed: a bad auth
// attempt, a forged position, a command it lacks capability for (§7).
func (l *Logger) Malicious(playerID int, msg string, fields ...any) {
	l.base.Warn(msg, append([]zap.Field{zap.Int("player_id", playerID), zap.String("component", "malicious")}, anyToFields(fields)...)...)
}

// StateWarn logs an internal state inconsistency that was recovered from
// rather than crashed on (§7).
func (l *Logger) StateWarn(playerID int, msg string, fields ...any) {
	l.base.Warn(msg, append([]zap.Field{zap.Int("player_id", playerID), zap.String("component", "state")}, anyToFields(fields)...)...)
}

// ConfigError logs a malformed or missing configuration value (§7).
func (l *Logger) ConfigError(msg string, fields ...any) {
	l.base.Error(msg, append([]zap.Field{zap.String("component", "config")}, anyToFields(fields)...)...)
}

// Resource logs an external-resource failure: database, file, socket
// (§7).
func (l *Logger) Resource(msg string, fields ...any) {
	l.base.Error(msg, append([]zap.Field{zap.String("component", "resource")}, anyToFields(fields)...)...)
}

// Sync flushes buffered log entries; call on shutdown.
func (l *Logger) Sync() error {
	return l.base.Sync()
}

// Base returns the underlying *zap.Logger for collaborators that need the
// full zap API directly (e.g. advisor.NewLuaFreqManager's diagnostic
// logging) rather than the four-method taxonomy above.
func (l *Logger) Base() *zap.Logger {
	return l.base
}

// anyToFields accepts alternating key/value pairs (the Logger interfaces
// used elsewhere in this repo take ...any rather than ...zap.Field so
// those packages don't need to import zap themselves).
func anyToFields(kv []any) []zap.Field {
	fields := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, kv[i+1]))
	}
	return fields
}
