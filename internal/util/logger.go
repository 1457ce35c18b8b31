package util

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// InitLogger builds the global logger for env. level overrides the env
// default when set ("debug", "info", "warn", "error").
func InitLogger(env, level string) error {
	cfg, err := loggerConfig(env, level)
	if err != nil {
		return err
	}

	built, err := cfg.Build(zap.Fields(zap.String("service", ServiceName), zap.String("env", env)))
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	logger = built
	zap.ReplaceGlobals(logger)
	return nil
}

func loggerConfig(env, level string) (zap.Config, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level = strings.TrimSpace(level); level != "" {
		lvl, err := zap.ParseAtomicLevel(strings.ToLower(level))
		if err != nil {
			return zap.Config{}, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = lvl
	}
	return cfg, nil
}

// GetLogger returns the global logger
func GetLogger() *zap.Logger {
	if logger == nil {
		logger, _ = zap.NewDevelopment()
	}
	return logger
}

// SyncLogger flushes any buffered log entries
func SyncLogger() {
	if logger != nil {
		_ = logger.Sync()
	}
}

// MaxLoggedTextLen bounds free text written to the logs
const MaxLoggedTextLen = 120

// TruncateForLog shortens user text to MaxLoggedTextLen runes and folds
// line breaks so one question stays on one log line
func TruncateForLog(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	if utf8.RuneCountInString(s) <= MaxLoggedTextLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxLoggedTextLen]) + "…"
}
