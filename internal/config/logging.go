package config

import (
	"log/slog"
	"strings"
)

// LogLevelEnv names the environment variable that sets the log level.
const LogLevelEnv = "AUTODOC_LOG_LEVEL"

var logLevels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLogLevel maps a level name to a slog level. Unknown names yield info and false.
func ParseLogLevel(raw string) (slog.Level, bool) {
	l, ok := logLevels[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return slog.LevelInfo, false
	}
	return l, true
}
