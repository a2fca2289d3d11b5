package jukectl

import (
	"fmt"
	"os"
	"strings"
)

// Leveled console output. Results print with fmt directly; these are
// for progress and diagnostics around them.
type logLevel int

const (
	levelDebug logLevel = iota
	levelInfo
	levelWarn
	levelError
)

var currentLevel = levelInfo

func SetLogLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		currentLevel = levelDebug
	case "info", "":
		currentLevel = levelInfo
	case "warn", "warning":
		currentLevel = levelWarn
	case "error", "err":
		currentLevel = levelError
	default:
		currentLevel = levelInfo
	}
}

func logf(lvl string, min logLevel, format string, a ...any) {
	if currentLevel > min {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", lvl, fmt.Sprintf(format, a...))
}

func debugf(format string, a ...any) { logf("DEBUG", levelDebug, format, a...) }
func infof(format string, a ...any)  { logf("INFO", levelInfo, format, a...) }
func warnf(format string, a ...any)  { logf("WARN", levelWarn, format, a...) }

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
