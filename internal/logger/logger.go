// Package logger provides the process-wide logging facade. Components that
// want structured output derive named hclog loggers from the root; the
// package-level helpers exist for quick printf-style messages in glue code.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
)

var (
	mu   sync.RWMutex
	root = hclog.New(&hclog.LoggerOptions{
		Name:   "camarr",
		Level:  hclog.Info,
		Output: os.Stdout,
	})
)

// Init replaces the root logger with one at the given level. Unknown level
// strings fall back to info.
func Init(level string) {
	mu.Lock()
	defer mu.Unlock()
	root = hclog.New(&hclog.LoggerOptions{
		Name:   "camarr",
		Level:  parseLevel(level),
		Output: os.Stdout,
	})
}

func parseLevel(level string) hclog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return hclog.Trace
	case "debug":
		return hclog.Debug
	case "warn", "warning":
		return hclog.Warn
	case "error":
		return hclog.Error
	default:
		return hclog.Info
	}
}

// Named returns a child of the root logger for a component.
func Named(name string) hclog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.Named(name)
}

// Debug logs a printf-style message at debug level.
func Debug(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	root.Debug(fmt.Sprintf(format, args...))
}

// Info logs a printf-style message at info level.
func Info(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	root.Info(fmt.Sprintf(format, args...))
}

// Warn logs a printf-style message at warn level.
func Warn(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	root.Warn(fmt.Sprintf(format, args...))
}

// Error logs a printf-style message at error level.
func Error(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	root.Error(fmt.Sprintf(format, args...))
}
