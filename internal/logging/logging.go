package logging

import (
	"sync"

	"github.com/pion/logging"
)

var (
	mu            sync.RWMutex
	loggerFactory logging.LoggerFactory = logging.NewDefaultLoggerFactory()
)

// NewLogger returns a leveled logger for scope. Verbosity follows the PION_LOG_*
// environment variables unless SetLoggerFactory replaced the default factory.
func NewLogger(scope string) logging.LeveledLogger {
	mu.RLock()
	defer mu.RUnlock()
	return loggerFactory.NewLogger(scope)
}

// SetLoggerFactory replaces the factory used by loggers created afterwards.
// Passing nil restores the default factory.
func SetLoggerFactory(f logging.LoggerFactory) {
	mu.Lock()
	defer mu.Unlock()
	if f == nil {
		f = logging.NewDefaultLoggerFactory()
	}
	loggerFactory = f
}
