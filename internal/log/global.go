package log

import (
	"sync"
)

var (
	globalLogger *Logger
	globalMu     sync.RWMutex
)

// SetGlobal sets the process-wide logger. The root command calls it once
// after configuration is loaded.
func SetGlobal(logger *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}

// Global returns the process-wide logger, creating a default one on
// first use.
func Global() *Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l != nil {
		return l
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = Default()
	}
	return globalLogger
}
