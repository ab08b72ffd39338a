package events

import (
	"sync"
)

var (
	globalMu  sync.RWMutex
	globalBus EventBus
)

// SetGlobalEventBus installs the process-wide bus. Called once during server
// startup, before modules load.
func SetGlobalEventBus(bus EventBus) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalBus = bus
}

// GetGlobalEventBus returns the process-wide bus, or nil before startup.
func GetGlobalEventBus() EventBus {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalBus
}
