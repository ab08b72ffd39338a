// Package services is the typed service registry modules use to reach each
// other. Modules register their service in the RegisterServices phase and
// resolve the services they depend on during Init, which keeps module load
// order irrelevant.
package services

import (
	"fmt"
	"sort"
	"sync"
)

type registry struct {
	mu       sync.RWMutex
	services map[string]interface{}
}

var globalRegistry = &registry{
	services: make(map[string]interface{}),
}

// Register stores a service under a name, replacing any previous entry.
func Register(name string, service interface{}) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.services[name] = service
}

// Get returns the service registered under name.
func Get(name string) (interface{}, error) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	svc, ok := globalRegistry.services[name]
	if !ok {
		return nil, fmt.Errorf("service not registered: %s", name)
	}
	return svc, nil
}

// GetService returns the service registered under name, typed. It fails if
// the name is unknown or the registered value has a different type.
func GetService[T any](name string) (T, error) {
	var zero T
	svc, err := Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := svc.(T)
	if !ok {
		return zero, fmt.Errorf("service %s has type %T, not the requested type", name, svc)
	}
	return typed, nil
}

// MustGetService is GetService for wiring paths where absence is a
// programming error.
func MustGetService[T any](name string) T {
	svc, err := GetService[T](name)
	if err != nil {
		panic(err)
	}
	return svc
}

// List returns the registered service names, sorted.
func List() []string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	names := make([]string, 0, len(globalRegistry.services))
	for name := range globalRegistry.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset clears the registry. Tests use this to isolate module wiring.
func Reset() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.services = make(map[string]interface{})
}
