package submit

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a new Device instance.
// Factories are registered via Register() and called by NewDevice().
type Factory func() (Device, error)

// Registry state - protected by mutex for thread-safe access.
var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register registers a device factory with the given name.
// This function is typically called from init() in backend packages:
//
//	func init() {
//	    submit.Register("trace", func() (submit.Device, error) {
//	        return New(), nil
//	    })
//	}
//
// Register panics if factory is nil or if a device with the same name is
// already registered.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("submit: Register factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("submit: Register called twice for " + name)
	}
	factories[name] = factory
}

// Unregister removes a device from the registry.
// If the device is not registered, this is a no-op.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// NewDevice creates a new device instance by name.
// The error for an unknown name hints at a forgotten import.
func NewDevice(name string) (Device, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("submit: unknown device %q (forgotten import?)", name)
	}
	dev, err := factory()
	if err != nil {
		return nil, fmt.Errorf("submit: create device %q: %w", name, err)
	}
	return dev, nil
}

// Devices returns the sorted names of registered devices.
func Devices() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a device with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}
