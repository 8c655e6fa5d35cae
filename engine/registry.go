// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package engine

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates an engine instance.
type Factory func() (Engine, error)

// DisplayFactory creates a display host bound to an engine. Hosts that need
// pixels type-assert the engine to Snapshotter.
type DisplayFactory func(Engine) (Display, error)

var (
	registryMu sync.RWMutex
	engines    = make(map[string]Factory)
	displays   = make(map[string]DisplayFactory)

	// First available wins.
	enginePriority  = []string{"software"}
	displayPriority = []string{"glfw"}
)

// Register registers an engine factory under name, replacing any previous
// registration. Typically called from init().
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	engines[name] = f
}

// Unregister removes an engine. Useful in tests.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(engines, name)
}

// Available returns the registered engine names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get creates the engine registered under name.
func Get(name string) (Engine, error) {
	registryMu.RLock()
	f, ok := engines[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotAvailable, name)
	}
	return f()
}

// Default creates the best available engine.
func Default() (Engine, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, name := range enginePriority {
		if f, ok := engines[name]; ok {
			return f()
		}
	}
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if e, err := engines[name](); err == nil && e != nil {
			return e, nil
		}
	}
	return nil, ErrNotAvailable
}

// RegisterDisplay registers a display host factory under name.
func RegisterDisplay(name string, f DisplayFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	displays[name] = f
}

// UnregisterDisplay removes a display host.
func UnregisterDisplay(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(displays, name)
}

// DefaultDisplay returns a display for eng: the engine itself when it
// implements Display, otherwise the best registered host.
func DefaultDisplay(eng Engine) (Display, error) {
	if d, ok := eng.(Display); ok {
		return d, nil
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, name := range displayPriority {
		if f, ok := displays[name]; ok {
			return f(eng)
		}
	}
	for _, f := range displays {
		return f(eng)
	}
	return nil, fmt.Errorf("%w: no display host registered", ErrNotAvailable)
}
