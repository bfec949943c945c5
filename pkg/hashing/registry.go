package hashing

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func() HashAlgorithm)
)

// Register makes an algorithm available by name. Registering a name twice panics.
func Register(name string, f func() HashAlgorithm) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, ok := registry[name]; ok {
		panic(fmt.Sprintf("hash algorithm %q is already registered", name))
	}
	registry[name] = f
}

// Lookup returns a new instance of the named algorithm
func Lookup(name string) (HashAlgorithm, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}
	return f(), nil
}

// MustLookup is Lookup for names known at compile time
func MustLookup(name string) HashAlgorithm {
	alg, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return alg
}

// Names returns the registered algorithm names, sorted
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
