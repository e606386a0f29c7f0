package container

import (
	"fmt"
	"sort"
	"sync"

	"veridian-hq/covenant/pkg/dsl/value"
)

// Registry is a name-to-service map safe for concurrent use.
type Registry struct {
	services map[string]value.Value
	mu       sync.RWMutex
}

// NewRegistry creates an empty service registry.
func NewRegistry() *Registry {
	return &Registry{services: make(map[string]value.Value)}
}

// Register installs a service under a name. Registering the same name twice
// is an error.
func (r *Registry) Register(name string, svc value.Value) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.services[name]; exists {
		return fmt.Errorf("service %q is already registered", name)
	}
	r.services[name] = svc
	return nil
}

// Get returns the service registered under name.
func (r *Registry) Get(name string) (value.Value, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.services[name]
	return svc, ok
}

// Names lists registered service names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }
