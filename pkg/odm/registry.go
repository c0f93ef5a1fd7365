package odm

import (
	"fmt"
	"strings"
	"sync"
)

// ManagerRegistry hands out the manager responsible for a class.
type ManagerRegistry interface {
	// ManagerForClass fails with ErrNoManagerFound when no manager maps
	// className.
	ManagerForClass(className string) (Manager, error)
}

// Registry stores managers by name and resolves classes against them in
// registration order.
type Registry struct {
	mu       sync.RWMutex
	managers map[string]Manager
	order    []string
}

var _ ManagerRegistry = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{managers: make(map[string]Manager)}
}

// Register adds a manager under name. Duplicate names return an error.
func (r *Registry) Register(name string, manager Manager) error {
	if manager == nil {
		return fmt.Errorf("odm: manager is required")
	}
	key := normalizeManagerName(name)
	if key == "" {
		return fmt.Errorf("odm: manager name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.managers[key]; exists {
		return fmt.Errorf("odm: manager %q already registered", key)
	}
	r.managers[key] = manager
	r.order = append(r.order, key)
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(name string, manager Manager) {
	if err := r.Register(name, manager); err != nil {
		panic(err)
	}
}

// Manager retrieves a manager by name.
func (r *Registry) Manager(name string) (Manager, error) {
	key := normalizeManagerName(name)
	if key == "" {
		return nil, fmt.Errorf("odm: manager name is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	manager, ok := r.managers[key]
	if !ok {
		return nil, fmt.Errorf("odm: manager %q not found", key)
	}
	return manager, nil
}

// Names returns manager names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Has reports whether a manager is registered under name.
func (r *Registry) Has(name string) bool {
	key := normalizeManagerName(name)
	if key == "" {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.managers[key]
	return ok
}

// ManagerForClass returns the first registered manager that maps className.
func (r *Registry) ManagerForClass(className string) (Manager, error) {
	if r == nil {
		return nil, classError(className, ErrNoManagerFound)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, key := range r.order {
		manager := r.managers[key]
		if !manager.IsTransient(className) {
			return manager, nil
		}
	}
	return nil, classError(className, ErrNoManagerFound)
}

func normalizeManagerName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
