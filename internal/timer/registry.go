package timer

import "sync"

// Registry holds at most one driver per key, typically a user ID.
type Registry struct {
	mu      sync.Mutex
	drivers map[string]*Driver
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{drivers: make(map[string]*Driver)}
}

// Replace registers d under key, stopping any driver it replaces.
func (r *Registry) Replace(key string, d *Driver) {
	r.mu.Lock()
	old := r.drivers[key]
	r.drivers[key] = d
	r.mu.Unlock()

	if old != nil && old != d {
		old.Stop()
	}
}

// Get returns the driver for key, if any.
func (r *Registry) Get(key string) (*Driver, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drivers[key]
	return d, ok
}

// Cancel stops and removes the driver for key. It is a no-op when none is registered.
func (r *Registry) Cancel(key string) {
	r.mu.Lock()
	d := r.drivers[key]
	delete(r.drivers, key)
	r.mu.Unlock()

	if d != nil {
		d.Stop()
	}
}

// CancelAll stops every registered driver.
func (r *Registry) CancelAll() {
	r.mu.Lock()
	drivers := r.drivers
	r.drivers = make(map[string]*Driver)
	r.mu.Unlock()

	for _, d := range drivers {
		d.Stop()
	}
}

// Len returns the number of registered drivers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.drivers)
}
