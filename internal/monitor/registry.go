package monitor

import (
	"context"
	"sync"
)

// Registry holds the active monitor per target name. Registering a name that
// is already taken stops the previous monitor first, so a page never carries
// two live watches for the same target.
type Registry struct {
	mu       sync.Mutex
	monitors map[string]*Monitor
}

func NewRegistry() *Registry {
	return &Registry{monitors: make(map[string]*Monitor)}
}

// Register starts a monitor for cfg on host, replacing any monitor registered
// under the same name.
func (r *Registry) Register(ctx context.Context, host Host, cfg Config) *Monitor {
	m := New(host, cfg)

	r.mu.Lock()
	prev := r.monitors[m.Name()]
	r.monitors[m.Name()] = m
	r.mu.Unlock()

	if prev != nil {
		prev.Stop()
	}
	m.Start(ctx)
	return m
}

// Get returns the monitor registered under name, or nil.
func (r *Registry) Get(name string) *Monitor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.monitors[name]
}

// Names lists the registered targets.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.monitors))
	for name := range r.monitors {
		names = append(names, name)
	}
	return names
}

// Stop stops and forgets the monitor registered under name.
func (r *Registry) Stop(name string) {
	r.mu.Lock()
	m := r.monitors[name]
	delete(r.monitors, name)
	r.mu.Unlock()

	if m != nil {
		m.Stop()
	}
}

// Close stops every registered monitor.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.monitors
	r.monitors = make(map[string]*Monitor)
	r.mu.Unlock()

	for _, m := range all {
		m.Stop()
	}
}
