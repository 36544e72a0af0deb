package resilience

import (
	"sort"
	"sync"

	"github.com/sony/gobreaker/v2"
)

// ProviderHealth is a snapshot of one provider's call history in this session.
type ProviderHealth struct {
	Name         string
	CircuitState gobreaker.State
	Counts       gobreaker.Counts

	// LastError is the most recent failure, empty if none.
	LastError string
}

// IsHealthy reports whether the provider circuit is closed.
func (h *ProviderHealth) IsHealthy() bool {
	return h.CircuitState == gobreaker.StateClosed
}

// Registry tracks the clients of one session and their last error.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	errors  map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		errors:  make(map[string]string),
	}
}

// Register adds a client under name. A later registration replaces it.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients[name] = client
	delete(r.errors, name)
}

// RecordFailure stores err as the last error of a registered provider.
func (r *Registry) RecordFailure(name string, err error) {
	if err == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[name]; ok {
		r.errors[name] = err.Error()
	}
}

// GetAllHealth returns the health of every registered provider, sorted by name.
func (r *Registry) GetAllHealth() []*ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	health := make([]*ProviderHealth, 0, len(r.clients))
	for name, client := range r.clients {
		health = append(health, &ProviderHealth{
			Name:         name,
			CircuitState: client.CircuitBreakerState(),
			Counts:       client.CircuitBreakerCounts(),
			LastError:    r.errors[name],
		})
	}
	sort.Slice(health, func(i, j int) bool { return health[i].Name < health[j].Name })
	return health
}
