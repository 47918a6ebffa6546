package registry

import (
	"errors"
	"sort"
	"sync"

	"github.com/sszokoly/bgwmon/internal/bgw"
)

var ErrGatewayNotFound = errors.New("gateway not found")

// Registry holds the monitored gateways, keyed by LAN IP. Map access is
// guarded here; mutation of an individual Gateway is serialized by the
// polling layer.
type Registry struct {
	mu        sync.RWMutex
	gateways  map[string]*bgw.Gateway
	queueSize int
}

// New returns an empty gateway registry. queueSize bounds the follow-up
// request queue of every gateway it creates; below 1 the bgw default
// applies.
func New(queueSize int) *Registry {
	return &Registry{
		gateways:  make(map[string]*bgw.Gateway),
		queueSize: queueSize,
	}
}

// GetOrCreate returns the gateway for lanIP, creating it on first use.
func (r *Registry) GetOrCreate(lanIP, proto string, pollingSecs int) *bgw.Gateway {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.gateways[lanIP]; ok {
		return g
	}
	g := bgw.NewWithQueueSize(lanIP, proto, pollingSecs, r.queueSize)
	r.gateways[lanIP] = g
	return g
}

// Get returns the gateway for lanIP.
func (r *Registry) Get(lanIP string) (*bgw.Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.gateways[lanIP]
	if !ok {
		return nil, ErrGatewayNotFound
	}
	return g, nil
}

// Remove drops the gateway for lanIP from the registry.
func (r *Registry) Remove(lanIP string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.gateways[lanIP]; !ok {
		return ErrGatewayNotFound
	}
	delete(r.gateways, lanIP)
	return nil
}

// List returns every registered gateway ordered by LAN IP.
func (r *Registry) List() []*bgw.Gateway {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*bgw.Gateway, 0, len(r.gateways))
	for _, g := range r.gateways {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LANIP < out[j].LANIP })
	return out
}

// Len returns the number of registered gateways.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.gateways)
}
