package services

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var ErrUnknownCycle = errors.New("unknown cycle")

// DefaultCycleID names the cycle used when a caller does not pick one.
const DefaultCycleID = "default"

// CycleRegistry keeps isolated cycles keyed by ID, so concurrent sessions never
// share ingest state.
type CycleRegistry struct {
	deps CycleDeps

	mu     sync.RWMutex
	cycles map[string]*Cycle
}

func NewCycleRegistry(deps CycleDeps) *CycleRegistry {
	r := &CycleRegistry{deps: deps, cycles: make(map[string]*Cycle)}
	r.cycles[DefaultCycleID] = NewCycle(DefaultCycleID, deps)
	return r
}

// Create starts a new empty cycle with a random ID.
func (r *CycleRegistry) Create() *Cycle {
	c := NewCycle(uuid.NewString(), r.deps)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cycles[c.ID()] = c
	return c
}

// Get returns the cycle for id; an empty id selects the default cycle.
func (r *CycleRegistry) Get(id string) (*Cycle, error) {
	if id == "" {
		id = DefaultCycleID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cycles[id]
	if !ok {
		return nil, fmt.Errorf("get cycle: %w: %s", ErrUnknownCycle, id)
	}
	return c, nil
}

// Remove drops a cycle. The default cycle is reset instead.
func (r *CycleRegistry) Remove(id string) error {
	if id == "" || id == DefaultCycleID {
		c, _ := r.Get(DefaultCycleID)
		c.Reset()
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cycles[id]; !ok {
		return fmt.Errorf("remove cycle: %w: %s", ErrUnknownCycle, id)
	}
	delete(r.cycles, id)
	return nil
}

// IDs lists cycle IDs in sorted order.
func (r *CycleRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.cycles))
	for id := range r.cycles {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
