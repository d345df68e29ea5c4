package game

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds all registered game definitions, keyed by game id.
type Registry struct {
	mu    sync.RWMutex
	games map[string]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{games: make(map[string]Definition)}
}

// Register adds a game definition. Panics on duplicate ids.
func (r *Registry) Register(d Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := d.Info().ID
	if _, exists := r.games[id]; exists {
		panic(fmt.Sprintf("game %q already registered", id))
	}
	r.games[id] = d
}

// Get returns a game definition by id.
func (r *Registry) Get(id string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.games[id]
	return d, ok
}

// List returns info for all registered games, sorted by id.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]Info, 0, len(r.games))
	for _, d := range r.games {
		infos = append(infos, d.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}
