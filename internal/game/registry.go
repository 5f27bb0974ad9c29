package game

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
)

// Loader rebuilds a game's state from persistence on first access.
type Loader func(ctx context.Context, code string) (*State, error)

// Registry maps join codes to live game state. Each game has its own lock so
// operations on one game are totally ordered while different games proceed
// in parallel.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	load    Loader
}

type entry struct {
	mu      sync.Mutex
	state   *State
	removed atomic.Bool
}

func NewRegistry(load Loader) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		load:    load,
	}
}

func (r *Registry) Put(code string, state *State) {
	r.mu.Lock()
	existing, ok := r.entries[code]
	if !ok {
		r.entries[code] = &entry{state: state}
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	existing.mu.Lock()
	existing.state = state
	existing.mu.Unlock()
}

// Remove drops a game. It is safe to call from inside With for the same code.
func (r *Registry) Remove(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[code]; ok {
		e.removed.Store(true)
		delete(r.entries, code)
	}
}

// Get returns a copy of the game's state, loading it if necessary.
func (r *Registry) Get(ctx context.Context, code string) (*State, error) {
	var snapshot *State
	err := r.With(ctx, code, func(state *State) error {
		snapshot = state.Clone()
		return nil
	})
	return snapshot, err
}

// With runs fn while holding the game's lock.
func (r *Registry) With(ctx context.Context, code string, fn func(state *State) error) error {
	for {
		e, err := r.acquire(ctx, code)
		if err != nil {
			return err
		}
		if e == nil {
			continue
		}
		defer e.mu.Unlock()
		return fn(e.state)
	}
}

// acquire returns the locked entry for code. A nil entry with a nil error
// means the entry was removed while waiting and the caller should retry.
func (r *Registry) acquire(ctx context.Context, code string) (*entry, error) {
	r.mu.Lock()
	e, ok := r.entries[code]
	if !ok {
		if r.load == nil {
			r.mu.Unlock()
			return nil, ErrGameNotFound
		}
		e = &entry{}
		r.entries[code] = e
	}
	r.mu.Unlock()

	e.mu.Lock()
	if e.removed.Load() {
		e.mu.Unlock()
		return nil, nil
	}
	if e.state == nil {
		state, err := r.load(ctx, code)
		if err != nil {
			e.removed.Store(true)
			r.mu.Lock()
			if r.entries[code] == e {
				delete(r.entries, code)
			}
			r.mu.Unlock()
			e.mu.Unlock()
			return nil, err
		}
		e.state = state
	}
	return e, nil
}

// Codes lists the games currently held in memory.
func (r *Registry) Codes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	codes := make([]string, 0, len(r.entries))
	for code := range r.entries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
