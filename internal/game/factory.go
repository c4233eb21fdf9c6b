package game

import "sync"

// Factory maps game-kind tags to engine constructors. New games register a
// constructor here; the room registry never needs to change.
type Factory struct {
	mu           sync.RWMutex
	constructors map[string]func() Engine
}

func NewFactory() *Factory {
	return &Factory{constructors: make(map[string]func() Engine)}
}

func (f *Factory) Register(kind string, constructor func() Engine) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.constructors[kind] = constructor
}

// New builds a fresh engine for the given kind, or ok=false for an
// unregistered kind.
func (f *Factory) New(kind string) (Engine, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	constructor, ok := f.constructors[kind]
	if !ok {
		return nil, false
	}
	return constructor(), true
}

// Known reports whether a kind has a registered constructor.
func (f *Factory) Known(kind string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.constructors[kind]
	return ok
}
