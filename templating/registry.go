package templating

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Built-in engine identifiers.
const (
	EngineFast  = "fasttemplate"
	EngineStamp = "stamp"
	EngineGo    = "gotemplate"
)

// ErrUnknownEngine is returned by Lookup for identifiers
// that were never registered.
var ErrUnknownEngine = errors.New("unknown engine")

// Engine renders the template found at locator with data.
type Engine interface {
	Render(
		ctx context.Context,
		locator string,
		data map[string]interface{},
	) (string, error)
}

// EngineFunc lets plain functions satisfy Engine.
type EngineFunc func(
	ctx context.Context,
	locator string,
	data map[string]interface{},
) (string, error)

// Render calls fn.
func (fn EngineFunc) Render(
	ctx context.Context,
	locator string,
	data map[string]interface{},
) (string, error) {
	return fn(ctx, locator, data)
}

// Registry maps engine identifiers to engines. It is safe
// for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]Engine)}
}

// NewBuiltinRegistry returns a registry holding the
// built-in engines, loading templates through loader.
func NewBuiltinRegistry(loader Loader) *Registry {
	reg := NewRegistry()
	reg.Register(EngineFast, &FastEngine{Loader: loader})
	reg.Register(EngineStamp, &FastEngine{
		Loader:      loader,
		StartTag:    "{",
		EndTag:      "}",
		KeepUnknown: true,
	})
	reg.Register(EngineGo, &GoEngine{Loader: loader})

	return reg
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	return NewBuiltinRegistry(Loader{})
})

// Default returns the shared registry of built-in engines
// reading templates from the OS filesystem.
func Default() *Registry {
	return defaultRegistry()
}

// Register adds or replaces the engine named name.
func (r *Registry) Register(name string, en Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.engines[name] = en
}

// Lookup returns the engine named name.
func (r *Registry) Lookup(name string) (Engine, error) {
	const errCtx = "looking up engine"

	r.mu.RLock()
	defer r.mu.RUnlock()

	en, ok := r.engines[name]
	if !ok {
		return nil, fmt.Errorf(
			"%s: %w: %q", errCtx, ErrUnknownEngine, name,
		)
	}

	return en, nil
}

// Names returns the registered identifiers, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
