// Package render resolves the component references in a parsed document
// against a registry and yields renderable nodes.
package render

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/p-n-ai/pai-courses/internal/document"
)

// ErrUnknownComponent matches every UnknownComponentError via errors.Is.
var ErrUnknownComponent = errors.New("unknown component")

// UnknownComponentError names a component reference with no registered
// implementation.
type UnknownComponentError struct {
	Name string
	Line int
}

func (e *UnknownComponentError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("unknown component %q at line %d", e.Name, e.Line)
	}
	return fmt.Sprintf("unknown component %q", e.Name)
}

func (e *UnknownComponentError) Is(target error) bool {
	return target == ErrUnknownComponent
}

// Component turns one component reference into a node.
type Component interface {
	Render(ref document.Node) (Node, error)
}

// ComponentFunc adapts a function to Component.
type ComponentFunc func(ref document.Node) (Node, error)

func (f ComponentFunc) Render(ref document.Node) (Node, error) { return f(ref) }

// Registry resolves component names.
type Registry interface {
	Lookup(name string) (Component, bool)
}

// MapRegistry is a Registry backed by a map.
type MapRegistry struct {
	components map[string]Component
	mu         sync.RWMutex
}

// NewMapRegistry creates an empty registry.
func NewMapRegistry() *MapRegistry {
	return &MapRegistry{components: make(map[string]Component)}
}

// Register adds or replaces a component.
func (r *MapRegistry) Register(name string, c Component) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[name] = c
}

// Lookup implements Registry.
func (r *MapRegistry) Lookup(name string) (Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[name]
	return c, ok
}

// Names returns the registered names, sorted.
func (r *MapRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for n := range r.components {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
