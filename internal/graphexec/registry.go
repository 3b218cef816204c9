package graphexec

import "sync"

// NodeFactory builds a fresh Node instance. Nodes are stateless between
// calls (all state flows through params/inputs), so a factory only needs
// to exist to keep construction uniform across node types.
type NodeFactory func() Node

// Registry is a name -> constructor map, avoiding any node type
// inheritance hierarchy per the node-polymorphism design note.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]NodeFactory
}

// NewRegistry returns an empty registry. Use DefaultRegistry for the
// built-in node set.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]NodeFactory)}
}

// Register adds or replaces the factory for a node type name.
func (r *Registry) Register(nodeType string, factory NodeFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[nodeType] = factory
}

// New constructs a node instance for the given type, or reports ok=false
// if the type is unregistered.
func (r *Registry) New(nodeType string) (Node, bool) {
	r.mu.RLock()
	factory, ok := r.factories[nodeType]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return factory(), true
}

// defaultRegistry holds the built-in node set registered by the
// nodes_*.go files in this package via init().
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the shared registry pre-populated with the
// built-in node types (the FractalNoise/PerlinNoise/SimplexNoise
// lattice-noise sources, remap, combine, curve, biome select, and the
// dedicated Output nodes including ConstantOutput).
func DefaultRegistry() *Registry {
	return defaultRegistry
}
