package graphexec

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CacheStats counts per-node cache hits/misses for one Execute call.
type CacheStats struct {
	Hits   int
	Misses int
}

// Result is what Execute returns: the resolved graph outputs, per-node
// timings, and cache statistics.
type Result struct {
	Outputs     map[string]*Buffer
	NodeTimings map[string]time.Duration
	CacheStats  CacheStats
}

// Executor runs a Graph's nodes in topological order.
type Executor struct {
	Registry *Registry
	Cache    *NodeCache
}

// NewExecutor builds an executor against the default node registry with
// a fresh per-node cache.
func NewExecutor() *Executor {
	return &Executor{Registry: DefaultRegistry(), Cache: NewNodeCache()}
}

type nodeResult struct {
	outputs map[string]*Buffer
	cached  bool
}

// Execute runs every node in g in topological order, resolves the
// graph's outputs, and returns them. Any node failure discards all
// partial output and returns a *NodeFailure; a cycle or unknown node
// type returns *InvalidGraph before any node runs.
func (e *Executor) Execute(ctx context.Context, g *Graph, settings Settings) (Result, error) {
	nodesByID := make(map[string]NodeSpec, len(g.Nodes))
	instances := make(map[string]Node, len(g.Nodes))
	for _, spec := range g.Nodes {
		if _, dup := nodesByID[spec.ID]; dup {
			return Result{}, &InvalidGraph{Reason: fmt.Sprintf("duplicate node id %q", spec.ID)}
		}
		nodesByID[spec.ID] = spec
		inst, ok := e.Registry.New(spec.Type)
		if !ok {
			return Result{}, &InvalidGraph{Reason: fmt.Sprintf("unknown node type %q (node %q)", spec.Type, spec.ID)}
		}
		instances[spec.ID] = inst
	}

	order, err := topoSort(nodesByID, g.Connections)
	if err != nil {
		return Result{}, err
	}

	// incoming[nodeID][inputName] = (sourceNodeID, sourceOutputName)
	incoming := make(map[string]map[string][2]string)
	hasOutgoing := make(map[string]bool)
	for _, c := range g.Connections {
		if incoming[c.To] == nil {
			incoming[c.To] = make(map[string][2]string)
		}
		incoming[c.To][c.ToInput] = [2]string{c.From, c.FromOutput}
		hasOutgoing[c.From] = true
	}

	results := make(map[string]nodeResult, len(order))
	timings := make(map[string]time.Duration, len(order))
	var stats CacheStats

	for _, id := range order {
		spec := nodesByID[id]
		node := instances[id]

		inputs := make(map[string]*Buffer, len(node.Inputs()))
		for _, inputName := range node.Inputs() {
			src, ok := incoming[id][inputName]
			if !ok {
				continue
			}
			upstream, ok := results[src[0]]
			if !ok {
				continue
			}
			inputs[inputName] = upstream.outputs[src[1]]
		}

		params := mergeSettings(spec.Params, settings)

		var key uint64
		cacheable := node.Cacheable()
		if cacheable {
			key = e.Cache.Key(spec.Type, params, node.Inputs(), inputs)
			if cached, ok := e.Cache.Get(key); ok {
				results[id] = nodeResult{outputs: cached, cached: true}
				stats.Hits++
				timings[id] = 0
				continue
			}
		}

		start := time.Now()
		outputs, err := node.Execute(ctx, inputs, params)
		timings[id] = time.Since(start)
		if err != nil {
			return Result{}, &NodeFailure{NodeID: id, Cause: err}
		}

		if cacheable {
			e.Cache.Put(key, outputs)
			stats.Misses++
		}
		results[id] = nodeResult{outputs: outputs, cached: false}
	}

	outputs := resolveOutputs(g, nodesByID, results, hasOutgoing)

	return Result{Outputs: outputs, NodeTimings: timings, CacheStats: stats}, nil
}

// mergeSettings layers the execution-global settings under the node's
// own params (node params win on key collision).
func mergeSettings(nodeParams map[string]any, settings Settings) map[string]any {
	merged := make(map[string]any, len(nodeParams)+len(settings.Extra)+3)
	merged["seed"] = settings.Seed
	merged["regionX"] = settings.RegionX
	merged["regionZ"] = settings.RegionZ
	for k, v := range settings.Extra {
		merged[k] = v
	}
	for k, v := range nodeParams {
		merged[k] = v
	}
	return merged
}

// resolveOutputs implements the first-hit-wins resolution order from the
// node contract: dedicated Output nodes, then the graph's explicit
// outputs mapping, then any node with no outgoing connections.
func resolveOutputs(g *Graph, nodesByID map[string]NodeSpec, results map[string]nodeResult, hasOutgoing map[string]bool) map[string]*Buffer {
	out := make(map[string]*Buffer)

	for _, spec := range g.Nodes {
		if spec.IsOutput || strings.HasSuffix(spec.Type, "Output") {
			r, ok := results[spec.ID]
			if !ok {
				continue
			}
			for name, buf := range r.outputs {
				out[outputKeyFor(spec, name)] = buf
			}
		}
	}

	for name, nodeID := range g.Outputs {
		r, ok := results[nodeID]
		if !ok {
			continue
		}
		if _, exists := out[name]; exists {
			continue
		}
		for _, buf := range r.outputs {
			out[name] = buf
			break
		}
	}

	for _, spec := range g.Nodes {
		if hasOutgoing[spec.ID] {
			continue
		}
		r, ok := results[spec.ID]
		if !ok {
			continue
		}
		for name, buf := range r.outputs {
			key := outputKeyFor(spec, name)
			if _, exists := out[key]; exists {
				continue
			}
			out[key] = buf
		}
	}

	return out
}

// outputKeyFor derives the public output name for a dedicated Output
// node: "HeightmapOutput" -> "heightmap".
func outputKeyFor(spec NodeSpec, portName string) string {
	if strings.HasSuffix(spec.Type, "Output") {
		base := strings.TrimSuffix(spec.Type, "Output")
		return strings.ToLower(base)
	}
	return spec.ID + "." + portName
}

// topoSort runs Kahn's algorithm over the node set and connection list,
// returning *InvalidGraph if a cycle is detected.
func topoSort(nodesByID map[string]NodeSpec, connections []Connection) ([]string, error) {
	inDegree := make(map[string]int, len(nodesByID))
	adj := make(map[string][]string, len(nodesByID))
	for id := range nodesByID {
		inDegree[id] = 0
	}
	for _, c := range connections {
		if _, ok := nodesByID[c.From]; !ok {
			return nil, &InvalidGraph{Reason: fmt.Sprintf("connection references unknown node %q", c.From)}
		}
		if _, ok := nodesByID[c.To]; !ok {
			return nil, &InvalidGraph{Reason: fmt.Sprintf("connection references unknown node %q", c.To)}
		}
		adj[c.From] = append(adj[c.From], c.To)
		inDegree[c.To]++
	}

	// Deterministic seed order keeps topoSort output stable across runs,
	// which graph executor purity (invariant 6) depends on.
	var ready []string
	for _, spec := range sortedSpecs(nodesByID) {
		if inDegree[spec.ID] == 0 {
			ready = append(ready, spec.ID)
		}
	}

	var order []string
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, next := range adj[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(order) != len(nodesByID) {
		return nil, &InvalidGraph{Reason: "cycle detected"}
	}
	return order, nil
}

func sortedSpecs(nodesByID map[string]NodeSpec) []NodeSpec {
	specs := make([]NodeSpec, 0, len(nodesByID))
	for _, s := range nodesByID {
		specs = append(specs, s)
	}
	for i := 1; i < len(specs); i++ {
		for j := i; j > 0 && specs[j-1].ID > specs[j].ID; j-- {
			specs[j-1], specs[j] = specs[j], specs[j-1]
		}
	}
	return specs
}
