// Package graphexec runs a user-authored DAG of procedural nodes in
// topological order, caching each node's result by a structural key.
package graphexec

import (
	"encoding/json"
	"hash/maphash"
	"sort"
)

// NodeSpec is one node in a Graph: a stable type name plus a parameter map.
type NodeSpec struct {
	ID       string
	Type     string
	Params   map[string]any
	IsOutput bool
}

// Connection wires an output port of one node to an input port of another.
type Connection struct {
	From       string
	FromOutput string
	To         string
	ToInput    string
}

// Graph is a DAG of procedural nodes with an optional explicit output
// mapping (name -> nodeId), matching the pipeline.json shape that
// worldapi.LoadPipeline decodes.
type Graph struct {
	Nodes       []NodeSpec
	Connections []Connection
	Outputs     map[string]string
}

var graphHashSeed = maphash.MakeSeed()

// Hash computes a stable hash over the graph's canonical form: node types
// and sorted params, plus the connection list. Two graphs that are
// structurally identical (same node types/params/wiring, regardless of
// map iteration order) hash identically — this is the key the Region
// Cache uses to distinguish pipeline versions.
func (g *Graph) Hash() uint64 {
	nodes := make([]NodeSpec, len(g.Nodes))
	copy(nodes, g.Nodes)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	var h maphash.Hash
	h.SetSeed(graphHashSeed)

	for _, n := range nodes {
		h.WriteString(n.ID)
		h.WriteByte(0)
		h.WriteString(n.Type)
		h.WriteByte(0)
		h.Write(canonicalParams(n.Params))
		h.WriteByte(0)
	}

	conns := make([]Connection, len(g.Connections))
	copy(conns, g.Connections)
	sort.Slice(conns, func(i, j int) bool {
		if conns[i].From != conns[j].From {
			return conns[i].From < conns[j].From
		}
		if conns[i].FromOutput != conns[j].FromOutput {
			return conns[i].FromOutput < conns[j].FromOutput
		}
		if conns[i].To != conns[j].To {
			return conns[i].To < conns[j].To
		}
		return conns[i].ToInput < conns[j].ToInput
	})
	for _, c := range conns {
		h.WriteString(c.From)
		h.WriteString(c.FromOutput)
		h.WriteString(c.To)
		h.WriteString(c.ToInput)
		h.WriteByte(0)
	}

	if len(g.Outputs) > 0 {
		keys := make([]string, 0, len(g.Outputs))
		for k := range g.Outputs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			h.WriteString(k)
			h.WriteString(g.Outputs[k])
		}
	}

	return h.Sum64()
}

// canonicalParams encodes a param map deterministically: sorted keys,
// JSON-marshaled values. json.Marshal on a map already sorts keys, so this
// is mostly a documentation wrapper, but it isolates the encoding choice.
func canonicalParams(params map[string]any) []byte {
	if len(params) == 0 {
		return nil
	}
	b, err := json.Marshal(params)
	if err != nil {
		// Params must be JSON-serializable by contract (they come from
		// pipeline.json); a marshal failure means a caller built a Graph
		// programmatically with a non-serializable value, which is a bug.
		panic("graphexec: unserializable node params: " + err.Error())
	}
	return b
}
