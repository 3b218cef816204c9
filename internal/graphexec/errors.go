package graphexec

import "fmt"

// InvalidGraph reports a cycle or a reference to an unregistered node
// type. It is fatal to the whole execution; no partial state is kept.
type InvalidGraph struct {
	Reason string
}

func (e *InvalidGraph) Error() string {
	return fmt.Sprintf("graphexec: invalid graph: %s", e.Reason)
}

// NodeFailure wraps the error a node's Execute returned. The region
// result for the whole execution is discarded when this occurs.
type NodeFailure struct {
	NodeID string
	Cause  error
}

func (e *NodeFailure) Error() string {
	return fmt.Sprintf("graphexec: node %q failed: %v", e.NodeID, e.Cause)
}

func (e *NodeFailure) Unwrap() error { return e.Cause }
