// Package engine keeps every node's input in sync with the graph.
//
// Recompute is a full, idempotent pass over a snapshot of the graph: it
// resolves the table each preprocessor and model should see, and clears
// sinks that lost their last model. Deliver is the result dispatch a node
// uses to publish what it computed; it is looked up by node id at call time
// so a late result for a deleted node is rejected instead of applied.
package engine
