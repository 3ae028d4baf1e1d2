package types

// NodeStatus represents where a node is in its train/apply lifecycle
type NodeStatus string

const (
	StatusIdle      NodeStatus = "idle"      // No input data yet
	StatusReady     NodeStatus = "ready"     // Has input, nothing computed for it
	StatusRunning   NodeStatus = "running"   // A task is in flight
	StatusTrained   NodeStatus = "trained"   // Model fitted on the current input
	StatusCompleted NodeStatus = "completed" // Output or prediction published
	StatusFailed    NodeStatus = "failed"
)
