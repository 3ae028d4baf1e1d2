package graph

import "fmt"

// Edge represents a connection between two nodes. Duplicates are allowed.
type Edge struct {
	ID     string
	Source string
	Target string
}

// Validate validates the edge configuration
func (e Edge) Validate() error {
	if e.Source == "" {
		return fmt.Errorf("edge must have a source node")
	}
	if e.Target == "" {
		return fmt.Errorf("edge must have a target node")
	}
	return nil
}

// Pair is a producer feeding a consumer over at least one edge
type Pair struct {
	Producer string
	Consumer string
}
