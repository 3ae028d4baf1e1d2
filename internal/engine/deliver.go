package engine

import (
	"fmt"

	"github.com/avi3tal/mlcanvas/internal/graph"
	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

// Delivery is what a node publishes: a value from a model or a processed
// table from a preprocessor.
type Delivery struct {
	Value  *types.Payload
	Output table.Table
}

// Value wraps a model prediction
func Value(p types.Payload) Delivery {
	return Delivery{Value: &p}
}

// Output wraps a preprocessor result
func Output(t table.Table) Delivery {
	return Delivery{Output: t}
}

// Deliver routes a published result through the node's dispatch, resolved
// against g as it is now. A model value is written to every sink currently
// fed by the model, last publish winning; the written sink ids are returned.
// A preprocessor table becomes its cached output. g is modified in place.
func Deliver(g *graph.Graph, nodeID string, d Delivery) ([]string, error) {
	n, ok := g.Node(nodeID)
	if !ok {
		return nil, fmt.Errorf("deliver to %s: %w", nodeID, ErrStaleDelivery)
	}

	switch n.Kind {
	case types.KindModel:
		if d.Value == nil {
			return nil, fmt.Errorf("deliver to model %s without a value: %w", nodeID, ErrInvalidDelivery)
		}
		sinks := g.ConsumersOf(nodeID, types.KindSink)
		for _, s := range sinks {
			if err := g.SetResult(s, *d.Value); err != nil {
				return nil, err
			}
			if err := g.SetStatus(s, types.StatusCompleted, ""); err != nil {
				return nil, err
			}
		}
		return sinks, g.SetStatus(nodeID, types.StatusCompleted, "")

	case types.KindPreprocessor:
		if d.Value != nil {
			return nil, fmt.Errorf("deliver value to preprocessor %s: %w", nodeID, ErrInvalidDelivery)
		}
		if err := g.SetCachedOutput(nodeID, d.Output); err != nil {
			return nil, err
		}
		return nil, g.SetStatus(nodeID, types.StatusCompleted, "")

	default:
		return nil, fmt.Errorf("deliver to %s node %s: %w", n.Kind, nodeID, ErrInvalidDelivery)
	}
}
