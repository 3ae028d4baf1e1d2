package session

import (
	"github.com/avi3tal/mlcanvas/internal/graph"
	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

// NodeView is what the canvas renders for one node
type NodeView struct {
	ID            string           `json:"id"`
	Kind          types.NodeKind   `json:"kind"`
	Subtype       types.Subtype    `json:"subtype"`
	InputRowCount int              `json:"input_row_count"`
	Headers       []string         `json:"headers,omitempty"`
	Result        *types.Payload   `json:"result,omitempty"`
	Status        types.NodeStatus `json:"status"`
	Message       string           `json:"message,omitempty"`
	Config        types.Config     `json:"config"`
}

// viewOf renders a node. Source nodes report the external table they supply.
func viewOf(n graph.Node, source table.Table) NodeView {
	v := NodeView{
		ID:            n.ID,
		Kind:          n.Kind,
		Subtype:       n.Subtype,
		InputRowCount: n.Input.Len(),
		Headers:       n.Input.Headers(),
		Result:        n.CachedResult,
		Status:        n.Status,
		Message:       n.Message,
		Config:        n.Config,
	}
	if n.Kind == types.KindSource {
		v.InputRowCount = source.Len()
		v.Headers = source.Headers()
	}
	return v
}
