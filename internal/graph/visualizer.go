package graph

import (
	"fmt"
	"io"

	"github.com/avi3tal/mlcanvas/pkg/types"
)

// Edge types reported by GetGraphInfo
const (
	EdgeData   = "data"
	EdgeResult = "result"
	EdgeInert  = "inert"
)

// Info represents the graph structure for visualization
type Info struct {
	Nodes []NodeInfo
	Edges []EdgeInfo
}

// NodeInfo describes one node
type NodeInfo struct {
	ID      string
	Kind    types.NodeKind
	Subtype types.Subtype
	Status  types.NodeStatus
}

// EdgeInfo describes one edge and what flows over it
type EdgeInfo struct {
	ID   string
	From string
	To   string
	Type string
}

// edgeType classifies an edge by the kinds at its ends
func (g *Graph) edgeType(e Edge) string {
	from, to := g.nodes[e.Source], g.nodes[e.Target]
	if from == nil || to == nil {
		return EdgeInert
	}
	switch {
	case from.Kind == types.KindModel && to.Kind == types.KindSink:
		return EdgeResult
	case (from.Kind == types.KindSource || from.Kind == types.KindPreprocessor) &&
		(to.Kind == types.KindPreprocessor || to.Kind == types.KindModel):
		return EdgeData
	default:
		return EdgeInert
	}
}

func (g *Graph) GetGraphInfo() *Info {
	info := &Info{
		Nodes: make([]NodeInfo, 0, len(g.order)),
		Edges: make([]EdgeInfo, 0, len(g.edges)),
	}

	for _, id := range g.order {
		n := g.nodes[id]
		info.Nodes = append(info.Nodes, NodeInfo{
			ID:      n.ID,
			Kind:    n.Kind,
			Subtype: n.Subtype,
			Status:  n.Status,
		})
	}

	for _, e := range g.edges {
		info.Edges = append(info.Edges, EdgeInfo{
			ID:   e.ID,
			From: e.Source,
			To:   e.Target,
			Type: g.edgeType(e),
		})
	}

	return info
}

func (g *Graph) PrintGraph(w io.Writer) {
	info := g.GetGraphInfo()

	fmt.Fprintln(w, "Graph Structure:")
	fmt.Fprintf(w, "ID: %s\n\n", g.graphID)

	fmt.Fprintln(w, "Nodes:")
	for _, n := range info.Nodes {
		if n.Kind == types.KindSource {
			fmt.Fprintf(w, "  * %s [%s/%s] %s (Source)\n", n.ID, n.Kind, n.Subtype, n.Status)
		} else {
			fmt.Fprintf(w, "  - %s [%s/%s] %s\n", n.ID, n.Kind, n.Subtype, n.Status)
		}
	}

	fmt.Fprintln(w, "\nEdges:")
	for _, e := range info.Edges {
		switch e.Type {
		case EdgeData:
			fmt.Fprintf(w, "  %s --> %s\n", e.From, e.To)
		case EdgeResult:
			fmt.Fprintf(w, "  %s ==result==> %s\n", e.From, e.To)
		default:
			fmt.Fprintf(w, "  %s -.inert.- %s\n", e.From, e.To)
		}
	}
}
