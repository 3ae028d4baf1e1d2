package engine

import (
	"github.com/avi3tal/mlcanvas/internal/graph"
	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

// Report describes what a recompute pass changed
type Report struct {
	// InputChanged lists nodes whose input table was replaced, in creation order
	InputChanged []string
	// SinksReset lists sinks whose result was cleared
	SinksReset []string
}

// Changed reports whether the pass modified anything
func (r Report) Changed() bool {
	return len(r.InputChanged) > 0 || len(r.SinksReset) > 0
}

const (
	unvisited = iota
	inProgress
	resolved
)

// resolver memoizes the effective input of each node during one pass.
// It reads the graph as it was before the pass.
type resolver struct {
	g      *graph.Graph
	source table.Table
	state  map[string]int
	memo   map[string]table.Table
}

// Recompute returns a copy of g with every preprocessor and model input
// re-derived from its first data edge, and with every sink lacking a model
// producer reset. g itself is not modified.
//
// A source edge yields the external table. A preprocessor edge yields its
// cached output when non-empty, otherwise whatever that preprocessor itself
// receives in this pass. Empty resolutions keep the previous input. Nodes on
// a cycle see the previous input of the node that closes the loop.
func Recompute(g *graph.Graph, source table.Table) (*graph.Graph, Report) {
	out := g.Clone()
	r := &resolver{
		g:      g,
		source: source,
		state:  make(map[string]int),
		memo:   make(map[string]table.Table),
	}

	var report Report
	for _, n := range g.Nodes() {
		if n.Kind != types.KindPreprocessor && n.Kind != types.KindModel {
			continue
		}
		eff := r.effective(n)
		if eff.Empty() {
			continue
		}
		changed, err := out.SetInput(n.ID, eff)
		if err != nil || !changed {
			continue
		}
		report.InputChanged = append(report.InputChanged, n.ID)
		_ = out.SetStatus(n.ID, types.StatusReady, "")
	}

	for _, n := range out.Nodes() {
		if n.Kind != types.KindSink || hasModelProducer(out, n.ID) {
			continue
		}
		had, err := out.ResetResult(n.ID)
		if err != nil {
			continue
		}
		if had {
			report.SinksReset = append(report.SinksReset, n.ID)
		}
		_ = out.SetStatus(n.ID, types.StatusIdle, "")
	}

	return out, report
}

// candidate resolves the table offered by the first data edge into id.
// It returns nil when no data edge exists.
func (r *resolver) candidate(id string) table.Table {
	for _, e := range r.g.Incoming(id) {
		up, ok := r.g.Node(e.Source)
		if !ok {
			continue
		}
		switch up.Kind {
		case types.KindSource:
			return r.source
		case types.KindPreprocessor:
			if !up.CachedOutput.Empty() {
				return up.CachedOutput
			}
			return r.effective(up)
		}
	}
	return nil
}

// effective is the input a node holds once this pass assigns it
func (r *resolver) effective(n graph.Node) table.Table {
	switch r.state[n.ID] {
	case resolved:
		return r.memo[n.ID]
	case inProgress:
		return n.Input
	}

	r.state[n.ID] = inProgress
	eff := r.candidate(n.ID)
	if eff.Empty() {
		eff = n.Input
	}
	r.memo[n.ID] = eff
	r.state[n.ID] = resolved
	return eff
}

func hasModelProducer(g *graph.Graph, sink string) bool {
	for _, p := range g.FanInPairs(types.KindSink) {
		if p.Consumer != sink {
			continue
		}
		if up, ok := g.Node(p.Producer); ok && up.Kind == types.KindModel {
			return true
		}
	}
	return false
}
