package pipeline

import (
	"fmt"

	"github.com/avi3tal/mlcanvas/internal/graph"
	"github.com/avi3tal/mlcanvas/internal/nodes"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

// Builder is the top-level DSL object. Wraps an internal graph.
type Builder struct {
	name  string
	graph *graph.Graph
	defs  map[string]NodeDef
	steps []StepDef
	err   error
}

// NewBuilder creates a new pipeline DSL with an underlying graph.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:  name,
		graph: graph.NewGraph(name),
		defs:  make(map[string]NodeDef),
	}
}

// Node describes a node for Then, ThenAll and Join. An empty ID is generated.
type Node struct {
	ID      string
	Subtype types.Subtype
	Config  types.Config
}

// add places a node on the canvas unless it is already there
func (b *Builder) add(n Node) (string, error) {
	if n.ID != "" && b.graph.HasNode(n.ID) {
		return n.ID, nil
	}
	gn, err := nodes.NewNode(n.ID, n.Subtype)
	if err != nil {
		return "", fmt.Errorf("add node %q: %w", n.ID, err)
	}
	gn.Config = overlay(gn.Config, n.Config)
	if err := b.graph.AddNode(gn); err != nil {
		return "", err
	}
	b.defs[gn.ID] = NodeDef{ID: gn.ID, Subtype: n.Subtype, Config: gn.Config}
	return gn.ID, nil
}

func (b *Builder) connect(from, to string) error {
	if _, err := b.graph.AddEdge(from, to); err != nil {
		return fmt.Errorf("connect %s->%s: %w", from, to, err)
	}
	return nil
}

// Source adds a CSV source node and starts a flow from it
func (b *Builder) Source(id string) *Flow {
	nid, err := b.add(Node{ID: id, Subtype: types.SubtypeCSV})
	if err != nil {
		return &Flow{b: b, err: fmt.Errorf("Source(%q) failed: %w", id, err)}
	}
	return &Flow{b: b, tips: []string{nid}}
}

// From starts a flow at a node that already exists
func (b *Builder) From(ids ...string) *Flow {
	for _, id := range ids {
		if !b.graph.HasNode(id) {
			return &Flow{b: b, err: fmt.Errorf("From(%q): %w", id, graph.ErrNodeNotFound)}
		}
	}
	return &Flow{b: b, tips: ids}
}

// Apply queues an apply step
func (b *Builder) Apply(id string) *Builder {
	b.steps = append(b.steps, StepDef{Action: ActionApply, Node: id})
	return b
}

// Train queues a train step
func (b *Builder) Train(id string) *Builder {
	b.steps = append(b.steps, StepDef{Action: ActionTrain, Node: id})
	return b
}

// Predict queues a predict step
func (b *Builder) Predict(id, input string) *Builder {
	b.steps = append(b.steps, StepDef{Action: ActionPredict, Node: id, Input: input})
	return b
}

// Build returns the definition, or the first error met while building
func (b *Builder) Build() (*Definition, error) {
	if b.err != nil {
		return nil, b.err
	}
	def := &Definition{Name: b.name, Steps: append([]StepDef(nil), b.steps...)}
	for _, n := range b.graph.Nodes() {
		def.Nodes = append(def.Nodes, b.defs[n.ID])
	}
	for _, e := range b.graph.Edges() {
		def.Edges = append(def.Edges, EdgeDef{ID: e.ID, From: e.Source, To: e.Target})
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// Flow references the nodes that were just added
type Flow struct {
	b    *Builder
	tips []string
	err  error
}

func (f *Flow) Err() error {
	return f.err
}

// IDs returns the ids at the head of the flow
func (f *Flow) IDs() []string {
	return append([]string(nil), f.tips...)
}

// fail records the first error on both the flow and its builder
func (f *Flow) fail(err error) *Flow {
	f.err = err
	if f.b.err == nil {
		f.b.err = err
	}
	return f
}

// Then adds next and links every current node to it
func (f *Flow) Then(next Node) *Flow {
	if f.err != nil {
		return f
	}
	id, err := f.b.add(next)
	if err != nil {
		return f.fail(fmt.Errorf("Then(%q) failed: %w", next.ID, err))
	}
	for _, tip := range f.tips {
		if err := f.b.connect(tip, id); err != nil {
			return f.fail(err)
		}
	}
	return &Flow{b: f.b, tips: []string{id}}
}

// ThenAll fans the flow out to several nodes
func (f *Flow) ThenAll(next ...Node) *Parallel {
	p := &Parallel{b: f.b, err: f.err}
	if f.err != nil {
		return p
	}
	for _, n := range next {
		id, err := f.b.add(n)
		if err != nil {
			return p.fail(fmt.Errorf("[ThenAll]: could not add node %q: %w", n.ID, err))
		}
		for _, tip := range f.tips {
			if err := f.b.connect(tip, id); err != nil {
				return p.fail(fmt.Errorf("[ThenAll]: %w", err))
			}
		}
		p.ids = append(p.ids, id)
	}
	return p
}

// Parallel holds the branches opened by ThenAll
type Parallel struct {
	b   *Builder
	ids []string
	err error
}

func (p *Parallel) fail(err error) *Parallel {
	p.err = err
	if p.b.err == nil {
		p.b.err = err
	}
	return p
}

// Join links every branch to one node, typically a sink several models
// publish to.
func (p *Parallel) Join(n Node) *Flow {
	f := &Flow{b: p.b, tips: p.ids}
	if p.err != nil {
		return f.fail(p.err)
	}
	return f.Then(n)
}

// Each continues every branch separately with its own node
func (p *Parallel) Each(next ...Node) *Parallel {
	if p.err != nil {
		return p
	}
	if len(next) != len(p.ids) {
		return p.fail(fmt.Errorf("[Each]: %d nodes for %d branches", len(next), len(p.ids)))
	}
	out := &Parallel{b: p.b}
	for i, n := range next {
		f := (&Flow{b: p.b, tips: []string{p.ids[i]}}).Then(n)
		if f.err != nil {
			return out.fail(f.err)
		}
		out.ids = append(out.ids, f.tips...)
	}
	return out
}
