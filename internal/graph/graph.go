package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

const defaultGraphName = "canvas"

// Graph is the pipeline canvas: nodes keyed by id plus an ordered edge list.
// It is not safe for concurrent use; callers serialize access.
type Graph struct {
	graphID string
	nodes   map[string]*Node
	order   []string
	edges   []Edge
}

// NewGraph creates an empty graph. The id is the name followed by a uuid.
func NewGraph(name string, opt ...Option) *Graph {
	graphName := defaultGraphName
	if name != "" {
		graphName = name
	}

	g := Graph{
		graphID: uuid.New().String(),
		nodes:   make(map[string]*Node),
	}
	for _, o := range opt {
		o(&g)
	}

	graphName = strings.ReplaceAll(graphName, " ", "-")
	g.graphID = fmt.Sprintf("%s-%s", graphName, g.graphID)
	return &g
}

// ID returns the graph identifier
func (g *Graph) ID() string {
	return g.graphID
}

// AddNode inserts a node. Ids are unique.
func (g *Graph) AddNode(n Node) error {
	if err := n.validate(); err != nil {
		return err
	}
	if _, exists := g.nodes[n.ID]; exists {
		return NewValidationError("AddNode", n.ID, ErrDuplicateNode)
	}
	g.nodes[n.ID] = n.clone()
	g.order = append(g.order, n.ID)
	return nil
}

// RemoveNode deletes a node and every edge touching it. The removed edges
// are returned in their original order.
func (g *Graph) RemoveNode(id string) ([]Edge, error) {
	if _, exists := g.nodes[id]; !exists {
		return nil, NewValidationError("RemoveNode", id, ErrNodeNotFound)
	}
	delete(g.nodes, id)
	g.order = slices.DeleteFunc(g.order, func(s string) bool { return s == id })

	var removed []Edge
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool {
		if e.Source == id || e.Target == id {
			removed = append(removed, e)
			return true
		}
		return false
	})
	return removed, nil
}

// AddEdge connects source to target and returns the new edge id.
// Kind compatibility is not checked; inert edges are simply never traversed.
func (g *Graph) AddEdge(source, target string) (string, error) {
	e := Edge{ID: uuid.New().String(), Source: source, Target: target}
	if err := g.Connect(e); err != nil {
		return "", err
	}
	return e.ID, nil
}

// Connect inserts an edge with a caller supplied id. An empty id gets a
// generated one.
func (g *Graph) Connect(e Edge) error {
	if err := e.Validate(); err != nil {
		return NewValidationError("AddEdge", e.ID, errors.Wrap(ErrNodeNotFound, err.Error()))
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if _, ok := g.edgeIndex(e.ID); ok {
		return NewValidationError("AddEdge", e.ID, ErrDuplicateEdge)
	}
	for _, endpoint := range []string{e.Source, e.Target} {
		if _, exists := g.nodes[endpoint]; !exists {
			return NewValidationError("AddEdge", endpoint, ErrNodeNotFound)
		}
	}
	g.edges = append(g.edges, e)
	return nil
}

// RemoveEdge deletes one edge by id and returns it
func (g *Graph) RemoveEdge(id string) (Edge, error) {
	i, ok := g.edgeIndex(id)
	if !ok {
		return Edge{}, NewValidationError("RemoveEdge", id, ErrEdgeNotFound)
	}
	e := g.edges[i]
	g.edges = slices.Delete(g.edges, i, i+1)
	return e, nil
}

func (g *Graph) edgeIndex(id string) (int, bool) {
	i := slices.IndexFunc(g.edges, func(e Edge) bool { return e.ID == id })
	return i, i >= 0
}

// Edge returns an edge by id
func (g *Graph) Edge(id string) (Edge, bool) {
	i, ok := g.edgeIndex(id)
	if !ok {
		return Edge{}, false
	}
	return g.edges[i], true
}

// Node returns a copy of the node with the given id
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n.clone(), true
}

// HasNode reports whether the id is present
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns copies of all nodes in creation order
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, *g.nodes[id].clone())
	}
	return out
}

// Edges returns the edges in insertion order
func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

// Incoming returns the edges targeting id in insertion order
func (g *Graph) Incoming(id string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Target == id {
			out = append(out, e)
		}
	}
	return out
}

// Outgoing returns the edges leaving id in insertion order
func (g *Graph) Outgoing(id string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// AncestorsOf returns every node reachable from id by walking incoming edges
// backwards, nearest first. Cycles terminate; a node on a cycle is its own
// ancestor.
func (g *Graph) AncestorsOf(id string) []string {
	visited := make(map[string]bool)
	var out []string
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.edges {
			if e.Target != cur || visited[e.Source] {
				continue
			}
			visited[e.Source] = true
			out = append(out, e.Source)
			queue = append(queue, e.Source)
		}
	}
	return out
}

// DirectPredecessor returns the source of the first incoming edge
func (g *Graph) DirectPredecessor(id string) (string, bool) {
	for _, e := range g.edges {
		if e.Target == id {
			return e.Source, true
		}
	}
	return "", false
}

// FanInPairs returns each distinct (producer, consumer) pair whose consumer
// has the given kind, in edge order.
func (g *Graph) FanInPairs(kind types.NodeKind) []Pair {
	seen := make(map[Pair]bool)
	var out []Pair
	for _, e := range g.edges {
		consumer, ok := g.nodes[e.Target]
		if !ok || consumer.Kind != kind {
			continue
		}
		p := Pair{Producer: e.Source, Consumer: e.Target}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// ConsumersOf returns the distinct targets of id having the given kind
func (g *Graph) ConsumersOf(id string, kind types.NodeKind) []string {
	var out []string
	for _, p := range g.FanInPairs(kind) {
		if p.Producer == id {
			out = append(out, p.Consumer)
		}
	}
	return out
}

// Clone returns a deep copy of the topology and node state
func (g *Graph) Clone() *Graph {
	c := &Graph{
		graphID: g.graphID,
		nodes:   make(map[string]*Node, len(g.nodes)),
		order:   slices.Clone(g.order),
		edges:   slices.Clone(g.edges),
	}
	for id, n := range g.nodes {
		c.nodes[id] = n.clone()
	}
	return c
}

func (g *Graph) mutable(op, id string) (*Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, NewValidationError(op, id, ErrNodeNotFound)
	}
	return n, nil
}

// SetInput assigns the node input. The revision only moves when the content
// differs, so repeated assignment of equal tables is a no-op.
func (g *Graph) SetInput(id string, t table.Table) (bool, error) {
	n, err := g.mutable("SetInput", id)
	if err != nil {
		return false, err
	}
	if n.Input.Equal(t) {
		return false, nil
	}
	n.Input = t
	n.InputRevision++
	return true, nil
}

// SetCachedOutput stores the table a preprocessor produced
func (g *Graph) SetCachedOutput(id string, t table.Table) error {
	n, err := g.mutable("SetCachedOutput", id)
	if err != nil {
		return err
	}
	n.CachedOutput = t
	return nil
}

// SetResult stores a delivered inference result
func (g *Graph) SetResult(id string, p types.Payload) error {
	n, err := g.mutable("SetResult", id)
	if err != nil {
		return err
	}
	n.CachedResult = &p
	return nil
}

// ResetResult clears the cached result. It reports whether one was present.
func (g *Graph) ResetResult(id string) (bool, error) {
	n, err := g.mutable("ResetResult", id)
	if err != nil {
		return false, err
	}
	had := n.CachedResult != nil
	n.CachedResult = nil
	return had, nil
}

// SetStatus records the node status and an optional message
func (g *Graph) SetStatus(id string, status types.NodeStatus, message string) error {
	n, err := g.mutable("SetStatus", id)
	if err != nil {
		return err
	}
	n.Status = status
	n.Message = message
	return nil
}

// UpdateConfig replaces the node configuration
func (g *Graph) UpdateConfig(id string, cfg types.Config) error {
	n, err := g.mutable("UpdateConfig", id)
	if err != nil {
		return err
	}
	n.Config = cfg.Clone()
	return nil
}
