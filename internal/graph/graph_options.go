package graph

// Option configures a Graph
type Option func(*Graph)

// WithGraphID sets a custom id suffix for the graph
func WithGraphID(id string) Option {
	return func(g *Graph) {
		g.graphID = id
	}
}
