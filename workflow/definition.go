package workflow

import "sort"

// Definition declares a workflow: its name, its nodes, and how they
// connect. BuildEdges receives a graph that already holds every node.
type Definition[S any] interface {
	Name() string
	Nodes() map[string]Step[S]
	BuildEdges(g *Graph[S]) error
}

// Initializer is implemented by definitions that supply a default
// starting state.
type Initializer[S any] interface {
	NewState() *S
}

// Build assembles and compiles def. An error from BuildEdges is reported
// as a GraphError issue alongside any structural problems.
func Build[S any](def Definition[S], opts ...Option) (*Workflow[S], error) {
	g := NewGraph[S](def.Name())

	nodes := def.Nodes()
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		g.AddNode(name, nodes[name])
	}
	if init, ok := def.(Initializer[S]); ok {
		g.Initial(init.NewState)
	}
	if err := def.BuildEdges(g); err != nil {
		g.issue("", "building edges: "+err.Error())
	}
	return g.Compile(opts...)
}
