package workflow

import (
	"fmt"
	"sort"
	"strings"
)

// Reserved node names marking where a run begins and ends.
const (
	Start = "__start__"
	End   = "__end__"
)

type branch[S any] struct {
	decide Decision[S]
	routes map[string]string
}

// Graph collects nodes and edges for a workflow. Builder methods never
// fail; problems are recorded and reported together by Compile.
type Graph[S any] struct {
	name     string
	nodes    map[string]Step[S]
	order    []string
	edges    map[string][]string
	branches map[string][]branch[S]
	loops    map[string]int
	issues   []Issue
	newState func() *S
}

// NewGraph creates an empty graph for the named workflow.
func NewGraph[S any](name string) *Graph[S] {
	return &Graph[S]{
		name:     name,
		nodes:    make(map[string]Step[S]),
		edges:    make(map[string][]string),
		branches: make(map[string][]branch[S]),
		loops:    make(map[string]int),
	}
}

// AddNode registers step under name.
func (g *Graph[S]) AddNode(name string, step Step[S]) *Graph[S] {
	switch {
	case name == "":
		g.issue("", "node name is empty")
	case name == Start || name == End:
		g.issue(name, "node name is reserved")
	case step == nil:
		g.issue(name, "step is nil")
	case g.nodes[name] != nil:
		g.issue(name, "duplicate node")
	default:
		g.nodes[name] = step
		g.order = append(g.order, name)
	}
	return g
}

// AddEdge adds an unconditional transition. Use Start as from to set the
// entry node and End as to mark a terminal node.
func (g *Graph[S]) AddEdge(from, to string) *Graph[S] {
	g.edges[from] = append(g.edges[from], to)
	return g
}

// SetEntry is AddEdge(Start, name).
func (g *Graph[S]) SetEntry(name string) *Graph[S] {
	return g.AddEdge(Start, name)
}

// SetFinish is AddEdge(name, End).
func (g *Graph[S]) SetFinish(name string) *Graph[S] {
	return g.AddEdge(name, End)
}

// AddConditionalEdges makes from branch: after it runs, decide returns a
// label and the run moves to routes[label].
func (g *Graph[S]) AddConditionalEdges(from string, decide Decision[S], routes map[string]string) *Graph[S] {
	if decide == nil {
		g.issue(from, "conditional edge has no decision")
		return g
	}
	if len(routes) == 0 {
		g.issue(from, "conditional edge has no routes")
		return g
	}
	copied := make(map[string]string, len(routes))
	for label, to := range routes {
		copied[label] = to
	}
	g.branches[from] = append(g.branches[from], branch[S]{decide: decide, routes: copied})
	return g
}

// MarkLoop allows cycles through name and bounds how many times a single
// run may enter it.
func (g *Graph[S]) MarkLoop(name string, maxIterations int) *Graph[S] {
	if maxIterations <= 0 {
		g.issue(name, fmt.Sprintf("loop bound must be positive, got %d", maxIterations))
		return g
	}
	g.loops[name] = maxIterations
	return g
}

// Initial sets the factory used for the starting state when a run is
// started from a map.
func (g *Graph[S]) Initial(fn func() *S) *Graph[S] {
	g.newState = fn
	return g
}

func (g *Graph[S]) issue(node, problem string) {
	g.issues = append(g.issues, Issue{Node: node, Problem: problem})
}

func (g *Graph[S]) isNode(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// successors lists every node reachable in one hop from name, End included.
func (g *Graph[S]) successors(name string) []string {
	out := append([]string(nil), g.edges[name]...)
	for _, b := range g.branches[name] {
		out = append(out, sortedValues(b.routes)...)
	}
	return out
}

// Compile validates the graph and freezes it into a runnable Workflow.
// Every structural problem is reported in one GraphError. Compile
// options become defaults for each run.
func (g *Graph[S]) Compile(opts ...Option) (*Workflow[S], error) {
	o := ApplyOptions(Options{}, opts...)
	issues := append([]Issue(nil), g.issues...)

	if g.name == "" {
		issues = append(issues, Issue{Problem: "workflow name is empty"})
	}

	entries := g.edges[Start]
	switch {
	case len(entries) == 0:
		issues = append(issues, Issue{Problem: "no entry point"})
	case len(entries) > 1:
		issues = append(issues, Issue{Problem: "multiple entry points: " + strings.Join(entries, ", ")})
	case !g.isNode(entries[0]):
		issues = append(issues, Issue{Node: entries[0], Problem: "entry point is not a node"})
	}
	if len(g.branches[Start]) > 0 {
		issues = append(issues, Issue{Node: Start, Problem: "entry cannot branch"})
	}

	for _, from := range sortedKeys(g.edges) {
		if from == Start {
			continue
		}
		if from == End {
			issues = append(issues, Issue{Node: End, Problem: "edges cannot leave End"})
			continue
		}
		if !g.isNode(from) {
			issues = append(issues, Issue{Node: from, Problem: "edge from unknown node"})
		}
	}
	for _, from := range sortedKeys(g.branches) {
		if from != Start && !g.isNode(from) {
			issues = append(issues, Issue{Node: from, Problem: "conditional edge from unknown node"})
		}
	}
	for name := range g.loops {
		if !g.isNode(name) {
			issues = append(issues, Issue{Node: name, Problem: "loop marks unknown node"})
		}
	}

	hasTerminal := false
	for _, name := range g.order {
		plain, cond := g.edges[name], g.branches[name]
		switch {
		case len(plain) == 0 && len(cond) == 0:
			issues = append(issues, Issue{Node: name, Problem: "no outgoing edge"})
		case len(plain)+len(cond) > 1:
			issues = append(issues, Issue{Node: name, Problem: "multiple outgoing edges; use a conditional edge to branch"})
		}
		for _, to := range g.successors(name) {
			switch {
			case to == End:
				hasTerminal = true
			case to == Start:
				issues = append(issues, Issue{Node: name, Problem: "edge into Start"})
			case !g.isNode(to):
				issues = append(issues, Issue{Node: name, Problem: fmt.Sprintf("edge to unknown node %q", to)})
			}
		}
	}
	if !hasTerminal {
		issues = append(issues, Issue{Problem: "no node leads to End"})
	}

	if cycle := g.findCycle(); cycle != nil {
		issues = append(issues, Issue{
			Node:    cycle[0],
			Problem: "cycle without a loop node: " + strings.Join(cycle, " -> "),
		})
	}

	if len(issues) > 0 {
		return nil, &GraphError{Workflow: g.name, Issues: issues}
	}

	w := &Workflow[S]{
		name:     g.name,
		entry:    entries[0],
		nodes:    make(map[string]Step[S], len(g.nodes)),
		order:    append([]string(nil), g.order...),
		next:     make(map[string]string),
		branches: make(map[string]branch[S]),
		loops:    make(map[string]int, len(g.loops)),
		opts:     o,
		newState: g.newState,
	}
	for name, step := range g.nodes {
		w.nodes[name] = step
		if to := g.edges[name]; len(to) == 1 {
			w.next[name] = to[0]
		}
		if b := g.branches[name]; len(b) == 1 {
			w.branches[name] = b[0]
		}
	}
	for name, n := range g.loops {
		w.loops[name] = n
	}

	for _, name := range g.unreachable(w.entry) {
		o.Logger.Warn("workflow node is unreachable", "workflow", g.name, "node", name)
	}
	return w, nil
}

// findCycle returns one cycle among non-loop nodes, or nil.
func (g *Graph[S]) findCycle() []string {
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int)
	var stack []string
	var found []string

	var visit func(string) bool
	visit = func(n string) bool {
		color[n] = grey
		stack = append(stack, n)
		for _, to := range g.successors(n) {
			if !g.isNode(to) || g.loops[to] > 0 {
				continue
			}
			switch color[to] {
			case grey:
				for i, s := range stack {
					if s == to {
						found = append(append([]string(nil), stack[i:]...), to)
						return true
					}
				}
			case white:
				if visit(to) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
		return false
	}

	for _, n := range g.order {
		if g.loops[n] > 0 || color[n] != white {
			continue
		}
		if visit(n) {
			return found
		}
	}
	return nil
}

func (g *Graph[S]) unreachable(entry string) []string {
	seen := map[string]bool{entry: true}
	queue := []string{entry}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, to := range g.successors(n) {
			if g.isNode(to) && !seen[to] {
				seen[to] = true
				queue = append(queue, to)
			}
		}
	}
	var out []string
	for _, n := range g.order {
		if !seen[n] {
			out = append(out, n)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sortedValues returns the map's values ordered by key.
func sortedValues(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, k := range sortedKeys(m) {
		out = append(out, m[k])
	}
	return out
}
