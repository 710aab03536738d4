package workflow

import (
	"fmt"
	"sort"
	"strings"
)

// Edge is one transition of a compiled workflow. Label is set for
// conditional routes.
type Edge struct {
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Description is the static shape of a workflow.
type Description struct {
	Name  string         `json:"name" yaml:"name"`
	Entry string         `json:"entry" yaml:"entry"`
	Nodes []string       `json:"nodes" yaml:"nodes"`
	Edges []Edge         `json:"edges" yaml:"edges"`
	Loops map[string]int `json:"loops,omitempty" yaml:"loops,omitempty"`
}

// Edges lists transitions in node order, Start first.
func (w *Workflow[S]) Edges() []Edge {
	edges := []Edge{{From: Start, To: w.entry}}
	for _, n := range w.order {
		if to, ok := w.next[n]; ok {
			edges = append(edges, Edge{From: n, To: to})
			continue
		}
		b, ok := w.branches[n]
		if !ok {
			continue
		}
		labels := make([]string, 0, len(b.routes))
		for l := range b.routes {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		for _, l := range labels {
			edges = append(edges, Edge{From: n, To: b.routes[l], Label: l})
		}
	}
	return edges
}

// Describe returns the workflow's static shape.
func (w *Workflow[S]) Describe() Description {
	d := Description{
		Name:  w.name,
		Entry: w.entry,
		Nodes: w.Nodes(),
		Edges: w.Edges(),
	}
	if len(w.loops) > 0 {
		d.Loops = make(map[string]int, len(w.loops))
		for k, v := range w.loops {
			d.Loops[k] = v
		}
	}
	return d
}

// Mermaid renders the description as a Mermaid flowchart.
func (d Description) Mermaid() string {
	var sb strings.Builder
	sb.WriteString("flowchart TD\n")
	fmt.Fprintf(&sb, "    %s([start])\n", Start)
	for _, n := range d.Nodes {
		if bound, ok := d.Loops[n]; ok {
			fmt.Fprintf(&sb, "    %s{{%s x%d}}\n", n, n, bound)
			continue
		}
		fmt.Fprintf(&sb, "    %s[%s]\n", n, n)
	}
	fmt.Fprintf(&sb, "    %s([end])\n", End)
	for _, e := range d.Edges {
		if e.Label != "" {
			fmt.Fprintf(&sb, "    %s -->|%s| %s\n", e.From, e.Label, e.To)
			continue
		}
		fmt.Fprintf(&sb, "    %s --> %s\n", e.From, e.To)
	}
	return sb.String()
}
