package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func noop() Step[quote] { return visit("noop", nil) }

func problems(t *testing.T, err error) []string {
	t.Helper()
	var gerr *GraphError
	require.ErrorAs(t, err, &gerr)
	require.True(t, errors.Is(err, ErrInvalidGraph))
	out := make([]string, len(gerr.Issues))
	for i, is := range gerr.Issues {
		out[i] = is.String()
	}
	return out
}

func TestCompileValidation(t *testing.T) {
	tests := []struct {
		name  string
		graph func() *Graph[quote]
		want  string
	}{
		{
			name: "no entry point",
			graph: func() *Graph[quote] {
				return NewGraph[quote]("g").AddNode("a", noop()).SetFinish("a")
			},
			want: "no entry point",
		},
		{
			name: "multiple entry points",
			graph: func() *Graph[quote] {
				return NewGraph[quote]("g").
					AddNode("a", noop()).AddNode("b", noop()).
					SetEntry("a").SetEntry("b").
					SetFinish("a").SetFinish("b")
			},
			want: "multiple entry points: a, b",
		},
		{
			name: "edge to unknown node",
			graph: func() *Graph[quote] {
				return NewGraph[quote]("g").AddNode("a", noop()).SetEntry("a").AddEdge("a", "ghost")
			},
			want: `node "a": edge to unknown node "ghost"`,
		},
		{
			name: "route to unknown node",
			graph: func() *Graph[quote] {
				return NewGraph[quote]("g").AddNode("a", noop()).SetEntry("a").
					AddConditionalEdges("a", func(*quote) string { return "x" },
						map[string]string{"x": End, "y": "ghost"})
			},
			want: `node "a": edge to unknown node "ghost"`,
		},
		{
			name: "no terminal node",
			graph: func() *Graph[quote] {
				return NewGraph[quote]("g").
					AddNode("a", noop()).AddNode("b", noop()).
					SetEntry("a").AddEdge("a", "b").AddEdge("b", "a").
					MarkLoop("a", 3)
			},
			want: "no node leads to End",
		},
		{
			name: "unmarked cycle",
			graph: func() *Graph[quote] {
				return NewGraph[quote]("g").
					AddNode("a", noop()).AddNode("b", noop()).AddNode("c", noop()).
					SetEntry("a").
					AddEdge("a", "b").
					AddEdge("b", "c").
					AddConditionalEdges("c", func(*quote) string { return "done" },
						map[string]string{"done": End, "again": "b"})
			},
			want: `node "b": cycle without a loop node: b -> c -> b`,
		},
		{
			name: "dead end node",
			graph: func() *Graph[quote] {
				return NewGraph[quote]("g").
					AddNode("a", noop()).AddNode("b", noop()).
					SetEntry("a").AddEdge("a", "b").SetFinish("a")
			},
			want: `node "b": no outgoing edge`,
		},
		{
			name: "two plain edges",
			graph: func() *Graph[quote] {
				return NewGraph[quote]("g").
					AddNode("a", noop()).AddNode("b", noop()).
					SetEntry("a").AddEdge("a", "b").SetFinish("a").SetFinish("b")
			},
			want: `node "a": multiple outgoing edges; use a conditional edge to branch`,
		},
		{
			name: "duplicate node",
			graph: func() *Graph[quote] {
				return NewGraph[quote]("g").
					AddNode("a", noop()).AddNode("a", noop()).
					SetEntry("a").SetFinish("a")
			},
			want: `node "a": duplicate node`,
		},
		{
			name: "reserved name",
			graph: func() *Graph[quote] {
				return NewGraph[quote]("g").
					AddNode("a", noop()).AddNode(End, noop()).
					SetEntry("a").SetFinish("a")
			},
			want: `node "__end__": node name is reserved`,
		},
		{
			name: "edge leaving End",
			graph: func() *Graph[quote] {
				return NewGraph[quote]("g").
					AddNode("a", noop()).SetEntry("a").SetFinish("a").AddEdge(End, "a")
			},
			want: `node "__end__": edges cannot leave End`,
		},
		{
			name: "non-positive loop bound",
			graph: func() *Graph[quote] {
				return NewGraph[quote]("g").
					AddNode("a", noop()).SetEntry("a").SetFinish("a").MarkLoop("a", 0)
			},
			want: `node "a": loop bound must be positive, got 0`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.graph().Compile()
			assert.Contains(t, problems(t, err), tt.want)
		})
	}
}

func TestCompileReportsEveryIssue(t *testing.T) {
	_, err := NewGraph[quote]("g").
		AddNode("a", noop()).
		AddNode("b", noop()).
		AddEdge("a", "ghost").
		Compile()

	got := problems(t, err)
	assert.Contains(t, got, "no entry point")
	assert.Contains(t, got, `node "a": edge to unknown node "ghost"`)
	assert.Contains(t, got, `node "b": no outgoing edge`)
	assert.Contains(t, got, "no node leads to End")
	assert.Contains(t, err.Error(), `workflow "g": invalid graph`)
}

func TestCompileAllowsUnreachableNodes(t *testing.T) {
	wf, err := NewGraph[quote]("g").
		AddNode("a", noop()).
		AddNode("orphan", noop()).
		SetEntry("a").SetFinish("a").SetFinish("orphan").
		Compile()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "orphan"}, wf.Nodes())
}

type briefing struct {
	nodes map[string]Step[quote]
	edges func(g *Graph[quote]) error
}

func (b briefing) Name() string                     { return "briefing" }
func (b briefing) Nodes() map[string]Step[quote]    { return b.nodes }
func (b briefing) BuildEdges(g *Graph[quote]) error { return b.edges(g) }
func (b briefing) NewState() *quote                 { return &quote{Signal: "none"} }

func TestBuild(t *testing.T) {
	t.Run("builds from a definition", func(t *testing.T) {
		def := briefing{
			nodes: map[string]Step[quote]{"fetch": visit("fetch", nil), "decide": visit("decide", nil)},
			edges: func(g *Graph[quote]) error {
				g.SetEntry("fetch").AddEdge("fetch", "decide").SetFinish("decide")
				return nil
			},
		}
		wf, err := Build[quote](def)
		require.NoError(t, err)

		assert.Equal(t, "briefing", wf.Name())
		assert.Equal(t, "fetch", wf.Entry())
		assert.Equal(t, "none", wf.NewState().Signal)

		final, err := wf.Run(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"fetch", "decide"}, final.Visited)
		assert.Equal(t, "none", final.Signal)
	})

	t.Run("edge builder error is an issue", func(t *testing.T) {
		def := briefing{
			nodes: map[string]Step[quote]{"fetch": noop()},
			edges: func(g *Graph[quote]) error { return errors.New("missing market data source") },
		}
		_, err := Build[quote](def)
		got := problems(t, err)
		assert.Contains(t, got, "building edges: missing market data source")
	})
}

func TestDescribe(t *testing.T) {
	wf, err := NewGraph[quote]("refine").
		AddNode("draft", noop()).
		AddNode("review", noop()).
		SetEntry("draft").
		AddEdge("draft", "review").
		AddConditionalEdges("review", func(*quote) string { return "accept" },
			map[string]string{"accept": End, "revise": "draft"}).
		MarkLoop("draft", 3).
		Compile()
	require.NoError(t, err)

	d := wf.Describe()
	assert.Equal(t, "refine", d.Name)
	assert.Equal(t, []string{"draft", "review"}, d.Nodes)
	assert.Equal(t, []Edge{
		{From: Start, To: "draft"},
		{From: "draft", To: "review"},
		{From: "review", To: End, Label: "accept"},
		{From: "review", To: "draft", Label: "revise"},
	}, d.Edges)
	assert.Equal(t, map[string]int{"draft": 3}, d.Loops)

	m := d.Mermaid()
	assert.Contains(t, m, "flowchart TD")
	assert.Contains(t, m, "draft{{draft x3}}")
	assert.Contains(t, m, "review -->|revise| draft")
	assert.Contains(t, m, "__start__ --> draft")
}

// Chains compile; any back edge without a loop node is rejected.
func TestCompileAcceptsOnlyValidChainsProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 8).Draw(rt, "n")
		g := NewGraph[quote]("p")
		for i := 0; i < n; i++ {
			g.AddNode(fmt.Sprintf("n%d", i), noop())
		}
		g.SetEntry("n0")

		backEdge := false
		for i := 0; i < n-1; i++ {
			from, to := fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", i+1)
			if rapid.Bool().Draw(rt, fmt.Sprintf("branch%d", i)) {
				back := rapid.IntRange(0, i).Draw(rt, fmt.Sprintf("back%d", i))
				backEdge = true
				g.AddConditionalEdges(from, func(*quote) string { return "next" },
					map[string]string{"next": to, "back": fmt.Sprintf("n%d", back)})
				continue
			}
			g.AddEdge(from, to)
		}
		g.SetFinish(fmt.Sprintf("n%d", n-1))

		_, err := g.Compile()
		if backEdge {
			require.ErrorIs(rt, err, ErrInvalidGraph)
			return
		}
		require.NoError(rt, err)
	})
}
