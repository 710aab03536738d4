// Package workflow runs typed state through a graph of named steps.
//
// A workflow is declared as a [Definition]: a name, a set of nodes, and an
// edge builder. [Build] assembles the graph and validates it before any
// run can start. Running walks from the entry node, one node at a time,
// until a node routes to [End]:
//
//	type Briefing struct {
//	    state.Base
//	    Symbol string  `json:"symbol" required:"true"`
//	    Change float64 `json:"change"`
//	}
//
//	g := workflow.NewGraph[Briefing]("briefing").
//	    AddNode("fetch", fetch).
//	    AddNode("decide", decide).
//	    SetEntry("fetch").
//	    AddEdge("fetch", "decide").
//	    SetFinish("decide")
//
//	wf, err := g.Compile()
//	final, err := wf.Run(ctx, &Briefing{Symbol: "ABC"})
//
// Branching uses conditional edges whose decision returns a route label.
// Cycles are rejected unless they pass through a node marked with
// [Graph.MarkLoop], which also bounds how often that node may run.
//
// A [Registry] holds compiled workflows of differing state types behind
// the [Runner] interface so callers can start them by name with a plain
// map as input.
package workflow
