package visibility

import (
	"fmt"
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/clustergraph/pkg/graph"
)

// forest draws a random forest: every node is either a cluster root or the
// child of an earlier node.
type forest struct {
	g      *graph.Graph
	ids    []string
	roots  []string
	state  ViewState
	hidden HiddenSet
}

func drawForest(t *rapid.T) forest {
	n := rapid.IntRange(1, 25).Draw(t, "nodes")

	var (
		nodes []graph.Node
		lnks  []graph.Link
		f     forest
	)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("n%d", i)
		root := i == 0 || rapid.IntRange(0, 4).Draw(t, "root") == 0
		nodes = append(nodes, graph.Node{ID: id, Cluster: root})
		f.ids = append(f.ids, id)
		if root {
			f.roots = append(f.roots, id)
			continue
		}
		parent := rapid.IntRange(0, i-1).Draw(t, "parent")
		lnks = append(lnks, graph.Link{Source: fmt.Sprintf("n%d", parent), Target: id})
	}
	f.g = graph.MustBuild(nodes, lnks)

	f.state = NewViewState()
	for _, id := range f.ids {
		if rapid.Bool().Draw(t, "expanded") {
			f.state.SetCollapsed(id, false)
		}
	}
	f.hidden = NewHiddenSet()
	for _, id := range f.roots {
		if rapid.IntRange(0, 3).Draw(t, "hidden") == 0 {
			f.hidden = f.hidden.Toggle(id)
		}
	}
	return f
}

func compute(t *rapid.T, g *graph.Graph, s ViewState, h HiddenSet) Subgraph {
	sub, err := ComputeVisible(g, s, h)
	if err != nil {
		t.Fatalf("ComputeVisible() error = %v", err)
	}
	return sub
}

// reach returns from plus every node reachable from it over sub's links.
func reach(sub Subgraph, from string) map[string]bool {
	seen := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, l := range sub.Links {
			if l.Source == id && !seen[l.Target] {
				seen[l.Target] = true
				stack = append(stack, l.Target)
			}
		}
	}
	return seen
}

func TestPropertyIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := drawForest(t)
		a := compute(t, f.g, f.state, f.hidden)
		b := compute(t, f.g, f.state, f.hidden)
		if !slices.Equal(a.NodeIDs(), b.NodeIDs()) || !slices.Equal(a.Links, b.Links) {
			t.Fatalf("results differ:\n%v\n%v", a, b)
		}
	})
}

func TestPropertyToggleIsItsOwnInverse(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := drawForest(t)
		id := rapid.SampledFrom(f.ids).Draw(t, "toggle")

		before := compute(t, f.g, f.state, f.hidden)
		wasCollapsed := f.state.Collapsed(id)

		f.state.Toggle(id)
		f.state.Toggle(id)

		after := compute(t, f.g, f.state, f.hidden)
		if f.state.Collapsed(id) != wasCollapsed {
			t.Fatalf("flag of %s not restored", id)
		}
		if !slices.Equal(before.NodeIDs(), after.NodeIDs()) || !slices.Equal(before.Links, after.Links) {
			t.Fatalf("subgraph not restored")
		}
	})
}

func TestPropertyRootOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := drawForest(t)
		sub := compute(t, f.g, f.state, f.hidden)

		var got []string
		for _, n := range sub.Nodes {
			if n.Cluster {
				got = append(got, n.ID)
			}
		}
		var want []string
		for _, id := range f.roots {
			if !f.hidden.Contains(id) {
				want = append(want, id)
			}
		}
		if !slices.Equal(got, want) {
			t.Fatalf("root order = %v, want %v", got, want)
		}
	})
}

func TestPropertyCollapseHidesOnlyDescendants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := drawForest(t)
		before := compute(t, f.g, f.state, f.hidden)

		var candidates []string
		for _, id := range before.NodeIDs() {
			if !f.state.Collapsed(id) {
				candidates = append(candidates, id)
			}
		}
		if len(candidates) == 0 {
			t.Skip("no expanded visible node")
		}
		id := rapid.SampledFrom(candidates).Draw(t, "collapse")

		desc := reach(before, id)
		delete(desc, id)

		f.state.SetCollapsed(id, true)
		after := compute(t, f.g, f.state, f.hidden)

		var wantNodes []string
		for _, n := range before.Nodes {
			if !desc[n.ID] {
				wantNodes = append(wantNodes, n.ID)
			}
		}
		var wantLinks []graph.Link
		for _, l := range before.Links {
			if l.Source != id && !desc[l.Source] {
				wantLinks = append(wantLinks, l)
			}
		}
		if !slices.Equal(after.NodeIDs(), wantNodes) {
			t.Fatalf("nodes = %v, want %v", after.NodeIDs(), wantNodes)
		}
		if !slices.Equal(after.Links, wantLinks) {
			t.Fatalf("links = %v, want %v", after.Links, wantLinks)
		}
		if !after.HasNode(id) {
			t.Fatalf("collapsed node %s disappeared", id)
		}
	})
}

func TestPropertyHideRemovesWholeCluster(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := drawForest(t)
		before := compute(t, f.g, f.state, f.hidden)

		var shown []string
		for _, id := range f.roots {
			if !f.hidden.Contains(id) {
				shown = append(shown, id)
			}
		}
		if len(shown) == 0 {
			t.Skip("every cluster hidden")
		}
		root := rapid.SampledFrom(shown).Draw(t, "hide")
		gone := reach(before, root)

		after := compute(t, f.g, f.state, f.hidden.Toggle(root))

		var wantNodes []string
		for _, n := range before.Nodes {
			if !gone[n.ID] {
				wantNodes = append(wantNodes, n.ID)
			}
		}
		if !slices.Equal(after.NodeIDs(), wantNodes) {
			t.Fatalf("nodes = %v, want %v", after.NodeIDs(), wantNodes)
		}

		restored := compute(t, f.g, f.state, f.hidden)
		if !slices.Equal(restored.NodeIDs(), before.NodeIDs()) || !slices.Equal(restored.Links, before.Links) {
			t.Fatalf("re-showing %s did not restore the subgraph", root)
		}
	})
}
