package rank

import (
	"testing"

	"relgraph/internal/history"
	"relgraph/internal/symtab"

	"relgraph/internal/graph"
)

func TestComputeRanksHubAboveLeaf(t *testing.T) {
	tbl := symtab.New()
	tbl.AddSite(symtab.Site{Name: "foo", File: "a.py", Kind: symtab.Ref})
	tbl.AddSite(symtab.Site{Name: "foo", File: "hub.py", Kind: symtab.Def})
	tbl.AddSite(symtab.Site{Name: "bar", File: "b.py", Kind: symtab.Ref})
	tbl.AddSite(symtab.Site{Name: "bar", File: "hub.py", Kind: symtab.Def})
	tbl.AddImport("a.py", "hub")
	tbl.AddImport("b.py", "hub")
	tbl.Freeze()

	g := graph.Build(graph.Inputs{Table: tbl, History: &history.Result{CommitsOfFile: map[string]map[string]struct{}{}, Cochange: map[history.PairKey]int{}}})

	ranks := rankOf(Compute(g))
	if ranks["hub.py"] <= ranks["a.py"] || ranks["hub.py"] <= ranks["b.py"] {
		t.Errorf("expected hub.py to outrank its leaves, got %v", ranks)
	}
}

func TestComputeEmptyGraph(t *testing.T) {
	tbl := symtab.New()
	tbl.Freeze()
	g := graph.Build(graph.Inputs{Table: tbl, History: &history.Result{CommitsOfFile: map[string]map[string]struct{}{}, Cochange: map[history.PairKey]int{}}})
	if got := Compute(g); got != nil {
		t.Errorf("expected nil for empty graph, got %v", got)
	}
}

func rankOf(frs []FileRank) map[string]float64 {
	out := make(map[string]float64, len(frs))
	for _, fr := range frs {
		out[fr.File] = fr.Rank
	}
	return out
}
