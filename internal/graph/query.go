package graph

import (
	"relgraph/internal/symtab"
)

// RelatedFile is one entry of RelatedFiles' result, spec.md §4.5 Query API.
type RelatedFile struct {
	Name           string
	Score          int
	RelatedSymbols []string
}

// SymbolInfo describes one DEF or REF site for FileMetadata, carrying its
// resolved counterparts (possibly empty).
type SymbolInfo struct {
	Name      string
	Kind      symtab.Kind
	Line      int
	StartByte uint32
	EndByte   uint32
	Resolved  []symtab.Site
}

// FileMetadataResult is FileMetadata's return value.
type FileMetadataResult struct {
	Symbols []SymbolInfo
}

// Pair is one resolves_to witness returned by PairsBetweenFiles.
type Pair struct {
	FromSite symtab.Site
	ToSite   symtab.Site
	Name     string
}

// Files returns every analyzed file in stable (lexicographic) order.
func (g *Graph) Files() []string {
	out := make([]string, len(g.files))
	copy(out, g.files)
	return out
}

// RelatedFiles returns file's outgoing file_link edges sorted by
// descending score, spec.md §4.5 Query API.
func (g *Graph) RelatedFiles(file string) []RelatedFile {
	edges := g.outAdj[file]
	out := make([]RelatedFile, 0, len(edges))
	for _, e := range edges {
		out = append(out, RelatedFile{Name: e.To, Score: e.Score, RelatedSymbols: e.RelatedSymbols})
	}
	return out
}

// FileMetadata returns every DEF/REF site in file along with each site's
// resolved counterparts (its defs if REF, its refs if DEF).
func (g *Graph) FileMetadata(file string) FileMetadataResult {
	var out FileMetadataResult
	for _, s := range g.table.SitesIn(file) {
		if s.Kind == symtab.Import {
			continue
		}
		info := SymbolInfo{Name: s.QualifiedName(), Kind: s.Kind, Line: s.Line, StartByte: s.StartByte, EndByte: s.EndByte}
		var counterpartIDs []int
		if s.Kind == symtab.Ref {
			counterpartIDs = g.resolvesTo[s.ID]
		} else {
			counterpartIDs = g.resolvedBy[s.ID]
		}
		for _, id := range counterpartIDs {
			if site, ok := g.table.Site(id); ok {
				info.Resolved = append(info.Resolved, site)
			}
		}
		out.Symbols = append(out.Symbols, info)
	}
	return out
}

// PairsBetweenFiles returns every resolves_to witness from a file's REF
// sites to b file's DEF sites.
func (g *Graph) PairsBetweenFiles(a, b string) []Pair {
	e, ok := g.edges[pairKey{a, b}]
	if !ok {
		return nil
	}
	out := make([]Pair, 0, len(e.Resolutions))
	for _, res := range e.Resolutions {
		fromSite, _ := g.table.Site(res.RefID)
		toSite, _ := g.table.Site(res.DefID)
		out = append(out, Pair{FromSite: fromSite, ToSite: toSite, Name: res.Name})
	}
	return out
}

// ListDefinitions returns every DEF site whose base name matches name.
func (g *Graph) ListDefinitions(name string) []symtab.Site {
	return g.table.LookupDefs(name)
}

// ListReferences returns every REF site whose base name matches name.
func (g *Graph) ListReferences(name string) []symtab.Site {
	return g.table.LookupRefs(name)
}

// ListDefinitionsByReference returns the DEF sites a given REF site
// resolves to, in the final (post-pruning) graph.
func (g *Graph) ListDefinitionsByReference(refSiteID int) []symtab.Site {
	var out []symtab.Site
	for _, id := range g.resolvesTo[refSiteID] {
		if s, ok := g.table.Site(id); ok {
			out = append(out, s)
		}
	}
	return out
}

// ListReferencesByDefinition returns the REF sites that resolve to a
// given DEF site.
func (g *Graph) ListReferencesByDefinition(defSiteID int) []symtab.Site {
	var out []symtab.Site
	for _, id := range g.resolvedBy[defSiteID] {
		if s, ok := g.table.Site(id); ok {
			out = append(out, s)
		}
	}
	return out
}

// Edges returns every surviving file_link edge, for exporters (CSV, diff,
// Obsidian) that need the full set rather than a single file's neighbors.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	return out
}

// Edge returns the edge from a to b, if any.
func (g *Graph) Edge(a, b string) (*Edge, bool) {
	e, ok := g.edges[pairKey{a, b}]
	return e, ok
}

// ErrorCounts exposes the aggregate error-kind counters recorded during
// construction (spec.md §7).
func (g *Graph) ErrorCounts() map[string]int64 {
	if g.errCounts == nil {
		return map[string]int64{}
	}
	return g.errCounts.Snapshot()
}
