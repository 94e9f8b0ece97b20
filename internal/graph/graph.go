// Package graph builds the file↔symbol and symbol↔symbol graph of
// spec.md §4.5 and exposes its read-only query API.
package graph

import (
	"math"
	"path/filepath"
	"sort"
	"strings"

	"relgraph/internal/errs"
	"relgraph/internal/history"
	"relgraph/internal/symtab"
)

const epsilon = 0.01 // ε in w_n = idf(n) × max(jac, ε), spec.md §4.5 Step D

// scoreGapRatio is the 80% survival threshold of spec.md §4.5 Step F.
const scoreGapRatio = 0.8

// Config selects construction-time behavior.
type Config struct {
	// Strict enables spec.md §4.5 Step C's uniqueness pruning.
	Strict bool
}

// Resolution is one surviving resolves_to(ref_site, def_site) edge.
type Resolution struct {
	RefID int
	DefID int
	Name  string // BaseName(ref.Name); the shared symbol name
}

// Edge is the derived file relation files_link(a, b) of spec.md §3.
type Edge struct {
	From, To       string
	Score          int
	RawScore       float64
	RelatedSymbols []string
	Resolutions    []Resolution
}

type pairKey struct{ from, to string }

// Graph is the frozen, read-only output of one construction run.
type Graph struct {
	table   *symtab.Table
	history *history.Result

	files []string // stable sorted order

	edges   map[pairKey]*Edge
	outAdj  map[string][]*Edge // from -> edges, sorted by descending score
	resolvesTo map[int][]int   // refID -> []defID
	resolvedBy map[int][]int   // defID -> []refID

	errCounts *errs.Counter
}

// Inputs bundles what Build needs: the frozen symbol table, the history
// analyzer's co-change result (may be empty, never nil), the resolution
// mode, and the shared error counter so query-surface observability
// includes errors recorded during extraction/history (spec.md §7).
type Inputs struct {
	Table     *symtab.Table
	History   *history.Result
	Config    Config
	ErrCounts *errs.Counter
}

// Build runs spec.md §4.5 Steps A-G over table and history and returns
// the resulting frozen Graph.
func Build(in Inputs) *Graph {
	g := &Graph{
		table:      in.Table,
		history:    in.History,
		edges:      make(map[pairKey]*Edge),
		outAdj:     make(map[string][]*Edge),
		resolvesTo: make(map[int][]int),
		resolvedBy: make(map[int][]int),
		errCounts:  in.ErrCounts,
	}
	if g.history == nil {
		g.history = &history.Result{CommitsOfFile: map[string]map[string]struct{}{}, Cochange: map[history.PairKey]int{}}
	}

	fileSet := make(map[string]struct{})
	for _, f := range in.Table.Files() {
		fileSet[f] = struct{}{}
	}
	g.files = make([]string, 0, len(fileSet))
	for f := range fileSet {
		g.files = append(g.files, f)
	}
	sort.Strings(g.files)
	totalFiles := len(g.files)

	idfCache := make(map[string]float64)
	idf := func(name string) float64 {
		if v, ok := idfCache[name]; ok {
			return v
		}
		v := computeIDF(in.Table, totalFiles, name)
		idfCache[name] = v
		return v
	}

	importsCache := make(map[string]map[string]struct{})
	importsOf := func(file string) map[string]struct{} {
		if v, ok := importsCache[file]; ok {
			return v
		}
		v := in.Table.ImportsInFile(file)
		importsCache[file] = v
		return v
	}

	// Step A + B: candidate edges via base-name defs lookup (symtab
	// already indexes by base name, so Step B's bridging is free).
	byRef := make(map[int][]symtab.Site) // refID -> candidate def sites
	var refByID = make(map[int]symtab.Site)

	for _, file := range g.files {
		for _, r := range in.Table.SitesIn(file) {
			if r.Kind != symtab.Ref {
				continue
			}
			defs := in.Table.LookupDefs(r.Name)
			var candidates []symtab.Site
			for _, d := range defs {
				if d.File == r.File {
					continue // self-file references elided by design
				}
				candidates = append(candidates, d)
			}
			if len(candidates) == 0 {
				continue
			}
			byRef[r.ID] = candidates
			refByID[r.ID] = r
		}
	}

	// Step C: strict-mode uniqueness.
	if in.Config.Strict {
		for refID, candidates := range byRef {
			if len(candidates) <= 1 {
				continue
			}
			r := refByID[refID]
			kept := strictDisambiguate(r, candidates, importsOf(r.File))
			if len(kept) != 1 {
				delete(byRef, refID)
				delete(refByID, refID)
				continue
			}
			byRef[refID] = kept
		}
	}

	// Step E: collision mitigation, applied per resolution regardless of
	// mode.
	for refID, candidates := range byRef {
		r := refByID[refID]
		qualified := r.Qualified()
		var kept []symtab.Site
		for _, d := range candidates {
			phys := physicalLink(importsOf(r.File), d.File)
			inter := g.history.Intersection(r.File, d.File)
			if qualified {
				if phys || inter >= 1 {
					kept = append(kept, d)
				}
			} else {
				if phys || inter >= 3 {
					kept = append(kept, d)
				}
			}
		}
		if len(kept) == 0 {
			delete(byRef, refID)
			delete(refByID, refID)
			continue
		}
		byRef[refID] = kept
	}

	// Step F: score-gap pruning among multiple surviving defs per ref.
	for refID, candidates := range byRef {
		if len(candidates) <= 1 {
			continue
		}
		r := refByID[refID]
		type scored struct {
			site  symtab.Site
			value float64
		}
		var scoredCands []scored
		maxV := 0.0
		for _, d := range candidates {
			v := idf(symtab.BaseName(r.Name)) * g.history.Jaccard(r.File, d.File)
			scoredCands = append(scoredCands, scored{d, v})
			if v > maxV {
				maxV = v
			}
		}
		var kept []symtab.Site
		threshold := maxV * scoreGapRatio
		for _, sc := range scoredCands {
			if maxV == 0 || sc.value >= threshold {
				kept = append(kept, sc.site)
			}
		}
		// Deterministic tie-break: when Step F leaves no scoring signal
		// at all (maxV == 0, every candidate equally un-evidenced), fall
		// back to lexicographically-first file path rather than keeping
		// every candidate — spec.md §9's unresolved open question;
		// documented in DESIGN.md.
		if maxV == 0 {
			sort.Slice(kept, func(i, j int) bool { return kept[i].File < kept[j].File })
			kept = kept[:1]
		}
		byRef[refID] = kept
	}

	// Final resolutions: build resolves_to adjacency and group by pair.
	pairResolutions := make(map[pairKey][]Resolution)
	for refID, candidates := range byRef {
		r := refByID[refID]
		name := symtab.BaseName(r.Name)
		for _, d := range candidates {
			g.resolvesTo[refID] = append(g.resolvesTo[refID], d.ID)
			g.resolvedBy[d.ID] = append(g.resolvedBy[d.ID], refID)
			pk := pairKey{r.File, d.File}
			pairResolutions[pk] = append(pairResolutions[pk], Resolution{RefID: refID, DefID: d.ID, Name: name})
		}
	}

	// Step D + G: confidence scoring and integer projection.
	for pk, resolutions := range pairResolutions {
		phys := 0.0
		if physicalLink(importsOf(pk.from), pk.to) {
			phys = 1.0
		}
		jac := g.history.Jaccard(pk.from, pk.to)
		var sum float64
		symbolSet := make(map[string]struct{})
		for _, res := range resolutions {
			w := idf(res.Name) * math.Max(jac, epsilon)
			sum += w
			symbolSet[res.Name] = struct{}{}
		}
		raw := sum + phys*100.0
		symbols := make([]string, 0, len(symbolSet))
		for s := range symbolSet {
			symbols = append(symbols, s)
		}
		sort.Strings(symbols)

		e := &Edge{
			From:           pk.from,
			To:             pk.to,
			Score:          int(math.Round(raw)),
			RawScore:       raw,
			RelatedSymbols: symbols,
			Resolutions:    resolutions,
		}
		g.edges[pk] = e
	}

	for pk, e := range g.edges {
		g.outAdj[pk.from] = append(g.outAdj[pk.from], e)
	}
	for from := range g.outAdj {
		sort.Slice(g.outAdj[from], func(i, j int) bool {
			a, b := g.outAdj[from][i], g.outAdj[from][j]
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			return a.To < b.To
		})
	}

	return g
}

// strictDisambiguate implements spec.md §4.5 Step C's two disambiguators,
// checked in order: (i) exactly one candidate in a file the ref's owning
// file explicitly imports by name, else (ii) exactly one candidate in the
// same directory as the ref's file. If neither narrows to exactly one,
// the ref is eliminated entirely (empty return).
func strictDisambiguate(r symtab.Site, candidates []symtab.Site, imports map[string]struct{}) []symtab.Site {
	var byImport []symtab.Site
	for _, d := range candidates {
		if physicalLink(imports, d.File) {
			byImport = append(byImport, d)
		}
	}
	if len(byImport) == 1 {
		return byImport
	}

	dir := filepath.Dir(r.File)
	var byDir []symtab.Site
	for _, d := range candidates {
		if filepath.Dir(d.File) == dir {
			byDir = append(byDir, d)
		}
	}
	if len(byDir) == 1 {
		return byDir
	}

	return nil
}

// physicalLink reports whether target's file or package name appears in
// imports, matching by base name (spec.md §4.5 Step D).
func physicalLink(imports map[string]struct{}, target string) bool {
	if len(imports) == 0 {
		return false
	}
	base := filepath.Base(target)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if _, ok := imports[symtab.BaseName(stem)]; ok {
		return true
	}
	dir := filepath.Base(filepath.Dir(target))
	if dir != "" && dir != "." {
		if _, ok := imports[symtab.BaseName(dir)]; ok {
			return true
		}
	}
	return false
}

// computeIDF returns log(1 + N/(1+df(name))), spec.md §4.4.
func computeIDF(table *symtab.Table, totalFiles int, name string) float64 {
	sites := table.LookupSites(name)
	files := make(map[string]struct{})
	for _, s := range sites {
		files[s.File] = struct{}{}
	}
	df := len(files)
	return math.Log(1 + float64(totalFiles)/float64(1+df))
}
