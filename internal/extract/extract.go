// Package extract runs a rule's query against one parsed file and emits
// typed symbol sites in source order (spec.md §4.2).
package extract

import (
	"context"
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"relgraph/internal/cachefs"
	"relgraph/internal/rule"
	"relgraph/internal/symtab"
)

// Extractor is reentrant and holds no shared mutable state between
// invocations other than an optional cache front, matching spec.md §4.2's
// "safe to invoke on many files in parallel" requirement: every call
// creates its own parser (smacker/go-tree-sitter parsers are not
// goroutine-safe) and query cursor.
type Extractor struct {
	cache *cachefs.Cache
}

// New returns an Extractor. cache may be nil to disable caching entirely.
func New(cache *cachefs.Cache) *Extractor {
	return &Extractor{cache: cache}
}

// Result is one file's extraction output.
type Result struct {
	Sites   []symtab.Site
	Imports []string
}

// Extract parses source under r's grammar and returns its DEF and REF
// sites in source order, plus the distinct names captured by the import
// grammar (after r.ImportName). Import captures are not returned as
// sites. path is recorded on every site as Site.File.
func (e *Extractor) Extract(ctx context.Context, r *rule.Rule, path string, source []byte) (Result, error) {
	if len(source) == 0 {
		return Result{}, nil
	}

	if entry, ok := e.cache.Get(r.Name, source); ok {
		sites := make([]symtab.Site, len(entry.Sites))
		for i, s := range entry.Sites {
			s.File = path
			sites[i] = s
		}
		return Result{Sites: sites, Imports: entry.Imports}, nil
	}

	query, err := r.Query()
	if err != nil {
		return Result{}, fmt.Errorf("extract %s: %w", path, err)
	}

	parser := r.NewParser()
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return Result{}, fmt.Errorf("extract %s: parse: %w", path, err)
	}
	if tree == nil {
		return Result{}, fmt.Errorf("extract %s: parse: nil tree", path)
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	type spanKey struct{ start, end uint32 }
	bestIdx := make(map[spanKey]int)
	var sites []symtab.Site
	var imports []string
	seenImport := make(map[string]struct{})

	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, source)

		var nameNode *sitter.Node
		var capture string
		var kindNode *sitter.Node

		for _, c := range match.Captures {
			cname := query.CaptureNameForId(c.Index)
			if cname == "name" {
				nameNode = c.Node
			} else if _, ok := rule.CaptureKinds[cname]; ok {
				capture = cname
				kindNode = c.Node
			}
		}
		if nameNode == nil || capture == "" || kindNode == nil {
			continue
		}

		kind := rule.CaptureKinds[capture]
		raw := nodeText(nameNode, source)

		if kind == symtab.Import {
			name := raw
			if r.ImportName != nil {
				name = r.ImportName(raw)
			}
			if name == "" {
				continue
			}
			if _, dup := seenImport[name]; !dup {
				seenImport[name] = struct{}{}
				imports = append(imports, name)
			}
			continue
		}

		if r.Blocked(raw) {
			continue
		}

		container := ""
		if r.Container != nil {
			container = r.Container(kindNode, capture, source)
		}

		site := symtab.Site{
			Name:      raw,
			Container: container,
			File:      path,
			StartByte: nameNode.StartByte(),
			EndByte:   nameNode.EndByte(),
			Line:      int(nameNode.StartPoint().Row) + 1,
			Kind:      kind,
		}

		key := spanKey{site.StartByte, site.EndByte}
		if idx, dup := bestIdx[key]; dup {
			if kindPriority(kind) > kindPriority(sites[idx].Kind) {
				sites[idx] = site
			}
			continue
		}
		bestIdx[key] = len(sites)
		sites = append(sites, site)
	}

	sort.Slice(sites, func(i, j int) bool { return sites[i].StartByte < sites[j].StartByte })

	e.cache.Put(r.Name, source, sites, imports)

	return Result{Sites: sites, Imports: imports}, nil
}

func kindPriority(k symtab.Kind) int {
	switch k {
	case symtab.Import:
		return 2
	case symtab.Def:
		return 1
	default:
		return 0
	}
}

func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
