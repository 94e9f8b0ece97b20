// Package obsidian exports a built Graph as an Obsidian vault: one
// Markdown note per analyzed file, with a YAML front-matter block
// (symbols, rank) and a body of [[wikilink]]s to related files
// (SPEC_FULL.md §6). rank is internal/rank's PageRank-flavored centrality
// over files_link edges, conceptually inherited from the teacher's own
// graph.Rank but recomputed over the new graph's integer edge scores.
package obsidian

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"relgraph/internal/discover"
	"relgraph/internal/graph"
	"relgraph/internal/rank"
)

// frontMatter is the YAML header written atop each note.
type frontMatter struct {
	Symbols []string `yaml:"symbols"`
	Rank    float64  `yaml:"rank"`
	IsTest  bool     `yaml:"is_test,omitempty"`
}

// Export writes one note per g.Files() entry under vaultDir, named after
// the file's repo-relative path with "/" replaced by "__" (Obsidian
// vaults are flat-friendly; this keeps notes collocated regardless of the
// source tree's directory depth) and a ".md" suffix.
func Export(vaultDir string, g *graph.Graph) error {
	if err := os.MkdirAll(vaultDir, 0o755); err != nil {
		return fmt.Errorf("obsidian: creating vault dir: %w", err)
	}

	ranks := make(map[string]float64, len(g.Files()))
	for _, fr := range rank.Compute(g) {
		ranks[fr.File] = fr.Rank
	}

	for _, file := range g.Files() {
		if err := writeNote(vaultDir, g, file, ranks[file]); err != nil {
			return err
		}
	}
	return nil
}

func noteName(file string) string {
	return strings.ReplaceAll(file, "/", "__") + ".md"
}

func writeNote(vaultDir string, g *graph.Graph, file string, r float64) error {
	meta := g.FileMetadata(file)
	symbolSet := make(map[string]struct{})
	for _, s := range meta.Symbols {
		symbolSet[s.Name] = struct{}{}
	}
	symbols := make([]string, 0, len(symbolSet))
	for s := range symbolSet {
		symbols = append(symbols, s)
	}

	fm := frontMatter{Symbols: symbols, Rank: r, IsTest: discover.IsTestFile(file)}
	header, err := yaml.Marshal(fm)
	if err != nil {
		return fmt.Errorf("obsidian: marshaling front matter for %s: %w", file, err)
	}

	var body strings.Builder
	fmt.Fprintf(&body, "---\n%s---\n\n# %s\n", header, file)

	related := g.RelatedFiles(file)
	if len(related) > 0 {
		body.WriteString("\n## Related\n\n")
		for _, r := range related {
			fmt.Fprintf(&body, "- [[%s]] (score %d): %s\n", noteStem(r.Name), r.Score, strings.Join(r.RelatedSymbols, ", "))
		}
	}

	path := filepath.Join(vaultDir, noteName(file))
	return os.WriteFile(path, []byte(body.String()), 0o644)
}

// noteStem returns the wikilink target for file, sans the ".md" suffix —
// Obsidian resolves [[name]] against a note's base filename.
func noteStem(file string) string {
	return strings.TrimSuffix(noteName(file), ".md")
}
