// Package diffexport computes the set of file edges added and removed
// between the graphs of two git revisions (spec.md §6 "Diff output"),
// grouped per anchor file the way spec.md's JSON form specifies:
// {file, added, deleted, kept}. It also parses the textual git diff
// between the two revisions (the way the pack's own
// SimplyLiz-CodeMCP/internal/diff/gitdiff.go does, via go-diff rather
// than a hand-rolled unified-diff parser) to annotate which anchor
// files were themselves touched by source edits, for impact-analysis
// callers that want to distinguish "this file's edges changed because
// its source changed" from "its edges changed only because the graph
// around it shifted".
package diffexport

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"

	"relgraph/internal/config"
	"relgraph/internal/engine"
	"relgraph/internal/rlog"
)

// FileDiff is one anchor file's edge changes between the two revisions.
type FileDiff struct {
	File         string   `json:"file"`
	Added        []string `json:"added"`
	Deleted      []string `json:"deleted"`
	Kept         []string `json:"kept"`
	ChangedLines []int    `json:"changed_lines,omitempty"`
}

// Diff builds the graph at revA and revB (each via a detached git
// worktree checkout, torn down afterward) and returns the per-file
// edge diff between them, sorted by file path.
func Diff(ctx context.Context, cfg config.Config, revA, revB string, log *rlog.Logger) ([]FileDiff, error) {
	if log == nil {
		log = rlog.Default()
	}

	resA, cleanupA, err := buildAtRevision(ctx, cfg, revA, log)
	if err != nil {
		return nil, fmt.Errorf("building graph at %s: %w", revA, err)
	}
	defer cleanupA()

	resB, cleanupB, err := buildAtRevision(ctx, cfg, revB, log)
	if err != nil {
		return nil, fmt.Errorf("building graph at %s: %w", revB, err)
	}
	defer cleanupB()

	edgesA := edgeTargets(resA)
	edgesB := edgeTargets(resB)

	changedLines, err := changedLinesBetween(ctx, cfg.RepoPath, revA, revB)
	if err != nil {
		log.Warn("diffexport: git diff parse failed, omitting changed_lines", rlog.Field{Key: "error", Value: err.Error()})
		changedLines = nil
	}

	files := make(map[string]struct{})
	for f := range edgesA {
		files[f] = struct{}{}
	}
	for f := range edgesB {
		files[f] = struct{}{}
	}

	var out []FileDiff
	for f := range files {
		a, b := edgesA[f], edgesB[f]
		d := FileDiff{File: f, ChangedLines: changedLines[f]}
		for to := range b {
			if _, ok := a[to]; ok {
				d.Kept = append(d.Kept, to)
			} else {
				d.Added = append(d.Added, to)
			}
		}
		for to := range a {
			if _, ok := b[to]; !ok {
				d.Deleted = append(d.Deleted, to)
			}
		}
		if len(d.Added) == 0 && len(d.Deleted) == 0 && len(d.Kept) == 0 {
			continue
		}
		sort.Strings(d.Added)
		sort.Strings(d.Deleted)
		sort.Strings(d.Kept)
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out, nil
}

// changedLinesBetween runs `git diff` between the two revisions and
// parses the unified diff with go-diff (the same library and parsing
// shape as SimplyLiz-CodeMCP's internal/diff/gitdiff.go) to recover the
// added/modified line numbers per new-side path, keyed by repo-relative
// path with the "b/" prefix stripped.
func changedLinesBetween(ctx context.Context, repoPath, revA, revB string) (map[string][]int, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "diff", "--unified=0", revA, revB)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff %s..%s: %w", revA, revB, err)
	}
	if len(strings.TrimSpace(string(out))) == 0 {
		return nil, nil
	}

	fileDiffs, err := godiff.ParseMultiFileDiff(out)
	if err != nil {
		return nil, fmt.Errorf("parsing git diff: %w", err)
	}

	result := make(map[string][]int, len(fileDiffs))
	for _, fd := range fileDiffs {
		path := cleanDiffPath(fd.NewName)
		if path == "" {
			continue
		}
		var lines []int
		for _, hunk := range fd.Hunks {
			newLine := int(hunk.NewStartLine)
			for _, raw := range strings.Split(string(hunk.Body), "\n") {
				if raw == "" {
					continue
				}
				switch raw[0] {
				case '+':
					lines = append(lines, newLine)
					newLine++
				case ' ':
					newLine++
				case '\\':
				}
			}
		}
		if len(lines) > 0 {
			sort.Ints(lines)
			result[path] = lines
		}
	}
	return result, nil
}

func cleanDiffPath(name string) string {
	if name == "" || name == "/dev/null" {
		return ""
	}
	if strings.HasPrefix(name, "a/") || strings.HasPrefix(name, "b/") {
		return name[2:]
	}
	return name
}

func edgeTargets(res *engine.Result) map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{})
	for _, e := range res.Graph.Edges() {
		if out[e.From] == nil {
			out[e.From] = make(map[string]struct{})
		}
		out[e.From][e.To] = struct{}{}
	}
	return out
}

// buildAtRevision checks rev out into a throwaway detached worktree and
// runs engine.Build over it, so history-derived edges at that revision
// reflect commits up to (and not after) rev.
func buildAtRevision(ctx context.Context, cfg config.Config, rev string, log *rlog.Logger) (*engine.Result, func(), error) {
	dir, err := os.MkdirTemp("", "relgraph-diff-*")
	if err != nil {
		return nil, func() {}, err
	}
	cleanup := func() {
		_ = exec.CommandContext(context.Background(), "git", "-C", cfg.RepoPath, "worktree", "remove", "--force", dir).Run()
		_ = os.RemoveAll(dir)
	}

	addCmd := exec.CommandContext(ctx, "git", "-C", cfg.RepoPath, "worktree", "add", "--detach", dir, rev)
	if out, err := addCmd.CombinedOutput(); err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("git worktree add %s: %w: %s", rev, err, out)
	}

	revCfg := cfg
	revCfg.RepoPath = dir
	res, err := engine.Build(ctx, revCfg, log)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return res, cleanup, nil
}
