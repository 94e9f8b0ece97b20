// Package history walks git commits to derive per-file touch sets and
// pairwise co-change statistics (spec.md §4.4), shelling out to git the
// way the pack's own git backends do (SimplyLiz-CodeMCP's
// internal/backends/git) rather than embedding a git library.
package history

import (
	"context"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"relgraph/internal/errs"
	"relgraph/internal/rlog"
)

const recordSep = "\x01"

// headerPrefix marks a commit-header line in the git log output below, so
// it can't be confused with a name-status line (whose first field is
// always a status code like "M", "A", "D", or "R100").
const headerPrefix = "commit" + recordSep

// Config configures one History Analyzer run (spec.md §4.4 / §6).
type Config struct {
	MaxCommits           int // 0 = full history
	CommitSizeLimitRatio float64
	FollowRenames        bool
	ExcludeFileRegex     *regexp.Regexp
	ExcludeAuthorRegex   *regexp.Regexp
}

// Commit is one walked commit's metadata and touch set.
type Commit struct {
	Hash   string
	Author string
	Date   string
	Files  map[string]struct{}
}

// Result is the analyzer's output: per-file commit sets and the dense
// co-change matrix over pairs that ever co-touched.
type Result struct {
	CommitsOfFile map[string]map[string]struct{}
	Cochange      map[PairKey]int
	FatCommits    int
	TotalCommits  int
}

// PairKey is an unordered file pair, normalized so (a,b) == (b,a).
type PairKey struct{ A, B string }

func pairKey(a, b string) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{a, b}
}

// Jaccard returns |A∩B| / |A∪B| over the two files' commit sets, 0 if
// either side never appeared (spec.md §4.4).
func (r *Result) Jaccard(a, b string) float64 {
	ca, cb := r.CommitsOfFile[a], r.CommitsOfFile[b]
	if len(ca) == 0 || len(cb) == 0 {
		return 0
	}
	inter := intersectionSize(ca, cb)
	if inter == 0 {
		return 0
	}
	union := len(ca) + len(cb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Intersection returns |commits_of_file[a] ∩ commits_of_file[b]|.
func (r *Result) Intersection(a, b string) int {
	return intersectionSize(r.CommitsOfFile[a], r.CommitsOfFile[b])
}

func intersectionSize(a, b map[string]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

// Analyzer walks a repository's git history.
type Analyzer struct {
	repoPath string
	cfg      Config
	errs     *errs.Counter
	log      *rlog.Logger
}

// New returns an Analyzer rooted at repoPath.
func New(repoPath string, cfg Config, counter *errs.Counter, log *rlog.Logger) *Analyzer {
	return &Analyzer{repoPath: repoPath, cfg: cfg, errs: counter, log: log}
}

// Analyze walks commits in first-parent order up to cfg.MaxCommits,
// skipping fat commits whose touch-set exceeds
// cfg.CommitSizeLimitRatio*totalTrackedFiles (spec.md §4.4), and returns
// the per-file commit sets and dense co-change matrix.
//
// A failure of the git walk is recorded as an errs.HistoryError and the
// analyzer returns an empty Result rather than failing the whole run. No
// partial history is kept: commits git printed before failing are
// discarded, so every file's jaccard is 0 for that run.
func (a *Analyzer) Analyze(ctx context.Context, totalTrackedFiles int) (*Result, error) {
	commits, err := a.walkCommits(ctx)
	if err != nil {
		if a.errs != nil {
			a.errs.Record(errs.HistoryError)
		}
		if a.log != nil {
			a.log.Warn("history walk failed; degrading to empty history", rlog.F("error", err.Error()))
		}
		return &Result{CommitsOfFile: map[string]map[string]struct{}{}, Cochange: map[PairKey]int{}}, nil
	}

	res := &Result{
		CommitsOfFile: make(map[string]map[string]struct{}),
		Cochange:      make(map[PairKey]int),
		TotalCommits:  len(commits),
	}

	limitSize := -1
	if a.cfg.CommitSizeLimitRatio > 0 && totalTrackedFiles > 0 {
		limitSize = int(a.cfg.CommitSizeLimitRatio * float64(totalTrackedFiles))
	}

	for _, c := range commits {
		if limitSize >= 0 && len(c.Files) > limitSize {
			res.FatCommits++
			continue // fat-commit noise filter: contributes nothing to cochange
		}
		files := make([]string, 0, len(c.Files))
		for f := range c.Files {
			if res.CommitsOfFile[f] == nil {
				res.CommitsOfFile[f] = make(map[string]struct{})
			}
			res.CommitsOfFile[f][c.Hash] = struct{}{}
			files = append(files, f)
		}
		for i := 0; i < len(files); i++ {
			for j := i + 1; j < len(files); j++ {
				k := pairKey(files[i], files[j])
				res.Cochange[k]++
			}
		}
	}

	return res, nil
}

func (a *Analyzer) walkCommits(ctx context.Context) ([]Commit, error) {
	args := []string{
		"log",
		"--first-parent",
		"--format=" + headerPrefix + "%H" + recordSep + "%an" + recordSep + "%aI",
		"--name-status",
	}
	if a.cfg.FollowRenames {
		args = append(args, "-M")
	}
	if a.cfg.MaxCommits > 0 {
		args = append(args, "-n", strconv.Itoa(a.cfg.MaxCommits))
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = a.repoPath
	out, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	var commits []Commit
	var cur *Commit

	for _, line := range strings.Split(string(out), "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, headerPrefix) {
			if cur != nil {
				commits = append(commits, *cur)
			}
			parts := strings.Split(strings.TrimPrefix(line, headerPrefix), recordSep)
			if len(parts) != 3 {
				cur = nil
				continue
			}
			if a.cfg.ExcludeAuthorRegex != nil && a.cfg.ExcludeAuthorRegex.MatchString(parts[1]) {
				cur = nil
				continue
			}
			cur = &Commit{Hash: parts[0], Author: parts[1], Date: parts[2], Files: make(map[string]struct{})}
			continue
		}
		if cur == nil {
			continue
		}
		a.addNameStatusLine(cur, line)
	}
	if cur != nil {
		commits = append(commits, *cur)
	}
	return commits, nil
}

// addNameStatusLine parses one "--name-status" line: "M\tpath",
// "A\tpath", "D\tpath", or "R100\told\tnew" for a rename, which
// collapses to the new name (spec.md §4.4).
func (a *Analyzer) addNameStatusLine(c *Commit, line string) {
	fields := strings.Split(line, "\t")
	if len(fields) < 2 {
		return
	}
	status := fields[0]
	var path string
	if strings.HasPrefix(status, "R") || strings.HasPrefix(status, "C") {
		if len(fields) < 3 {
			return
		}
		path = fields[2]
	} else {
		path = fields[1]
	}
	if a.cfg.ExcludeFileRegex != nil && a.cfg.ExcludeFileRegex.MatchString(path) {
		return
	}
	c.Files[path] = struct{}{}
}
