// Package engine orchestrates the five core components — rule registry,
// extractor, symbol table, history analyzer, and graph engine — into one
// Build call, the way the teacher's main.go strings discover, parse, and
// graph together, generalized to a context-aware errgroup fan-out
// (SPEC_FULL.md §5) instead of a hand-rolled WaitGroup+channel pool.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"relgraph/internal/cachefs"
	"relgraph/internal/config"
	"relgraph/internal/discover"
	"relgraph/internal/errs"
	"relgraph/internal/extract"
	"relgraph/internal/graph"
	"relgraph/internal/history"
	"relgraph/internal/obsmetrics"
	"relgraph/internal/rlog"
	"relgraph/internal/rule"
	"relgraph/internal/symtab"
)

// Result bundles everything a caller might want from one construction
// run: the frozen graph, the underlying symbol table (for raw queries
// the graph's surface doesn't cover), and the discovered file list.
type Result struct {
	Graph      *graph.Graph
	Table      *symtab.Table
	Files      []discover.FileEntry
	CacheStats cachefs.Stats
}

// Build runs file discovery, parallel extraction, history analysis, and
// graph construction over cfg.RepoPath, returning the frozen Result.
// Errors from individual files or the git walk are recorded in errCounts
// and do not fail the run (spec.md §7); Build only returns an error for
// conditions that make any output meaningless (no files found, discovery
// itself failing) or when ctx is cancelled during extraction.
func Build(ctx context.Context, cfg config.Config, log *rlog.Logger) (*Result, error) {
	if log == nil {
		log = rlog.Default()
	}
	errCounts := &errs.Counter{}
	started := time.Now()

	reg := rule.Default()
	discoverStart := time.Now()
	files, err := discover.Files(cfg.RepoPath, reg, cfg.Languages)
	obsmetrics.RecordPhase("discover", time.Since(discoverStart))
	if err != nil {
		obsmetrics.RecordBuild("error", time.Since(started))
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		obsmetrics.RecordBuild("error", time.Since(started))
		return nil, fmt.Errorf("no parseable files found under %s", cfg.RepoPath)
	}
	obsmetrics.SetFilesDiscovered(len(files))

	cache := cachefs.New(cfg.CacheDir, cfg.CacheMemSize, errCounts, log)
	if !cfg.CacheEnabled {
		cache = cachefs.New("", cfg.CacheMemSize, errCounts, log)
	}
	extractor := extract.New(cache)
	table := symtab.New()

	// Extraction and history analysis share no state — the table is built
	// from file contents, the history.Result from the git log — so they
	// run concurrently via errgroup, the same fan-out shape extractFiles
	// itself uses internally, rather than paying for both phases back to
	// back (spec.md's concurrency requirement for the two passes).
	var hist *history.Result
	extractStart := time.Now()
	historyStart := time.Now()
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		err := extractFiles(egCtx, cfg.RepoPath, files, reg, extractor, table, errCounts, log)
		obsmetrics.RecordPhase("extract", time.Since(extractStart))
		if err != nil {
			return fmt.Errorf("extraction: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		h, err := runHistory(egCtx, cfg, len(files), errCounts, log)
		obsmetrics.RecordPhase("history", time.Since(historyStart))
		if err != nil {
			return err
		}
		hist = h
		return nil
	})
	if err := eg.Wait(); err != nil {
		obsmetrics.RecordBuild("error", time.Since(started))
		return nil, err
	}
	table.Freeze()

	graphStart := time.Now()
	g := graph.Build(graph.Inputs{
		Table:     table,
		History:   hist,
		Config:    graph.Config{Strict: cfg.Strict},
		ErrCounts: errCounts,
	})
	obsmetrics.RecordPhase("graph", time.Since(graphStart))
	obsmetrics.SetEdgesBuilt(len(g.Edges()))
	obsmetrics.RecordErrors(errCounts.Snapshot())

	cacheStats := cache.Stats()
	obsmetrics.AddCacheLookups("hit", cacheStats.Hits)
	obsmetrics.AddCacheLookups("miss", cacheStats.Misses)
	obsmetrics.RecordBuild("success", time.Since(started))

	return &Result{Graph: g, Table: table, Files: files, CacheStats: cacheStats}, nil
}

// extractFiles fans out extraction across GOMAXPROCS workers, each
// reading its own shard of the file list off a shared channel of
// file entries — the same worker-pool shape as the teacher's
// parseFilesConcurrent, but driven by errgroup so a context
// cancellation stops remaining work at a file boundary instead of
// draining the whole queue.
func extractFiles(ctx context.Context, root string, files []discover.FileEntry, reg *rule.Registry, extractor *extract.Extractor, table *symtab.Table, errCounts *errs.Counter, log *rlog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	work := make(chan discover.FileEntry, len(files))
	for _, f := range files {
		work <- f
	}
	close(work)

	for i := 0; i < numWorkers(len(files)); i++ {
		g.Go(func() error {
			for f := range work {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				extractOne(ctx, root, f, reg, extractor, table, errCounts, log)
			}
			return nil
		})
	}
	return g.Wait()
}

func extractOne(ctx context.Context, root string, f discover.FileEntry, reg *rule.Registry, extractor *extract.Extractor, table *symtab.Table, errCounts *errs.Counter, log *rlog.Logger) {
	r := reg.RuleForName(f.Language)
	if r == nil {
		errCounts.Record(errs.UnsupportedFile)
		return
	}

	abs := filepath.Join(root, f.Path)
	source, err := os.ReadFile(abs)
	if err != nil {
		errCounts.Record(errs.IOError)
		log.Warn("read failed", rlog.F("path", f.Path), rlog.F("error", err.Error()))
		return
	}

	res, err := extractor.Extract(ctx, r, f.Path, source)
	if err != nil {
		errCounts.Record(errs.ParseError)
		log.Warn("extract failed", rlog.F("path", f.Path), rlog.F("error", err.Error()))
		return
	}

	for _, s := range res.Sites {
		table.AddSite(s)
	}
	for _, imp := range res.Imports {
		table.AddImport(f.Path, imp)
	}
}

func numWorkers(n int) int {
	w := runtime.GOMAXPROCS(0)
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}

func runHistory(ctx context.Context, cfg config.Config, totalFiles int, errCounts *errs.Counter, log *rlog.Logger) (*history.Result, error) {
	hcfg := history.Config{
		MaxCommits:           cfg.Depth,
		CommitSizeLimitRatio: cfg.CommitSizeLimitRatio,
		FollowRenames:        cfg.FollowRenames,
	}
	if cfg.ExcludeFileRegex != "" {
		re, err := regexp.Compile(cfg.ExcludeFileRegex)
		if err != nil {
			errCounts.Record(errs.ConfigError)
		} else {
			hcfg.ExcludeFileRegex = re
		}
	}
	if cfg.ExcludeAuthorRegex != "" {
		re, err := regexp.Compile(cfg.ExcludeAuthorRegex)
		if err != nil {
			errCounts.Record(errs.ConfigError)
		} else {
			hcfg.ExcludeAuthorRegex = re
		}
	}

	analyzer := history.New(cfg.RepoPath, hcfg, errCounts, log)
	return analyzer.Analyze(ctx, totalFiles)
}
