package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"relgraph/internal/config"
	"relgraph/internal/engine"
)

func TestRunRebuildsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.py"), []byte("def foo():\n    pass\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.RepoPath = dir
	cfg.CacheEnabled = false

	w, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	results := make(chan *engine.Result, 4)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	go func() {
		_ = w.Run(ctx, func(res *engine.Result, err error) {
			if err == nil {
				select {
				case results <- res:
				default:
				}
			}
		})
	}()

	select {
	case <-results:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for initial build")
	}

	if err := os.WriteFile(filepath.Join(dir, "b.py"), []byte("def bar():\n    pass\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case res := <-results:
		if len(res.Graph.Files()) < 1 {
			t.Fatal("expected rebuilt graph to have files")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for rebuild after file change")
	}
}
