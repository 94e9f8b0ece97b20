package diffexport

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"relgraph/internal/config"
)

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v: %s", args, err, out)
	}
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestDiffAddedImport covers spec.md §8 scenario 5: a newly added import
// in one revision yields an ADDED edge in the diff.
func TestDiffAddedImport(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	runGit(t, dir, "init", "-q")

	writeFile(t, dir, "x.py", "def helper():\n    pass\n")
	writeFile(t, dir, "main.py", "def run():\n    pass\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "base")

	writeFile(t, dir, "main.py", "import x\n\ndef run():\n    x.helper()\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "add import")

	cfg := config.Default()
	cfg.RepoPath = dir
	cfg.CacheEnabled = false

	diffs, err := Diff(context.Background(), cfg, "HEAD~1", "HEAD", nil)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	var found bool
	for _, d := range diffs {
		if d.File == "main.py" {
			for _, a := range d.Added {
				if a == "x.py" {
					found = true
				}
			}
		}
	}
	if !found {
		t.Fatalf("expected main.py -> x.py in added set, got %+v", diffs)
	}

	for _, d := range diffs {
		if d.File == "main.py" {
			if len(d.ChangedLines) == 0 {
				t.Errorf("expected main.py to report changed_lines, got none")
			}
		}
	}
}
