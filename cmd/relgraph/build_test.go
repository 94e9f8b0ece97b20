package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunBuildHumanOutput(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.py", "import b\n\ndef use():\n    b.foo()\n")
	writeTestFile(t, dir, "b.py", "def foo():\n    pass\n")

	origRepo, origFormat := repoPathFlag, outputFormat
	repoPathFlag = dir
	outputFormat = "human"
	defer func() { repoPathFlag, outputFormat = origRepo, origFormat }()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	origStdout := os.Stdout
	os.Stdout = w
	if err := runBuild(nil, nil); err != nil {
		os.Stdout = origStdout
		t.Fatalf("runBuild: %v", err)
	}
	os.Stdout = origStdout
	w.Close()
	out, _ := io.ReadAll(r)

	if !strings.Contains(string(out), "analyzed 2 files") {
		t.Fatalf("unexpected output: %q", out)
	}
}
