package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"relgraph/internal/config"
	"relgraph/internal/engine"
)

func buildTestResult(t *testing.T) *engine.Result {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "import b\n\ndef use():\n    b.foo()\n")
	writeFile(t, dir, "b.py", "def foo():\n    pass\n")

	cfg := config.Default()
	cfg.RepoPath = dir
	cfg.CacheEnabled = false

	res, err := engine.Build(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return res
}

func TestHandleFiles(t *testing.T) {
	s := New(buildTestResult(t), nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct{ Files []string }
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Files) != 2 {
		t.Fatalf("expected 2 files, got %v", body.Files)
	}
}

func TestHandleFileMetadataUnknown(t *testing.T) {
	s := New(buildTestResult(t), nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/file/metadata/nope.py", nil)
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleFileRelatedNestedPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pkg/a.py", "import pkg.b\n\ndef use():\n    pkg.b.foo()\n")
	writeFile(t, dir, "pkg/b.py", "def foo():\n    pass\n")

	cfg := config.Default()
	cfg.RepoPath = dir
	cfg.CacheEnabled = false
	res, err := engine.Build(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	s := New(res, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/file/related/pkg/a.py", nil)
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHandlePairsMissingParams(t *testing.T) {
	s := New(buildTestResult(t), nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/pairs", nil)
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRequestIDHeaderStampedAndEchoed(t *testing.T) {
	s := New(buildTestResult(t), nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	s.Router().ServeHTTP(rec, req)

	id := rec.Header().Get(requestIDHeader)
	if id == "" {
		t.Fatal("expected X-Request-Id to be set on the response")
	}

	rec2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/files", nil)
	req2.Header.Set(requestIDHeader, "caller-supplied-id")
	s.Router().ServeHTTP(rec2, req2)

	if got := rec2.Header().Get(requestIDHeader); got != "caller-supplied-id" {
		t.Errorf("X-Request-Id = %q, want echo of caller-supplied value", got)
	}
}

func TestHandleMetrics(t *testing.T) {
	s := New(buildTestResult(t), nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
