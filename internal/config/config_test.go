package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Strict {
		t.Errorf("expected strict=false default")
	}
	if cfg.CommitSizeLimitRatio != 0.2 {
		t.Errorf("CommitSizeLimitRatio = %v, want 0.2", cfg.CommitSizeLimitRatio)
	}
}

func TestLoadFromTOML(t *testing.T) {
	dir := t.TempDir()
	content := "strict = true\ndepth = 500\n"
	if err := os.WriteFile(filepath.Join(dir, ".relgraph.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Strict {
		t.Errorf("expected strict=true from file")
	}
	if cfg.Depth != 500 {
		t.Errorf("Depth = %d, want 500", cfg.Depth)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RELGRAPH_STRICT", "true")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Strict {
		t.Errorf("expected env var to override strict default")
	}
}

func TestWriteDefaultConfigRoundTrips(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteDefaultConfig(dir)
	if err != nil {
		t.Fatalf("WriteDefaultConfig: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("path = %q, want dir %q", path, dir)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load after write: %v", err)
	}
	if cfg.CommitSizeLimitRatio != 0.2 {
		t.Errorf("CommitSizeLimitRatio = %v, want 0.2 (round-tripped default)", cfg.CommitSizeLimitRatio)
	}
	if cfg.CacheMemSize != 512 {
		t.Errorf("CacheMemSize = %d, want 512", cfg.CacheMemSize)
	}
}

func TestWriteDefaultConfigRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()

	if _, err := WriteDefaultConfig(dir); err != nil {
		t.Fatalf("first WriteDefaultConfig: %v", err)
	}
	if _, err := WriteDefaultConfig(dir); err == nil {
		t.Fatal("expected second WriteDefaultConfig to fail, file already exists")
	}
}
