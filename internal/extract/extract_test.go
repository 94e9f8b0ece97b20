package extract

import (
	"context"
	"testing"

	"relgraph/internal/rule"
	"relgraph/internal/symtab"
)

func TestExtractGoFindsDefAndRef(t *testing.T) {
	src := []byte(`package main

func foo() {}

func bar() {
	foo()
}
`)
	r := rule.Default().RuleForName("go")
	if r == nil {
		t.Fatal("expected a registered go rule")
	}

	e := New(nil)
	res, err := e.Extract(context.Background(), r, "a.go", src)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	var defs, refs int
	for _, s := range res.Sites {
		if s.Name != "foo" {
			continue
		}
		switch s.Kind {
		case symtab.Def:
			defs++
		case symtab.Ref:
			refs++
		}
	}
	if defs != 1 {
		t.Errorf("expected 1 def site for foo, got %d", defs)
	}
	if refs < 1 {
		t.Errorf("expected at least 1 ref site for foo, got %d", refs)
	}
}

func TestExtractGoExcludesBlankIdentifier(t *testing.T) {
	src := []byte(`package main

func foo() (int, error) {
	_, err := bar()
	return 0, err
}

func bar() (int, error) { return 0, nil }
`)
	r := rule.Default().RuleForName("go")
	e := New(nil)
	res, err := e.Extract(context.Background(), r, "a.go", src)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for _, s := range res.Sites {
		if s.Name == "_" {
			t.Fatalf("blank identifier should be excluded, got site %+v", s)
		}
	}
}

func TestExtractDeduplicatesBySpanWithPriority(t *testing.T) {
	src := []byte(`package main

import "fmt"

func main() {
	fmt.Println("hi")
}
`)
	r := rule.Default().RuleForName("go")
	e := New(nil)
	res, err := e.Extract(context.Background(), r, "a.go", src)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Imports) != 1 || res.Imports[0] != "fmt" {
		t.Fatalf("expected import [fmt], got %v", res.Imports)
	}

	// "main" is captured both as a function definition and as a plain
	// identifier reference at the same span; only the DEF survives.
	var mainSites []symtab.Site
	for _, s := range res.Sites {
		if s.Name == "main" {
			mainSites = append(mainSites, s)
		}
	}
	if len(mainSites) != 1 || mainSites[0].Kind != symtab.Def {
		t.Fatalf("expected a single def site for main after span dedup, got %+v", mainSites)
	}
}

func TestExtractGoQualifiedCallGetsContainer(t *testing.T) {
	src := []byte(`package main

import "a/pkg"

func main() {
	pkg.Foo()
}
`)
	r := rule.Default().RuleForName("go")
	e := New(nil)
	res, err := e.Extract(context.Background(), r, "a.go", src)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	var got *symtab.Site
	for i, s := range res.Sites {
		if s.Kind == symtab.Ref && s.Name == "Foo" {
			got = &res.Sites[i]
		}
	}
	if got == nil {
		t.Fatal("expected a ref site for Foo")
	}
	if got.Container != "pkg" {
		t.Errorf("expected Container %q, got %q", "pkg", got.Container)
	}
	if !got.Qualified() {
		t.Error("expected qualified call site to report Qualified() true")
	}
	if got.QualifiedName() != "pkg.Foo" {
		t.Errorf("expected QualifiedName %q, got %q", "pkg.Foo", got.QualifiedName())
	}
}

func TestExtractRustScopedCallGetsContainer(t *testing.T) {
	src := []byte(`mod util;

fn main() {
    util::foo();
}
`)
	r := rule.Default().RuleForName("rust")
	if r == nil {
		t.Fatal("expected a registered rust rule")
	}
	e := New(nil)
	res, err := e.Extract(context.Background(), r, "a.rs", src)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	var got *symtab.Site
	for i, s := range res.Sites {
		if s.Kind == symtab.Ref && s.Name == "foo" {
			got = &res.Sites[i]
		}
	}
	if got == nil {
		t.Fatal("expected a ref site for foo")
	}
	if got.Container != "util" {
		t.Errorf("expected Container %q, got %q", "util", got.Container)
	}
	if !got.Qualified() {
		t.Error("expected qualified call site to report Qualified() true")
	}
}

func TestExtractEmptySourceReturnsNoSites(t *testing.T) {
	r := rule.Default().RuleForName("go")
	e := New(nil)
	res, err := e.Extract(context.Background(), r, "empty.go", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Sites) != 0 {
		t.Fatalf("expected no sites for empty source, got %d", len(res.Sites))
	}
}
