package symtab

import "testing"

func TestBaseNameSplitsOnSeparators(t *testing.T) {
	cases := map[string]string{
		"foo":            "foo",
		"pkg.util.parse": "parse",
		"util::parse":    "parse",
		"a/b/c":          "c",
		"":                "",
	}
	for in, want := range cases {
		if got := BaseName(in); got != want {
			t.Errorf("BaseName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSiteQualified(t *testing.T) {
	cases := map[string]bool{
		"foo":            false,
		"pkg.util.parse": true,
		"util::parse":    true,
		"a/b":            true,
	}
	for name, want := range cases {
		s := Site{Name: name}
		if got := s.Qualified(); got != want {
			t.Errorf("Site{Name: %q}.Qualified() = %v, want %v", name, got, want)
		}
	}
}

func TestQualifiedName(t *testing.T) {
	s := Site{Name: "Bar", Container: "Foo"}
	if got := s.QualifiedName(); got != "Foo.Bar" {
		t.Errorf("QualifiedName() = %q, want Foo.Bar", got)
	}
	s2 := Site{Name: "Baz"}
	if got := s2.QualifiedName(); got != "Baz" {
		t.Errorf("QualifiedName() = %q, want Baz", got)
	}
}

func TestAddSiteAssignsMonotonicIDs(t *testing.T) {
	tab := New()
	id1 := tab.AddSite(Site{Name: "foo", File: "a.go", StartByte: 0, EndByte: 3, Kind: Def})
	id2 := tab.AddSite(Site{Name: "bar", File: "a.go", StartByte: 10, EndByte: 13, Kind: Ref})
	if id1 == id2 {
		t.Fatalf("expected distinct ids, got %d and %d", id1, id2)
	}
	if tab.Len() != 2 {
		t.Fatalf("expected 2 sites, got %d", tab.Len())
	}
}

func TestAddSiteDedupesBySpanKeepingHigherPriority(t *testing.T) {
	tab := New()
	refID := tab.AddSite(Site{Name: "foo", File: "a.go", StartByte: 0, EndByte: 3, Kind: Ref})
	defID := tab.AddSite(Site{Name: "foo", File: "a.go", StartByte: 0, EndByte: 3, Kind: Def})

	if refID != defID {
		t.Fatalf("expected same id for same span, got %d and %d", refID, defID)
	}
	if tab.Len() != 1 {
		t.Fatalf("expected dedup to a single site, got %d", tab.Len())
	}

	site, ok := tab.Site(defID)
	if !ok {
		t.Fatal("expected site to exist")
	}
	if site.Kind != Def {
		t.Errorf("expected surviving site to be Def (higher priority than Ref), got %v", site.Kind)
	}
}

func TestAddSiteDoesNotDowngradePriority(t *testing.T) {
	tab := New()
	id := tab.AddSite(Site{Name: "foo", File: "a.go", StartByte: 0, EndByte: 3, Kind: Import})
	tab.AddSite(Site{Name: "foo", File: "a.go", StartByte: 0, EndByte: 3, Kind: Ref})

	site, _ := tab.Site(id)
	if site.Kind != Import {
		t.Errorf("expected Import to survive over a lower-priority Ref at the same span, got %v", site.Kind)
	}
}

func TestLookupDefsAndRefsAreBaseNameIndexed(t *testing.T) {
	tab := New()
	tab.AddSite(Site{Name: "pkg.Foo", Container: "", File: "a.go", StartByte: 0, EndByte: 3, Kind: Def})
	tab.AddSite(Site{Name: "Foo", File: "b.go", StartByte: 0, EndByte: 3, Kind: Ref})
	tab.Freeze()

	defs := tab.LookupDefs("Foo")
	if len(defs) != 1 || defs[0].File != "a.go" {
		t.Errorf("LookupDefs(Foo) = %+v, want one def in a.go", defs)
	}

	refs := tab.LookupRefs("pkg.Foo")
	if len(refs) != 1 || refs[0].File != "b.go" {
		t.Errorf("LookupRefs(pkg.Foo) = %+v, want one ref in b.go", refs)
	}

	all := tab.LookupSites("Foo")
	if len(all) != 2 {
		t.Errorf("LookupSites(Foo) = %d sites, want 2", len(all))
	}
}

func TestAddImportTracksBaseNamesPerFile(t *testing.T) {
	tab := New()
	tab.AddImport("a.go", "pkg/util")
	tab.AddImport("a.go", "pkg/util")
	tab.AddImport("a.go", "fmt")

	imports := tab.ImportsInFile("a.go")
	if len(imports) != 2 {
		t.Fatalf("expected 2 distinct imports, got %d: %v", len(imports), imports)
	}
	if _, ok := imports["util"]; !ok {
		t.Error("expected import base name 'util'")
	}
	if _, ok := imports["fmt"]; !ok {
		t.Error("expected import base name 'fmt'")
	}
}

func TestFreezePanicsOnWrite(t *testing.T) {
	tab := New()
	tab.Freeze()

	defer func() {
		if recover() == nil {
			t.Error("expected AddSite on frozen table to panic")
		}
	}()
	tab.AddSite(Site{Name: "foo", File: "a.go", Kind: Def})
}

func TestFilesReturnsEveryFileWithASite(t *testing.T) {
	tab := New()
	tab.AddSite(Site{Name: "foo", File: "a.go", StartByte: 0, EndByte: 3, Kind: Def})
	tab.AddSite(Site{Name: "bar", File: "b.go", StartByte: 0, EndByte: 3, Kind: Def})

	files := tab.Files()
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %v", len(files), files)
	}
}

func TestSiteUnknownIDReturnsFalse(t *testing.T) {
	tab := New()
	if _, ok := tab.Site(42); ok {
		t.Error("expected Site(42) to report not-found on an empty table")
	}
}
