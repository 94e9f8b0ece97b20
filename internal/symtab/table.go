package symtab

import "sync"

// Table is the append-only symbol table of spec.md §4.3. Writes go through
// a single mutex guarding the id counter and slice append, with the four
// name indexes rebuilt under the same lock — spec.md §9's suggested
// "single lock around the append cursor" shape, simplified to one lock
// since index maintenance is cheap relative to extraction itself.
//
// The table is writable only during construction. Freeze marks it
// read-only; all read operations are total and side-effect free both
// before and after Freeze, matching spec.md's "append-only during
// construction and frozen afterwards."
type Table struct {
	mu sync.Mutex

	nextID int
	sites  []Site

	byFile        map[string][]int
	byName        map[string][]int
	defsByName    map[string][]int
	refsByName    map[string][]int
	importsInFile map[string]map[string]struct{}

	frozen bool
}

// New returns an empty, writable Table.
func New() *Table {
	return &Table{
		byFile:        make(map[string][]int),
		byName:        make(map[string][]int),
		defsByName:    make(map[string][]int),
		refsByName:    make(map[string][]int),
		importsInFile: make(map[string]map[string]struct{}),
	}
}

// AddSite interns one site, assigning it the next monotonic id, and returns
// that id. It deduplicates against the last site added for the same file
// and byte span, keeping the highest-priority kind per spec.md §4.1's
// IMPORT > DEF > REF resolution order (spec.md §4.2's extractor dedup
// step, centralized here so every rule benefits from it uniformly).
func (t *Table) AddSite(s Site) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.frozen {
		panic("symtab: AddSite on frozen table")
	}

	if ids := t.byFile[s.File]; len(ids) > 0 {
		lastID := ids[len(ids)-1]
		last := &t.sites[lastID]
		if last.StartByte == s.StartByte && last.EndByte == s.EndByte {
			if s.Kind.priority() > last.Kind.priority() {
				t.unindexLocked(lastID)
				last.Kind = s.Kind
				last.Name = s.Name
				last.Container = s.Container
				t.indexLocked(lastID)
			}
			return lastID
		}
	}

	id := t.nextID
	t.nextID++
	s.ID = id
	t.sites = append(t.sites, s)
	t.byFile[s.File] = append(t.byFile[s.File], id)
	t.indexLocked(id)
	return id
}

func (t *Table) indexLocked(id int) {
	s := &t.sites[id]
	base := BaseName(s.Name)
	t.byName[base] = append(t.byName[base], id)
	switch s.Kind {
	case Def:
		t.defsByName[base] = append(t.defsByName[base], id)
	case Ref:
		t.refsByName[base] = append(t.refsByName[base], id)
	}
}

func (t *Table) unindexLocked(id int) {
	s := &t.sites[id]
	base := BaseName(s.Name)
	t.byName[base] = removeID(t.byName[base], id)
	switch s.Kind {
	case Def:
		t.defsByName[base] = removeID(t.defsByName[base], id)
	case Ref:
		t.refsByName[base] = removeID(t.refsByName[base], id)
	}
}

func removeID(ids []int, target int) []int {
	for i, id := range ids {
		if id == target {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// AddImport records name as imported by file. IMPORT sites live on their
// owning file's auxiliary import set (spec.md §4.3); they are not indexed
// as REFs.
func (t *Table) AddImport(file, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.frozen {
		panic("symtab: AddImport on frozen table")
	}
	set := t.importsInFile[file]
	if set == nil {
		set = make(map[string]struct{})
		t.importsInFile[file] = set
	}
	set[BaseName(name)] = struct{}{}
}

// Freeze marks the table read-only. Subsequent AddSite/AddImport panic.
func (t *Table) Freeze() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frozen = true
}

// SitesIn returns the sites belonging to file in source order.
func (t *Table) SitesIn(file string) []Site {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := t.byFile[file]
	out := make([]Site, len(ids))
	for i, id := range ids {
		out[i] = t.sites[id]
	}
	return out
}

// Files returns every file that has at least one site, unsorted.
func (t *Table) Files() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.byFile))
	for f := range t.byFile {
		out = append(out, f)
	}
	return out
}

// LookupDefs returns the DEF sites whose base name equals BaseName(name).
func (t *Table) LookupDefs(name string) []Site {
	return t.lookupFrom(t.defsByName, name)
}

// LookupRefs returns the REF sites whose base name equals BaseName(name).
func (t *Table) LookupRefs(name string) []Site {
	return t.lookupFrom(t.refsByName, name)
}

// LookupSites returns every site (DEF or REF) whose base name matches.
func (t *Table) LookupSites(name string) []Site {
	return t.lookupFrom(t.byName, name)
}

func (t *Table) lookupFrom(idx map[string][]int, name string) []Site {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := idx[BaseName(name)]
	out := make([]Site, len(ids))
	for i, id := range ids {
		out[i] = t.sites[id]
	}
	return out
}

// Site returns the site with the given id.
func (t *Table) Site(id int) (Site, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id < 0 || id >= len(t.sites) {
		return Site{}, false
	}
	return t.sites[id], true
}

// ImportsInFile returns the set of base names file imports.
func (t *Table) ImportsInFile(file string) map[string]struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	src := t.importsInFile[file]
	out := make(map[string]struct{}, len(src))
	for k := range src {
		out[k] = struct{}{}
	}
	return out
}

// Len returns the total number of interned sites.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sites)
}
