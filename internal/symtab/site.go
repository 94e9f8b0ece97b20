// Package symtab interns extracted symbol sites and exposes the four
// indexes the Graph Engine joins over (spec.md §4.3).
package symtab

import "strings"

// Kind is the closed set {DEF, REF, IMPORT} a site is tagged with.
// Resolution order when a site matches more than one query is
// IMPORT > DEF > REF (spec.md §4.1).
type Kind int

const (
	Ref Kind = iota
	Def
	Import
)

func (k Kind) String() string {
	switch k {
	case Def:
		return "def"
	case Ref:
		return "ref"
	case Import:
		return "import"
	default:
		return "unknown"
	}
}

// priority returns the kind's rank in the IMPORT > DEF > REF ordering;
// higher wins ties at the same byte span.
func (k Kind) priority() int {
	switch k {
	case Import:
		return 2
	case Def:
		return 1
	default:
		return 0
	}
}

// Site is one textual occurrence of an identifier in a file.
type Site struct {
	ID int

	// Name is the raw text the query captured for the site's terminal
	// identifier — always the bare tail, never a dotted/scoped path (that
	// qualification lives in Container instead).
	Name string

	// Container is the qualifying prefix extracted alongside Name: for a
	// DEF, the enclosing class/impl/module name ("Foo" for method Bar
	// defined on Foo); for a REF, the receiver/package/object text of a
	// qualified call or access ("pkg" for pkg.Foo(), "mod" for
	// mod::foo()), empty when the reference is a bare unqualified
	// identifier. Used to build the display-facing qualified name
	// ("Foo.Bar") and for spec.md §4.5 Step B/E's qualified-vs-non-qualified
	// split; Step F does not consult it. Empty for top-level defs,
	// unqualified refs, and all IMPORT sites.
	Container string

	File       string
	StartByte  uint32
	EndByte    uint32
	Line       int
	Kind       Kind
}

// QualifiedName returns Container.Name when Container is set, else Name.
func (s Site) QualifiedName() string {
	if s.Container == "" {
		return s.Name
	}
	return s.Container + "." + s.Name
}

// Qualified reports whether the site was written with an explicit
// container/package qualifier, per spec.md §4.5 Step B. Container carries
// that qualifier for both DEF and REF sites (see the Container field
// doc); Name itself is also checked for a literal path separator so a
// site built directly with a dotted Name (as in tests, or any future
// rule that captures the full qualified expression into Name) is still
// recognized.
func (s Site) Qualified() bool {
	return s.Container != "" || strings.ContainsAny(s.Name, "./") || strings.Contains(s.Name, "::")
}

// BaseName extracts the last path segment of raw after splitting on '.',
// '::', and '/' — spec.md §4.5 Step B / GLOSSARY.
func BaseName(raw string) string {
	if raw == "" {
		return raw
	}
	norm := strings.ReplaceAll(raw, "::", ".")
	norm = strings.ReplaceAll(norm, "/", ".")
	parts := strings.Split(norm, ".")
	return parts[len(parts)-1]
}
