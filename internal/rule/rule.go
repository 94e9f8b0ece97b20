// Package rule is the per-language rule registry of spec.md §4.1: each
// rule pairs a tree-sitter grammar with the extensions it owns and the
// query that tags identifier sites as DEF, REF, or IMPORT.
package rule

import (
	"fmt"
	"regexp"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"relgraph/internal/symtab"
)

// CaptureKinds maps a query capture name to the symtab.Kind it tags.
// Resolution order when a site is captured under more than one name is
// IMPORT > DEF > REF (spec.md §4.1), which symtab.Table.AddSite enforces.
var CaptureKinds = map[string]symtab.Kind{
	"definition.function": symtab.Def,
	"definition.method":   symtab.Def,
	"definition.class":    symtab.Def,
	"definition.var":      symtab.Def,
	"reference.call":      symtab.Ref,
	"reference.identifier": symtab.Ref,
	"import.name":          symtab.Import,
}

// ContainerFunc returns the qualifying prefix for a captured site, or ""
// if it has none. For a DEF capture (e.g. "definition.method") this is
// the enclosing class/impl/module name, the generalized form of the
// teacher's per-language FindMethodClass/FindReceiverType helpers
// (internal/lang/golang.go, python.go, ruby.go in the teacher). For a REF
// capture (e.g. "reference.call") this is the receiver/package/object
// text of a qualified call or access, extracted by inspecting the node's
// own field structure (selector_expression/attribute/member_expression/
// scoped_identifier, depending on language) rather than by a separate
// query capture — spec.md §4.5 Step B's qualified-reference detection.
// Implementations switch on capture and return "" for any capture they
// don't recognize.
type ContainerFunc func(node *sitter.Node, capture string, source []byte) string

// ImportNameFunc turns a capture's raw node text into the bare name
// recorded in the file's import list. For string-literal import paths
// (Go, JS, TS) this strips quoting; for Python and Rust identifiers and
// Ruby's require string content, which carry no quotes, it is the
// identity.
type ImportNameFunc func(raw string) string

// Rule describes one language's extraction policy.
type Rule struct {
	Name       string
	Extensions []string

	lang ruleLanguage

	queryOnce sync.Once
	query     *sitter.Query
	queryErr  error
	querySrc  []byte

	// Blacklist holds names that must never be treated as a REF even when
	// captured — e.g. Python's "self", a built-in identifier that parses
	// as one but never denotes a user symbol (spec.md §4.1 rationale).
	Blacklist map[string]struct{}

	// ExcludeRegex drops any captured name it matches — e.g. Go's bare
	// "_" receiver/blank identifier.
	ExcludeRegex *regexp.Regexp

	Container  ContainerFunc
	ImportName ImportNameFunc
}

// ruleLanguage is satisfied by *sitter.Language; kept as an interface seam
// so rule construction doesn't need the concrete smacker type imported
// everywhere that touches Rule.
type ruleLanguage = *sitter.Language

// NewParser returns a fresh tree-sitter parser for this rule's language.
// Each goroutine must use its own parser — the teacher's own NewParser
// doc comment (internal/lang/lang.go) applies unchanged.
func (r *Rule) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(r.lang)
	return p
}

// Language exposes the tree-sitter language handle.
func (r *Rule) Language() *sitter.Language { return r.lang }

// Query compiles (once, lazily) and returns this rule's combined
// DEF/REF/IMPORT query, safe to share across goroutines once built.
func (r *Rule) Query() (*sitter.Query, error) {
	r.queryOnce.Do(func() {
		q, err := sitter.NewQuery(r.querySrc, r.lang)
		if err != nil {
			r.queryErr = fmt.Errorf("compiling %s query: %w", r.Name, err)
			return
		}
		r.query = q
	})
	return r.query, r.queryErr
}

// Blocked reports whether name should never become a REF/DEF site under
// this rule, per Blacklist and ExcludeRegex.
func (r *Rule) Blocked(name string) bool {
	if _, ok := r.Blacklist[name]; ok {
		return true
	}
	if r.ExcludeRegex != nil && r.ExcludeRegex.MatchString(name) {
		return true
	}
	return false
}

func identityImportName(raw string) string { return raw }

// stringLiteralImportName strips the surrounding quotes a string-literal
// import path capture carries (Go's interpreted_string_literal, JS/TS's
// string_fragment already excludes the quotes but a defensive strip is
// harmless either way).
func stringLiteralImportName(raw string) string {
	if len(raw) >= 2 {
		if (raw[0] == '"' && raw[len(raw)-1] == '"') || (raw[0] == '\'' && raw[len(raw)-1] == '\'') {
			return raw[1 : len(raw)-1]
		}
	}
	return raw
}
