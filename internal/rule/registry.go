package rule

import (
	"embed"
	"sync"
)

//go:embed queries/*.scm
var queryFS embed.FS

// Registry is process-wide and read-only after first use (spec.md §9's
// "lazy-initialized rule registry ... injectable value"); New returns a
// fresh instance for tests that need isolation.
type Registry struct {
	mu         sync.RWMutex
	byName     map[string]*Rule
	extToName  map[string]string
}

func New() *Registry {
	return &Registry{
		byName:    make(map[string]*Rule),
		extToName: make(map[string]string),
	}
}

func (reg *Registry) register(r *Rule) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.byName[r.Name] = r
	for _, ext := range r.Extensions {
		reg.extToName[ext] = r.Name
	}
}

// RuleForExtension returns the rule owning ext (including the leading
// dot), or nil if no registered rule claims it.
func (reg *Registry) RuleForExtension(ext string) *Rule {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	name, ok := reg.extToName[ext]
	if !ok {
		return nil
	}
	return reg.byName[name]
}

// RuleForName returns the rule with the given language tag, or nil.
func (reg *Registry) RuleForName(name string) *Rule {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.byName[name]
}

// AllExtensions returns the set of extensions with a registered rule.
func (reg *Registry) AllExtensions() map[string]struct{} {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make(map[string]struct{}, len(reg.extToName))
	for ext := range reg.extToName {
		out[ext] = struct{}{}
	}
	return out
}

// Names returns every registered language tag.
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]string, 0, len(reg.byName))
	for n := range reg.byName {
		out = append(out, n)
	}
	return out
}

func mustReadQuery(name string) []byte {
	data, err := queryFS.ReadFile("queries/" + name + ".scm")
	if err != nil {
		panic("rule: missing embedded query for " + name + ": " + err.Error())
	}
	return data
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry, built on first call from
// every init() in this package's per-language files via registrations.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = New()
		for _, build := range registrations {
			defaultReg.register(build())
		}
	})
	return defaultReg
}

// registrations is populated by each language file's init(), mirroring
// the teacher's lang.Languages map populated from per-language init()s
// (internal/lang/golang.go, python.go, ruby.go), generalized to build
// lazily into an injectable Registry rather than a single global map.
var registrations []func() *Rule

func register(build func() *Rule) {
	registrations = append(registrations, build)
}
