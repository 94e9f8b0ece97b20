package discover

import (
	"path"
	"strings"
)

var testDirNames = map[string]struct{}{
	"test":      {},
	"tests":     {},
	"spec":      {},
	"__tests__": {},
}

// IsTestFile reports whether path looks like a test file, by directory
// component (tests/, spec/, __tests__/) or filename convention
// (test_*.py, *_test.go, *.test.js, *.spec.ts, *_spec.rb, FooTest.java).
// Used by exporters that want to de-emphasize test files in ranked output.
func IsTestFile(p string) bool {
	dir, base := path.Split(p)
	for _, seg := range strings.Split(strings.Trim(dir, "/"), "/") {
		if _, ok := testDirNames[seg]; ok {
			return true
		}
	}

	switch {
	case strings.HasPrefix(base, "test_"),
		strings.Contains(base, "_test."),
		strings.Contains(base, "_spec."),
		strings.Contains(base, ".test."),
		strings.Contains(base, ".spec."),
		strings.HasSuffix(base, "Test.java"):
		return true
	}
	return false
}
