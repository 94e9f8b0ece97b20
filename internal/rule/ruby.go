package rule

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"
)

func init() {
	register(func() *Rule {
		return &Rule{
			Name:       "ruby",
			Extensions: []string{".rb"},
			lang:       ruby.GetLanguage(),
			querySrc:   mustReadQuery("ruby"),
			Blacklist:  map[string]struct{}{"self": {}},
			Container:  rubyContainer,
			ImportName: identityImportName,
		}
	})
}

// rubyContainer returns the enclosing class/module name for a method or
// singleton_method DEF capture (adapted from the teacher's ruby helpers,
// internal/lang/ruby.go), or the receiver qualifier of a qualified call
// REF capture (e.g. "obj" in obj.method, "Mod" in Mod.method).
func rubyContainer(node *sitter.Node, capture string, source []byte) string {
	switch capture {
	case "definition.function", "definition.method":
		return rubyClassContainer(node, source)
	case "reference.call":
		return rubyCallQualifier(node, source)
	}
	return ""
}

func rubyClassContainer(defNode *sitter.Node, source []byte) string {
	parent := defNode.Parent()
	for parent != nil {
		if parent.Type() == "class" || parent.Type() == "module" {
			for i := 0; i < int(parent.ChildCount()); i++ {
				child := parent.Child(i)
				if child.Type() == "constant" {
					return string(source[child.StartByte():child.EndByte()])
				}
			}
			return ""
		}
		parent = parent.Parent()
	}
	return ""
}

// rubyCallQualifier returns the receiver text of a call node ("obj" in
// obj.method, "Mod" in Mod.method), skipping "self" (not a real
// qualifier, same rationale as the self blacklist entry), or "" for a
// receiverless call.
func rubyCallQualifier(callNode *sitter.Node, source []byte) string {
	recv := callNode.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	switch recv.Type() {
	case "identifier", "constant":
		return string(source[recv.StartByte():recv.EndByte()])
	}
	return ""
}
