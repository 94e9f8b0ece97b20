package rule

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

func init() {
	register(func() *Rule {
		return &Rule{
			Name:       "rust",
			Extensions: []string{".rs"},
			lang:       rust.GetLanguage(),
			querySrc:   mustReadQuery("rust"),
			Container:  rustContainer,
			ImportName: identityImportName,
		}
	})
}

// rustContainer returns the enclosing impl block's type name for a
// function_item DEF capture, so a method defined inside
// `impl Foo { fn bar() {} }` is recorded with Container "Foo" — the
// closest Rust analogue of the teacher's Go receiver-type and
// Python/Ruby enclosing-class lookups — or the qualifier of a qualified
// call REF capture ("obj" in obj.bar(), "mod" in mod::foo()).
func rustContainer(node *sitter.Node, capture string, source []byte) string {
	switch capture {
	case "definition.function":
		return rustImplContainer(node, source)
	case "reference.call":
		return rustCallQualifier(node, source)
	}
	return ""
}

func rustImplContainer(defNode *sitter.Node, source []byte) string {
	parent := defNode.Parent()
	for parent != nil {
		if parent.Type() == "impl_item" {
			for i := 0; i < int(parent.ChildCount()); i++ {
				child := parent.Child(i)
				if child.Type() == "type_identifier" {
					return string(source[child.StartByte():child.EndByte()])
				}
			}
			return ""
		}
		if parent.Type() == "source_file" {
			return ""
		}
		parent = parent.Parent()
	}
	return ""
}

// rustCallQualifier returns the value text of a field_expression call
// target ("obj" in obj.bar()) or the path text of a scoped_identifier
// call target ("mod" in mod::foo()), or "" for an unqualified call.
func rustCallQualifier(callNode *sitter.Node, source []byte) string {
	fn := callNode.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case "field_expression":
		v := fn.ChildByFieldName("value")
		if v == nil {
			return ""
		}
		return string(source[v.StartByte():v.EndByte()])
	case "scoped_identifier":
		p := fn.ChildByFieldName("path")
		if p == nil {
			return ""
		}
		return string(source[p.StartByte():p.EndByte()])
	}
	return ""
}
