package rule

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

func init() {
	register(func() *Rule {
		return &Rule{
			Name:       "javascript",
			Extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
			lang:       javascript.GetLanguage(),
			querySrc:   mustReadQuery("javascript"),
			Container:  jsContainer,
			ImportName: stringLiteralImportName,
		}
	})
}

// jsContainer returns the enclosing class name for a method_definition
// DEF capture, or the object qualifier of a qualified call REF capture
// (e.g. "obj" in obj.method()). Shared by the javascript and typescript
// rules, whose call/member-expression and class shapes coincide.
func jsContainer(node *sitter.Node, capture string, source []byte) string {
	switch capture {
	case "definition.method":
		return jsClassContainer(node, source)
	case "reference.call":
		return jsCallQualifier(node, source)
	}
	return ""
}

func jsClassContainer(defNode *sitter.Node, source []byte) string {
	parent := defNode.Parent()
	for parent != nil {
		if parent.Type() == "class_body" {
			classNode := parent.Parent()
			if classNode == nil {
				return ""
			}
			for i := 0; i < int(classNode.ChildCount()); i++ {
				child := classNode.Child(i)
				if child.Type() == "identifier" || child.Type() == "type_identifier" {
					return string(source[child.StartByte():child.EndByte()])
				}
			}
			return ""
		}
		parent = parent.Parent()
	}
	return ""
}

// jsCallQualifier returns the object text of a member_expression call
// target ("obj" in obj.method()), or "" for an unqualified call.
func jsCallQualifier(callNode *sitter.Node, source []byte) string {
	fn := callNode.ChildByFieldName("function")
	if fn == nil || fn.Type() != "member_expression" {
		return ""
	}
	obj := fn.ChildByFieldName("object")
	if obj == nil {
		return ""
	}
	return string(source[obj.StartByte():obj.EndByte()])
}
