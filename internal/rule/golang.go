package rule

import (
	"regexp"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

func init() {
	register(func() *Rule {
		return &Rule{
			Name:         "go",
			Extensions:   []string{".go"},
			lang:         golang.GetLanguage(),
			querySrc:     mustReadQuery("go"),
			ExcludeRegex: regexp.MustCompile(`^_$`),
			Container:    goContainer,
			ImportName:   stringLiteralImportName,
		}
	})
}

// goContainer returns the receiver type name for a method_declaration
// DEF capture (adapted from the teacher's goFindReceiverType,
// internal/lang/golang.go), or the package qualifier of a qualified
// call REF capture (e.g. "pkg" in pkg.Foo()).
func goContainer(node *sitter.Node, capture string, source []byte) string {
	switch capture {
	case "definition.method":
		return goReceiverContainer(node, source)
	case "reference.call":
		return goCallQualifier(node, source)
	}
	return ""
}

func goReceiverContainer(defNode *sitter.Node, source []byte) string {
	for i := 0; i < int(defNode.ChildCount()); i++ {
		child := defNode.Child(i)
		if child.Type() != "parameter_list" || !goIsReceiverList(defNode, child) {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			param := child.Child(j)
			if param.Type() == "parameter_declaration" {
				return goReceiverTypeName(param, source)
			}
		}
	}
	return ""
}

// goCallQualifier returns the operand text of a selector_expression call
// target ("pkg" in pkg.Foo(), "pkg.util" in pkg.util.Foo()), or "" for an
// unqualified call_expression.
func goCallQualifier(callNode *sitter.Node, source []byte) string {
	fn := callNode.ChildByFieldName("function")
	if fn == nil || fn.Type() != "selector_expression" {
		return ""
	}
	operand := fn.ChildByFieldName("operand")
	if operand == nil {
		return ""
	}
	return string(source[operand.StartByte():operand.EndByte()])
}

func goReceiverTypeName(param *sitter.Node, source []byte) string {
	for i := 0; i < int(param.ChildCount()); i++ {
		child := param.Child(i)
		switch child.Type() {
		case "type_identifier":
			return string(source[child.StartByte():child.EndByte()])
		case "pointer_type":
			for k := 0; k < int(child.ChildCount()); k++ {
				inner := child.Child(k)
				if inner.Type() == "type_identifier" {
					return string(source[inner.StartByte():inner.EndByte()])
				}
			}
		}
	}
	return ""
}

func goIsReceiverList(parent, paramList *sitter.Node) bool {
	if parent.Type() != "method_declaration" {
		return false
	}
	found := false
	for i := 0; i < int(parent.ChildCount()); i++ {
		child := parent.Child(i)
		if child == paramList {
			found = true
			continue
		}
		if found && child.Type() == "field_identifier" {
			return true
		}
	}
	return false
}
