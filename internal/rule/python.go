package rule

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

func init() {
	register(func() *Rule {
		return &Rule{
			Name:       "python",
			Extensions: []string{".py"},
			lang:       python.GetLanguage(),
			querySrc:   mustReadQuery("python"),
			Blacklist:  map[string]struct{}{"self": {}, "cls": {}},
			Container:  pythonContainer,
			ImportName: identityImportName,
		}
	})
}

// pythonContainer returns the enclosing class name for a
// function_definition DEF capture (adapted from the teacher's
// pythonFindEnclosingClass, internal/lang/python.go), or the object
// qualifier of a qualified call REF capture (e.g. "mod" in mod.func()).
func pythonContainer(node *sitter.Node, capture string, source []byte) string {
	switch capture {
	case "definition.function":
		return pythonClassContainer(node, source)
	case "reference.call":
		return pythonCallQualifier(node, source)
	}
	return ""
}

func pythonClassContainer(defNode *sitter.Node, source []byte) string {
	classNode := pythonFindEnclosingClass(defNode)
	if classNode == nil {
		return ""
	}
	for i := 0; i < int(classNode.ChildCount()); i++ {
		child := classNode.Child(i)
		if child.Type() == "identifier" {
			return string(source[child.StartByte():child.EndByte()])
		}
	}
	return ""
}

// pythonCallQualifier returns the object text of an attribute call target
// ("mod" in mod.func()), or "" for an unqualified call.
func pythonCallQualifier(callNode *sitter.Node, source []byte) string {
	fn := callNode.ChildByFieldName("function")
	if fn == nil || fn.Type() != "attribute" {
		return ""
	}
	obj := fn.ChildByFieldName("object")
	if obj == nil {
		return ""
	}
	return string(source[obj.StartByte():obj.EndByte()])
}

func pythonFindEnclosingClass(funcNode *sitter.Node) *sitter.Node {
	parent := funcNode.Parent()
	if parent == nil {
		return nil
	}
	if parent.Type() == "block" && parent.Parent() != nil && parent.Parent().Type() == "class_definition" {
		return parent.Parent()
	}
	if parent.Type() == "decorated_definition" {
		gp := parent.Parent()
		if gp != nil && gp.Type() == "block" && gp.Parent() != nil && gp.Parent().Type() == "class_definition" {
			return gp.Parent()
		}
	}
	return nil
}
