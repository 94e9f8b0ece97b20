package rule

import (
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

func init() {
	register(func() *Rule {
		return &Rule{
			Name:       "typescript",
			Extensions: []string{".ts", ".tsx"},
			lang:       typescript.GetLanguage(),
			querySrc:   mustReadQuery("typescript"),
			Container:  jsContainer,
			ImportName: stringLiteralImportName,
		}
	})
}
