package validator

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type bodyStats struct {
	headings     int
	fencedBlocks int
}

// inspectBody walks the markdown AST counting headings and fenced code
// blocks. Parsing never fails; malformed markdown just yields fewer nodes.
func inspectBody(body string) bodyStats {
	src := []byte(body)
	root := goldmark.DefaultParser().Parse(text.NewReader(src))

	var stats bodyStats
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.Heading:
			stats.headings++
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			stats.fencedBlocks++
		}
		return ast.WalkContinue, nil
	})
	return stats
}
