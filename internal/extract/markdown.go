package extract

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/docask/docask/internal/pkg/errs"
)

// extractMarkdown decodes like plain text, then flattens the markdown
// structure so headings and list markers don't pollute sentence splitting.
// Fenced code blocks are kept verbatim as their own blocks.
func extractMarkdown(data []byte) (string, error) {
	raw, err := extractText(data)
	if err != nil {
		return "", err
	}
	source := []byte(raw)
	md := goldmark.New()
	reader := text.NewReader(source)
	doc := md.Parser().Parse(reader)

	var blocks []string
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.FencedCodeBlock:
			var sb strings.Builder
			for i := 0; i < n.Lines().Len(); i++ {
				line := n.Lines().At(i)
				sb.Write(line.Value(source))
			}
			if code := strings.TrimSpace(sb.String()); code != "" {
				blocks = append(blocks, code)
			}
		default:
			if txt := nodeText(node, source); txt != "" {
				blocks = append(blocks, txt)
			}
		}
	}
	if len(blocks) == 0 {
		return "", errs.ErrEmptyDocument
	}
	return strings.Join(blocks, "\n\n"), nil
}

func nodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Kind() == ast.KindText {
			sb.Write(node.(*ast.Text).Segment.Value(source))
			sb.WriteString(" ")
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
