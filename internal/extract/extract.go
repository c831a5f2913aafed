// Package extract converts raw document bytes into a single plain-text
// string. Extraction is a pure transform: every failure is a property of
// the input data and is never retried.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/docask/docask/internal/pkg/errs"
)

// Formats supported for ingestion, declared by file extension rather than
// sniffed from content.
const (
	FormatTxt      = "txt"
	FormatMarkdown = "md"
	FormatPDF      = "pdf"
	FormatDocx     = "docx"
)

// Extract returns the plain text of data interpreted as the declared
// format. The returned text is not yet whitespace-normalized; the chunker
// owns that step.
func Extract(ctx context.Context, data []byte, format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatTxt:
		return extractText(data)
	case FormatMarkdown:
		return extractMarkdown(data)
	case FormatPDF:
		return extractPDF(ctx, data)
	case FormatDocx:
		return extractDocx(data)
	default:
		return "", fmt.Errorf("%w: %s", errs.ErrUnsupportedFormat, format)
	}
}
