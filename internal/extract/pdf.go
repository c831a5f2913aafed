package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docask/docask/internal/pkg/errs"
)

func extractPDF(ctx context.Context, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", errs.ErrEmptyDocument, err)
	}
	logger := logutil.GetLogger(ctx)

	var pages []string
	total := reader.NumPage()
	for num := 1; num <= total; num++ {
		text, err := extractPDFPage(reader, num)
		if err != nil {
			// A broken page must not abort the whole document.
			logger.Warn("skipping unreadable pdf page", zap.Int("page", num), zap.Error(err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, fmt.Sprintf("--- Page %d ---\n%s", num, text))
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("%w: no readable text in pdf", errs.ErrEmptyDocument)
	}
	return strings.Join(pages, "\n\n"), nil
}

// extractPDFPage isolates one page so a malformed content stream (the pdf
// library panics on some of them) only loses that page.
func extractPDFPage(reader *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: %v", num, r)
		}
	}()
	page := reader.Page(num)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d: missing", num)
	}
	return page.GetPlainText(nil)
}
