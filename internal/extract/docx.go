package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/docask/docask/internal/pkg/errs"
)

// documentXML mirrors the parts of word/document.xml we read. Paragraph
// text comes from runs; tables are flattened row by row.
type documentXML struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
		Tables     []docxTable     `xml:"tbl"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []struct {
		Text []struct {
			Content string `xml:",chardata"`
		} `xml:"t"`
	} `xml:"r"`
}

type docxTable struct {
	Rows []struct {
		Cells []struct {
			Paragraphs []docxParagraph `xml:"p"`
		} `xml:"tc"`
	} `xml:"tr"`
}

func extractDocx(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: not a docx archive", errs.ErrEmptyDocument)
	}
	var doc documentXML
	found := false
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: open document.xml", errs.ErrEmptyDocument)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%w: read document.xml", errs.ErrEmptyDocument)
		}
		if err := xml.Unmarshal(content, &doc); err != nil {
			return "", fmt.Errorf("%w: parse document.xml", errs.ErrEmptyDocument)
		}
		found = true
		break
	}
	if !found {
		return "", fmt.Errorf("%w: document.xml missing", errs.ErrEmptyDocument)
	}

	var parts []string
	for _, para := range doc.Body.Paragraphs {
		if text := paragraphText(para); text != "" {
			parts = append(parts, text)
		}
	}
	for _, table := range doc.Body.Tables {
		for _, row := range table.Rows {
			var cells []string
			for _, cell := range row.Cells {
				var cellParts []string
				for _, para := range cell.Paragraphs {
					if text := paragraphText(para); text != "" {
						cellParts = append(cellParts, text)
					}
				}
				if len(cellParts) > 0 {
					cells = append(cells, strings.Join(cellParts, " "))
				}
			}
			if len(cells) > 0 {
				parts = append(parts, strings.Join(cells, " | "))
			}
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: no readable text in docx", errs.ErrEmptyDocument)
	}
	return strings.Join(parts, "\n\n"), nil
}

func paragraphText(para docxParagraph) string {
	var sb strings.Builder
	for _, run := range para.Runs {
		for _, t := range run.Text {
			sb.WriteString(t.Content)
		}
	}
	return strings.TrimSpace(sb.String())
}
