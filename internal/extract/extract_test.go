package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docask/docask/internal/pkg/errs"
)

func TestExtract_UnsupportedFormat(t *testing.T) {
	_, err := Extract(context.Background(), []byte("hello"), "exe")
	require.True(t, errors.Is(err, errs.ErrUnsupportedFormat))
}

func TestExtractText_UTF8(t *testing.T) {
	out, err := extractText([]byte("plain utf-8 text"))
	require.NoError(t, err)
	require.Equal(t, "plain utf-8 text", out)
}

func TestExtractText_StripsUTF8BOM(t *testing.T) {
	out, err := extractText(append([]byte{0xEF, 0xBB, 0xBF}, []byte("bom text")...))
	require.NoError(t, err)
	require.Equal(t, "bom text", out)
}

func TestExtractText_UTF16LE(t *testing.T) {
	data := []byte{0xFF, 0xFE}
	for _, r := range "utf-16 content" {
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], uint16(r))
		data = append(data, buf[:]...)
	}
	out, err := extractText(data)
	require.NoError(t, err)
	require.Equal(t, "utf-16 content", out)
}

func TestExtractText_Latin1(t *testing.T) {
	// "café" with 0xE9, invalid as UTF-8.
	out, err := extractText([]byte{'c', 'a', 'f', 0xE9})
	require.NoError(t, err)
	require.Equal(t, "café", out)
}

func TestExtractText_EmptyRejected(t *testing.T) {
	_, err := extractText([]byte("   \n  "))
	require.True(t, errors.Is(err, errs.ErrUnsupportedEncoding))
}

func TestExtractMarkdown_FlattensStructure(t *testing.T) {
	md := "# Heading\n\nSome *emphasized* body text.\n\n- first item\n- second item\n\n```\ncode stays verbatim\n```\n"
	out, err := extractMarkdown([]byte(md))
	require.NoError(t, err)
	require.Contains(t, out, "Heading")
	require.Contains(t, out, "emphasized")
	require.Contains(t, out, "first item")
	require.Contains(t, out, "code stays verbatim")
	require.NotContains(t, out, "#")
	require.NotContains(t, out, "*")
}

func TestExtractMarkdown_EmptyDocument(t *testing.T) {
	_, err := extractMarkdown([]byte("   "))
	require.Error(t, err)
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtractDocx_ParagraphsAndTables(t *testing.T) {
	data := buildDocx(t, `<?xml version="1.0"?>
<document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <body>
    <p><r><t>First paragraph.</t></r></p>
    <p><r><t>Second </t></r><r><t>paragraph.</t></r></p>
    <tbl>
      <tr>
        <tc><p><r><t>cell one</t></r></p></tc>
        <tc><p><r><t>cell two</t></r></p></tc>
      </tr>
    </tbl>
  </body>
</document>`)
	out, err := extractDocx(data)
	require.NoError(t, err)
	require.Contains(t, out, "First paragraph.")
	require.Contains(t, out, "Second paragraph.")
	require.Contains(t, out, "cell one | cell two")
}

func TestExtractDocx_NotAnArchive(t *testing.T) {
	_, err := extractDocx([]byte("definitely not a zip"))
	require.True(t, errors.Is(err, errs.ErrEmptyDocument))
}

func TestExtractDocx_NoText(t *testing.T) {
	data := buildDocx(t, `<?xml version="1.0"?><document><body></body></document>`)
	_, err := extractDocx(data)
	require.True(t, errors.Is(err, errs.ErrEmptyDocument))
}
