package extract

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/docask/docask/internal/pkg/errs"
)

// newTextDecoders returns the decode ladder tried in order for plain-text
// input. Decoders carry state, so a fresh set is built per call. UTF-16
// requires a BOM so that single-byte content never mis-decodes as UTF-16.
func newTextDecoders() []*encoding.Decoder {
	return []*encoding.Decoder{
		unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder(),
		unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder(),
		charmap.ISO8859_1.NewDecoder(),
		charmap.Windows1252.NewDecoder(),
	}
}

func extractText(data []byte) (string, error) {
	if utf8.Valid(data) {
		text := strings.TrimPrefix(string(data), "\uFEFF")
		if strings.TrimSpace(text) != "" {
			return text, nil
		}
	}
	for _, dec := range newTextDecoders() {
		decoded, err := dec.Bytes(data)
		if err != nil {
			continue
		}
		text := string(decoded)
		if strings.TrimSpace(text) != "" && utf8.ValidString(text) {
			return text, nil
		}
	}
	return "", errs.ErrUnsupportedEncoding
}
