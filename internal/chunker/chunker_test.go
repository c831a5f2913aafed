package chunker

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docask/docask/internal/pkg/errs"
	"github.com/docask/docask/internal/tokenizer"
)

func TestNormalize(t *testing.T) {
	in := "a  line\twith\ttabs\r\nsecond\rthird\n\n\n\n\nfourth"
	out := Normalize(in)
	require.Equal(t, "a line with tabs\nsecond\nthird\n\nfourth", out)
}

func TestSplit_ShortDocumentRejected(t *testing.T) {
	_, err := Split("too short.", 100, 10)
	require.True(t, errors.Is(err, errs.ErrEmptyDocument))
}

func TestSplit_InvalidBudget(t *testing.T) {
	_, err := Split(strings.Repeat("a sentence here. ", 20), 0, 10)
	require.True(t, errors.Is(err, errs.ErrInvalid))
}

func TestSplit_SingleChunkWhenUnderBudget(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog. A second sentence follows the first one here."
	chunks, err := Split(text, 1000, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Equal(t, tokenizer.Count(chunks[0].Text), chunks[0].TokenCount)
}

func TestSplit_RespectsTokenBudget(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&sb, "Sentence number %d has exactly a handful of words inside it. ", i)
	}
	chunks, err := Split(sb.String(), 50, 10)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		// Budget + one overlap-sized allowance: a chunk is closed as soon as
		// the next sentence would overflow, so no chunk of multi-sentence
		// input exceeds maxTokens unless a single sentence does.
		require.LessOrEqual(t, chunk.TokenCount, 50)
	}
}

func TestSplit_OverlapCarriesTrailingSentences(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&sb, "Marker sentence %02d with several additional padding words. ", i)
	}
	chunks, err := Split(sb.String(), 40, 15)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Text
		first := strings.SplitN(chunks[i].Text, ". ", 2)[0]
		require.Contains(t, prev, first, "chunk %d should start with overlap from chunk %d", i, i-1)
	}
}

func TestSplit_OversizedSentenceBecomesOwnChunk(t *testing.T) {
	huge := "Word " + strings.Repeat("padding ", 120) + "ends here."
	text := "A normal leading sentence sits here first. " + huge
	chunks, err := Split(text, 50, 10)
	require.NoError(t, err)
	var found bool
	for _, chunk := range chunks {
		if chunk.TokenCount > 50 {
			found = true
		}
	}
	require.True(t, found, "oversized sentence should survive unsplit")
}

func TestSplit_LargeDocumentChunkCount(t *testing.T) {
	var sb strings.Builder
	for i := 0; sb.Len() < 20000; i++ {
		fmt.Fprintf(&sb, "This is sentence %d of a long synthetic document used to exercise packing. ", i)
	}
	total := tokenizer.Count(sb.String())
	chunks, err := Split(sb.String(), 1000, 200)
	require.NoError(t, err)
	// With a 1000-token budget and 200-token overlap, chunk count stays near
	// total/(budget-overlap).
	require.GreaterOrEqual(t, len(chunks), total/1000)
	require.LessOrEqual(t, len(chunks), total/(1000-200)+2)
}
