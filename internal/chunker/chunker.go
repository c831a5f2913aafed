// Package chunker splits normalized document text into overlapping,
// token-budgeted passages along sentence boundaries.
package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/docask/docask/internal/pkg/errs"
	"github.com/docask/docask/internal/tokenizer"
)

const (
	// Documents shorter than this after normalization carry no retrievable
	// content worth indexing.
	minDocumentChars = 50
	// Fragments at or below this length are treated as noise left over from
	// the sentence splitter, not standalone sentences.
	minSentenceChars = 10
)

var (
	tripleNewline = regexp.MustCompile(`\n{3,}`)
	spaceRun      = regexp.MustCompile(` +`)
	sentenceEnd   = regexp.MustCompile(`([.!?])\s+`)
)

// Chunk is one output passage before it is tagged with document metadata.
type Chunk struct {
	Text       string
	TokenCount int
}

// Split normalizes text and packs its sentences into chunks of at most
// maxTokens, seeding each chunk after the first with up to overlapTokens of
// the previous chunk's trailing sentences. A single sentence that alone
// exceeds maxTokens becomes its own oversized chunk; sentences are never
// split.
func Split(text string, maxTokens, overlapTokens int) ([]Chunk, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("%w: max chunk tokens must be positive", errs.ErrInvalid)
	}
	cleaned := Normalize(text)
	if len(cleaned) < minDocumentChars {
		return nil, errs.ErrEmptyDocument
	}
	sentences := splitSentences(cleaned)
	if len(sentences) == 0 {
		return nil, errs.ErrEmptyDocument
	}

	var chunks []Chunk
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		joined := strings.Join(current, " ")
		chunks = append(chunks, Chunk{Text: joined, TokenCount: tokenizer.Count(joined)})
	}

	for _, sentence := range sentences {
		sentenceTokens := tokenizer.Count(sentence)
		if currentTokens+sentenceTokens > maxTokens && len(current) > 0 {
			flush()
			overlap, overlapCount := overlapWindow(current, overlapTokens)
			current = append(overlap, sentence)
			currentTokens = overlapCount + sentenceTokens
			continue
		}
		current = append(current, sentence)
		currentTokens += sentenceTokens
	}
	flush()
	return chunks, nil
}

// Normalize collapses whitespace without destroying paragraph structure:
// CR and tab become LF and space, runs of 3+ newlines collapse to 2, runs
// of spaces to 1, and the result is trimmed.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\t", " ")
	text = tripleNewline.ReplaceAllString(text, "\n\n")
	text = spaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func splitSentences(text string) []string {
	marked := sentenceEnd.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if len(part) > minSentenceChars {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

// overlapWindow walks the closed chunk's sentences backward, keeping them
// (in original order) while their cumulative token count stays within
// budget.
func overlapWindow(sentences []string, budget int) ([]string, int) {
	var window []string
	total := 0
	for i := len(sentences) - 1; i >= 0; i-- {
		t := tokenizer.Count(sentences[i])
		if total+t > budget {
			break
		}
		total += t
		window = append([]string{sentences[i]}, window...)
	}
	return window, total
}
