package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCount(t *testing.T) {
	require.Equal(t, 0, Count(""))
	require.Equal(t, 1, Count("hello"))
	require.Equal(t, 3, Count("one two three"))
	require.Equal(t, 3, Count("  one \n two\tthree  "))
}

func TestCount_NonASCIIRunesCountIndividually(t *testing.T) {
	// Three CJK runes plus the field they form.
	require.Equal(t, 4, Count("你好吗"))
	// Mixed: 2 words + 2 runes.
	require.Equal(t, 4, Count("hello 你好"))
}

func TestCount_WhitespaceOnlyIsOneToken(t *testing.T) {
	require.Equal(t, 1, Count("   "))
}
