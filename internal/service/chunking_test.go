package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextEmptyInput(t *testing.T) {
	assert.Nil(t, SplitText("", DefaultChunkConfig()))
	assert.Nil(t, SplitText("   \n\t  ", DefaultChunkConfig()))
}

func TestSplitTextSingleCharacter(t *testing.T) {
	chunks := SplitText("x", DefaultChunkConfig())
	require.Len(t, chunks, 1)
	assert.Equal(t, "x", chunks[0])
}

func TestSplitTextCollapsesWhitespace(t *testing.T) {
	chunks := SplitText("one\n\n  two\t three", DefaultChunkConfig())
	require.Len(t, chunks, 1)
	assert.Equal(t, "one two three", chunks[0])
}

func TestSplitTextShortTextSingleChunk(t *testing.T) {
	text := strings.Repeat("слово ", 30)
	chunks := SplitText(text, DefaultChunkConfig())
	require.Len(t, chunks, 1)
}

func TestSplitTextLongTextOverlaps(t *testing.T) {
	cfg := ChunkConfig{MaxChars: 100, MinChars: 30, Overlap: 20}
	text := strings.Repeat("beremennost pitanie son progulka ", 30)

	chunks := SplitText(text, cfg)
	require.Greater(t, len(chunks), 1)

	for i, c := range chunks {
		assert.NotEmpty(t, c, "chunk %d", i)
		assert.LessOrEqual(t, len([]rune(c)), cfg.MaxChars, "chunk %d", i)
	}

	// Consecutive chunks share text because of the overlap.
	tail := chunks[0][len(chunks[0])-10:]
	assert.Contains(t, chunks[1], strings.TrimSpace(tail))
}

func TestSplitTextCutsOnWordBoundary(t *testing.T) {
	cfg := ChunkConfig{MaxChars: 50, MinChars: 10, Overlap: 0}
	text := strings.Repeat("alpha beta gamma delta ", 10)

	chunks := SplitText(text, cfg)
	require.Greater(t, len(chunks), 1)
	for i, c := range chunks[:len(chunks)-1] {
		assert.False(t, strings.HasSuffix(c, "alph"), "chunk %d cut mid-word: %q", i, c)
		last := c[strings.LastIndex(c, " ")+1:]
		assert.Contains(t, []string{"alpha", "beta", "gamma", "delta"}, last)
	}
}

func TestSplitTextCyrillicRuneSafety(t *testing.T) {
	cfg := ChunkConfig{MaxChars: 60, MinChars: 20, Overlap: 10}
	text := strings.Repeat("вітаміни фолієва кислота залізо ", 10)

	chunks := SplitText(text, cfg)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.True(t, strings.HasPrefix(c, "в") || strings.HasPrefix(c, "ф") || strings.HasPrefix(c, "з") ||
			strings.HasPrefix(c, "кислота") || strings.HasPrefix(c, "к"), "chunk starts mid-rune: %q", c)
	}
}
