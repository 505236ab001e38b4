package voice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitChunks_ShortTextSinglePiece(t *testing.T) {
	chunks := SplitChunks("Just one short sentence.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Just one short sentence.", chunks[0])
}

func TestSplitChunks_CutsAtSentenceBoundary(t *testing.T) {
	first := strings.Repeat("word ", 115) + "ends here." // 585 chars, past chunkMin
	second := "The rest of the story continues on."
	text := first + " " + second

	chunks := SplitChunks(text)
	require.Len(t, chunks, 2)
	assert.Equal(t, first, chunks[0])
	assert.Equal(t, second, chunks[1])
}

func TestSplitChunks_HardCutWithoutBoundary(t *testing.T) {
	text := strings.Repeat("a", 700)

	chunks := SplitChunks(text)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], 600)
	assert.Len(t, chunks[1], 100)
}

func TestSplitChunks_EarlyBoundaryIgnored(t *testing.T) {
	// only sentence boundary sits before chunkMin, so the cut is hard
	text := "Short. " + strings.Repeat("b", 650)

	chunks := SplitChunks(text)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], 600)
}

func TestSplitChunks_EmptyInput(t *testing.T) {
	assert.Empty(t, SplitChunks("   "))
}
