package voice

import "strings"

const (
	chunkMax = 600 // upper bound per synthesized chunk
	chunkMin = 200 // a sentence boundary before this is not worth cutting at
)

// SplitChunks cuts long text into synthesis-sized pieces at sentence
// boundaries below chunkMax. When no boundary lands past chunkMin the text is
// hard-cut at chunkMax.
func SplitChunks(text string) []string {
	var chunks []string
	remaining := strings.TrimSpace(text)
	for len(remaining) > 0 {
		if len(remaining) <= chunkMax {
			chunks = append(chunks, remaining)
			break
		}
		slice := remaining[:chunkMax]
		breakIdx := lastBoundary(slice)
		if breakIdx > chunkMin {
			chunks = append(chunks, remaining[:breakIdx+1])
			remaining = remaining[breakIdx+2:]
		} else {
			chunks = append(chunks, slice)
			remaining = remaining[chunkMax:]
		}
	}
	return chunks
}

func lastBoundary(s string) int {
	idx := strings.LastIndex(s, ". ")
	if i := strings.LastIndex(s, "! "); i > idx {
		idx = i
	}
	if i := strings.LastIndex(s, "? "); i > idx {
		idx = i
	}
	return idx
}
