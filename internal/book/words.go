package book

import "strings"

// CountWords splits on runs of whitespace and counts non-empty tokens.
func CountWords(paragraphs []string) int {
	total := 0
	for _, p := range paragraphs {
		total += len(strings.Fields(p))
	}
	return total
}
