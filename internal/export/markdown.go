package export

import (
	"fmt"
	"strings"
)

// BuildMarkdown renders a heading per book title, "<position>. <title>"
// subheadings, a blockquote for the outline, and plain paragraph blocks.
func BuildMarkdown(title string, chapters []Chapter) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	for _, ch := range chapters {
		fmt.Fprintf(&sb, "## %d. %s\n\n", ch.Position, ch.Title)
		if ch.Outline != "" {
			fmt.Fprintf(&sb, "> %s\n\n", ch.Outline)
		}
		for _, p := range ch.Paragraphs {
			fmt.Fprintf(&sb, "%s\n\n", p.Content)
		}
	}
	return sb.String()
}
