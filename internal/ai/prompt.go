package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quill/internal/book"
)

const defaultPreamble = `You are a warm, supportive book writing partner and virtual publisher.

You have four roles:

**Interviewer**: Draw out the author's knowledge and stories with thoughtful questions.

**Editor**: Track tone and style consistency. Keep the voice authentically theirs.

**Organizer**: Maintain awareness of the book's structure. Propose where new content fits.

**Publisher / Author Coach**: Help the author understand the craft. Book metrics, reading level, market context.

Guidelines:
- Keep responses concise and conversational — this may be a voice conversation
- Ask one question at a time
- When the author shares content, acknowledge it warmly before asking follow-ups
- This is THEIR book — help them express their vision, not yours
- Be encouraging but honest
- Use tools to take actions — navigate, add content, edit, organize, download, etc.
- You can call multiple tools in one response
- Use save_note to remember things between sessions (the user won't see these)

## Image & Diagram Placeholders

To mark where an image or diagram should go, add a paragraph with the format:
[IMAGE: description of the image or diagram]

For example: [IMAGE: Photo of the finished mushroom cultivation setup with labels]

These render as visual placeholder blocks in the manuscript. Use them when the author mentions wanting a picture, diagram, or illustration somewhere.`

const feedbackReminder = `## Feedback Reminder
This is the first message today. Warmly remind the author (once, briefly) that they can share feedback or suggestions about this writing tool — what's working, what's not, what they wish it could do. Keep it to one sentence, woven naturally into your greeting.`

// PromptBuilder assembles the system prompt from scratch on every turn.
// Now is injectable for tests; nil means time.Now.
type PromptBuilder struct {
	Books *book.Service
	Now   func() time.Time
}

func (b *PromptBuilder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// Build produces the full instruction context for one turn: preamble, clock,
// manuscript, once-per-day feedback reminder, user instructions, the AI's own
// notes, open tasks, and the previous session's summary. Manuscript content
// comes before instructions so later guidance takes precedence.
func (b *PromptBuilder) Build(ctx context.Context, bookID uint64) (string, error) {
	var sb strings.Builder
	sb.WriteString(defaultPreamble)

	now := b.now()
	fmt.Fprintf(&sb, "\n\n## Current Time\n%s", now.Format("Monday, January 2, 2006, 3:04 PM MST"))

	chapters, err := b.Books.Chapters(ctx, bookID)
	if err != nil {
		return "", err
	}
	if len(chapters) > 0 {
		sb.WriteString("\n\n## Full Manuscript")
		for _, ch := range chapters {
			fmt.Fprintf(&sb, "\n\n### Chapter %d: %s", ch.Position, ch.Title)
			if ch.Outline != "" {
				fmt.Fprintf(&sb, "\nOutline: %s", ch.Outline)
			}
			detail, _, err := b.Books.ChapterDetail(ctx, ch.ID)
			if err != nil {
				return "", err
			}
			if len(detail.Paragraphs) == 0 {
				sb.WriteString("\n(no content yet)")
			}
			for _, p := range detail.Paragraphs {
				fmt.Fprintf(&sb, "\n\n[%d] %s", p.Position, p.Content)
			}
		}
	}

	// Feedback reminder fires at most once per calendar day. The stored date
	// is updated in the same build that reads it.
	today := now.Format("2006-01-02")
	last, err := b.Books.Note(ctx, bookID, book.KeyLastFeedbackReminder)
	if err != nil && err != book.ErrNotFound {
		return "", err
	}
	if err == book.ErrNotFound || last.Value < today {
		sb.WriteString("\n\n")
		sb.WriteString(feedbackReminder)
		if _, err := b.Books.SetNote(ctx, bookID, book.KeyLastFeedbackReminder, today); err != nil {
			return "", err
		}
	}

	if n, err := b.Books.Note(ctx, bookID, book.KeyUserInstructions); err == nil && n.Value != "" {
		fmt.Fprintf(&sb, "\n\n## User's Custom Instructions\n%s", n.Value)
	}

	if n, err := b.Books.Note(ctx, bookID, book.KeyAIInstructions); err == nil && n.Value != "" {
		fmt.Fprintf(&sb, "\n\n## Your Own Notes (from previous sessions)\n%s", n.Value)
	}

	tasks, err := b.Books.OpenTasks(ctx, bookID)
	if err != nil {
		return "", err
	}
	if len(tasks) > 0 {
		sb.WriteString("\n\n## Open Tasks")
		for _, t := range tasks {
			line := fmt.Sprintf("\n  - [%d] %s", t.ID, t.Content)
			if t.ChapterPosition != nil {
				line += fmt.Sprintf(" (Ch %d)", *t.ChapterPosition)
			}
			sb.WriteString(line)
		}
	}

	prev, err := b.Books.PreviousSessionSummary(ctx, bookID)
	if err != nil {
		return "", err
	}
	if prev != "" {
		fmt.Fprintf(&sb, "\n\n## Previous Session Summary\n%s", prev)
	}

	return sb.String(), nil
}
