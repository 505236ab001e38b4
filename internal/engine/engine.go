// Package engine turns decoded AI actions into manuscript mutations and keeps
// a view-state snapshot in sync while a turn is still streaming.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quill/internal/ai"
	"quill/internal/book"
	"quill/internal/export"
)

// SkipReason records why an action was a no-op. Lookup misses are expected
// when the model hallucinates a position; they never abort the turn.
type SkipReason string

const (
	SkipNone             SkipReason = ""
	SkipUnknownTool      SkipReason = "unknown_tool"
	SkipUnknownChapter   SkipReason = "unknown_chapter"
	SkipUnknownParagraph SkipReason = "unknown_paragraph"
	SkipUnknownTask      SkipReason = "unknown_task"
	SkipMissingArgument  SkipReason = "missing_argument"
)

// State is the view snapshot one client works against: the loaded chapter
// list, the chapter open in the view, open tasks, and the running session.
type State struct {
	BookID            uint64              `json:"book_id"`
	BookTitle         string              `json:"book_title"`
	Chapters          []book.Chapter      `json:"chapters"`
	Current           *book.ChapterDetail `json:"current_chapter"`
	SelectedParagraph *uint64             `json:"selected_paragraph"`
	Tasks             []book.TaskView     `json:"tasks"`
	WordCount         int                 `json:"word_count"`
	Session           book.Session        `json:"session"`
	Messages          []ai.Message        `json:"messages"`
	PreviousSummary   string              `json:"previous_summary"`
	UserInstructions  string              `json:"user_instructions"`
}

// Outcome describes one executed (or skipped) action. Summary text depends
// only on the tool name, not on whether the lookup succeeded.
type Outcome struct {
	Tool     string     `json:"tool"`
	Summary  string     `json:"summary"`
	Skip     SkipReason `json:"skip,omitempty"`
	Speak    string     `json:"speak,omitempty"`
	Download string     `json:"download,omitempty"`
}

// Summarizer produces a session summary from the in-session messages.
type Summarizer interface {
	Summarize(ctx context.Context, msgs []ai.Message) (string, error)
}

// Notifier pushes updated private-note values to any live UI channel.
type Notifier interface {
	NotesUpdated(bookID uint64, value string)
}

type Engine struct {
	Books   *book.Service
	Summ    Summarizer
	Exports *export.Renderer
	Notify  Notifier
}

// SummarizeAction is the one-line activity label for a tool name. save_note
// is private and yields no label.
func SummarizeAction(a ai.Action) string {
	switch a.Tool {
	case ai.ToolGoToChapter:
		return "Switched chapters"
	case ai.ToolHighlightParagraph:
		return "Highlighted a paragraph"
	case ai.ToolAddParagraph:
		return "Added a paragraph"
	case ai.ToolEditParagraph:
		return "Edited a paragraph"
	case ai.ToolAddChapter:
		return "Created a chapter"
	case ai.ToolSetOutline:
		return "Updated the outline"
	case ai.ToolAddTask:
		return "Added a task"
	case ai.ToolCompleteTask:
		return "Completed a task"
	case ai.ToolWrapSession:
		return "Wrapped up the session"
	case ai.ToolNewSession:
		return "Started a new session"
	case ai.ToolMoveParagraph:
		return "Moved a paragraph"
	case ai.ToolDownloadChapter:
		return "Downloaded a chapter"
	case ai.ToolDownloadBook:
		return "Downloaded the book"
	case ai.ToolSetUserInstructions:
		return "Updated project instructions"
	case ai.ToolReadAloud:
		return "Read content aloud"
	case ai.ToolSaveNote:
		return ""
	default:
		return strings.ReplaceAll(a.Tool, "_", " ")
	}
}

// LoadState builds a fresh view snapshot for a book, creating the first
// session when none exists yet.
func (e *Engine) LoadState(ctx context.Context, bookID uint64) (*State, error) {
	b, err := e.Books.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	st := &State{BookID: b.ID, BookTitle: b.Title}

	st.Chapters, err = e.Books.Chapters(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if len(st.Chapters) > 0 {
		detail, wc, err := e.Books.ChapterDetail(ctx, st.Chapters[0].ID)
		if err != nil {
			return nil, err
		}
		st.Current = &detail
		st.WordCount = wc
	}

	st.Tasks, err = e.Books.OpenTasks(ctx, bookID)
	if err != nil {
		return nil, err
	}

	sess, err := e.Books.CurrentSession(ctx, bookID)
	if errors.Is(err, book.ErrNotFound) {
		sess, err = e.Books.CreateSession(ctx, bookID, "")
	}
	if err != nil {
		return nil, err
	}
	st.Session = sess

	st.PreviousSummary, err = e.Books.PreviousSessionSummary(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if n, err := e.Books.Note(ctx, bookID, book.KeyUserInstructions); err == nil {
		st.UserInstructions = n.Value
	}

	return st, nil
}

// ExecuteAll applies actions strictly in array order; later actions may
// depend on earlier ones (add_chapter then add_paragraph to it).
func (e *Engine) ExecuteAll(ctx context.Context, st *State, actions []ai.Action) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(actions))
	for _, a := range actions {
		o, err := e.Execute(ctx, st, a)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

// Execute applies one action. Lookup misses come back as Skip outcomes, not
// errors; errors are reserved for persistence failures.
func (e *Engine) Execute(ctx context.Context, st *State, a ai.Action) (Outcome, error) {
	o := Outcome{Tool: a.Tool, Summary: SummarizeAction(a)}

	switch a.Tool {
	case ai.ToolGoToChapter:
		pos, ok := a.Int("position")
		if !ok {
			o.Skip = SkipMissingArgument
			return o, nil
		}
		ch := st.chapterAt(pos)
		if ch == nil {
			o.Skip = SkipUnknownChapter
			return o, nil
		}
		detail, wc, err := e.Books.ChapterDetail(ctx, ch.ID)
		if err != nil {
			return o, err
		}
		st.Current = &detail
		st.WordCount = wc
		st.SelectedParagraph = nil

	case ai.ToolHighlightParagraph:
		ch := st.chapterAt(intArg(a, "chapter_position"))
		if ch == nil {
			o.Skip = SkipUnknownChapter
			return o, nil
		}
		detail, wc, err := e.Books.ChapterDetail(ctx, ch.ID)
		if err != nil {
			return o, err
		}
		st.Current = &detail
		st.WordCount = wc
		st.SelectedParagraph = nil
		pPos, _ := a.Int("paragraph_position")
		if p := paragraphAt(detail.Paragraphs, pPos); p != nil {
			st.SelectedParagraph = &p.ID
		} else {
			o.Skip = SkipUnknownParagraph
		}

	case ai.ToolAddParagraph:
		ch := st.chapterAt(intArg(a, "chapter_position"))
		if ch == nil {
			o.Skip = SkipUnknownChapter
			return o, nil
		}
		if _, err := e.Books.AddParagraph(ctx, ch.ID, a.Str("content")); err != nil {
			return o, err
		}
		if err := e.refreshIfCurrent(ctx, st, ch.ID); err != nil {
			return o, err
		}

	case ai.ToolEditParagraph:
		ch := st.chapterAt(intArg(a, "chapter_position"))
		if ch == nil {
			o.Skip = SkipUnknownChapter
			return o, nil
		}
		detail, _, err := e.Books.ChapterDetail(ctx, ch.ID)
		if err != nil {
			return o, err
		}
		p := paragraphAt(detail.Paragraphs, intArg(a, "paragraph_position"))
		if p == nil {
			o.Skip = SkipUnknownParagraph
			return o, nil
		}
		if _, _, err := e.Books.EditParagraph(ctx, p.ID, a.Str("content")); err != nil {
			return o, err
		}
		if err := e.refreshIfCurrent(ctx, st, ch.ID); err != nil {
			return o, err
		}

	case ai.ToolAddChapter:
		title := a.Str("title")
		if title == "" {
			o.Skip = SkipMissingArgument
			return o, nil
		}
		ch, err := e.Books.CreateChapter(ctx, st.BookID, title)
		if err != nil {
			return o, err
		}
		st.Chapters, err = e.Books.Chapters(ctx, st.BookID)
		if err != nil {
			return o, err
		}
		detail, wc, err := e.Books.ChapterDetail(ctx, ch.ID)
		if err != nil {
			return o, err
		}
		st.Current = &detail
		st.WordCount = wc
		st.SelectedParagraph = nil

	case ai.ToolSetOutline:
		ch := st.chapterAt(intArg(a, "chapter_position"))
		if ch == nil {
			o.Skip = SkipUnknownChapter
			return o, nil
		}
		outline := a.Str("content")
		if _, err := e.Books.UpdateChapter(ctx, ch.ID, book.ChapterPatch{Outline: &outline}); err != nil {
			return o, err
		}
		if err := e.refreshIfCurrent(ctx, st, ch.ID); err != nil {
			return o, err
		}

	case ai.ToolAddTask:
		content := a.Str("content")
		if content == "" {
			o.Skip = SkipMissingArgument
			return o, nil
		}
		var chapterID *uint64
		if ch := st.chapterAt(intArg(a, "chapter_position")); ch != nil {
			chapterID = &ch.ID
		}
		if _, err := e.Books.CreateTask(ctx, st.BookID, content, chapterID, book.SourceAI); err != nil {
			return o, err
		}
		if err := e.refreshTasks(ctx, st); err != nil {
			return o, err
		}

	case ai.ToolCompleteTask:
		id, ok := a.Int("task_id")
		if !ok {
			o.Skip = SkipMissingArgument
			return o, nil
		}
		_, err := e.Books.SetTaskStatus(ctx, uint64(id), book.TaskDone)
		if errors.Is(err, book.ErrNotFound) {
			o.Skip = SkipUnknownTask
			return o, nil
		}
		if err != nil {
			return o, err
		}
		if err := e.refreshTasks(ctx, st); err != nil {
			return o, err
		}

	case ai.ToolMoveParagraph:
		ch := st.chapterAt(intArg(a, "chapter_position"))
		if ch == nil {
			o.Skip = SkipUnknownChapter
			return o, nil
		}
		detail, _, err := e.Books.ChapterDetail(ctx, ch.ID)
		if err != nil {
			return o, err
		}
		p := paragraphAt(detail.Paragraphs, intArg(a, "paragraph_position"))
		if p == nil {
			o.Skip = SkipUnknownParagraph
			return o, nil
		}
		newPos, ok := a.Int("new_position")
		if !ok {
			o.Skip = SkipMissingArgument
			return o, nil
		}
		if err := e.Books.MoveParagraph(ctx, p.ID, newPos); err != nil {
			return o, err
		}
		if err := e.refreshIfCurrent(ctx, st, ch.ID); err != nil {
			return o, err
		}

	case ai.ToolSetUserInstructions:
		content := a.Str("content")
		if _, err := e.Books.SetNote(ctx, st.BookID, book.KeyUserInstructions, content); err != nil {
			return o, err
		}
		st.UserInstructions = content

	case ai.ToolDownloadChapter:
		ch := st.chapterAt(intArg(a, "chapter_position"))
		if ch == nil {
			o.Skip = SkipUnknownChapter
			return o, nil
		}
		detail, _, err := e.Books.ChapterDetail(ctx, ch.ID)
		if err != nil {
			return o, err
		}
		name, err := e.render(fmt.Sprintf("%s - %s", st.BookTitle, ch.Title),
			[]export.Chapter{toExport(detail)}, a.Str("format"))
		if err != nil {
			return o, err
		}
		o.Download = name

	case ai.ToolDownloadBook:
		chapters := make([]export.Chapter, 0, len(st.Chapters))
		for _, ch := range st.Chapters {
			detail, _, err := e.Books.ChapterDetail(ctx, ch.ID)
			if err != nil {
				return o, err
			}
			chapters = append(chapters, toExport(detail))
		}
		name, err := e.render(st.BookTitle, chapters, a.Str("format"))
		if err != nil {
			return o, err
		}
		o.Download = name

	case ai.ToolWrapSession:
		if err := e.wrap(ctx, st, a.Str("summary")); err != nil {
			return o, err
		}

	case ai.ToolNewSession:
		// Wrap the running session first, but only when it actually held a
		// conversation (activity lines carry the "action" role).
		if countConversation(st.Messages) > 0 {
			summary := a.Str("summary")
			if summary == "" {
				summary = "Session ended by AI."
			}
			if err := e.wrap(ctx, st, summary); err != nil {
				return o, err
			}
		} else {
			sess, err := e.Books.CreateSession(ctx, st.BookID, "")
			if err != nil {
				return o, err
			}
			st.Session = sess
			st.Messages = nil
			st.PreviousSummary = a.Str("summary")
		}

	case ai.ToolSaveNote:
		note := a.Str("note")
		if note == "" {
			o.Skip = SkipMissingArgument
			return o, nil
		}
		n, err := e.Books.AppendNote(ctx, st.BookID, book.KeyAIInstructions, note)
		if err != nil {
			return o, err
		}
		if e.Notify != nil {
			e.Notify.NotesUpdated(st.BookID, n.Value)
		}

	case ai.ToolReadAloud:
		o.Speak = a.Str("content")

	default:
		o.Skip = SkipUnknownTool
	}

	return o, nil
}

// wrap persists a summary on the current session (generating one over the
// held messages when the model supplied none), then opens a fresh session.
// The caller's message log is cleared either way.
func (e *Engine) wrap(ctx context.Context, st *State, summary string) error {
	if summary == "" && e.Summ != nil && len(st.Messages) > 0 {
		generated, err := e.Summ.Summarize(ctx, st.Messages)
		if err == nil {
			summary = generated
		}
	}
	if err := e.Books.SetSummary(ctx, st.Session.ID, summary); err != nil {
		return err
	}
	sess, err := e.Books.CreateSession(ctx, st.BookID, "")
	if err != nil {
		return err
	}
	st.Session = sess
	st.Messages = nil
	st.PreviousSummary = summary
	return nil
}

func (e *Engine) render(title string, chapters []export.Chapter, format string) (string, error) {
	f, err := e.Exports.Render(title, chapters, format)
	if err != nil {
		return "", err
	}
	return e.Exports.Save(f)
}

// refreshIfCurrent refetches the open chapter after a mutation touched it;
// off-screen edits leave the view alone.
func (e *Engine) refreshIfCurrent(ctx context.Context, st *State, chapterID uint64) error {
	if st.Current == nil || st.Current.ID != chapterID {
		return nil
	}
	detail, wc, err := e.Books.ChapterDetail(ctx, chapterID)
	if err != nil {
		return err
	}
	st.Current = &detail
	st.WordCount = wc
	return nil
}

func (e *Engine) refreshTasks(ctx context.Context, st *State) error {
	tasks, err := e.Books.OpenTasks(ctx, st.BookID)
	if err != nil {
		return err
	}
	st.Tasks = tasks
	return nil
}

func (st *State) chapterAt(pos int) *book.Chapter {
	for i := range st.Chapters {
		if st.Chapters[i].Position == pos {
			return &st.Chapters[i]
		}
	}
	return nil
}

func paragraphAt(paras []book.Paragraph, pos int) *book.Paragraph {
	for i := range paras {
		if paras[i].Position == pos {
			return &paras[i]
		}
	}
	return nil
}

func intArg(a ai.Action, key string) int {
	v, _ := a.Int(key)
	return v
}

func countConversation(msgs []ai.Message) int {
	n := 0
	for _, m := range msgs {
		if m.Role != "action" {
			n++
		}
	}
	return n
}

func toExport(d book.ChapterDetail) export.Chapter {
	out := export.Chapter{Position: d.Position, Title: d.Title, Outline: d.Outline}
	for _, p := range d.Paragraphs {
		out.Paragraphs = append(out.Paragraphs, export.Paragraph{Position: p.Position, Content: p.Content})
	}
	return out
}
