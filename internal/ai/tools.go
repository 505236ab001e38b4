package ai

// Tool names. This is the closed vocabulary; unknown names coming back from
// the model are ignored, never fatal.
const (
	ToolGoToChapter         = "go_to_chapter"
	ToolHighlightParagraph  = "highlight_paragraph"
	ToolAddParagraph        = "add_paragraph"
	ToolEditParagraph       = "edit_paragraph"
	ToolAddChapter          = "add_chapter"
	ToolSetOutline          = "set_outline"
	ToolAddTask             = "add_task"
	ToolCompleteTask        = "complete_task"
	ToolMoveParagraph       = "move_paragraph"
	ToolSetUserInstructions = "set_user_instructions"
	ToolDownloadChapter     = "download_chapter"
	ToolDownloadBook        = "download_book"
	ToolWrapSession         = "wrap_session"
	ToolNewSession          = "new_session"
	ToolSaveNote            = "save_note"
	ToolReadAloud           = "read_aloud"
)

// Tool is an OpenAI-compatible function tool definition.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  ToolParams `json:"parameters"`
}

type ToolParams struct {
	Type       string               `json:"type"`
	Properties map[string]ToolParam `json:"properties"`
	Required   []string             `json:"required,omitempty"`
}

type ToolParam struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

func fn(name, desc string, props map[string]ToolParam, required ...string) Tool {
	return Tool{
		Type: "function",
		Function: ToolFunction{
			Name:        name,
			Description: desc,
			Parameters:  ToolParams{Type: "object", Properties: props, Required: required},
		},
	}
}

// Tools returns the full tool schema handed to the model provider. It is also
// the single source of truth for validating tag-decoded actions.
func Tools() []Tool {
	return []Tool{
		fn(ToolGoToChapter, "Navigate to a chapter by its position number",
			map[string]ToolParam{
				"position": {Type: "integer", Description: "Chapter position number"},
			}, "position"),
		fn(ToolHighlightParagraph, "Highlight/select a specific paragraph in a chapter",
			map[string]ToolParam{
				"chapter_position":   {Type: "integer"},
				"paragraph_position": {Type: "integer"},
			}, "chapter_position", "paragraph_position"),
		fn(ToolAddParagraph, "Add a new paragraph to a chapter. Use [IMAGE: description] format for image placeholders.",
			map[string]ToolParam{
				"chapter_position": {Type: "integer"},
				"content":          {Type: "string", Description: "The paragraph text"},
			}, "chapter_position", "content"),
		fn(ToolEditParagraph, "Edit an existing paragraph by replacing its content",
			map[string]ToolParam{
				"chapter_position":   {Type: "integer"},
				"paragraph_position": {Type: "integer"},
				"content":            {Type: "string", Description: "The new paragraph text"},
			}, "chapter_position", "paragraph_position", "content"),
		fn(ToolAddChapter, "Create a new chapter",
			map[string]ToolParam{
				"title": {Type: "string"},
			}, "title"),
		fn(ToolSetOutline, "Set or update a chapter outline/plan",
			map[string]ToolParam{
				"chapter_position": {Type: "integer"},
				"content":          {Type: "string"},
			}, "chapter_position", "content"),
		fn(ToolAddTask, "Add a task/TODO item",
			map[string]ToolParam{
				"content":          {Type: "string"},
				"chapter_position": {Type: "integer", Description: "Optional — associate with a chapter"},
			}, "content"),
		fn(ToolCompleteTask, "Mark a task as done",
			map[string]ToolParam{
				"task_id": {Type: "integer"},
			}, "task_id"),
		fn(ToolMoveParagraph, "Move a paragraph to a new position within its chapter",
			map[string]ToolParam{
				"chapter_position":   {Type: "integer"},
				"paragraph_position": {Type: "integer", Description: "Current position"},
				"new_position":       {Type: "integer"},
			}, "chapter_position", "paragraph_position", "new_position"),
		fn(ToolSetUserInstructions, "Update the project instructions/preferences. Replaces the entire text.",
			map[string]ToolParam{
				"content": {Type: "string"},
			}, "content"),
		fn(ToolDownloadChapter, "Download a single chapter as PDF or Markdown",
			map[string]ToolParam{
				"chapter_position": {Type: "integer"},
				"format":           {Type: "string", Enum: []string{"pdf", "md"}, Description: "Default: pdf"},
			}, "chapter_position"),
		fn(ToolDownloadBook, "Download the entire book as PDF or Markdown",
			map[string]ToolParam{
				"format": {Type: "string", Enum: []string{"pdf", "md"}, Description: "Default: pdf"},
			}),
		fn(ToolWrapSession, "Wrap up the current session and save a summary for next time",
			map[string]ToolParam{
				"summary": {Type: "string", Description: "Brief summary of what was discussed/accomplished"},
			}, "summary"),
		fn(ToolNewSession, "End the current session and start a fresh one",
			map[string]ToolParam{
				"summary": {Type: "string", Description: "Summary of the session being ended"},
			}, "summary"),
		fn(ToolSaveNote, "Save a private note to yourself for future sessions. The user will not see this.",
			map[string]ToolParam{
				"note": {Type: "string"},
			}, "note"),
		fn(ToolReadAloud, "Read content aloud to the user with the narrator voice. Use this when the user asks you to read back a paragraph, section, or chapter. Provide the actual text content to read — do not reference positions. Keep to roughly one page max (~3000 chars).",
			map[string]ToolParam{
				"content": {Type: "string", Description: "The text to read aloud"},
			}, "content"),
	}
}

// KnownTool reports whether name is part of the vocabulary.
func KnownTool(name string) bool {
	for _, t := range Tools() {
		if t.Function.Name == name {
			return true
		}
	}
	return false
}
