package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	noteRe   = regexp.MustCompile(`(?s)<<NOTE_TO_SELF:\s*(.*?)>>`)
	actionRe = regexp.MustCompile(`(?s)<<ACTION:\s*(.*?)>>`)
)

// ExtractResult is what remains of a raw model response once the embedded-tag
// protocol has been stripped out of it.
type ExtractResult struct {
	Visible string
	Notes   []string
	Actions []Action
}

// Extract pulls NOTE_TO_SELF spans first, then ACTION spans from the
// remainder. Each action payload is parsed independently; malformed JSON is
// dropped without disturbing the rest. Pure function.
func Extract(raw string) ExtractResult {
	var res ExtractResult

	for _, m := range noteRe.FindAllStringSubmatch(raw, -1) {
		res.Notes = append(res.Notes, strings.TrimSpace(m[1]))
	}
	clean := strings.TrimSpace(noteRe.ReplaceAllString(raw, ""))

	for _, m := range actionRe.FindAllStringSubmatch(clean, -1) {
		var a Action
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &a); err != nil {
			continue
		}
		if a.Tool == "" {
			continue
		}
		res.Actions = append(res.Actions, a)
	}
	res.Visible = strings.TrimSpace(actionRe.ReplaceAllString(clean, ""))

	return res
}
