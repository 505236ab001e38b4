package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

var ErrMissingAPIKey = errors.New("chat provider api key not configured")

// StatusError is a non-success response from the model provider. The turn
// aborts; nothing from a failed response is persisted.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openrouter %d: %s", e.Status, e.Body)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ToolCall struct {
	Name      string
	Arguments map[string]any
}

// StreamEvent is one normalized emission from the bridge: either a text delta
// (Text non-empty) or the single end-of-stream tool-call batch (Calls set).
type StreamEvent struct {
	Text  string
	Calls []ToolCall
}

type Client struct {
	APIKey     string
	URL        string
	Model      string
	MaxTokens  int
	HTTPClient *http.Client
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) maxTokens() int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 4096
}

func (c *Client) post(ctx context.Context, body map[string]any, stream bool) (*http.Response, error) {
	if c.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &StatusError{Status: resp.StatusCode, Body: string(b)}
	}
	return resp, nil
}

// streamDelta is the partial-message frame shape of the provider stream.
type streamDelta struct {
	Choices []struct {
		Delta struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Index    *int `json:"index"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
	} `json:"choices"`
}

// StreamChat opens one streaming completion request and re-emits normalized
// events. Text deltas are forwarded immediately in arrival order. Tool-call
// fragments are accumulated by slot index — name fragments overwrite, argument
// fragments concatenate — and emitted once after the stream ends; calls whose
// argument string never parses as JSON are dropped.
func (c *Client) StreamChat(ctx context.Context, system string, msgs []Message, tools []Tool) (<-chan StreamEvent, error) {
	full := append([]Message{{Role: "system", Content: system}}, msgs...)

	body := map[string]any{
		"model":      c.Model,
		"messages":   full,
		"max_tokens": c.maxTokens(),
		"stream":     true,
	}
	if len(tools) > 0 {
		body["tools"] = tools
	}

	resp, err := c.post(ctx, body, true)
	if err != nil {
		return nil, err
	}

	out := make(chan StreamEvent)
	go func() {
		defer resp.Body.Close()
		defer close(out)

		type callAcc struct {
			name string
			args strings.Builder
		}
		calls := map[int]*callAcc{}

		reader := bufio.NewReader(resp.Body)
		done := false
		for !done {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err != io.EOF {
					return
				}
				// EOF with a trailing partial line: process it, then stop.
				done = true
			}
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, ":") || !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				break
			}

			var delta streamDelta
			if err := json.Unmarshal([]byte(data), &delta); err != nil {
				continue // malformed chunk, skip
			}
			if len(delta.Choices) == 0 {
				continue
			}
			d := delta.Choices[0].Delta

			if d.Content != "" {
				select {
				case out <- StreamEvent{Text: d.Content}:
				case <-ctx.Done():
					return
				}
			}

			for _, tc := range d.ToolCalls {
				idx := 0
				if tc.Index != nil {
					idx = *tc.Index
				}
				acc, ok := calls[idx]
				if !ok {
					acc = &callAcc{}
					calls[idx] = acc
				}
				if tc.Function.Name != "" {
					acc.name = tc.Function.Name
				}
				acc.args.WriteString(tc.Function.Arguments)
			}
		}

		if len(calls) == 0 {
			return
		}
		idxs := make([]int, 0, len(calls))
		for i := range calls {
			idxs = append(idxs, i)
		}
		sort.Ints(idxs)

		var completed []ToolCall
		for _, i := range idxs {
			acc := calls[i]
			if acc.name == "" {
				continue
			}
			var args map[string]any
			if err := json.Unmarshal([]byte(acc.args.String()), &args); err != nil {
				continue // arguments never became valid JSON
			}
			completed = append(completed, ToolCall{Name: acc.name, Arguments: args})
		}
		if len(completed) > 0 {
			select {
			case out <- StreamEvent{Calls: completed}:
			case <-ctx.Done():
			}
		}
	}()

	return out, nil
}

const summaryDirective = `Summarize this conversation concisely. Capture:
- Key topics and decisions made
- Important content/ideas shared for the book
- Any preferences or style notes mentioned
- Where we left off

Keep it under 300 words. This summary will replace the old messages to save context space.`

// Summarize runs a non-streaming completion over the session messages plus a
// fixed summarization directive.
func (c *Client) Summarize(ctx context.Context, msgs []Message) (string, error) {
	full := append(append([]Message{}, msgs...), Message{Role: "user", Content: summaryDirective})

	resp, err := c.post(ctx, map[string]any{
		"model":      c.Model,
		"messages":   full,
		"max_tokens": 512,
	}, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", errors.New("empty completion")
	}
	return result.Choices[0].Message.Content, nil
}

// EstimateTokens is the coarse context-budget heuristic used by the stats
// frame: about 3.5 characters per token.
func EstimateTokens(text string) int {
	return (len(text)*2 + 6) / 7
}

// ModelMaxTokens is the fixed context budget reported in stats frames.
const ModelMaxTokens = 200000
