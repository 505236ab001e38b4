package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const defaultTTSURL = "https://api.elevenlabs.io/v1/text-to-speech"

// The two fixed voice identities.
var voiceIDs = map[Voice]string{
	Editor:   "21m00Tcm4TlvDq8ikWAM", // Rachel
	Narrator: "onwK4e9ZLuTAKqWW03F9", // Daniel
}

var ErrMissingTTSKey = errors.New("speech provider api key not configured")

// Synthesizer turns text into mpeg audio via an ElevenLabs-style endpoint.
type Synthesizer struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func (s *Synthesizer) baseURL() string {
	if s.BaseURL != "" {
		return s.BaseURL
	}
	return defaultTTSURL
}

func (s *Synthesizer) httpClient() *http.Client {
	if s.HTTPClient != nil {
		return s.HTTPClient
	}
	return http.DefaultClient
}

// SynthesizeChunks splits long text at sentence boundaries and synthesizes
// each piece in order, concatenating the mpeg frames into one payload. The
// provider rejects oversized inputs, so read-aloud of whole chapters goes
// through here.
func (s *Synthesizer) SynthesizeChunks(ctx context.Context, text string, voice Voice) ([]byte, error) {
	var out []byte
	for _, chunk := range SplitChunks(text) {
		audio, err := s.Synthesize(ctx, chunk, voice)
		if err != nil {
			return nil, err
		}
		out = append(out, audio...)
	}
	return out, nil
}

// Synthesize returns the audio payload for one chunk of text. Unknown voices
// fall back to the editor identity.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error) {
	if s.APIKey == "" {
		return nil, ErrMissingTTSKey
	}
	voiceID, ok := voiceIDs[voice]
	if !ok {
		voiceID = voiceIDs[Editor]
	}

	body, err := json.Marshal(map[string]any{
		"text":     text,
		"model_id": "eleven_monolingual_v1",
		"voice_settings": map[string]any{
			"stability":        0.6,
			"similarity_boost": 0.75,
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/%s", s.baseURL(), voiceID), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", s.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("elevenlabs %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}
