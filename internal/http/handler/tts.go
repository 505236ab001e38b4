package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"quill/internal/voice"
)

type TTSHandler struct {
	Synth *voice.Synthesizer
}

type ttsReq struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// Speak synthesizes text and returns raw mpeg audio, chunking long input at
// sentence boundaries server-side. The client owns playback ordering; this
// endpoint is stateless.
func (h *TTSHandler) Speak(w http.ResponseWriter, r *http.Request) {
	var req ttsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text required", http.StatusBadRequest)
		return
	}

	v := voice.Editor
	if req.Voice == string(voice.Narrator) {
		v = voice.Narrator
	}

	audio, err := h.Synth.SynthesizeChunks(r.Context(), req.Text, v)
	if errors.Is(err, voice.ErrMissingTTSKey) {
		http.Error(w, "speech is not configured on this server", http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		http.Error(w, "speech synthesis failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	_, _ = w.Write(audio)
}
