package rest

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/ewilliams-labs/moodtune/internal/core/services"
)

// maxAudioBytes caps an uploaded voice clip at 10 MiB.
const maxAudioBytes = 10 << 20

// recommendRequest is the text entry point: an already transcribed request,
// optionally with the upstream emotion classification attached.
type recommendRequest struct {
	UserID            string  `json:"user_id"`
	Text              string  `json:"text"`
	Emotion           string  `json:"emotion,omitempty"`
	EmotionConfidence float64 `json:"emotion_confidence,omitempty"`
}

// RecommendText handles POST /api/v1/recommend
func (h *Handler) RecommendText(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	result := h.pipeline.Process(r.Context(), services.Request{
		UserID:     req.UserID,
		Transcript: req.Text,
		Emotion:    req.Emotion,
		Confidence: req.EmotionConfidence,
	})
	writeJSON(w, http.StatusOK, result)
}

// RecommendAudio handles POST /api/v1/recommend/audio
//
// The clip arrives as multipart/form-data: an "audio" file part plus
// optional "format" and "user_id" values. The pipeline result is always
// 200; rejection reasons live inside the body.
func (h *Handler) RecommendAudio(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form with an audio file")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read audio file")
		return
	}
	if len(audio) > maxAudioBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "audio file exceeds "+strconv.Itoa(maxAudioBytes)+" bytes")
		return
	}

	format := r.FormValue("format")
	if format == "" {
		format = formatFromFilename(header.Filename)
	}

	result := h.pipeline.Process(r.Context(), services.Request{
		UserID: r.FormValue("user_id"),
		Audio:  audio,
		Format: format,
	})
	writeJSON(w, http.StatusOK, result)
}

func formatFromFilename(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 && i < len(name)-1 {
		return strings.ToLower(name[i+1:])
	}
	return "ogg"
}
