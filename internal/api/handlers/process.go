package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"jamesfarrell.me/youtube-study/internal/llm"
	"jamesfarrell.me/youtube-study/internal/models"
	"jamesfarrell.me/youtube-study/internal/process"
	"jamesfarrell.me/youtube-study/internal/reqlog"
	"jamesfarrell.me/youtube-study/internal/youtube"
)

const (
	msgInvalidURL         = "Invalid YouTube URL."
	msgMissingID          = "Cannot extract video ID."
	msgNotFound           = "Video not found."
	msgTranscriptRequired = "Transcript not available for this video."
	msgProcessFailed      = "Failed to process the video."
)

// maxBodyBytes caps the JSON request body; a watch URL is far smaller.
const maxBodyBytes = 64 << 10

type Processor interface {
	Process(ctx context.Context, url string) (*models.ProcessResponse, error)
}

type ProcessHandler struct {
	processor Processor
}

func NewProcessHandler(p Processor) *ProcessHandler {
	return &ProcessHandler{processor: p}
}

func (h *ProcessHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req models.ProcessRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidURL)
		return
	}

	resp, err := h.processor.Process(r.Context(), req.URL)
	if err != nil {
		status, msg := classify(err)
		if status == http.StatusInternalServerError {
			reqlog.FromContext(r.Context()).Error("error processing video", "url", req.URL, "error", err)
		}
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// classify maps a pipeline error to its HTTP status and client message.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, process.ErrInvalidURL):
		return http.StatusBadRequest, msgInvalidURL
	case errors.Is(err, process.ErrMissingID):
		return http.StatusBadRequest, msgMissingID
	case errors.Is(err, youtube.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	case errors.Is(err, process.ErrTranscriptRequired):
		return http.StatusUnprocessableEntity, msgTranscriptRequired
	}

	var perr *llm.ProviderError
	if errors.As(err, &perr) {
		return http.StatusInternalServerError, fmt.Sprintf("%s (upstream status %d)", msgProcessFailed, perr.StatusCode)
	}
	return http.StatusInternalServerError, msgProcessFailed
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}
