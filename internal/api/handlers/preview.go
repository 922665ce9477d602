package handlers

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"jamesfarrell.me/youtube-study/internal/models"
	"jamesfarrell.me/youtube-study/internal/reqlog"
	"jamesfarrell.me/youtube-study/internal/youtube"
)

const (
	defaultPreviewTitle       = "YouTube Study - Video Summarizer"
	defaultPreviewDescription = "Watch and summarize YouTube videos easily."
)

type Resolver interface {
	Resolve(ctx context.Context, videoID string) (*models.VideoInfo, error)
}

var previewTmpl = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}}</title>
  <meta name="title" content="{{.Title}}" />
  <meta name="description" content="{{.Description}}" />
  <meta property="og:type" content="video.other" />
  <meta property="og:url" content="{{.WatchURL}}" />
  <meta property="og:title" content="{{.Title}}" />
  <meta property="og:description" content="{{.Description}}" />
  <meta property="og:image" content="{{.Image}}" />
  <meta name="twitter:card" content="player" />
  <meta name="twitter:title" content="{{.Title}}" />
  <meta name="twitter:description" content="{{.Description}}" />
  <meta name="twitter:image" content="{{.Image}}" />
  <meta name="twitter:player" content="{{.WatchURL}}" />
  <meta name="twitter:player:width" content="1280" />
  <meta name="twitter:player:height" content="720" />
  <meta http-equiv="refresh" content="0; URL='{{.DetailURL}}'" />
</head>
<body>
  <p>Redirecting to video page...</p>
</body>
</html>
`))

type previewPage struct {
	Title       string
	Description string
	Image       string
	WatchURL    string
	DetailURL   string
}

// PreviewHandler serves link-unfurling pages that redirect browsers to the client.
type PreviewHandler struct {
	resolver      Resolver
	clientBaseURL string
}

func NewPreviewHandler(r Resolver, clientBaseURL string) *PreviewHandler {
	return &PreviewHandler{resolver: r, clientBaseURL: strings.TrimRight(clientBaseURL, "/")}
}

func (h *PreviewHandler) Preview(w http.ResponseWriter, r *http.Request) {
	videoID := mux.Vars(r)["videoId"]
	if videoID == "" {
		http.Error(w, "Video ID is required.", http.StatusBadRequest)
		return
	}

	info, err := h.resolver.Resolve(r.Context(), videoID)
	if err != nil {
		if errors.Is(err, youtube.ErrNotFound) {
			http.Error(w, msgNotFound, http.StatusNotFound)
			return
		}
		reqlog.FromContext(r.Context()).Error("error generating preview page", "video_id", videoID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	page := previewPage{
		Title:       orDefault(info.Title, defaultPreviewTitle),
		Description: orDefault(info.Description, defaultPreviewDescription),
		Image:       info.ThumbnailURL,
		WatchURL:    models.WatchURL(videoID),
		DetailURL:   h.clientBaseURL + "/detail/" + url.PathEscape(videoID),
	}

	var buf bytes.Buffer
	if err := previewTmpl.Execute(&buf, page); err != nil {
		reqlog.FromContext(r.Context()).Error("render preview", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
