package models

import (
	"net/url"
	"regexp"
	"strings"
)

// VideoInfo is the metadata the resolver returns for a single video.
type VideoInfo struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	ThumbnailURL  string `json:"thumbnail"`
	DurationLabel string `json:"duration"`
	AuthorName    string `json:"author"`
}

type ProcessRequest struct {
	URL string `json:"url"`
}

// ProcessResponse is the body of a successful POST /api/process.
// MCQs is the raw JSON text produced by the quiz generator, passed through untouched.
type ProcessResponse struct {
	Title      string `json:"title"`
	Thumbnail  string `json:"thumbnail"`
	Duration   string `json:"duration"`
	Author     string `json:"author"`
	Summary    string `json:"summary"`
	Transcript string `json:"transcript"`
	MCQs       string `json:"mcqs"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

var (
	watchURLPattern = regexp.MustCompile(`^https?://(www\.)?youtube\.com/watch\?v=`)
	videoParam      = regexp.MustCompile(`[?&]v=([^&]+)`)
)

// IsWatchURL reports whether raw is a canonical youtube.com watch link.
func IsWatchURL(raw string) bool {
	return watchURLPattern.MatchString(raw)
}

// ExtractVideoID returns the value of the first v parameter, or "" when there is none.
func ExtractVideoID(raw string) string {
	m := videoParam.FindStringSubmatch(raw)
	if len(m) < 2 {
		return ""
	}
	// Cut any fragment left over from links like ...?v=abc#t=30
	id, _, _ := strings.Cut(m[1], "#")
	return id
}

// ExtractVideoIDAny also understands youtu.be short links and /embed/ paths.
func ExtractVideoIDAny(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case strings.Contains(host, "youtube.com") && u.Query().Get("v") != "":
		return u.Query().Get("v")
	case strings.Contains(host, "youtu.be"):
		id, _, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		return id
	case strings.Contains(u.Path, "/embed/"):
		_, rest, _ := strings.Cut(u.Path, "/embed/")
		id, _, _ := strings.Cut(rest, "/")
		return id
	}
	return ""
}

// WatchURL builds the canonical watch link for a video ID.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(id)
}
