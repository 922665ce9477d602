package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jamesfarrell.me/youtube-study/internal/api/middleware"
	"jamesfarrell.me/youtube-study/internal/llm"
	"jamesfarrell.me/youtube-study/internal/models"
	"jamesfarrell.me/youtube-study/internal/process"
	"jamesfarrell.me/youtube-study/internal/transcription"
	"jamesfarrell.me/youtube-study/internal/youtube"
)

type stubResolver struct {
	info  *models.VideoInfo
	err   error
	calls int
}

func (s *stubResolver) Resolve(ctx context.Context, id string) (*models.VideoInfo, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.info, nil
}

type stubTranscripts struct{ err error }

func (s stubTranscripts) Fetch(ctx context.Context, id string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "caption text", nil
}

type stubSummarizer struct{ err error }

func (s stubSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "# Summary\n\n" + text, nil
}

type stubQuiz struct{}

func (stubQuiz) Generate(ctx context.Context, summary string) (string, error) {
	return `[{"id":1,"question":"Q?","choices":["a","b","c","d"],"answer":"a","explanation":"because"}]`, nil
}

var goVideo = &models.VideoInfo{
	ID:            "abc123",
	Title:         "Intro to <Go>",
	Description:   `Learn "Go" & more`,
	ThumbnailURL:  "https://i.ytimg.com/vi/abc123/hqdefault.jpg",
	DurationLabel: "4:05",
	AuthorName:    "Gopher",
}

type setup struct {
	resolver    *stubResolver
	transcripts stubTranscripts
	summarizer  stubSummarizer
	strict      bool
	apiKey      string
}

func (s *setup) router() http.Handler {
	if s.resolver == nil {
		s.resolver = &stubResolver{info: goVideo}
	}
	o := process.NewOrchestrator(s.resolver, s.transcripts, s.summarizer, stubQuiz{})
	o.StrictTranscript = s.strict
	return NewRouter(Options{
		Processor:     o,
		Resolver:      s.resolver,
		ClientBaseURL: "https://study.example.com/",
		CORSOrigin:    "https://study.example.com",
		ServiceAPIKey: s.apiKey,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func postProcess(t *testing.T, h http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/process", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var e models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e.Error
}

func TestProcessOK(t *testing.T) {
	s := &setup{}
	rec := postProcess(t, s.router(), `{"url":"https://www.youtube.com/watch?v=abc123"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp models.ProcessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Intro to <Go>", resp.Title)
	assert.Equal(t, goVideo.ThumbnailURL, resp.Thumbnail)
	assert.Equal(t, "4:05", resp.Duration)
	assert.Equal(t, "Gopher", resp.Author)
	assert.Equal(t, "caption text", resp.Transcript)
	assert.NotEmpty(t, resp.Summary)

	var mcqs []models.MCQ
	require.NoError(t, json.Unmarshal([]byte(resp.MCQs), &mcqs))
	for _, m := range mcqs {
		assert.NotEmpty(t, m.ID)
		assert.NotEmpty(t, m.Question)
		assert.Len(t, m.Choices, 4)
		assert.NotEmpty(t, m.Answer)
		assert.NotEmpty(t, m.Explanation)
	}
}

func TestProcessErrors(t *testing.T) {
	providerDown := &llm.ProviderError{Provider: "Gemini", StatusCode: 500, Body: "internal"}

	tests := []struct {
		name       string
		setup      *setup
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "not a url",
			setup:      &setup{},
			body:       `{"url":"not-a-url"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid YouTube URL.",
		},
		{
			name:       "missing url",
			setup:      &setup{},
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid YouTube URL.",
		},
		{
			name:       "malformed body",
			setup:      &setup{},
			body:       `{"url":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid YouTube URL.",
		},
		{
			name:       "no video id",
			setup:      &setup{},
			body:       `{"url":"https://www.youtube.com/watch?v="}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Cannot extract video ID.",
		},
		{
			name:       "not found",
			setup:      &setup{resolver: &stubResolver{err: youtube.ErrNotFound}},
			body:       `{"url":"https://www.youtube.com/watch?v=gone"}`,
			wantStatus: http.StatusNotFound,
			wantError:  "Video not found.",
		},
		{
			name:       "strict transcript",
			setup:      &setup{strict: true, transcripts: stubTranscripts{err: transcription.ErrUnavailable}},
			body:       `{"url":"https://www.youtube.com/watch?v=abc123"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "Transcript not available for this video.",
		},
		{
			name:       "generative api failure",
			setup:      &setup{summarizer: stubSummarizer{err: providerDown}},
			body:       `{"url":"https://www.youtube.com/watch?v=abc123"}`,
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to process the video. (upstream status 500)",
		},
		{
			name:       "resolver transport failure",
			setup:      &setup{resolver: &stubResolver{err: errors.New("dial tcp: timeout")}},
			body:       `{"url":"https://www.youtube.com/watch?v=abc123"}`,
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to process the video.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postProcess(t, tt.setup.router(), tt.body, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, decodeError(t, rec))
		})
	}
}

func TestProcessInvalidURLSkipsResolver(t *testing.T) {
	s := &setup{}
	postProcess(t, s.router(), `{"url":"ftp://youtube.com/watch?v=x"}`, nil)
	assert.Zero(t, s.resolver.calls)
}

func TestProcessTranscriptFallback(t *testing.T) {
	s := &setup{transcripts: stubTranscripts{err: transcription.ErrUnavailable}}
	rec := postProcess(t, s.router(), `{"url":"https://www.youtube.com/watch?v=abc123"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ProcessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "", resp.Transcript)
	assert.Contains(t, resp.Summary, "Intro to <Go>")
}

func TestAPIKey(t *testing.T) {
	s := &setup{apiKey: "s3cret"}
	h := s.router()
	body := `{"url":"https://www.youtube.com/watch?v=abc123"}`

	assert.Equal(t, http.StatusUnauthorized, postProcess(t, h, body, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, postProcess(t, h, body, map[string]string{"X-API-Key": "wrong"}).Code)
	assert.Equal(t, http.StatusOK, postProcess(t, h, body, map[string]string{"X-API-Key": "s3cret"}).Code)

	// Health and preview stay public.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPreview(t *testing.T) {
	s := &setup{}
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview/abc123", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, `<meta property="og:title" content="Intro to &lt;Go&gt;" />`)
	assert.Contains(t, body, `<meta property="og:image" content="https://i.ytimg.com/vi/abc123/hqdefault.jpg" />`)
	assert.Contains(t, body, `<meta name="twitter:card" content="player" />`)
	assert.Contains(t, body, "https://study.example.com/detail/abc123")
	assert.Contains(t, body, "https://www.youtube.com/watch?v=abc123")
	assert.NotContains(t, body, "<Go>")
	assert.NotContains(t, body, `"Go"`)
}

func TestPreviewErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{name: "not found", err: youtube.ErrNotFound, wantStatus: http.StatusNotFound, wantBody: "Video not found."},
		{name: "upstream failure", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantBody: "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &setup{resolver: &stubResolver{err: tt.err}}
			rec := httptest.NewRecorder()
			s.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview/abc123", nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, strings.TrimSpace(rec.Body.String()))
		})
	}
}

func TestHealth(t *testing.T) {
	s := &setup{}
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	s := &setup{apiKey: "s3cret"}
	req := httptest.NewRequest(http.MethodOptions, "/api/process", nil)
	req.Header.Set("Origin", "https://study.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://study.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSOtherOrigin(t *testing.T) {
	s := &setup{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	s.router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	s := &setup{}
	h := s.router()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, rec.Header().Get(middleware.RequestIDHeader), 36)

	const id = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, id)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(middleware.RequestIDHeader))
}
