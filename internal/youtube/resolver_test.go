package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const watchPageTemplate = `<!DOCTYPE html><html><head><script>var ytInitialPlayerResponse = %s;var meta = {};</script></head></html>`

const playablePlayer = `{
  "playabilityStatus": {"status": "OK"},
  "videoDetails": {
    "videoId": "abc123",
    "title": "Intro to {braces} and \"quotes\"",
    "shortDescription": "A short lecture.",
    "author": "Prof Example",
    "lengthSeconds": "3723",
    "thumbnail": {"thumbnails": [
      {"url": "https://i.ytimg.com/small.jpg", "width": 120, "height": 90},
      {"url": "https://i.ytimg.com/big.jpg", "width": 1280, "height": 720}
    ]}
  },
  "captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [
    {"baseUrl": "https://example.test/timedtext?lang=en", "languageCode": "en", "kind": "asr"}
  ]}}
}`

func watchServer(t *testing.T, player string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/watch" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		fmt.Fprintf(w, watchPageTemplate, player)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveWatchPage(t *testing.T) {
	srv := watchServer(t, playablePlayer, http.StatusOK)
	c := NewClient(WithWatchBaseURL(srv.URL), WithHTTPClient(srv.Client()))

	info, err := c.Resolve(context.Background(), "abc123")
	require.NoError(t, err)

	assert.Equal(t, "abc123", info.ID)
	assert.Equal(t, `Intro to {braces} and "quotes"`, info.Title)
	assert.Equal(t, "A short lecture.", info.Description)
	assert.Equal(t, "Prof Example", info.AuthorName)
	assert.Equal(t, "1:02:03", info.DurationLabel)
	assert.Equal(t, "https://i.ytimg.com/big.jpg", info.ThumbnailURL)
}

func TestResolveWatchPageNotFound(t *testing.T) {
	tests := []struct {
		name   string
		player string
		status int
	}{
		{name: "error status", player: `{"playabilityStatus": {"status": "ERROR", "reason": "Video unavailable"}}`, status: http.StatusOK},
		{name: "no details", player: `{"playabilityStatus": {"status": "OK"}}`, status: http.StatusOK},
		{name: "http 404", player: `{}`, status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := watchServer(t, tt.player, tt.status)
			c := NewClient(WithWatchBaseURL(srv.URL), WithHTTPClient(srv.Client()))

			_, err := c.Resolve(context.Background(), "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestResolveWatchPageMissingMarker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>consent wall</html>")
	}))
	defer srv.Close()
	c := NewClient(WithWatchBaseURL(srv.URL), WithHTTPClient(srv.Client()))

	_, err := c.Resolve(context.Background(), "abc123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestResolveDataAPI(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		if r.URL.Query().Get("id") != "abc123" {
			fmt.Fprint(w, `{"items": []}`)
			return
		}
		fmt.Fprint(w, `{"items": [{
			"id": "abc123",
			"snippet": {
				"title": "Data API title",
				"description": "desc",
				"channelTitle": "Channel",
				"thumbnails": {"default": {"url": "d.jpg"}, "high": {"url": "h.jpg"}}
			},
			"contentDetails": {"duration": "PT4M5S"}
		}]}`)
	}))
	defer srv.Close()

	c := NewClient(WithDataAPI("yt-key"), WithDataAPIBaseURL(srv.URL), WithHTTPClient(srv.Client()))

	info, err := c.Resolve(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "key=yt-key")
	assert.Equal(t, "Data API title", info.Title)
	assert.Equal(t, "Channel", info.AuthorName)
	assert.Equal(t, "h.jpg", info.ThumbnailURL)
	assert.Equal(t, "4:05", info.DurationLabel)

	_, err = c.Resolve(context.Background(), "other")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveDataAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "quotaExceeded"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(WithDataAPI("yt-key"), WithDataAPIBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	_, err := c.Resolve(context.Background(), "abc123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestPlayerResponseCaptionTracks(t *testing.T) {
	srv := watchServer(t, playablePlayer, http.StatusOK)
	c := NewClient(WithWatchBaseURL(srv.URL), WithHTTPClient(srv.Client()))

	player, err := c.PlayerResponse(context.Background(), "abc123")
	require.NoError(t, err)
	tracks := player.CaptionTracks()
	require.Len(t, tracks, 1)
	assert.Equal(t, "asr", tracks[0].Kind)

	var nilPlayer *PlayerResponse
	assert.Nil(t, nilPlayer.CaptionTracks())
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: `{"a":1};rest`, want: `{"a":1}`},
		{name: "nested", in: `{"a":{"b":{}}} trailing`, want: `{"a":{"b":{}}}`},
		{name: "brace in string", in: `{"a":"}"}x`, want: `{"a":"}"}`},
		{name: "escaped backslash before quote", in: `{"a":"\\"}x`, want: `{"a":"\\"}`},
		{name: "not an object", in: `[1,2]`, want: ""},
		{name: "unterminated", in: `{"a":1`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(extractJSON([]byte(tt.in))))
		})
	}
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{in: "PT4M5S", want: 4*time.Minute + 5*time.Second, ok: true},
		{in: "PT1H", want: time.Hour, ok: true},
		{in: "P1DT2H", want: 26 * time.Hour, ok: true},
		{in: "PT", ok: false},
		{in: "", ok: false},
		{in: "4:05", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseISODuration(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", FormatDuration(0))
	assert.Equal(t, "4:05", FormatDuration(245*time.Second))
	assert.Equal(t, "10:00", FormatDuration(10*time.Minute))
	assert.Equal(t, "1:02:03", FormatDuration(3723*time.Second))
}
