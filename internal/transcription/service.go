package transcription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"jamesfarrell.me/youtube-study/internal/reqlog"
	"jamesfarrell.me/youtube-study/internal/youtube"
)

// ErrUnavailable wraps every reason a transcript could not be produced. Callers treat it
// as an expected outcome rather than a failure.
var ErrUnavailable = errors.New("transcript unavailable")

// PlayerSource supplies the player response that carries a video's caption tracks.
type PlayerSource interface {
	PlayerResponse(ctx context.Context, videoID string) (*youtube.PlayerResponse, error)
}

type Service struct {
	player     PlayerSource
	httpClient *http.Client
	langs      []string
}

func NewService(player PlayerSource, httpClient *http.Client, langs []string) *Service {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	return &Service{
		player:     player,
		httpClient: httpClient,
		langs:      langs,
	}
}

// Fetch returns the video's captions as one space-separated string in timing order.
func (s *Service) Fetch(ctx context.Context, videoID string) (string, error) {
	text, err := s.fetch(ctx, videoID)
	if err != nil {
		reqlog.FromContext(ctx).Debug("transcript unavailable", slog.String("id", videoID), slog.Any("err", err))
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return text, nil
}

func (s *Service) fetch(ctx context.Context, videoID string) (string, error) {
	player, err := s.player.PlayerResponse(ctx, videoID)
	if err != nil {
		return "", fmt.Errorf("player response: %w", err)
	}

	tracks := player.CaptionTracks()
	if len(tracks) == 0 {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			return "", fmt.Errorf("captions unavailable: %s", player.PlayabilityStatus.Reason)
		}
		return "", errors.New("no caption tracks")
	}

	track, ok := pickBestTrack(tracks, s.langs)
	if !ok {
		return "", errors.New("all caption tracks require PoToken")
	}

	vtt, err := s.downloadVTT(ctx, track.BaseURL)
	if err != nil {
		return "", err
	}

	cues, err := ParseVTT(vtt)
	if err != nil {
		return "", fmt.Errorf("failed to parse VTT: %w", err)
	}

	text := JoinCues(cues)
	if track.Kind == "asr" {
		text = JoinRollingCues(cues)
	}
	if text == "" {
		return "", errors.New("empty transcript")
	}
	return text, nil
}

func (s *Service) downloadVTT(ctx context.Context, baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("caption url: %w", err)
	}
	q := u.Query()
	q.Set("fmt", "vtt")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error fetching captions: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return "", fmt.Errorf("error reading captions: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return string(body), nil
}

// needsPoToken reports whether a caption track URL can only be fetched by a browser.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack prefers a manual track in a preferred language, then an auto-generated
// one, then any English track, then whatever is left.
func pickBestTrack(tracks []youtube.CaptionTrack, langs []string) (youtube.CaptionTrack, bool) {
	usable := make([]youtube.CaptionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return youtube.CaptionTrack{}, false
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}
