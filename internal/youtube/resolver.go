package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"jamesfarrell.me/youtube-study/internal/models"
)

const (
	defaultWatchBase = "https://www.youtube.com"
	defaultAPIBase   = "https://www.googleapis.com/youtube/v3"
	userAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// ErrNotFound is returned when the video index has no entry for an ID.
var ErrNotFound = errors.New("video not found")

// Client looks videos up on YouTube. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	watchBase  string
	apiBase    string
	apiKey     string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithWatchBaseURL points watch page scraping somewhere other than www.youtube.com.
func WithWatchBaseURL(base string) Option {
	return func(c *Client) { c.watchBase = base }
}

// WithDataAPI switches metadata lookups to the YouTube Data API v3.
// An empty key keeps watch page scraping.
func WithDataAPI(apiKey string) Option {
	return func(c *Client) { c.apiKey = apiKey }
}

func WithDataAPIBaseURL(base string) Option {
	return func(c *Client) { c.apiBase = base }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		watchBase:  defaultWatchBase,
		apiBase:    defaultAPIBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve returns the title, thumbnail, duration and author of a video.
func (c *Client) Resolve(ctx context.Context, videoID string) (*models.VideoInfo, error) {
	if c.apiKey != "" {
		return c.resolveDataAPI(ctx, videoID)
	}
	return c.resolveWatchPage(ctx, videoID)
}

func (c *Client) resolveWatchPage(ctx context.Context, videoID string) (*models.VideoInfo, error) {
	player, err := c.PlayerResponse(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if player.PlayabilityStatus != nil && player.PlayabilityStatus.Status == "ERROR" {
		slog.Debug("youtube: video unplayable",
			slog.String("id", videoID), slog.String("reason", player.PlayabilityStatus.Reason))
		return nil, ErrNotFound
	}
	details := player.VideoDetails
	if details == nil || details.Title == "" {
		return nil, ErrNotFound
	}

	info := &models.VideoInfo{
		ID:           videoID,
		Title:        details.Title,
		Description:  details.ShortDescription,
		AuthorName:   details.Author,
		ThumbnailURL: largestThumbnail(details.Thumbnail.Thumbnails),
	}
	if secs, err := strconv.Atoi(details.LengthSeconds); err == nil {
		info.DurationLabel = FormatDuration(time.Duration(secs) * time.Second)
	}
	if info.ThumbnailURL == "" {
		info.ThumbnailURL = defaultThumbnail(videoID)
	}
	return info, nil
}

// --- YouTube Data API v3 ---

type dataVideosResp struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string                   `json:"title"`
			Description  string                   `json:"description"`
			ChannelTitle string                   `json:"channelTitle"`
			Thumbnails   map[string]dataThumbnail `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type dataThumbnail struct {
	URL string `json:"url"`
}

func (c *Client) resolveDataAPI(ctx context.Context, videoID string) (*models.VideoInfo, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("id", videoID)
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/videos?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube data API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("youtube data API %d: %s", resp.StatusCode, body)
	}

	var result dataVideosResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode youtube data API: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, ErrNotFound
	}

	item := result.Items[0]
	info := &models.VideoInfo{
		ID:          videoID,
		Title:       item.Snippet.Title,
		Description: item.Snippet.Description,
		AuthorName:  item.Snippet.ChannelTitle,
	}
	for _, size := range []string{"maxres", "standard", "high", "medium", "default"} {
		if t, ok := item.Snippet.Thumbnails[size]; ok && t.URL != "" {
			info.ThumbnailURL = t.URL
			break
		}
	}
	if info.ThumbnailURL == "" {
		info.ThumbnailURL = defaultThumbnail(videoID)
	}
	if d, ok := ParseISODuration(item.ContentDetails.Duration); ok {
		info.DurationLabel = FormatDuration(d)
	}
	return info, nil
}

func largestThumbnail(thumbs []thumbnail) string {
	best := -1
	var u string
	for _, t := range thumbs {
		if area := t.Width * t.Height; area > best {
			best = area
			u = t.URL
		}
	}
	return u
}

func defaultThumbnail(videoID string) string {
	return "https://i.ytimg.com/vi/" + url.PathEscape(videoID) + "/hqdefault.jpg"
}

var isoDurationRE = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISODuration parses the PnDTnHnMnS durations the Data API returns.
func ParseISODuration(s string) (time.Duration, bool) {
	m := isoDurationRE.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "PT" {
		return 0, false
	}
	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
	var d time.Duration
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, false
		}
		d += time.Duration(n) * unit
	}
	return d, true
}

// FormatDuration renders a duration the way YouTube labels it: 4:05 or 1:02:03.
func FormatDuration(d time.Duration) string {
	total := int(d.Round(time.Second) / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
