// Package client calls the study service's HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"jamesfarrell.me/youtube-study/internal/models"
)

// FetchFailedMessage is the single failure shown to users; UserMessage appends the
// server's message when there is one.
const FetchFailedMessage = "Failed to fetch video data."

var ErrFetch = errors.New("fetch video data")

// FetchError wraps ErrFetch with the HTTP status and server message.
type FetchError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", ErrFetch, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%v: status %d: %s", ErrFetch, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%v: status %d", ErrFetch, e.StatusCode)
}

// UserMessage is the text to show for e.
func (e *FetchError) UserMessage() string {
	if e.Message != "" {
		return FetchFailedMessage + " " + e.Message
	}
	return FetchFailedMessage
}

func (e *FetchError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrFetch, e.Err}
	}
	return []error{ErrFetch}
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAPIKey sends key as X-API-Key on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Process asks the service to summarize and quiz the video at videoURL.
func (c *Client) Process(ctx context.Context, videoURL string) (*models.ProcessResponse, error) {
	body, err := json.Marshal(models.ProcessRequest{URL: videoURL})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/process", bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		var e models.ErrorResponse
		_ = json.Unmarshal(raw, &e)
		return nil, &FetchError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	var out models.ProcessResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &FetchError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &out, nil
}
