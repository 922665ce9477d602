// Package process runs the video-to-study-material pipeline for one request.
package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"jamesfarrell.me/youtube-study/internal/models"
	"jamesfarrell.me/youtube-study/internal/reqlog"
)

var (
	ErrInvalidURL = errors.New("invalid youtube url")
	ErrMissingID  = errors.New("cannot extract video id")
	// ErrTranscriptRequired is returned in strict mode when no transcript could be fetched.
	ErrTranscriptRequired = errors.New("transcript required but unavailable")
)

type Resolver interface {
	Resolve(ctx context.Context, videoID string) (*models.VideoInfo, error)
}

type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

type QuizGenerator interface {
	Generate(ctx context.Context, summary string) (string, error)
}

type Orchestrator struct {
	resolver    Resolver
	transcripts TranscriptFetcher
	summarizer  Summarizer
	quiz        QuizGenerator

	// StrictTranscript turns a missing transcript into ErrTranscriptRequired instead of
	// summarizing the title and description.
	StrictTranscript bool
}

func NewOrchestrator(r Resolver, t TranscriptFetcher, s Summarizer, q QuizGenerator) *Orchestrator {
	return &Orchestrator{resolver: r, transcripts: t, summarizer: s, quiz: q}
}

// Process validates url, resolves the video, fetches its transcript and produces the
// summary and raw MCQ payload. Steps run in order; nothing is cached between calls.
// Unless StrictTranscript is set, a failure anywhere on the transcript path is retried
// once against the title and description.
func (o *Orchestrator) Process(ctx context.Context, url string) (*models.ProcessResponse, error) {
	log := reqlog.FromContext(ctx)

	if !models.IsWatchURL(url) {
		return nil, ErrInvalidURL
	}
	videoID := models.ExtractVideoID(url)
	if videoID == "" {
		return nil, ErrMissingID
	}
	log = log.With("video_id", videoID)

	start := time.Now()
	info, err := o.resolver.Resolve(ctx, videoID)
	if err != nil {
		log.Warn("resolve failed", "error", err)
		return nil, fmt.Errorf("resolve %s: %w", videoID, err)
	}
	log.Info("video resolved", "title", info.Title, "elapsed", time.Since(start))

	fallback := info.Title + "\n\n" + info.Description

	start = time.Now()
	transcript, err := o.transcripts.Fetch(ctx, videoID)
	if err != nil {
		if o.StrictTranscript {
			log.Warn("transcript required but unavailable", "error", err)
			return nil, fmt.Errorf("%w: %v", ErrTranscriptRequired, err)
		}
		log.Info("transcript unavailable, using title and description", "error", err)
		transcript = ""
	} else {
		log.Info("transcript fetched", "chars", len(transcript), "elapsed", time.Since(start))
	}

	if transcript != "" {
		summary, mcqs, err := o.study(ctx, log, transcript)
		if err == nil {
			return newResponse(info, transcript, summary, mcqs), nil
		}
		if o.StrictTranscript {
			return nil, err
		}
		log.Warn("transcript path failed, retrying with title and description", "error", err)
	}

	summary, mcqs, err := o.study(ctx, log, fallback)
	if err != nil {
		return nil, err
	}
	return newResponse(info, transcript, summary, mcqs), nil
}

func newResponse(info *models.VideoInfo, transcript, summary, mcqs string) *models.ProcessResponse {
	return &models.ProcessResponse{
		Title:      info.Title,
		Thumbnail:  info.ThumbnailURL,
		Duration:   info.DurationLabel,
		Author:     info.AuthorName,
		Summary:    summary,
		Transcript: transcript,
		MCQs:       mcqs,
	}
}

// study summarizes source and generates the quiz from that summary.
func (o *Orchestrator) study(ctx context.Context, log *slog.Logger, source string) (summary, mcqs string, err error) {
	start := time.Now()
	summary, err = o.summarizer.Summarize(ctx, source)
	if err != nil {
		log.Error("summarize failed", "error", err)
		return "", "", err
	}
	log.Info("summary generated", "chars", len(summary), "elapsed", time.Since(start))

	start = time.Now()
	mcqs, err = o.quiz.Generate(ctx, summary)
	if err != nil {
		log.Error("mcq generation failed", "error", err)
		return "", "", err
	}
	log.Info("mcqs generated", "chars", len(mcqs), "elapsed", time.Since(start))
	return summary, mcqs, nil
}
