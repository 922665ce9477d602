// Command transcript prints the caption text the service would summarize for a video,
// or the cues of a local WebVTT file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"jamesfarrell.me/youtube-study/internal/config"
	"jamesfarrell.me/youtube-study/internal/models"
	"jamesfarrell.me/youtube-study/internal/transcription"
	"jamesfarrell.me/youtube-study/internal/youtube"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			slog.Error("transcript failed", "error", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("transcript", flag.ContinueOnError)
	fs.SetOutput(out)
	videoURL := fs.String("url", "", "YouTube link to fetch captions for")
	vttPath := fs.String("vtt", "", "parse a local WebVTT file instead")
	showCues := fs.Bool("cues", false, "print individual cues with timings")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *vttPath != "" {
		b, err := os.ReadFile(*vttPath)
		if err != nil {
			return err
		}
		cues, err := transcription.ParseVTT(string(b))
		if err != nil {
			return fmt.Errorf("parse %s: %w", *vttPath, err)
		}
		if *showCues {
			for _, c := range cues {
				fmt.Fprintf(out, "%d\t%v --> %v\t%s\n", c.Number, c.Start, c.End, c.Text)
			}
			return nil
		}
		fmt.Fprintln(out, transcription.JoinCues(cues))
		return nil
	}

	videoID := models.ExtractVideoIDAny(*videoURL)
	if videoID == "" {
		return errors.New("a YouTube link (-url) or a WebVTT file (-vtt) is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout}
	yt := youtube.NewClient(youtube.WithHTTPClient(httpClient))
	text, err := transcription.NewService(yt, httpClient, cfg.YouTube.TranscriptLangs).Fetch(ctx, videoID)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, text)
	return nil
}
