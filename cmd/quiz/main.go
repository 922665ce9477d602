package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"jamesfarrell.me/youtube-study/internal/client"
	"jamesfarrell.me/youtube-study/internal/export"
	"jamesfarrell.me/youtube-study/internal/models"
	"jamesfarrell.me/youtube-study/internal/quiz"
)

const msgInvalidURL = "Invalid YouTube URL."

var errInvalidURL = errors.New("no video id in link")

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("quiz", flag.ContinueOnError)
	fs.SetOutput(out)
	server := fs.String("server", envOr("STUDY_SERVER", "http://localhost:5000"), "study service base URL")
	videoURL := fs.String("url", "", "YouTube link (watch, youtu.be or embed form)")
	format := fs.String("export", "", "export the summary as pdf or docx")
	outPath := fs.String("out", "", "export file path (default export.<format>)")
	apiKey := fs.String("api-key", os.Getenv("SERVICE_API_KEY"), "X-API-Key sent to the service")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *videoURL == "" && fs.NArg() > 0 {
		*videoURL = fs.Arg(0)
	}

	writeDoc, err := exporter(*format)
	if err != nil {
		return err
	}

	videoID := models.ExtractVideoIDAny(*videoURL)
	if videoID == "" {
		return fmt.Errorf("%w: %q", errInvalidURL, *videoURL)
	}

	c := client.New(*server, client.WithAPIKey(*apiKey))
	resp, err := c.Process(ctx, models.WatchURL(videoID))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s\n%s · %s\n\n%s\n", resp.Title, resp.Author, resp.Duration, resp.Summary)

	parsed := quiz.ParsePayload(resp.MCQs)
	if parsed.Warning != "" {
		fmt.Fprintf(out, "\n! %s\n", parsed.Warning)
	}
	session := quiz.NewSession(parsed.Questions)
	if len(parsed.Questions) > 0 {
		ask(bufio.NewScanner(in), out, session)
		report(out, session)
	}

	if writeDoc != nil {
		path := *outPath
		if path == "" {
			path = "export." + strings.ToLower(*format)
		}
		if err := writeFile(path, export.Parse(resp.Summary), writeDoc); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nSaved %s\n", path)
	}
	return nil
}

// userMessage is the text printed for err.
func userMessage(err error) string {
	var fe *client.FetchError
	switch {
	case errors.As(err, &fe):
		return fe.UserMessage()
	case errors.Is(err, errInvalidURL):
		return msgInvalidURL
	}
	return err.Error()
}

type docWriter func(io.Writer, []export.Block) error

func exporter(format string) (docWriter, error) {
	switch strings.ToLower(format) {
	case "":
		return nil, nil
	case "pdf":
		return export.WritePDF, nil
	case "docx":
		return export.WriteDOCX, nil
	}
	return nil, fmt.Errorf("unknown export format %q, want pdf or docx", format)
}

// ask prompts for every question in turn. An empty line skips a question and
// end of input stops asking.
func ask(sc *bufio.Scanner, out io.Writer, s *quiz.Session) {
	for i, q := range s.Questions() {
		fmt.Fprintf(out, "\n%d. %s\n", i+1, q.Question)
		for j, c := range q.Choices {
			fmt.Fprintf(out, "   %d) %s\n", j+1, c)
		}
		for {
			fmt.Fprint(out, "> ")
			if !sc.Scan() {
				return
			}
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				break
			}
			n, err := strconv.Atoi(line)
			if err != nil || n < 1 || n > len(q.Choices) {
				fmt.Fprintf(out, "Enter a number from 1 to %d, or leave blank to skip.\n", len(q.Choices))
				continue
			}
			if err := s.Select(string(q.ID), q.Choices[n-1]); err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			break
		}
	}
}

func report(out io.Writer, s *quiz.Session) {
	score, err := s.Submit()
	if err != nil {
		fmt.Fprintln(out, err)
		return
	}
	fmt.Fprintf(out, "\nYou got %d out of %d correct!\n", score.Correct, score.Total)

	results, _ := s.Results()
	for i, r := range results {
		mark := "✗"
		if r.Correct {
			mark = "✓"
		}
		selected := r.Selected
		if selected == "" {
			selected = "(no answer)"
		}
		fmt.Fprintf(out, "\n%s %d. %s\n   Your answer: %s\n   Correct answer: %s\n   %s\n",
			mark, i+1, r.Question.Question, selected, r.Question.Answer, r.Question.Explanation)
	}
}

func writeFile(path string, blocks []export.Block, write docWriter) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := write(f, blocks); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", path, err)
	}
	return f.Close()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
