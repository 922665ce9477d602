// Package study turns video text into a student summary and a multiple-choice quiz.
package study

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"jamesfarrell.me/youtube-study/internal/llm"
)

const (
	// NoSummary is returned when the provider produced no candidate.
	NoSummary = "No summary returned."
	// EmptyQuiz is the raw payload used when the provider produced no candidate.
	EmptyQuiz = "[]"
)

type Summarizer struct {
	llm llm.Completer
}

func NewSummarizer(c llm.Completer) *Summarizer {
	return &Summarizer{llm: c}
}

// Summarize asks the provider for a study summary of text. Input size is not checked;
// the provider's limits apply.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	out, err := s.llm.Complete(ctx, buildSummaryPrompt(text))
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	if !out.HasCandidate {
		return NoSummary, nil
	}
	return out.Text, nil
}

type QuizGenerator struct {
	llm llm.Completer
}

func NewQuizGenerator(c llm.Completer) *QuizGenerator {
	return &QuizGenerator{llm: c}
}

// Generate asks the provider for MCQs about summary and returns its raw JSON text with
// any code fences removed. The text is not parsed here.
func (g *QuizGenerator) Generate(ctx context.Context, summary string) (string, error) {
	out, err := g.llm.Complete(ctx, buildQuizPrompt(summary))
	if err != nil {
		return "", fmt.Errorf("generate mcqs: %w", err)
	}
	if !out.HasCandidate {
		return EmptyQuiz, nil
	}
	return StripFences(out.Text), nil
}

var fenceRE = regexp.MustCompile("```(?:json)?")

// StripFences removes every ``` or ```json marker and trims the result.
func StripFences(s string) string {
	return strings.TrimSpace(fenceRE.ReplaceAllString(s, ""))
}
