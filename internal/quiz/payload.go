// Package quiz validates generated MCQ payloads and runs a single quiz attempt.
package quiz

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"jamesfarrell.me/youtube-study/internal/models"
)

// ChoiceCount is the number of choices every question must offer.
const ChoiceCount = 4

const (
	WarnUnreadable  = "The quiz for this video could not be read, so no questions are shown."
	WarnNoQuestions = "No quiz questions were generated for this video."
	WarnSkipped     = "Some generated questions were malformed and have been skipped."
	WarnBadAnswer   = "Some questions have no answer among their choices and cannot be scored as correct."
	WarnRepairedIDs = "Some question identifiers were missing or repeated and have been renumbered."
)

// Question is a validated MCQ ready to be shown.
type Question struct {
	models.MCQ
	// AnswerValid is false when Answer is not one of Choices. Such a question is
	// shown but always scored incorrect.
	AnswerValid bool
}

type Issue struct {
	// Index is the entry's 0-based position in the raw payload.
	Index    int
	Rejected bool
	Reason   string
}

type Parsed struct {
	Questions []Question
	Issues    []Issue
	// Warning is a user-facing notice; empty when the payload was clean.
	Warning string
}

// ParsePayload decodes raw MCQ JSON and validates every entry. It never fails:
// an unreadable payload yields an empty quiz and a warning.
func ParsePayload(raw string) Parsed {
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &entries); err != nil {
		return Parsed{
			Questions: []Question{},
			Issues:    []Issue{{Index: -1, Rejected: true, Reason: "payload is not a JSON array: " + err.Error()}},
			Warning:   WarnUnreadable,
		}
	}

	p := Parsed{Questions: make([]Question, 0, len(entries))}
	var rejected, badAnswer, repaired bool
	seen := make(map[string]bool, len(entries))

	for i, entry := range entries {
		var m models.MCQ
		if err := json.Unmarshal(entry, &m); err != nil {
			p.reject(i, "not an MCQ object: "+err.Error())
			rejected = true
			continue
		}

		m.Question = strings.TrimSpace(m.Question)
		if m.Question == "" {
			p.reject(i, "missing question text")
			rejected = true
			continue
		}
		if len(m.Choices) != ChoiceCount {
			p.reject(i, fmt.Sprintf("has %d choices, want %d", len(m.Choices), ChoiceCount))
			rejected = true
			continue
		}

		pos := len(p.Questions) + 1
		if m.ID == "" || seen[string(m.ID)] {
			reason := "missing id"
			if m.ID != "" {
				reason = fmt.Sprintf("duplicate id %q", m.ID)
			}
			m.ID = freshID(pos, seen)
			p.Issues = append(p.Issues, Issue{Index: i, Reason: reason + ", renumbered to " + string(m.ID)})
			repaired = true
		}
		seen[string(m.ID)] = true

		q := Question{MCQ: m, AnswerValid: m.HasChoice(m.Answer)}
		if !q.AnswerValid {
			p.Issues = append(p.Issues, Issue{Index: i, Reason: fmt.Sprintf("answer %q is not one of the choices", m.Answer)})
			badAnswer = true
		}
		p.Questions = append(p.Questions, q)
	}

	var warnings []string
	switch {
	case len(entries) == 0:
		warnings = append(warnings, WarnNoQuestions)
	case len(p.Questions) == 0:
		warnings = append(warnings, WarnUnreadable)
	case rejected:
		warnings = append(warnings, WarnSkipped)
	}
	if badAnswer {
		warnings = append(warnings, WarnBadAnswer)
	}
	if repaired {
		warnings = append(warnings, WarnRepairedIDs)
	}
	p.Warning = strings.Join(warnings, " ")
	return p
}

func (p *Parsed) reject(i int, reason string) {
	p.Issues = append(p.Issues, Issue{Index: i, Rejected: true, Reason: reason})
}

// freshID returns the position as an id, suffixed when that is already taken.
func freshID(pos int, seen map[string]bool) models.QuestionID {
	id := strconv.Itoa(pos)
	for n := 2; seen[id]; n++ {
		id = fmt.Sprintf("%d-%d", pos, n)
	}
	return models.QuestionID(id)
}
