package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MCQ is one multiple-choice question as produced by the quiz generator.
type MCQ struct {
	ID          QuestionID `json:"id"`
	Question    string     `json:"question"`
	Choices     []string   `json:"choices"`
	Answer      string     `json:"answer"`
	Explanation string     `json:"explanation"`
}

// QuestionID accepts either a JSON string or a JSON number and keeps its text form.
type QuestionID string

func (q *QuestionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = QuestionID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("question id must be a string or number, got %s", data)
	}
	*q = QuestionID(n.String())
	return nil
}

// HasChoice reports whether Answer is verbatim one of Choices.
func (m MCQ) HasChoice(choice string) bool {
	for _, c := range m.Choices {
		if c == choice {
			return true
		}
	}
	return false
}
