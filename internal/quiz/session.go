package quiz

import "errors"

type State int

const (
	Unanswered State = iota
	Submitted
)

func (s State) String() string {
	switch s {
	case Unanswered:
		return "unanswered"
	case Submitted:
		return "submitted"
	}
	return "unknown"
}

var (
	ErrSubmitted       = errors.New("quiz already submitted")
	ErrNotSubmitted    = errors.New("quiz not submitted yet")
	ErrUnknownQuestion = errors.New("unknown question")
	ErrInvalidChoice   = errors.New("choice is not offered by this question")
)

// Result is the outcome for one question after submission.
type Result struct {
	Question Question
	Selected string
	Correct  bool
}

type Score struct {
	Correct int
	Total   int
}

// Session is one attempt at a quiz. Answers can change until Submit; after that the
// session is read-only.
type Session struct {
	questions []Question
	index     map[string]int
	answers   map[string]string
	state     State
}

func NewSession(questions []Question) *Session {
	s := &Session{
		questions: questions,
		index:     make(map[string]int, len(questions)),
		answers:   make(map[string]string, len(questions)),
	}
	for i, q := range questions {
		s.index[string(q.ID)] = i
	}
	return s
}

func (s *Session) Questions() []Question { return s.questions }

func (s *Session) State() State { return s.state }

// Select records choice as the answer to question id, replacing any earlier choice.
func (s *Session) Select(id, choice string) error {
	if s.state == Submitted {
		return ErrSubmitted
	}
	i, ok := s.index[id]
	if !ok {
		return ErrUnknownQuestion
	}
	if !s.questions[i].HasChoice(choice) {
		return ErrInvalidChoice
	}
	s.answers[id] = choice
	return nil
}

func (s *Session) Selected(id string) (string, bool) {
	c, ok := s.answers[id]
	return c, ok
}

// Answered is the number of questions with a selected choice.
func (s *Session) Answered() int { return len(s.answers) }

// Submit freezes the session and returns the final score.
func (s *Session) Submit() (Score, error) {
	if s.state == Submitted {
		return Score{}, ErrSubmitted
	}
	s.state = Submitted
	return s.Score(), nil
}

// Score counts questions whose selection equals the answer. Questions whose answer
// is not among their choices never count.
func (s *Session) Score() Score {
	sc := Score{Total: len(s.questions)}
	for _, q := range s.questions {
		if s.correct(q) {
			sc.Correct++
		}
	}
	return sc
}

func (s *Session) Results() ([]Result, error) {
	if s.state != Submitted {
		return nil, ErrNotSubmitted
	}
	out := make([]Result, len(s.questions))
	for i, q := range s.questions {
		out[i] = Result{Question: q, Selected: s.answers[string(q.ID)], Correct: s.correct(q)}
	}
	return out, nil
}

func (s *Session) correct(q Question) bool {
	sel, ok := s.answers[string(q.ID)]
	return ok && q.AnswerValid && sel == q.Answer
}
