package graph

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// QuestionKind selects how a question collects its answer.
type QuestionKind string

const (
	// KindText expects a free-form reply; options are only consulted
	// internally to route the next turn.
	KindText QuestionKind = "text"
	// KindButton renders its options as selectable choices.
	KindButton QuestionKind = "button"
)

var (
	// ErrNotFound is returned when a question or option does not exist
	// or is not active.
	ErrNotFound = errors.New("graph: not found")
	// ErrStartQuestionExists rejects a second active start question.
	ErrStartQuestionExists = errors.New("graph: an active start question already exists")
	// ErrDuplicateOptionValue rejects a repeated option value within one question.
	ErrDuplicateOptionValue = errors.New("graph: option value already used for this question")
)

// Question is a node in the conversation graph.
type Question struct {
	ID        string       `json:"id"`
	Text      string       `json:"text"`
	Kind      QuestionKind `json:"kind"`
	IsStart   bool         `json:"is_start"`
	Active    bool         `json:"active"`
	Options   []Option     `json:"options,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Option is a directed edge out of a question. A nil NextQuestionID means
// choosing it ends the conversation.
type Option struct {
	ID             string  `json:"id"`
	QuestionID     string  `json:"question_id"`
	Label          string  `json:"label"`
	Value          string  `json:"value"`
	NextQuestionID *string `json:"next_question_id,omitempty"`
	Position       int     `json:"position"`
}

// Validate checks the fields an administrator controls.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("graph: question text is required")
	}
	switch q.Kind {
	case KindText, KindButton:
	default:
		return fmt.Errorf("graph: invalid question kind %q", q.Kind)
	}
	return nil
}

// Validate checks option fields before persistence.
func (o *Option) Validate() error {
	if strings.TrimSpace(o.QuestionID) == "" {
		return fmt.Errorf("graph: option question_id is required")
	}
	if strings.TrimSpace(o.Label) == "" {
		return fmt.Errorf("graph: option label is required")
	}
	if strings.TrimSpace(o.Value) == "" {
		return fmt.Errorf("graph: option value is required")
	}
	return nil
}
