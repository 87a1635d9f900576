package session

import "context"

// Awaiting marks a pending external lookup that suspends normal graph flow.
type Awaiting string

const (
	AwaitingNone      Awaiting = ""
	AwaitingAcademic  Awaiting = "academic_lookup"
	AwaitingFinancial Awaiting = "financial_lookup"
)

// State is one user's position in the conversation graph. History is a
// stack of visited question ids; its last entry is the current question.
type State struct {
	CurrentQuestionID string   `json:"current_question_id"`
	History           []string `json:"history"`
	Awaiting          Awaiting `json:"awaiting,omitempty"`
}

// Store persists session state keyed by the channel-level session key
// (phone number or generated web session id). Implementations must write
// the whole tuple in one operation so a failed turn never leaves a
// half-updated session behind.
type Store interface {
	Get(ctx context.Context, key string) (State, bool, error)
	Put(ctx context.Context, key string, state State) error
	Clear(ctx context.Context, key string) error
}
