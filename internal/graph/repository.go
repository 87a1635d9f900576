package graph

import "context"

// Repository persists the question graph. The engine only reads it;
// writes come from the admin API.
type Repository interface {
	// StartQuestion returns the unique active question flagged as the
	// conversation entry point, with its options loaded.
	StartQuestion(ctx context.Context) (*Question, error)
	// GetQuestion resolves an active question by id, with options loaded.
	// Inactive or missing questions yield ErrNotFound.
	GetQuestion(ctx context.Context, id string) (*Question, error)
	// FindOption looks up the option of a question by its client-facing value.
	FindOption(ctx context.Context, questionID, value string) (*Option, error)

	ListQuestions(ctx context.Context, includeInactive bool) ([]Question, error)
	CreateQuestion(ctx context.Context, q *Question) error
	UpdateQuestion(ctx context.Context, q *Question) error
	DeleteQuestion(ctx context.Context, id string) error

	AddOption(ctx context.Context, o *Option) error
	UpdateOption(ctx context.Context, o *Option) error
	DeleteOption(ctx context.Context, id string) error
}
