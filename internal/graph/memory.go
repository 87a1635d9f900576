package graph

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps the graph in process memory. Used by tests and
// local development without a database.
type MemoryRepository struct {
	mu        sync.RWMutex
	questions map[string]*Question
	order     []string
}

// NewMemoryRepository creates an empty in-memory graph.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{questions: make(map[string]*Question)}
}

func (r *MemoryRepository) StartQuestion(ctx context.Context) (*Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		q := r.questions[id]
		if q.IsStart && q.Active {
			return copyQuestion(q), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) GetQuestion(ctx context.Context, id string) (*Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.questions[id]
	if !ok || !q.Active {
		return nil, ErrNotFound
	}
	return copyQuestion(q), nil
}

func (r *MemoryRepository) FindOption(ctx context.Context, questionID, value string) (*Option, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.questions[questionID]
	if !ok {
		return nil, ErrNotFound
	}
	for i := range q.Options {
		if q.Options[i].Value == value {
			o := q.Options[i]
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) ListQuestions(ctx context.Context, includeInactive bool) ([]Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Question, 0, len(r.order))
	for _, id := range r.order {
		q := r.questions[id]
		if !includeInactive && !q.Active {
			continue
		}
		out = append(out, *copyQuestion(q))
	}
	return out, nil
}

func (r *MemoryRepository) CreateQuestion(ctx context.Context, q *Question) error {
	if err := q.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if q.IsStart && q.Active {
		for _, existing := range r.questions {
			if existing.IsStart && existing.Active {
				return ErrStartQuestionExists
			}
		}
	}
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	q.CreatedAt, q.UpdatedAt = now, now
	stored := copyQuestion(q)
	r.questions[q.ID] = stored
	r.order = append(r.order, q.ID)
	return nil
}

func (r *MemoryRepository) UpdateQuestion(ctx context.Context, q *Question) error {
	if err := q.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.questions[q.ID]
	if !ok {
		return ErrNotFound
	}
	if q.IsStart && q.Active {
		for id, existing := range r.questions {
			if id != q.ID && existing.IsStart && existing.Active {
				return ErrStartQuestionExists
			}
		}
	}
	stored.Text = q.Text
	stored.Kind = q.Kind
	stored.IsStart = q.IsStart
	stored.Active = q.Active
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepository) DeleteQuestion(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.questions[id]; !ok {
		return ErrNotFound
	}
	delete(r.questions, id)
	for i, qid := range r.order {
		if qid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryRepository) AddOption(ctx context.Context, o *Option) error {
	if err := o.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.questions[o.QuestionID]
	if !ok {
		return ErrNotFound
	}
	for i := range q.Options {
		if q.Options[i].Value == o.Value {
			return ErrDuplicateOptionValue
		}
	}
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.Position == 0 {
		o.Position = len(q.Options) + 1
	}
	q.Options = append(q.Options, *o)
	return nil
}

func (r *MemoryRepository) UpdateOption(ctx context.Context, o *Option) error {
	if err := o.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.questions {
		for i := range q.Options {
			if q.Options[i].ID == o.ID {
				q.Options[i].Label = o.Label
				q.Options[i].Value = o.Value
				q.Options[i].NextQuestionID = o.NextQuestionID
				if o.Position != 0 {
					q.Options[i].Position = o.Position
				}
				return nil
			}
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) DeleteOption(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.questions {
		for i := range q.Options {
			if q.Options[i].ID == id {
				q.Options = append(q.Options[:i], q.Options[i+1:]...)
				return nil
			}
		}
	}
	return ErrNotFound
}

func copyQuestion(q *Question) *Question {
	out := *q
	out.Options = append([]Option(nil), q.Options...)
	return &out
}
