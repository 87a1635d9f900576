package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores the question graph in PostgreSQL.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(db db) *PostgresRepository {
	if db == nil {
		panic("graph: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

const questionColumns = `id, text, kind, is_start, active, created_at, updated_at`

// StartQuestion returns the active entry-point question with options.
func (r *PostgresRepository) StartQuestion(ctx context.Context) (*Question, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM chatbot_questions
		WHERE is_start = TRUE AND active = TRUE
		LIMIT 1
	`, questionColumns)
	return r.queryQuestion(ctx, query)
}

// GetQuestion resolves an active question by id with options.
func (r *PostgresRepository) GetQuestion(ctx context.Context, id string) (*Question, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM chatbot_questions
		WHERE id = $1 AND active = TRUE
	`, questionColumns)
	return r.queryQuestion(ctx, query, id)
}

func (r *PostgresRepository) queryQuestion(ctx context.Context, query string, args ...any) (*Question, error) {
	var q Question
	row := r.db.QueryRow(ctx, query, args...)
	if err := row.Scan(&q.ID, &q.Text, &q.Kind, &q.IsStart, &q.Active, &q.CreatedAt, &q.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("graph: query question: %w", err)
	}
	opts, err := r.loadOptions(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	q.Options = opts
	return &q, nil
}

func (r *PostgresRepository) loadOptions(ctx context.Context, questionID string) ([]Option, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, question_id, label, value, next_question_id, position
		FROM chatbot_options
		WHERE question_id = $1
		ORDER BY position ASC, id ASC
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("graph: load options: %w", err)
	}
	defer rows.Close()

	var options []Option
	for rows.Next() {
		var o Option
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Label, &o.Value, &o.NextQuestionID, &o.Position); err != nil {
			return nil, fmt.Errorf("graph: scan option: %w", err)
		}
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("graph: iterate options: %w", err)
	}
	return options, nil
}

// FindOption looks up an option by its client-facing value.
func (r *PostgresRepository) FindOption(ctx context.Context, questionID, value string) (*Option, error) {
	var o Option
	row := r.db.QueryRow(ctx, `
		SELECT id, question_id, label, value, next_question_id, position
		FROM chatbot_options
		WHERE question_id = $1 AND value = $2
	`, questionID, value)
	if err := row.Scan(&o.ID, &o.QuestionID, &o.Label, &o.Value, &o.NextQuestionID, &o.Position); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("graph: find option: %w", err)
	}
	return &o, nil
}

// ListQuestions returns questions ordered by creation, options included.
func (r *PostgresRepository) ListQuestions(ctx context.Context, includeInactive bool) ([]Question, error) {
	query := fmt.Sprintf(`SELECT %s FROM chatbot_questions`, questionColumns)
	if !includeInactive {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("graph: list questions: %w", err)
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Kind, &q.IsStart, &q.Active, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("graph: scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("graph: iterate questions: %w", err)
	}
	for i := range questions {
		opts, err := r.loadOptions(ctx, questions[i].ID)
		if err != nil {
			return nil, err
		}
		questions[i].Options = opts
	}
	return questions, nil
}

// CreateQuestion inserts a new question, assigning an id when absent.
func (r *PostgresRepository) CreateQuestion(ctx context.Context, q *Question) error {
	if err := q.Validate(); err != nil {
		return err
	}
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO chatbot_questions (id, text, kind, is_start, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, q.ID, q.Text, q.Kind, q.IsStart, q.Active)
	if err := row.Scan(&q.CreatedAt, &q.UpdatedAt); err != nil {
		return translateConstraint(err, "insert question")
	}
	return nil
}

// UpdateQuestion rewrites the mutable question fields.
func (r *PostgresRepository) UpdateQuestion(ctx context.Context, q *Question) error {
	if err := q.Validate(); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE chatbot_questions
		SET text = $1, kind = $2, is_start = $3, active = $4, updated_at = NOW()
		WHERE id = $5
	`, q.Text, q.Kind, q.IsStart, q.Active, q.ID)
	if err != nil {
		return translateConstraint(err, "update question")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteQuestion removes a question; its options go with it via FK cascade.
// Options elsewhere pointing at it keep their reference; the engine treats
// the dangling target as conversation end.
func (r *PostgresRepository) DeleteQuestion(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM chatbot_questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("graph: delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddOption appends an option to a question. Position defaults to the end.
func (r *PostgresRepository) AddOption(ctx context.Context, o *Option) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO chatbot_options (id, question_id, label, value, next_question_id, position)
		VALUES ($1, $2, $3, $4, $5,
			COALESCE(NULLIF($6, 0), (SELECT COALESCE(MAX(position), 0) + 1 FROM chatbot_options WHERE question_id = $2)))
		RETURNING position
	`, o.ID, o.QuestionID, o.Label, o.Value, o.NextQuestionID, o.Position)
	if err := row.Scan(&o.Position); err != nil {
		return translateConstraint(err, "insert option")
	}
	return nil
}

// UpdateOption rewrites the mutable option fields.
func (r *PostgresRepository) UpdateOption(ctx context.Context, o *Option) error {
	if err := o.Validate(); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE chatbot_options
		SET label = $1, value = $2, next_question_id = $3, position = $4
		WHERE id = $5
	`, o.Label, o.Value, o.NextQuestionID, o.Position, o.ID)
	if err != nil {
		return translateConstraint(err, "update option")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOption removes a single option.
func (r *PostgresRepository) DeleteOption(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM chatbot_options WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("graph: delete option: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// translateConstraint maps unique-violation errors onto the domain errors
// the admin API reports as conflicts.
func translateConstraint(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "chatbot_questions_single_start_idx":
			return ErrStartQuestionExists
		case "chatbot_options_question_value_key":
			return ErrDuplicateOptionValue
		}
	}
	return fmt.Errorf("graph: %s: %w", op, err)
}
