package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func questionRows(mock pgxmock.PgxPoolIface, id string, isStart bool) *pgxmock.Rows {
	now := time.Now()
	return mock.NewRows([]string{"id", "text", "kind", "is_start", "active", "created_at", "updated_at"}).
		AddRow(id, "Como podemos ajudar?", string(KindButton), isStart, true, now, now)
}

func TestPostgresStartQuestion(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM chatbot_questions").
		WillReturnRows(questionRows(mock, "q1", true))
	mock.ExpectQuery("SELECT (.+) FROM chatbot_options").
		WithArgs("q1").
		WillReturnRows(mock.NewRows([]string{"id", "question_id", "label", "value", "next_question_id", "position"}).
			AddRow("o1", "q1", "Biblioteca", "biblioteca", strPtr("q2"), 1).
			AddRow("o2", "q1", "Secretaria", "secretaria", nil, 2))

	repo := NewPostgresRepository(mock)
	q, err := repo.StartQuestion(context.Background())
	if err != nil {
		t.Fatalf("start question: %v", err)
	}
	if !q.IsStart || len(q.Options) != 2 {
		t.Fatalf("unexpected question %+v", q)
	}
	if q.Options[1].NextQuestionID != nil {
		t.Fatalf("expected terminal second option")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresGetQuestionNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM chatbot_questions").
		WithArgs("missing").
		WillReturnRows(mock.NewRows([]string{"id", "text", "kind", "is_start", "active", "created_at", "updated_at"}))

	repo := NewPostgresRepository(mock)
	if _, err := repo.GetQuestion(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresFindOption(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM chatbot_options").
		WithArgs("q1", "biblioteca").
		WillReturnRows(mock.NewRows([]string{"id", "question_id", "label", "value", "next_question_id", "position"}).
			AddRow("o1", "q1", "Biblioteca", "biblioteca", strPtr("q2"), 1))

	repo := NewPostgresRepository(mock)
	o, err := repo.FindOption(context.Background(), "q1", "biblioteca")
	if err != nil {
		t.Fatalf("find option: %v", err)
	}
	if o.Value != "biblioteca" || o.NextQuestionID == nil || *o.NextQuestionID != "q2" {
		t.Fatalf("unexpected option %+v", o)
	}
}

func TestPostgresCreateQuestionSecondStartRejected(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO chatbot_questions").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "chatbot_questions_single_start_idx"})

	repo := NewPostgresRepository(mock)
	q := &Question{Text: "Outra inicial", Kind: KindButton, IsStart: true, Active: true}
	if err := repo.CreateQuestion(context.Background(), q); !errors.Is(err, ErrStartQuestionExists) {
		t.Fatalf("expected ErrStartQuestionExists, got %v", err)
	}
}

func TestPostgresAddOptionDuplicateValue(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO chatbot_options").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "chatbot_options_question_value_key"})

	repo := NewPostgresRepository(mock)
	o := &Option{QuestionID: "q1", Label: "Biblioteca", Value: "biblioteca"}
	if err := repo.AddOption(context.Background(), o); !errors.Is(err, ErrDuplicateOptionValue) {
		t.Fatalf("expected ErrDuplicateOptionValue, got %v", err)
	}
}

func TestPostgresDeleteQuestionMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec("DELETE FROM chatbot_questions").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewPostgresRepository(mock)
	if err := repo.DeleteQuestion(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func strPtr(s string) *string { return &s }
