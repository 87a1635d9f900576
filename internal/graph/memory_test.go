package graph

import (
	"context"
	"errors"
	"testing"
)

func TestMemorySingleStartInvariant(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	first := &Question{Text: "Início", Kind: KindButton, IsStart: true, Active: true}
	if err := repo.CreateQuestion(ctx, first); err != nil {
		t.Fatalf("create first: %v", err)
	}
	second := &Question{Text: "Outra", Kind: KindButton, IsStart: true, Active: true}
	if err := repo.CreateQuestion(ctx, second); !errors.Is(err, ErrStartQuestionExists) {
		t.Fatalf("expected ErrStartQuestionExists, got %v", err)
	}

	// An inactive duplicate start is allowed; promoting it is not.
	second.Active = false
	if err := repo.CreateQuestion(ctx, second); err != nil {
		t.Fatalf("create inactive start: %v", err)
	}
	second.Active = true
	if err := repo.UpdateQuestion(ctx, second); !errors.Is(err, ErrStartQuestionExists) {
		t.Fatalf("expected ErrStartQuestionExists on promote, got %v", err)
	}
}

func TestMemoryInactiveQuestionNotResolvable(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	q := &Question{Text: "Pergunta", Kind: KindText, Active: false}
	if err := repo.CreateQuestion(ctx, q); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.GetQuestion(ctx, q.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for inactive question, got %v", err)
	}
}

func TestMemoryOptionOrderAndDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	q := &Question{Text: "Escolha", Kind: KindButton, Active: true}
	if err := repo.CreateQuestion(ctx, q); err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, value := range []string{"a", "b", "c"} {
		if err := repo.AddOption(ctx, &Option{QuestionID: q.ID, Label: value, Value: value}); err != nil {
			t.Fatalf("add option %s: %v", value, err)
		}
	}
	if err := repo.AddOption(ctx, &Option{QuestionID: q.ID, Label: "dup", Value: "b"}); !errors.Is(err, ErrDuplicateOptionValue) {
		t.Fatalf("expected ErrDuplicateOptionValue, got %v", err)
	}

	got, err := repo.GetQuestion(ctx, q.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for i, want := range []string{"a", "b", "c"} {
		if got.Options[i].Value != want {
			t.Fatalf("expected option %d to be %s, got %s", i, want, got.Options[i].Value)
		}
	}

	opt, err := repo.FindOption(ctx, q.ID, "b")
	if err != nil || opt.Label != "b" {
		t.Fatalf("find option: %v %+v", err, opt)
	}
}
