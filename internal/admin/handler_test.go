package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/campushub/unichat-platform/internal/graph"
	"github.com/campushub/unichat-platform/pkg/logging"
)

func newTestRouter(t *testing.T) (*chi.Mux, *graph.MemoryRepository) {
	t.Helper()
	repo := graph.NewMemoryRepository()
	h := NewHandler(repo, logging.New("error"))

	r := chi.NewRouter()
	r.Route("/admin/questions", func(r chi.Router) {
		r.Get("/", h.ListQuestions)
		r.Post("/", h.CreateQuestion)
		r.Route("/{questionID}", func(r chi.Router) {
			r.Get("/", h.GetQuestion)
			r.Put("/", h.UpdateQuestion)
			r.Delete("/", h.DeleteQuestion)
			r.Post("/options", h.CreateOption)
			r.Put("/options/{optionID}", h.UpdateOption)
			r.Delete("/options/{optionID}", h.DeleteOption)
		})
	})
	return r, repo
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestQuestionCRUD(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/admin/questions", QuestionRequest{Text: "Como podemos ajudar?", Kind: "button", IsStart: true})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var created graph.Question
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" || !created.IsStart || !created.Active {
		t.Fatalf("unexpected created question %+v", created)
	}

	rec = doJSON(t, r, http.MethodGet, "/admin/questions/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPut, "/admin/questions/"+created.ID, QuestionRequest{Text: "Novo texto", Kind: "button", IsStart: true})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, r, http.MethodGet, "/admin/questions/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var list struct {
		Questions []graph.Question `json:"questions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Questions) != 1 || list.Questions[0].Text != "Novo texto" {
		t.Fatalf("unexpected list %+v", list.Questions)
	}

	rec = doJSON(t, r, http.MethodDelete, "/admin/questions/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	rec = doJSON(t, r, http.MethodGet, "/admin/questions/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestSecondStartQuestionConflicts(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/admin/questions", QuestionRequest{Text: "Primeira", Kind: "button", IsStart: true})
	if rec.Code != http.StatusCreated {
		t.Fatalf("first start: expected 201, got %d", rec.Code)
	}
	rec = doJSON(t, r, http.MethodPost, "/admin/questions", QuestionRequest{Text: "Segunda", Kind: "button", IsStart: true})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second start: expected 409, got %d: %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), "start question") {
		t.Fatalf("expected start-question message, got %q", rec.Body)
	}
}

func TestOptionCRUDAndDuplicateValue(t *testing.T) {
	r, repo := newTestRouter(t)
	q := &graph.Question{Text: "Escolha", Kind: graph.KindButton, IsStart: true, Active: true}
	if err := repo.CreateQuestion(context.Background(), q); err != nil {
		t.Fatalf("seed question: %v", err)
	}

	rec := doJSON(t, r, http.MethodPost, "/admin/questions/"+q.ID+"/options", OptionRequest{Label: "Biblioteca", Value: "biblioteca"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create option: expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var created graph.Option
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode option: %v", err)
	}

	rec = doJSON(t, r, http.MethodPost, "/admin/questions/"+q.ID+"/options", OptionRequest{Label: "Outra", Value: "biblioteca"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate value: expected 409, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPut, "/admin/questions/"+q.ID+"/options/"+created.ID, OptionRequest{Label: "Biblioteca Central", Value: "biblioteca"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update option: expected 200, got %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, r, http.MethodDelete, "/admin/questions/"+q.ID+"/options/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete option: expected 200, got %d", rec.Code)
	}
}

func TestValidationErrors(t *testing.T) {
	r, repo := newTestRouter(t)
	q := &graph.Question{Text: "Escolha", Kind: graph.KindButton, IsStart: true, Active: true}
	if err := repo.CreateQuestion(context.Background(), q); err != nil {
		t.Fatalf("seed question: %v", err)
	}

	rec := doJSON(t, r, http.MethodPost, "/admin/questions", QuestionRequest{Text: "", Kind: "button"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank text: expected 400, got %d", rec.Code)
	}
	rec = doJSON(t, r, http.MethodPost, "/admin/questions", QuestionRequest{Text: "x", Kind: "carousel"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad kind: expected 400, got %d", rec.Code)
	}
	rec = doJSON(t, r, http.MethodPost, "/admin/questions/"+q.ID+"/options", OptionRequest{Label: "", Value: "v"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank label: expected 400, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/questions", bytes.NewBufferString("{broken"))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed json: expected 400, got %d", rec.Code)
	}
}

func TestUnknownIDsReturnNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPut, "/admin/questions/ghost", QuestionRequest{Text: "x", Kind: "button"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("update ghost: expected 404, got %d", rec.Code)
	}
	rec = doJSON(t, r, http.MethodDelete, "/admin/questions/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete ghost: expected 404, got %d", rec.Code)
	}
	rec = doJSON(t, r, http.MethodDelete, "/admin/questions/ghost/options/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete ghost option: expected 404, got %d", rec.Code)
	}
}
