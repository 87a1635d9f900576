package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/campushub/unichat-platform/internal/graph"
	"github.com/campushub/unichat-platform/pkg/logging"
)

// Handler provides privileged endpoints for maintaining the question graph.
type Handler struct {
	repo   graph.Repository
	logger *logging.Logger
}

// NewHandler creates the admin graph handler.
func NewHandler(repo graph.Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger.Named("admin")}
}

// QuestionRequest is the body for question create and update.
type QuestionRequest struct {
	Text    string `json:"text"`
	Kind    string `json:"kind"`
	IsStart bool   `json:"is_start"`
	Active  *bool  `json:"active,omitempty"`
}

// OptionRequest is the body for option create and update.
type OptionRequest struct {
	Label          string  `json:"label"`
	Value          string  `json:"value"`
	NextQuestionID *string `json:"next_question_id,omitempty"`
	Position       int     `json:"position"`
}

// ListQuestions returns all questions with their options.
// Route: GET /admin/questions
func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	questions, err := h.repo.ListQuestions(r.Context(), includeInactive)
	if err != nil {
		h.fail(w, "list questions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

// GetQuestion returns one question with its options.
// Route: GET /admin/questions/{questionID}
func (h *Handler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "questionID"))
	if id == "" {
		http.Error(w, "missing questionID", http.StatusBadRequest)
		return
	}
	q, err := h.repo.GetQuestion(r.Context(), id)
	if errors.Is(err, graph.ErrNotFound) {
		http.Error(w, "question not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.fail(w, "get question", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// CreateQuestion adds a question to the graph.
// Route: POST /admin/questions
func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	q := &graph.Question{
		Text:    strings.TrimSpace(req.Text),
		Kind:    graph.QuestionKind(req.Kind),
		IsStart: req.IsStart,
		Active:  true,
	}
	if req.Active != nil {
		q.Active = *req.Active
	}
	if err := q.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.repo.CreateQuestion(r.Context(), q); err != nil {
		h.writeDomainError(w, "create question", err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

// UpdateQuestion replaces a question's fields.
// Route: PUT /admin/questions/{questionID}
func (h *Handler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "questionID"))
	if id == "" {
		http.Error(w, "missing questionID", http.StatusBadRequest)
		return
	}
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	q := &graph.Question{
		ID:      id,
		Text:    strings.TrimSpace(req.Text),
		Kind:    graph.QuestionKind(req.Kind),
		IsStart: req.IsStart,
		Active:  true,
	}
	if req.Active != nil {
		q.Active = *req.Active
	}
	if err := q.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.repo.UpdateQuestion(r.Context(), q); err != nil {
		h.writeDomainError(w, "update question", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// DeleteQuestion removes a question and its options.
// Route: DELETE /admin/questions/{questionID}
func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "questionID"))
	if id == "" {
		http.Error(w, "missing questionID", http.StatusBadRequest)
		return
	}
	if err := h.repo.DeleteQuestion(r.Context(), id); err != nil {
		h.writeDomainError(w, "delete question", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// CreateOption adds an option to a question.
// Route: POST /admin/questions/{questionID}/options
func (h *Handler) CreateOption(w http.ResponseWriter, r *http.Request) {
	questionID := strings.TrimSpace(chi.URLParam(r, "questionID"))
	if questionID == "" {
		http.Error(w, "missing questionID", http.StatusBadRequest)
		return
	}
	var req OptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	o := &graph.Option{
		QuestionID:     questionID,
		Label:          strings.TrimSpace(req.Label),
		Value:          strings.TrimSpace(req.Value),
		NextQuestionID: req.NextQuestionID,
		Position:       req.Position,
	}
	if err := o.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.repo.AddOption(r.Context(), o); err != nil {
		h.writeDomainError(w, "create option", err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// UpdateOption replaces an option's fields.
// Route: PUT /admin/questions/{questionID}/options/{optionID}
func (h *Handler) UpdateOption(w http.ResponseWriter, r *http.Request) {
	questionID := strings.TrimSpace(chi.URLParam(r, "questionID"))
	optionID := strings.TrimSpace(chi.URLParam(r, "optionID"))
	if questionID == "" || optionID == "" {
		http.Error(w, "missing questionID or optionID", http.StatusBadRequest)
		return
	}
	var req OptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	o := &graph.Option{
		ID:             optionID,
		QuestionID:     questionID,
		Label:          strings.TrimSpace(req.Label),
		Value:          strings.TrimSpace(req.Value),
		NextQuestionID: req.NextQuestionID,
		Position:       req.Position,
	}
	if err := o.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.repo.UpdateOption(r.Context(), o); err != nil {
		h.writeDomainError(w, "update option", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// DeleteOption removes an option.
// Route: DELETE /admin/questions/{questionID}/options/{optionID}
func (h *Handler) DeleteOption(w http.ResponseWriter, r *http.Request) {
	optionID := strings.TrimSpace(chi.URLParam(r, "optionID"))
	if optionID == "" {
		http.Error(w, "missing optionID", http.StatusBadRequest)
		return
	}
	if err := h.repo.DeleteOption(r.Context(), optionID); err != nil {
		h.writeDomainError(w, "delete option", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, graph.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, graph.ErrStartQuestionExists):
		http.Error(w, "an active start question already exists", http.StatusConflict)
	case errors.Is(err, graph.ErrDuplicateOptionValue):
		http.Error(w, "option value already used on this question", http.StatusConflict)
	default:
		h.fail(w, op, err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error("admin request failed", "op", op, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
