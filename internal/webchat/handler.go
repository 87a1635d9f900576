package webchat

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/campushub/unichat-platform/internal/engine"
	"github.com/campushub/unichat-platform/pkg/logging"
)

// Conversation is the engine surface the web widget drives.
type Conversation interface {
	Handle(ctx context.Context, sessionKey string, ev engine.Event) (engine.Instruction, error)
	Current(ctx context.Context, sessionKey string) (engine.Instruction, bool, error)
	End(ctx context.Context, sessionKey string) error
	History(ctx context.Context, sessionKey string) ([]string, error)
}

// Handler serves the JSON endpoints the chat widget talks to.
type Handler struct {
	engine        Conversation
	startKeywords map[string]struct{}
	logger        *logging.Logger
}

// NewHandler creates a web chat handler.
func NewHandler(eng Conversation, startKeywords []string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	kw := make(map[string]struct{}, len(startKeywords))
	for _, k := range startKeywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			kw[k] = struct{}{}
		}
	}
	return &Handler{
		engine:        eng,
		startKeywords: kw,
		logger:        logger.Named("webchat"),
	}
}

// HandleInit opens a fresh conversation and returns the first question.
func (h *Handler) HandleInit(w http.ResponseWriter, r *http.Request) {
	sessionID := uuid.New().String()
	instr, err := h.engine.Handle(r.Context(), sessionID, engine.Restart())
	if err != nil {
		h.fail(w, "init conversation", err)
		return
	}
	writeJSON(w, http.StatusOK, toReply(sessionID, instr))
}

// MessageRequest is the body of POST /chat/message. Exactly one of
// Message, OptionValue, or Action must be set.
type MessageRequest struct {
	SessionID   string `json:"session_id"`
	Message     string `json:"message,omitempty"`
	OptionValue string `json:"option_value,omitempty"`
	Action      string `json:"action,omitempty"` // "back" or "restart"
}

// HandleMessage advances the conversation one turn.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	ev, ok := h.classify(req)
	if !ok {
		http.Error(w, "exactly one of message, option_value or action is required", http.StatusBadRequest)
		return
	}
	instr, err := h.engine.Handle(r.Context(), req.SessionID, ev)
	if err != nil {
		h.fail(w, "conversation turn", err)
		return
	}
	writeJSON(w, http.StatusOK, toReply(req.SessionID, instr))
}

// HandleCurrent re-renders the current question without advancing.
func (h *Handler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id parameter required", http.StatusBadRequest)
		return
	}
	instr, active, err := h.engine.Current(r.Context(), sessionID)
	if err != nil {
		h.fail(w, "load current question", err)
		return
	}
	if !active {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toReply(sessionID, instr))
}

// HandleEnd terminates the conversation.
func (h *Handler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	if err := h.engine.End(r.Context(), req.SessionID); err != nil {
		h.fail(w, "end conversation", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

// HandleHistory returns the visited question ids, oldest first.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id parameter required", http.StatusBadRequest)
		return
	}
	hist, err := h.engine.History(r.Context(), sessionID)
	if err != nil {
		h.fail(w, "load history", err)
		return
	}
	if hist == nil {
		hist = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": sessionID, "question_ids": hist})
}

func (h *Handler) classify(req MessageRequest) (engine.Event, bool) {
	set := 0
	if strings.TrimSpace(req.Message) != "" {
		set++
	}
	if strings.TrimSpace(req.OptionValue) != "" {
		set++
	}
	if strings.TrimSpace(req.Action) != "" {
		set++
	}
	if set != 1 {
		return engine.Event{}, false
	}
	switch {
	case req.Action != "":
		switch strings.ToLower(strings.TrimSpace(req.Action)) {
		case "back":
			return engine.GoBack(), true
		case "restart":
			return engine.Restart(), true
		default:
			return engine.Event{}, false
		}
	case req.OptionValue != "":
		return engine.OptionSelected(req.OptionValue), true
	default:
		if _, ok := h.startKeywords[strings.ToLower(strings.TrimSpace(req.Message))]; ok {
			return engine.StartKeyword(req.Message), true
		}
		return engine.FreeText(req.Message), true
	}
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error("webchat request failed", "op", op, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
