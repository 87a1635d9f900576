package whatsapp

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/campushub/unichat-platform/internal/engine"
	"github.com/campushub/unichat-platform/pkg/logging"
)

// ConversationHandler is the engine surface the webhook drives.
type ConversationHandler interface {
	Handle(ctx context.Context, sessionKey string, ev engine.Event) (engine.Instruction, error)
}

// WebhookHandler handles Cloud API webhook verification and inbound
// messages, routing each message through the conversation engine and
// replying on the same number.
type WebhookHandler struct {
	verifyToken   string
	appSecret     string
	startKeywords map[string]struct{}
	engine        ConversationHandler
	sender        Sender
	logger        *logging.Logger
}

// NewWebhookHandler creates the webhook handler. startKeywords are
// matched case-insensitively against trimmed message text. Signature
// verification is skipped when appSecret is empty.
func NewWebhookHandler(verifyToken, appSecret string, startKeywords []string, eng ConversationHandler, sender Sender, logger *logging.Logger) *WebhookHandler {
	kw := make(map[string]struct{}, len(startKeywords))
	for _, k := range startKeywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			kw[k] = struct{}{}
		}
	}
	return &WebhookHandler{
		verifyToken:   verifyToken,
		appSecret:     appSecret,
		startKeywords: kw,
		engine:        eng,
		sender:        sender,
		logger:        logger.Named("whatsapp_webhook"),
	}
}

// HandleVerification answers the GET subscription challenge from Meta.
func (h *WebhookHandler) HandleVerification(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, challenge)
		return
	}
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// HandleInbound handles POST webhook events. Meta retries non-2xx
// deliveries, so processing failures are logged and acknowledged.
func (h *WebhookHandler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if h.appSecret != "" {
		if err := VerifySignature(h.appSecret, body, r.Header.Get("X-Hub-Signature-256")); err != nil {
			h.logger.Warn("webhook signature rejected", "error", err)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// Acknowledge before processing so slow sends never trigger redelivery.
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	for _, msg := range flatten(event) {
		h.process(ctx, msg)
	}
}

func (h *WebhookHandler) process(ctx context.Context, msg inboundMessage) {
	if strings.TrimSpace(msg.From) == "" {
		return
	}
	ev, err := classify(msg, h.isStartKeyword)
	if err != nil {
		h.logger.Warn("inbound message dropped", "message_id", msg.ID, "error", err)
		return
	}
	instr, err := h.engine.Handle(ctx, msg.From, ev)
	if err != nil {
		h.logger.Error("conversation turn failed", "from", msg.From, "event", string(ev.Type), "error", err)
		return
	}
	if _, err := deliver(ctx, h.sender, msg.From, instr); err != nil {
		h.logger.Error("reply send failed", "to", msg.From, "error", err)
	}
}

func (h *WebhookHandler) isStartKeyword(text string) bool {
	_, ok := h.startKeywords[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// VerifySignature verifies the X-Hub-Signature-256 header against the
// raw request body.
func VerifySignature(appSecret string, body []byte, signature string) error {
	const prefix = "sha256="
	sig := strings.TrimSpace(signature)
	if !strings.HasPrefix(sig, prefix) {
		return fmt.Errorf("whatsapp: missing or malformed signature header")
	}
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	actual := strings.ToLower(sig[len(prefix):])
	if !hmac.Equal([]byte(expected), []byte(actual)) {
		return fmt.Errorf("whatsapp: signature mismatch")
	}
	return nil
}

func flatten(event webhookEvent) []inboundMessage {
	var out []inboundMessage
	for _, entry := range event.Entry {
		for _, change := range entry.Changes {
			out = append(out, change.Value.Messages...)
		}
	}
	return out
}
