package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/campushub/unichat-platform/internal/admin"
	"github.com/campushub/unichat-platform/internal/channels/whatsapp"
	httpmiddleware "github.com/campushub/unichat-platform/internal/http/middleware"
	"github.com/campushub/unichat-platform/internal/webchat"
	"github.com/campushub/unichat-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	WhatsAppWebhook    *whatsapp.WebhookHandler
	WebChatHandler     *webchat.Handler
	AdminHandler       *admin.Handler
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
		}
		if cfg.WhatsAppWebhook != nil {
			public.Route("/webhooks/whatsapp", func(r chi.Router) {
				r.Get("/", cfg.WhatsAppWebhook.HandleVerification)
				r.Post("/", cfg.WhatsAppWebhook.HandleInbound)
			})
		}
		if cfg.WebChatHandler != nil {
			public.Route("/chat", func(r chi.Router) {
				r.Post("/init", cfg.WebChatHandler.HandleInit)
				r.Post("/message", cfg.WebChatHandler.HandleMessage)
				r.Get("/current", cfg.WebChatHandler.HandleCurrent)
				r.Post("/end", cfg.WebChatHandler.HandleEnd)
				r.Get("/history", cfg.WebChatHandler.HandleHistory)
			})
		}
	})

	// Admin endpoints require a JWT signed with the shared secret.
	if cfg.AdminHandler != nil {
		r.Group(func(priv chi.Router) {
			priv.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			priv.Route("/admin/questions", func(r chi.Router) {
				r.Get("/", cfg.AdminHandler.ListQuestions)
				r.Post("/", cfg.AdminHandler.CreateQuestion)
				r.Route("/{questionID}", func(r chi.Router) {
					r.Get("/", cfg.AdminHandler.GetQuestion)
					r.Put("/", cfg.AdminHandler.UpdateQuestion)
					r.Delete("/", cfg.AdminHandler.DeleteQuestion)
					r.Post("/options", cfg.AdminHandler.CreateOption)
					r.Put("/options/{optionID}", cfg.AdminHandler.UpdateOption)
					r.Delete("/options/{optionID}", cfg.AdminHandler.DeleteOption)
				})
			})
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
