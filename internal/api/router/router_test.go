package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/campushub/unichat-platform/internal/admin"
	"github.com/campushub/unichat-platform/internal/engine"
	"github.com/campushub/unichat-platform/internal/graph"
	"github.com/campushub/unichat-platform/internal/session"
	"github.com/campushub/unichat-platform/internal/webchat"
	"github.com/campushub/unichat-platform/pkg/logging"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := graph.NewMemoryRepository()
	logger := logging.New("error")

	eng, err := engine.New(engine.Config{
		Graph:    repo,
		Sessions: session.NewRedisStore(client, "web", time.Minute, nil),
		Channel:  "web",
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	return New(&Config{
		Logger:          logger,
		WebChatHandler:  webchat.NewHandler(eng, []string{"oi"}, logger),
		AdminHandler:    admin.NewHandler(repo, logger),
		AdminAuthSecret: "secret",
	})
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	r := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/questions", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestChatRoutesArePublic(t *testing.T) {
	r := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat/init", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
}
