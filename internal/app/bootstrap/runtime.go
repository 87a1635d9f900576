package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/campushub/unichat-platform/internal/admin"
	"github.com/campushub/unichat-platform/internal/api/router"
	"github.com/campushub/unichat-platform/internal/channels/whatsapp"
	appconfig "github.com/campushub/unichat-platform/internal/config"
	"github.com/campushub/unichat-platform/internal/engine"
	"github.com/campushub/unichat-platform/internal/graph"
	"github.com/campushub/unichat-platform/internal/observability/metrics"
	"github.com/campushub/unichat-platform/internal/records"
	"github.com/campushub/unichat-platform/internal/session"
	"github.com/campushub/unichat-platform/internal/webchat"
	"github.com/campushub/unichat-platform/pkg/logging"
)

// Runtime holds the wired application components and their handles.
type Runtime struct {
	Handler http.Handler

	redis     *redis.Client
	pool      *pgxpool.Pool
	recordsDB *sql.DB
}

// BuildRedisClient returns a configured Redis client. When verify is
// true, a ping is issued and failures surface as an error.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) (*redis.Client, error) {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil, fmt.Errorf("bootstrap: redis address is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client, nil
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("bootstrap: redis ping: %w", err)
	}
	return client, nil
}

// New wires the full HTTP application from configuration. Session state
// requires Redis; the question graph and student records require Postgres.
func New(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}

	redisClient, err := BuildRedisClient(ctx, cfg, logger, true)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
	}

	recordsDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: open records db: %w", err)
	}

	rt := &Runtime{redis: redisClient, pool: pool, recordsDB: recordsDB}

	repo := graph.NewPostgresRepository(pool)
	lookup := records.NewPostgresLookup(recordsDB)
	convMetrics := metrics.NewConversationMetrics(prometheus.DefaultRegisterer)
	tracer := otel.Tracer("unichat")

	waSessions := session.NewRedisStore(redisClient, "whatsapp", cfg.WhatsAppSessionTTL, tracer)
	webSessions := session.NewRedisStore(redisClient, "web", cfg.WebSessionTTL, tracer)

	waEngine, err := engine.New(engine.Config{
		Graph:    repo,
		Sessions: waSessions,
		Lookup:   lookup,
		Channel:  "whatsapp",
		Logger:   logger,
		Metrics:  convMetrics,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}
	webEngine, err := engine.New(engine.Config{
		Graph:    repo,
		Sessions: webSessions,
		Lookup:   lookup,
		Channel:  "web",
		Logger:   logger,
		Metrics:  convMetrics,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}

	var waWebhook *whatsapp.WebhookHandler
	if strings.TrimSpace(cfg.WhatsAppAccessToken) != "" {
		waClient, err := whatsapp.NewClient(whatsapp.ClientConfig{
			BaseURL:       cfg.WhatsAppBaseURL,
			AccessToken:   cfg.WhatsAppAccessToken,
			PhoneNumberID: cfg.WhatsAppPhoneNumberID,
			MaxRetries:    cfg.WhatsAppRetryMax,
			Backoff:       cfg.WhatsAppRetryBackoff,
			Logger:        logger,
		})
		if err != nil {
			rt.Close()
			return nil, err
		}
		waWebhook = whatsapp.NewWebhookHandler(cfg.WhatsAppVerifyToken, cfg.WhatsAppAppSecret, cfg.StartKeywords, waEngine, waClient, logger)
	} else {
		logger.Warn("whatsapp access token not set, channel disabled")
	}

	rt.Handler = router.New(&router.Config{
		Logger:             logger,
		WhatsAppWebhook:    waWebhook,
		WebChatHandler:     webchat.NewHandler(webEngine, cfg.StartKeywords, logger),
		AdminHandler:       admin.NewHandler(repo, logger),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	return rt, nil
}

// Close releases all connections held by the runtime.
func (rt *Runtime) Close() {
	if rt.pool != nil {
		rt.pool.Close()
	}
	if rt.recordsDB != nil {
		_ = rt.recordsDB.Close()
	}
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
}
