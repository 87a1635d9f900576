package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// RedisStore keeps session state in Redis with a per-channel TTL. Keys are
// namespaced by channel so the same session key cannot collide across the
// WhatsApp and web channels.
type RedisStore struct {
	redis   *redis.Client
	channel string
	ttl     time.Duration
	tracer  trace.Tracer
}

// NewRedisStore creates a session store for one channel.
func NewRedisStore(client *redis.Client, channel string, ttl time.Duration, tracer trace.Tracer) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if channel == "" {
		panic("session: channel cannot be empty")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if tracer == nil {
		tracer = otel.Tracer("unichat.internal.session")
	}
	return &RedisStore{
		redis:   client,
		channel: channel,
		ttl:     ttl,
		tracer:  tracer,
	}
}

func (s *RedisStore) key(sessionKey string) string {
	return fmt.Sprintf("chat:%s:%s", s.channel, sessionKey)
}

// Get loads the session tuple. A missing key means no active conversation.
func (s *RedisStore) Get(ctx context.Context, sessionKey string) (State, bool, error) {
	ctx, span := s.tracer.Start(ctx, "session.get")
	defer span.End()

	data, err := s.redis.Get(ctx, s.key(sessionKey)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return State{}, false, nil
		}
		span.RecordError(err)
		return State{}, false, fmt.Errorf("session: failed to load state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		span.RecordError(err)
		return State{}, false, fmt.Errorf("session: failed to decode state: %w", err)
	}
	return state, true, nil
}

// Put writes the whole tuple in a single SET, refreshing the TTL.
func (s *RedisStore) Put(ctx context.Context, sessionKey string, state State) error {
	ctx, span := s.tracer.Start(ctx, "session.put")
	defer span.End()

	data, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to marshal state: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(sessionKey), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to persist state: %w", err)
	}
	return nil
}

// Clear ends the conversation for this key.
func (s *RedisStore) Clear(ctx context.Context, sessionKey string) error {
	ctx, span := s.tracer.Start(ctx, "session.clear")
	defer span.End()

	if err := s.redis.Del(ctx, s.key(sessionKey)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to clear state: %w", err)
	}
	return nil
}
