package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, channel string, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client, channel, ttl, nil), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, "whatsapp", time.Minute)

	if _, found, err := store.Get(ctx, "5511999990000"); err != nil || found {
		t.Fatalf("expected empty store, found=%v err=%v", found, err)
	}

	state := State{
		CurrentQuestionID: "q2",
		History:           []string{"q1", "q2"},
		Awaiting:          AwaitingAcademic,
	}
	if err := store.Put(ctx, "5511999990000", state); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, found, err := store.Get(ctx, "5511999990000")
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if got.CurrentQuestionID != "q2" || len(got.History) != 2 || got.Awaiting != AwaitingAcademic {
		t.Fatalf("unexpected state %+v", got)
	}

	if err := store.Clear(ctx, "5511999990000"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, found, _ := store.Get(ctx, "5511999990000"); found {
		t.Fatal("expected cleared session")
	}
}

func TestRedisStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, "web", 5*time.Minute)

	if err := store.Put(ctx, "abc", State{CurrentQuestionID: "q1", History: []string{"q1"}}); err != nil {
		t.Fatalf("put: %v", err)
	}

	mr.FastForward(6 * time.Minute)

	if _, found, err := store.Get(ctx, "abc"); err != nil || found {
		t.Fatalf("expected expiry, found=%v err=%v", found, err)
	}
}

func TestRedisStoreChannelNamespacing(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	wa := NewRedisStore(client, "whatsapp", time.Minute, nil)
	web := NewRedisStore(client, "web", time.Minute, nil)

	if err := wa.Put(ctx, "same-key", State{CurrentQuestionID: "q1", History: []string{"q1"}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, found, _ := web.Get(ctx, "same-key"); found {
		t.Fatal("web channel must not see whatsapp session")
	}
}
