package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lshigami/techmentor/internal/model"
	"github.com/redis/go-redis/v9"
)

const testTTL = 30 * time.Minute

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newStartedSession(id string) *model.InterviewSession {
	now := time.Now().UTC()
	s := model.NewInterviewSession(id, "u1", model.TechStackPython, 5, now)
	_ = s.Begin("Q1", now)
	return s
}

// exerciseStore runs the shared contract against any SessionRepository.
// advance moves the store's notion of time forward.
func exerciseStore(t *testing.T, store SessionRepository, advance func(time.Duration)) {
	t.Helper()
	ctx := context.Background()

	s := newStartedSession("sess-1")
	if err := store.Create(ctx, s); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(ctx, s); !errors.Is(err, ErrSessionConflict) {
		t.Fatalf("expected duplicate create to conflict, got %v", err)
	}

	loaded, err := store.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Status != model.SessionStatusInProgress || len(loaded.Questions) != 1 || len(loaded.Answers) != 0 {
		t.Fatalf("unexpected loaded session: %+v", loaded)
	}

	now := time.Now().UTC()
	_ = loaded.RecordAnswer("A1", now)
	_ = loaded.AskNext("Q2", now)
	if err := store.Update(ctx, loaded); err != nil {
		t.Fatalf("update: %v", err)
	}
	if loaded.Version != 1 {
		t.Fatalf("expected version 1 after update, got %d", loaded.Version)
	}

	stale, _ := store.Get(ctx, "sess-1")
	stale.Version = 0
	if err := store.Update(ctx, stale); !errors.Is(err, ErrSessionConflict) {
		t.Fatalf("expected stale update to conflict, got %v", err)
	}

	// Activity refreshes the TTL: 20m + 20m after creation is still alive
	// because an update happened in between.
	advance(20 * time.Minute)
	fresh, err := store.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get before expiry: %v", err)
	}
	if err := store.Update(ctx, fresh); err != nil {
		t.Fatalf("touch update: %v", err)
	}
	advance(20 * time.Minute)
	if _, err := store.Get(ctx, "sess-1"); err != nil {
		t.Fatalf("expected refreshed session to survive, got %v", err)
	}

	advance(testTTL + time.Second)
	if _, err := store.Get(ctx, "sess-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
	if err := store.Update(ctx, fresh); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected update of expired session to fail, got %v", err)
	}

	other := newStartedSession("sess-2")
	if err := store.Create(ctx, other); err != nil {
		t.Fatalf("create second: %v", err)
	}
	if err := store.Delete(ctx, "sess-2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "sess-2"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected deleted session to be gone, got %v", err)
	}
	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestRedisSessionRepository(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	store := NewRedisSessionRepository(client, testTTL)
	exerciseStore(t, store, mr.FastForward)
}

func TestRedisSessionRepositoryUsesSessionKeyAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	store := NewRedisSessionRepository(client, testTTL)
	if err := store.Create(context.Background(), newStartedSession("abc")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !mr.Exists("session:abc") {
		t.Fatalf("expected key session:abc")
	}
	if ttl := mr.TTL("session:abc"); ttl != testTTL {
		t.Fatalf("expected ttl %s, got %s", testTTL, ttl)
	}
}

func TestRedisSessionRepositoryPingFailsWhenDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	store := NewRedisSessionRepository(client, testTTL)

	mr.Close()
	if err := store.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping to fail once redis is down")
	}
}

func TestMemorySessionRepository(t *testing.T) {
	c := &clock{t: time.Now()}
	store := NewMemorySessionRepository(testTTL).WithClock(c.now)
	exerciseStore(t, store, c.advance)
}

func TestMemorySessionRepositoryReturnsCopies(t *testing.T) {
	store := NewMemorySessionRepository(testTTL)
	ctx := context.Background()
	s := newStartedSession("copy")
	if err := store.Create(ctx, s); err != nil {
		t.Fatalf("create: %v", err)
	}
	s.Questions[0] = "mutated"

	loaded, _ := store.Get(ctx, "copy")
	if loaded.Questions[0] != "Q1" {
		t.Fatalf("store shares memory with caller: %q", loaded.Questions[0])
	}
}
