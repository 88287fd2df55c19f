package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"psyscreen/internal/domain"
)

func newTestMemoryStore(idle time.Duration, now func() time.Time) *memorySessionStore {
	return &memorySessionStore{
		sessions:    make(map[string]domain.AssessmentSession),
		activeByUID: make(map[string]string),
		idleTimeout: idle,
		now:         now,
	}
}

func TestMemorySessionStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore(0)

	session := domain.AssessmentSession{
		ID:        "s1",
		UserID:    "u1",
		Status:    domain.SessionActive,
		UpdatedAt: time.Now().UTC(),
	}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.UserID != "u1" {
		t.Fatalf("expected user u1, got %q", got.UserID)
	}

	id, err := store.ActiveIDByUser(ctx, "u1")
	if err != nil || id != "s1" {
		t.Fatalf("expected active s1, got %q, %v", id, err)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemorySessionStore_TerminalStatusClearsActiveIndex(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore(0)

	session := domain.AssessmentSession{ID: "s1", UserID: "u1", Status: domain.SessionActive}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	session.Status = domain.SessionCompleted
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save completed failed: %v", err)
	}

	if _, err := store.ActiveIDByUser(ctx, "u1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected no active session, got %v", err)
	}

	// The terminal session itself stays readable.
	got, err := store.Get(ctx, "s1")
	if err != nil || got.Status != domain.SessionCompleted {
		t.Fatalf("expected completed session, got %v, %v", got.Status, err)
	}
}

func TestMemorySessionStore_IdleExpiry(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newTestMemoryStore(30*time.Minute, func() time.Time { return current })

	session := domain.AssessmentSession{
		ID:        "s1",
		UserID:    "u1",
		Status:    domain.SessionActive,
		UpdatedAt: current,
	}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	current = current.Add(29 * time.Minute)
	if _, err := store.Get(ctx, "s1"); err != nil {
		t.Fatalf("expected session alive before timeout, got %v", err)
	}

	current = current.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expiry after timeout, got %v", err)
	}
	if _, err := store.ActiveIDByUser(ctx, "u1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected active index cleared, got %v", err)
	}
}

func TestMemorySessionStore_CompletedSessionsDoNotExpire(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newTestMemoryStore(time.Minute, func() time.Time { return current })

	session := domain.AssessmentSession{
		ID:        "s1",
		UserID:    "u1",
		Status:    domain.SessionCompleted,
		UpdatedAt: current,
	}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	current = current.Add(time.Hour)
	if _, err := store.Get(ctx, "s1"); err != nil {
		t.Fatalf("expected completed session to stay readable, got %v", err)
	}
}

func TestMemorySessionStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore(0)

	session := domain.AssessmentSession{ID: "s1", UserID: "u1", Status: domain.SessionActive}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected session gone, got %v", err)
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("double delete must be a no-op, got %v", err)
	}
}

func TestRedisSessionStore_NilClient(t *testing.T) {
	if store := NewRedisSessionStore(nil, time.Minute); store != nil {
		t.Fatalf("expected nil store for nil client")
	}
}

func TestRedisSessionStore_KeyLayout(t *testing.T) {
	store := &redisSessionStore{prefix: "assess:"}
	if got := store.sessionKey("s1"); got != "assess:session:s1" {
		t.Fatalf("unexpected session key %q", got)
	}
	if got := store.activeKey("u1"); got != "assess:active:u1" {
		t.Fatalf("unexpected active key %q", got)
	}
}
