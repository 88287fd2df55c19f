package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"psyscreen/internal/domain"
	"psyscreen/internal/repository"
)

// flakyResultRepo fails the first failures Insert calls, then delegates to
// the in-memory store.
type flakyResultRepo struct {
	*repository.MemoryStore
	failures int
	inserts  int
}

func (r *flakyResultRepo) Insert(ctx context.Context, result domain.AssessmentResult) (domain.AssessmentResult, error) {
	r.inserts++
	if r.inserts <= r.failures {
		return domain.AssessmentResult{}, errors.New("connection reset")
	}
	return r.MemoryStore.Insert(ctx, result)
}

func testResult(sessionID string) domain.AssessmentResult {
	return domain.AssessmentResult{
		ID:             "r-" + sessionID,
		UserID:         "u1",
		InstrumentID:   "phq9",
		SessionID:      sessionID,
		Classification: "mild",
		CreatedAt:      time.Now().UTC(),
	}
}

func TestResultStorePersist_RetriesOnce(t *testing.T) {
	repo := &flakyResultRepo{MemoryStore: repository.NewMemoryStore(), failures: 1}
	store := NewResultStore(zap.NewNop(), repo, repo.MemoryStore)

	stored, err := store.Persist(context.Background(), testResult("s1"))
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if stored.SessionID != "s1" {
		t.Fatalf("unexpected stored result %+v", stored)
	}
	if repo.inserts != 2 {
		t.Fatalf("expected 2 insert attempts, got %d", repo.inserts)
	}
}

func TestResultStorePersist_SurfacesFailureAfterRetry(t *testing.T) {
	repo := &flakyResultRepo{MemoryStore: repository.NewMemoryStore(), failures: 2}
	store := NewResultStore(zap.NewNop(), repo, repo.MemoryStore)

	if _, err := store.Persist(context.Background(), testResult("s1")); !errors.Is(err, ErrPersistenceFailure) {
		t.Fatalf("expected ErrPersistenceFailure, got %v", err)
	}
	if repo.inserts != 2 {
		t.Fatalf("expected exactly 2 insert attempts, got %d", repo.inserts)
	}
}

func TestResultStorePersist_IdempotentOnSessionID(t *testing.T) {
	repo := &flakyResultRepo{MemoryStore: repository.NewMemoryStore()}
	store := NewResultStore(zap.NewNop(), repo, repo.MemoryStore)
	ctx := context.Background()

	first, err := store.Persist(ctx, testResult("s1"))
	if err != nil {
		t.Fatalf("first persist failed: %v", err)
	}

	duplicate := testResult("s1")
	duplicate.ID = "different-result-id"
	second, err := store.Persist(ctx, duplicate)
	if err != nil {
		t.Fatalf("second persist failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected the stored result back, got %q and %q", first.ID, second.ID)
	}

	profile, err := store.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	if profile.TotalAssessments != 1 {
		t.Fatalf("expected counter 1 after duplicate persist, got %d", profile.TotalAssessments)
	}
}
