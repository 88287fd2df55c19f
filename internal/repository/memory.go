package repository

import (
	"context"
	"sync"

	"psyscreen/internal/domain"
)

// MemoryStore backs the CLI runner and tests with process-local storage.
// It honors the same idempotency and counter invariants as the Postgres
// repositories.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[string]domain.UserProfile
	results  map[string]domain.AssessmentResult // keyed by session id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]domain.UserProfile),
		results:  make(map[string]domain.AssessmentResult),
	}
}

func (s *MemoryStore) EnsureProfile(_ context.Context, userID, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		profile = domain.UserProfile{UserID: userID}
	}
	if displayName != "" {
		profile.DisplayName = displayName
	}
	s.profiles[userID] = profile
	return nil
}

func (s *MemoryStore) GetProfile(_ context.Context, userID string) (domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return domain.UserProfile{}, ErrProfileNotFound
	}
	return profile, nil
}

func (s *MemoryStore) Insert(_ context.Context, result domain.AssessmentResult) (domain.AssessmentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.results[result.SessionID]; ok {
		return existing, nil
	}
	s.results[result.SessionID] = result

	profile, ok := s.profiles[result.UserID]
	if !ok {
		profile = domain.UserProfile{UserID: result.UserID}
	}
	profile.TotalAssessments++
	createdAt := result.CreatedAt
	profile.LastAssessmentAt = &createdAt
	profile.RiskLevel = result.Classification
	s.profiles[result.UserID] = profile

	return result, nil
}

func (s *MemoryStore) GetBySessionID(_ context.Context, sessionID string) (domain.AssessmentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, ok := s.results[sessionID]
	if !ok {
		return domain.AssessmentResult{}, ErrResultNotFound
	}
	return result, nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]domain.AssessmentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var results []domain.AssessmentResult
	for _, result := range s.results {
		if result.UserID == userID {
			results = append(results, result)
		}
	}
	return results, nil
}
