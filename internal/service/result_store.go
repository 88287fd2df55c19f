package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"psyscreen/internal/domain"
	"psyscreen/internal/repository"
)

var ErrPersistenceFailure = errors.New("assessment result persistence failed")

// ResultStore persists completed assessments. Insertion is keyed by session
// id, so a retried persist for the same session returns the stored result
// without double-counting the profile.
type ResultStore struct {
	logger  *zap.Logger
	results repository.ResultRepository
	users   repository.UserRepository
}

func NewResultStore(logger *zap.Logger, results repository.ResultRepository, users repository.UserRepository) *ResultStore {
	return &ResultStore{
		logger:  logger,
		results: results,
		users:   users,
	}
}

// Persist writes the result and its profile update, retrying once on failure
// before surfacing ErrPersistenceFailure. The caller must treat a failure as
// "session not completed" so a later retry can re-trigger completion.
func (s *ResultStore) Persist(ctx context.Context, result domain.AssessmentResult) (domain.AssessmentResult, error) {
	stored, err := s.results.Insert(ctx, result)
	if err == nil {
		return stored, nil
	}
	s.logger.Warn("persist result failed, retrying once",
		zap.String("session_id", result.SessionID),
		zap.Error(err),
	)

	stored, err = s.results.Insert(ctx, result)
	if err != nil {
		s.logger.Error("persist result failed after retry",
			zap.String("session_id", result.SessionID),
			zap.Error(err),
		)
		return domain.AssessmentResult{}, ErrPersistenceFailure
	}
	return stored, nil
}

// Result returns the stored result for a session.
func (s *ResultStore) Result(ctx context.Context, sessionID string) (domain.AssessmentResult, error) {
	return s.results.GetBySessionID(ctx, sessionID)
}

// Profile returns the denormalized profile view for a user.
func (s *ResultStore) Profile(ctx context.Context, userID string) (domain.UserProfile, error) {
	return s.users.GetProfile(ctx, userID)
}

// History returns the user's stored results, newest first where the backing
// store orders them.
func (s *ResultStore) History(ctx context.Context, userID string) ([]domain.AssessmentResult, error) {
	return s.results.ListByUser(ctx, userID)
}
