package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"psyscreen/internal/domain"
)

var ErrProfileNotFound = errors.New("user profile not found")

// UserRepository is the persistence contract for user profiles.
type UserRepository interface {
	EnsureProfile(ctx context.Context, userID, displayName string) error
	GetProfile(ctx context.Context, userID string) (domain.UserProfile, error)
}

// PgUserRepository implements UserRepository on pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

// EnsureProfile creates the profile row if missing and refreshes the display
// name when one is provided.
func (r *PgUserRepository) EnsureProfile(ctx context.Context, userID, displayName string) error {
	const query = `
		INSERT INTO users (user_id, display_name, total_assessments)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id) DO UPDATE
		SET display_name = CASE WHEN EXCLUDED.display_name <> '' THEN EXCLUDED.display_name ELSE users.display_name END
	`
	_, err := r.pool.Exec(ctx, query, userID, displayName)
	return err
}

func (r *PgUserRepository) GetProfile(ctx context.Context, userID string) (domain.UserProfile, error) {
	const query = `
		SELECT user_id, display_name, last_assessment_at, risk_level, total_assessments
		FROM users
		WHERE user_id = $1
	`
	var p domain.UserProfile
	var riskLevel *string
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.DisplayName,
		&p.LastAssessmentAt,
		&riskLevel,
		&p.TotalAssessments,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserProfile{}, ErrProfileNotFound
	}
	if riskLevel != nil {
		p.RiskLevel = *riskLevel
	}
	return p, err
}
