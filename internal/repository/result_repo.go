package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"psyscreen/internal/domain"
)

var ErrResultNotFound = errors.New("assessment result not found")

// ResultRepository is the persistence contract for completed assessments.
// Insert is idempotent on session id: inserting a result for a session that
// already has one returns the stored result unchanged.
type ResultRepository interface {
	Insert(ctx context.Context, result domain.AssessmentResult) (domain.AssessmentResult, error)
	GetBySessionID(ctx context.Context, sessionID string) (domain.AssessmentResult, error)
	ListByUser(ctx context.Context, userID string) ([]domain.AssessmentResult, error)
}

// PgResultRepository implements ResultRepository on pgxpool. The result row
// and the profile update share one transaction so the assessment counter
// always matches the stored results.
type PgResultRepository struct {
	pool *pgxpool.Pool
}

func NewPgResultRepository(pool *pgxpool.Pool) *PgResultRepository {
	return &PgResultRepository{pool: pool}
}

func (r *PgResultRepository) Insert(ctx context.Context, result domain.AssessmentResult) (domain.AssessmentResult, error) {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return domain.AssessmentResult{}, fmt.Errorf("marshal answers: %w", err)
	}
	flags, err := json.Marshal(result.RiskFlags)
	if err != nil {
		return domain.AssessmentResult{}, fmt.Errorf("marshal risk flags: %w", err)
	}
	recs, err := json.Marshal(result.Recommendations)
	if err != nil {
		return domain.AssessmentResult{}, fmt.Errorf("marshal recommendations: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.AssessmentResult{}, err
	}
	defer tx.Rollback(ctx)

	const insertQuery = `
		INSERT INTO results (result_id, user_id, instrument_id, session_id, answers, classification, risk_flags, recommendations, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (session_id) DO NOTHING
	`
	tag, err := tx.Exec(ctx, insertQuery,
		result.ID,
		result.UserID,
		result.InstrumentID,
		result.SessionID,
		answers,
		result.Classification,
		flags,
		recs,
		result.CreatedAt,
	)
	if err != nil {
		return domain.AssessmentResult{}, err
	}

	if tag.RowsAffected() == 0 {
		// Retry of an already-persisted completion: hand back the stored row
		// without touching the profile.
		existing, err := r.getBySessionID(ctx, tx, result.SessionID)
		if err != nil {
			return domain.AssessmentResult{}, err
		}
		return existing, tx.Commit(ctx)
	}

	const profileQuery = `
		UPDATE users
		SET total_assessments = total_assessments + 1,
		    last_assessment_at = $2,
		    risk_level = $3
		WHERE user_id = $1
	`
	if _, err := tx.Exec(ctx, profileQuery, result.UserID, result.CreatedAt, result.Classification); err != nil {
		return domain.AssessmentResult{}, err
	}

	return result, tx.Commit(ctx)
}

func (r *PgResultRepository) GetBySessionID(ctx context.Context, sessionID string) (domain.AssessmentResult, error) {
	return r.getBySessionID(ctx, r.pool, sessionID)
}

// queryRower abstracts pool vs transaction for shared read paths.
type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *PgResultRepository) getBySessionID(ctx context.Context, q queryRower, sessionID string) (domain.AssessmentResult, error) {
	const query = `
		SELECT result_id, user_id, instrument_id, session_id, answers, classification, risk_flags, recommendations, created_at
		FROM results
		WHERE session_id = $1
	`
	return scanResult(q.QueryRow(ctx, query, sessionID))
}

func (r *PgResultRepository) ListByUser(ctx context.Context, userID string) ([]domain.AssessmentResult, error) {
	const query = `
		SELECT result_id, user_id, instrument_id, session_id, answers, classification, risk_flags, recommendations, created_at
		FROM results
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.AssessmentResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func scanResult(row pgx.Row) (domain.AssessmentResult, error) {
	var result domain.AssessmentResult
	var answers, flags, recs []byte
	err := row.Scan(
		&result.ID,
		&result.UserID,
		&result.InstrumentID,
		&result.SessionID,
		&answers,
		&result.Classification,
		&flags,
		&recs,
		&result.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.AssessmentResult{}, ErrResultNotFound
	}
	if err != nil {
		return domain.AssessmentResult{}, err
	}
	if err := json.Unmarshal(answers, &result.Answers); err != nil {
		return domain.AssessmentResult{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	if err := json.Unmarshal(flags, &result.RiskFlags); err != nil {
		return domain.AssessmentResult{}, fmt.Errorf("unmarshal risk flags: %w", err)
	}
	if err := json.Unmarshal(recs, &result.Recommendations); err != nil {
		return domain.AssessmentResult{}, fmt.Errorf("unmarshal recommendations: %w", err)
	}
	return result, nil
}
