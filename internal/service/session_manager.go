package service

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"psyscreen/internal/domain"
	"psyscreen/internal/email"
	"psyscreen/internal/repository"
)

var (
	ErrOutOfSequence = errors.New("answer out of sequence")
	ErrInvalidOption = errors.New("invalid option value")
)

const lockStripes = 64

// SessionManager owns the per-user assessment state machine. Events for one
// session are serialized through a striped lock; sessions of different users
// proceed independently.
type SessionManager struct {
	logger   *zap.Logger
	catalog  *Catalog
	store    SessionStore
	results  *ResultStore
	users    repository.UserRepository
	notifier email.Notifier
	locks    [lockStripes]sync.Mutex
	now      func() time.Time
}

func NewSessionManager(
	logger *zap.Logger,
	catalog *Catalog,
	store SessionStore,
	results *ResultStore,
	users repository.UserRepository,
	notifier email.Notifier,
) *SessionManager {
	return &SessionManager{
		logger:   logger,
		catalog:  catalog,
		store:    store,
		results:  results,
		users:    users,
		notifier: notifier,
		now:      time.Now,
	}
}

// Start creates a new active session for the user on the given instrument.
// An existing active session is superseded: it transitions to abandoned and
// the new session starts at position zero. Starting never errors on an
// in-progress assessment.
func (m *SessionManager) Start(ctx context.Context, userID, displayName, instrumentID string) (domain.StepResult, error) {
	instrument, err := m.catalog.Get(instrumentID)
	if err != nil {
		return domain.StepResult{}, err
	}

	if err := m.users.EnsureProfile(ctx, userID, displayName); err != nil {
		return domain.StepResult{}, err
	}

	if err := m.abandonActive(ctx, userID); err != nil {
		return domain.StepResult{}, err
	}

	now := m.now().UTC()
	session := domain.AssessmentSession{
		ID:           uuid.NewString(),
		UserID:       userID,
		InstrumentID: instrument.ID,
		Status:       domain.SessionActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := m.store.Save(ctx, session); err != nil {
		return domain.StepResult{}, err
	}

	m.logger.Info("assessment started",
		zap.String("session_id", session.ID),
		zap.String("user_id", userID),
		zap.String("instrument_id", instrument.ID),
	)

	return domain.StepResult{
		SessionID: session.ID,
		Next:      domain.NextQuestionView(instrument, 0),
	}, nil
}

// CurrentPrompt returns the question at the session's cursor, or a result
// with no question when every answer is recorded and only completion is
// pending.
func (m *SessionManager) CurrentPrompt(ctx context.Context, sessionID string) (domain.StepResult, error) {
	session, err := m.activeSession(ctx, sessionID)
	if err != nil {
		return domain.StepResult{}, err
	}
	instrument, err := m.catalog.Get(session.InstrumentID)
	if err != nil {
		return domain.StepResult{}, err
	}
	return domain.StepResult{
		SessionID: session.ID,
		Next:      domain.NextQuestionView(instrument, session.Position),
	}, nil
}

// SubmitAnswer validates the event against the session cursor, records the
// answer, and advances. Completing the final question runs the scoring,
// recommendation, and persistence pipeline synchronously before the session
// is marked completed. A redelivery of an already-recorded event is a no-op
// that replays the step result it produced the first time.
func (m *SessionManager) SubmitAnswer(ctx context.Context, sessionID, questionID string, value int) (domain.StepResult, error) {
	lock := m.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return domain.StepResult{}, err
	}
	instrument, err := m.catalog.Get(session.InstrumentID)
	if err != nil {
		return domain.StepResult{}, err
	}

	if session.Status != domain.SessionActive {
		// A redelivered final event may arrive after the session closed;
		// replay the terminal view instead of erroring the retry.
		if session.Status == domain.SessionCompleted {
			if recorded, ok := session.AnswerValue(questionID); ok && recorded == value {
				if last := instrument.QuestionAt(len(instrument.Questions) - 1); last != nil && last.ID == questionID {
					return m.replayCompleted(ctx, session)
				}
			}
		}
		return domain.StepResult{}, ErrSessionNotFound
	}

	if recorded, ok := session.AnswerValue(questionID); ok {
		// Only the question immediately behind the cursor can legitimately
		// arrive again: a retried delivery of the same event.
		prev := instrument.QuestionAt(session.Position - 1)
		if prev != nil && prev.ID == questionID && recorded == value {
			return m.replayStep(ctx, session, instrument)
		}
		return domain.StepResult{}, ErrOutOfSequence
	}

	current := instrument.QuestionAt(session.Position)
	if current == nil || current.ID != questionID {
		return domain.StepResult{}, ErrOutOfSequence
	}
	if !current.AllowsValue(value) {
		return domain.StepResult{}, ErrInvalidOption
	}

	session.Answers = append(session.Answers, domain.Answer{QuestionID: questionID, Value: value})
	session.Position++
	session.UpdatedAt = m.now().UTC()
	if err := m.store.Save(ctx, session); err != nil {
		return domain.StepResult{}, err
	}

	if session.Position < len(instrument.Questions) {
		return domain.StepResult{
			SessionID: session.ID,
			Next:      domain.NextQuestionView(instrument, session.Position),
		}, nil
	}
	return m.complete(ctx, session, instrument)
}

// replayStep reproduces the step result a duplicate delivery saw the first
// time: the next prompt, or the completion pipeline again when the duplicate
// was the final answer. Completion is idempotent through the result store.
func (m *SessionManager) replayStep(ctx context.Context, session domain.AssessmentSession, instrument domain.Instrument) (domain.StepResult, error) {
	if session.Position < len(instrument.Questions) {
		return domain.StepResult{
			SessionID: session.ID,
			Next:      domain.NextQuestionView(instrument, session.Position),
		}, nil
	}
	return m.complete(ctx, session, instrument)
}

// replayCompleted rebuilds the terminal view from the stored result.
func (m *SessionManager) replayCompleted(ctx context.Context, session domain.AssessmentSession) (domain.StepResult, error) {
	result, err := m.results.Result(ctx, session.ID)
	if err != nil {
		return domain.StepResult{}, ErrSessionNotFound
	}
	return domain.StepResult{
		SessionID: session.ID,
		Done: &domain.AssessmentComplete{
			Classification:  result.Classification,
			RiskFlags:       result.RiskFlags,
			Recommendations: result.Recommendations,
		},
	}, nil
}

// complete runs score -> recommend -> persist -> mark completed. On a
// persistence failure the session stays active at its last index so a
// retried delivery can re-trigger completion.
func (m *SessionManager) complete(ctx context.Context, session domain.AssessmentSession, instrument domain.Instrument) (domain.StepResult, error) {
	classification, flags, err := Score(instrument, session.AnswerMap())
	if err != nil {
		return domain.StepResult{}, err
	}
	recommendations := Recommend(classification, flags)

	result := domain.AssessmentResult{
		ID:              uuid.NewString(),
		UserID:          session.UserID,
		InstrumentID:    session.InstrumentID,
		SessionID:       session.ID,
		Answers:         session.Answers,
		Classification:  classification,
		RiskFlags:       flags,
		Recommendations: recommendations,
		CreatedAt:       m.now().UTC(),
	}

	stored, err := m.results.Persist(ctx, result)
	if err != nil {
		return domain.StepResult{}, err
	}

	session.Status = domain.SessionCompleted
	session.UpdatedAt = m.now().UTC()
	if err := m.store.Save(ctx, session); err != nil {
		return domain.StepResult{}, err
	}

	m.logger.Info("assessment completed",
		zap.String("session_id", session.ID),
		zap.String("user_id", session.UserID),
		zap.String("classification", stored.Classification),
		zap.Strings("risk_flags", stored.RiskFlags),
	)

	if stored.HasRiskFlag(domain.RiskFlagCritical) {
		m.notifyEscalation(stored)
	}

	return domain.StepResult{
		SessionID: session.ID,
		Done: &domain.AssessmentComplete{
			Classification:  stored.Classification,
			RiskFlags:       stored.RiskFlags,
			Recommendations: stored.Recommendations,
		},
	}, nil
}

// Profile exposes the denormalized user view for the channel.
func (m *SessionManager) Profile(ctx context.Context, userID string) (domain.UserProfile, error) {
	return m.results.Profile(ctx, userID)
}

// History exposes the user's stored assessment results for the channel.
func (m *SessionManager) History(ctx context.Context, userID string) ([]domain.AssessmentResult, error) {
	return m.results.History(ctx, userID)
}

// activeSession loads a session and maps every non-active state, including
// idle-expired sessions the store already dropped, to ErrSessionNotFound.
func (m *SessionManager) activeSession(ctx context.Context, sessionID string) (domain.AssessmentSession, error) {
	session, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return domain.AssessmentSession{}, err
	}
	if session.Status != domain.SessionActive {
		return domain.AssessmentSession{}, ErrSessionNotFound
	}
	return session, nil
}

func (m *SessionManager) abandonActive(ctx context.Context, userID string) error {
	activeID, err := m.store.ActiveIDByUser(ctx, userID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	session, err := m.store.Get(ctx, activeID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	session.Status = domain.SessionAbandoned
	session.UpdatedAt = m.now().UTC()
	if err := m.store.Save(ctx, session); err != nil {
		return err
	}
	m.logger.Info("session superseded",
		zap.String("session_id", session.ID),
		zap.String("user_id", userID),
	)
	return nil
}

// notifyEscalation alerts the configured contact without blocking the
// completion response.
func (m *SessionManager) notifyEscalation(result domain.AssessmentResult) {
	if m.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.notifier.SendEscalationAlert(ctx, result.UserID, result.InstrumentID, result.Classification); err != nil {
			m.logger.Warn("escalation alert failed",
				zap.String("session_id", result.SessionID),
				zap.Error(err),
			)
		}
	}()
}

func (m *SessionManager) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return &m.locks[h.Sum32()%lockStripes]
}
