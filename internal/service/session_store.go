package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"psyscreen/internal/domain"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore holds in-progress assessment sessions. Implementations must
// treat sessions idle past the configured timeout as gone.
type SessionStore interface {
	Save(ctx context.Context, session domain.AssessmentSession) error
	Get(ctx context.Context, sessionID string) (domain.AssessmentSession, error)
	ActiveIDByUser(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

type memorySessionStore struct {
	mu          sync.Mutex
	sessions    map[string]domain.AssessmentSession
	activeByUID map[string]string
	idleTimeout time.Duration
	now         func() time.Time
}

// NewMemorySessionStore builds an in-process store. A zero idleTimeout
// disables expiry.
func NewMemorySessionStore(idleTimeout time.Duration) SessionStore {
	return &memorySessionStore{
		sessions:    make(map[string]domain.AssessmentSession),
		activeByUID: make(map[string]string),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

func (s *memorySessionStore) Save(_ context.Context, session domain.AssessmentSession) error {
	if session.ID == "" {
		return errors.New("session id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	if session.Status == domain.SessionActive {
		s.activeByUID[session.UserID] = session.ID
	} else if s.activeByUID[session.UserID] == session.ID {
		delete(s.activeByUID, session.UserID)
	}
	return nil
}

func (s *memorySessionStore) Get(_ context.Context, sessionID string) (domain.AssessmentSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.AssessmentSession{}, ErrSessionNotFound
	}
	if s.expired(session) {
		delete(s.sessions, sessionID)
		if s.activeByUID[session.UserID] == sessionID {
			delete(s.activeByUID, session.UserID)
		}
		return domain.AssessmentSession{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *memorySessionStore) ActiveIDByUser(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.activeByUID[userID]
	if !ok {
		return "", ErrSessionNotFound
	}
	session, ok := s.sessions[id]
	if !ok || s.expired(session) {
		delete(s.activeByUID, userID)
		delete(s.sessions, id)
		return "", ErrSessionNotFound
	}
	return id, nil
}

func (s *memorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		if s.activeByUID[session.UserID] == sessionID {
			delete(s.activeByUID, session.UserID)
		}
		delete(s.sessions, sessionID)
	}
	return nil
}

// expired applies the idle timeout on read, matching the lazy expiry of the
// Redis-backed store's key TTL.
func (s *memorySessionStore) expired(session domain.AssessmentSession) bool {
	if s.idleTimeout <= 0 || session.Status != domain.SessionActive {
		return false
	}
	return s.now().After(session.UpdatedAt.Add(s.idleTimeout))
}

type redisSessionStore struct {
	client      *redis.Client
	prefix      string
	idleTimeout time.Duration
}

// NewRedisSessionStore builds a Redis-backed store. Sessions are stored as
// JSON under assess:session:{id} with the idle timeout as key TTL, refreshed
// on every save; assess:active:{user} indexes the user's active session.
func NewRedisSessionStore(client *redis.Client, idleTimeout time.Duration) SessionStore {
	if client == nil {
		return nil
	}
	return &redisSessionStore{
		client:      client,
		prefix:      "assess:",
		idleTimeout: idleTimeout,
	}
}

func (s *redisSessionStore) sessionKey(id string) string {
	return s.prefix + "session:" + id
}

func (s *redisSessionStore) activeKey(userID string) string {
	return s.prefix + "active:" + userID
}

func (s *redisSessionStore) Save(ctx context.Context, session domain.AssessmentSession) error {
	if session.ID == "" {
		return errors.New("session id is required")
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := s.idleTimeout
	if session.Status != domain.SessionActive {
		// Terminal sessions stay readable briefly for retried deliveries.
		ttl = time.Hour
	}
	if err := s.client.Set(ctx, s.sessionKey(session.ID), payload, ttl).Err(); err != nil {
		return err
	}
	if session.Status == domain.SessionActive {
		return s.client.Set(ctx, s.activeKey(session.UserID), session.ID, ttl).Err()
	}
	current, err := s.client.Get(ctx, s.activeKey(session.UserID)).Result()
	if err == nil && current == session.ID {
		return s.client.Del(ctx, s.activeKey(session.UserID)).Err()
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

func (s *redisSessionStore) Get(ctx context.Context, sessionID string) (domain.AssessmentSession, error) {
	payload, err := s.client.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.AssessmentSession{}, ErrSessionNotFound
	}
	if err != nil {
		return domain.AssessmentSession{}, err
	}
	var session domain.AssessmentSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return domain.AssessmentSession{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return session, nil
}

func (s *redisSessionStore) ActiveIDByUser(ctx context.Context, userID string) (string, error) {
	id, err := s.client.Get(ctx, s.activeKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, sessionID string) error {
	session, err := s.Get(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.sessionKey(sessionID)).Err(); err != nil {
		return err
	}
	current, err := s.client.Get(ctx, s.activeKey(session.UserID)).Result()
	if err == nil && current == sessionID {
		return s.client.Del(ctx, s.activeKey(session.UserID)).Err()
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
