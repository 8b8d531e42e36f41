package service

import (
	"sync"
	"time"

	"tink/internal/logger"
	"tink/internal/metrics"
	"tink/internal/model"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an untouched session is kept
const DefaultSessionTTL = 30 * time.Minute

// SessionManager keeps conflict sessions in memory keyed by UUID
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl      time.Duration
	resolver *Resolver
	api      ApplicationsAPI
	logger   logger.Logger
	now      func() time.Time
}

// NewSessionManager creates a session manager
func NewSessionManager(resolver *Resolver, api ApplicationsAPI, ttl time.Duration, log logger.Logger) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		resolver: resolver,
		api:      api,
		logger:   log,
		now:      time.Now,
	}
}

// Create opens a session over the given snapshot. In auto mode the
// resolutions are generated right away.
func (m *SessionManager) Create(propertyID int64, apps []model.Application, rooms []model.Room, mode Mode) (*Session, error) {
	sess := NewSession(uuid.NewString(), propertyID, apps, rooms, m.resolver, m.api, m.logger)
	sess.now = m.now
	sess.createdAt = m.now()
	sess.updatedAt = sess.createdAt

	switch mode {
	case ModeAuto:
		if _, err := sess.GenerateRecommendations(); err != nil {
			return nil, err
		}
	case ModeManual:
		if err := sess.SetMode(ModeManual); err != nil {
			return nil, err
		}
	default:
		return nil, newValidationError("mode", "unknown mode %q", mode)
	}

	m.mu.Lock()
	m.sessions[sess.ID()] = sess
	count := len(m.sessions)
	m.mu.Unlock()
	metrics.ConflictSessionsActive.Set(float64(count))

	m.logger.Info("Opened conflict session", map[string]interface{}{
		"session_id":   sess.ID(),
		"property_id":  propertyID,
		"applications": len(apps),
		"rooms":        len(rooms),
		"mode":         mode,
	})
	return sess, nil
}

// Get returns the session with the given id
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Discard drops a session. Nothing was persisted so nothing is undone.
func (m *SessionManager) Discard(id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	count := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	metrics.ConflictSessionsActive.Set(float64(count))
	return nil
}

// Count returns the number of open sessions
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SweepExpired removes sessions idle for longer than the TTL. Sessions with a
// submission in flight are kept.
func (m *SessionManager) SweepExpired() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	removed := 0
	for id, sess := range m.sessions {
		updated, expirable := sess.idleSince()
		if expirable && updated.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	count := len(m.sessions)
	m.mu.Unlock()

	metrics.ConflictSessionsActive.Set(float64(count))
	if removed > 0 {
		m.logger.Info("Expired conflict sessions", map[string]interface{}{
			"removed":   removed,
			"remaining": count,
		})
	}
	return removed
}
