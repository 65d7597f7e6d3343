package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager creates and looks up form sessions. Sessions live for the process
// lifetime, like a browser tab left open.
type Manager struct {
	source   ScheduleSource
	client   DataClient
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager
func NewManager(source ScheduleSource, client DataClient, notifier Notifier, logger *zap.Logger) *Manager {
	return &Manager{
		source:   source,
		client:   client,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session bound to today's date
func (m *Manager) Create() *Session {
	session := NewSession(uuid.NewString(), m.now(), m.source, m.client, m.notifier, m.logger)
	m.mu.Lock()
	m.sessions[session.ID()] = session
	m.mu.Unlock()
	m.logger.Info("session created", zap.String("session_id", session.ID()))
	return session
}

// Get returns a session by ID
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	return session, ok
}
