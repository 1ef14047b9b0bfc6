package draft

import (
	"fmt"
	"sync"
	"time"
)

// Sessions is the process-wide draft store used by the authoring handlers
// and the idle sweeper.
var Sessions = NewManager()

// Manager holds live authoring sessions keyed by instructor and course
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

func key(instructorID, courseID uint) string {
	return fmt.Sprintf("%d:%d", instructorID, courseID)
}

// Get returns the open session for an instructor/course pair, if any
func (m *Manager) Get(instructorID, courseID uint) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key(instructorID, courseID)]
	return s, ok
}

// Put registers a freshly opened session, replacing any previous one
func (m *Manager) Put(instructorID, courseID uint, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[key(instructorID, courseID)] = s
}

// Discard drops a session without saving
func (m *Manager) Discard(instructorID, courseID uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key(instructorID, courseID))
}

// Sweep discards sessions idle for longer than maxIdle and returns how many
// were dropped.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-maxIdle)
	dropped := 0
	for k, s := range m.sessions {
		if s.IdleSince().Before(cutoff) {
			delete(m.sessions, k)
			dropped++
		}
	}
	return dropped
}
