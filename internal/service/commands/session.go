package commands

import (
	"sync"
	"time"
)

// sessionTTL bounds how long a selection survives without activity.
const sessionTTL = 2 * time.Hour

type session struct {
	serial   string
	lastSeen time.Time
}

// SessionManager remembers the equipment each sender selected with /select,
// so follow-up commands may omit the serial.
type SessionManager struct {
	sessions map[string]session
	mu       sync.RWMutex
	now      func() time.Time
}

// NewSessionManager creates a new session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]session),
		now:      time.Now,
	}
}

// Selected returns the sender's current selection, if still fresh.
func (sm *SessionManager) Selected(sender string) (string, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sessions[sender]
	if !ok || sm.now().Sub(s.lastSeen) > sessionTTL {
		return "", false
	}
	return s.serial, true
}

// Select records serial as the sender's current equipment.
func (sm *SessionManager) Select(sender, serial string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[sender] = session{serial: serial, lastSeen: sm.now()}
}

// Touch extends the sender's selection.
func (sm *SessionManager) Touch(sender string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if s, ok := sm.sessions[sender]; ok {
		s.lastSeen = sm.now()
		sm.sessions[sender] = s
	}
}

// Clear removes a sender's selection.
func (sm *SessionManager) Clear(sender string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, sender)
}
