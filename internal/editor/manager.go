package editor

import (
	"log"
	"sync"
	"time"

	"idCardStudioAPI/internal/assets"
	"idCardStudioAPI/internal/scene"
)

// Manager owns all live editing sessions in memory. Scenes are ephemeral
// by design: a session lost to restart or idle cleanup only ever cost
// unexported edits, never persisted data.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	store    *assets.Store
}

func NewManager(store *assets.Store) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		store:    store,
	}
}

func (m *Manager) Create(userID string, o scene.Orientation) *Session {
	s := NewSession(userID, o, m.store)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}

// CleanupIdleSessions runs forever, closing sessions idle longer than
// maxIdle. Start it from main as a goroutine.
func (m *Manager) CleanupIdleSessions(interval, maxIdle time.Duration) {
	for {
		time.Sleep(interval)

		m.mu.Lock()
		var expired []*Session
		for id, s := range m.sessions {
			if time.Since(s.LastActive()) > maxIdle {
				expired = append(expired, s)
				delete(m.sessions, id)
			}
		}
		m.mu.Unlock()

		for _, s := range expired {
			s.Close()
			log.Printf("Editor: cleaned up idle session %s", s.ID)
		}
	}
}
