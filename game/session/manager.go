package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/wricardo/mcp-training/froggergame/game/engine"
	"github.com/wricardo/mcp-training/froggergame/game/service"
)

var (
	// ErrSessionNotFound is shared with the service layer so callers can match it with errors.Is
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// generatedIDBytes random bytes make up a generated id (two hex characters each)
const generatedIDBytes = 2

// Manager keeps the live frogger games in memory, keyed by lower-cased id.
// With persistence configured every created board is written out, and a game
// missing from memory is restored from storage on first access.
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	mu          sync.RWMutex
}

// NewManager creates an in-memory session manager
func NewManager() *Manager {
	return NewManagerWithPersistence(nil)
}

// NewManagerWithPersistence creates a session manager backed by persistence
func NewManagerWithPersistence(persistence SessionPersistence) *Manager {
	return &Manager{
		sessions:    make(map[string]*service.Session),
		persistence: persistence,
	}
}

func key(id string) string {
	return strings.ToLower(id)
}

// Create starts a new game for config. An empty id gets a generated one.
// The obstacle layout is drawn here, once per session.
func (m *Manager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	if strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return nil, ErrInvalidSessionID
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateSessionID()
	} else if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	sess := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key(id)] = sess

	log.WithFields(log.Fields{
		"session":   id,
		"config":    config.Name,
		"seed":      eng.GetSeed(),
		"obstacles": len(eng.GetObstacles()),
	}).Debug("Session created")

	m.persist(sess, "create")
	return sess, nil
}

// persist writes sess when storage is configured; failures are logged, the game carries on
func (m *Manager) persist(sess *service.Session, after string) {
	if m.persistence == nil {
		return
	}
	if err := m.persistence.Save(sess); err != nil {
		log.WithFields(log.Fields{
			"session": sess.ID,
			"after":   after,
		}).Warnf("Failed to persist session: %v", err)
	}
}

// Get returns the session for id, ignoring case. Sessions only on disk are
// restored with their saved board.
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[key(id)]
	m.mu.RUnlock()
	if ok {
		return sess, nil
	}

	if m.persistence == nil || !m.persistence.Exists(id) {
		return nil, ErrSessionNotFound
	}

	restored, err := m.persistence.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have restored it first
	if sess, ok := m.sessions[key(id)]; ok {
		return sess, nil
	}
	m.sessions[key(id)] = restored
	return restored, nil
}

// GetOrCreate returns the session for id, starting a new game when there is none
func (m *Manager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	sess, err := m.Get(id)
	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, config)
	}
	return sess, err
}

// List returns the sessions in memory, oldest first
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	result := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, sess)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Delete ends a game in memory and in storage
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, inMemory := m.sessions[key(id)]
	delete(m.sessions, key(id))

	if m.persistence != nil && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory drops a session from memory and leaves storage alone
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[key(id)]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, key(id))
	return nil
}

// UpdateLastAccessed marks a session as used now, keeping it clear of expiry
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[key(id)]
	if !ok {
		return ErrSessionNotFound
	}
	sess.LastAccessedAt = time.Now()
	m.persist(sess, "access")
	return nil
}

// Save writes the current board and progress of a session to storage
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	sess, ok := m.sessions[key(id)]
	m.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}
	return m.persistence.Save(sess)
}

// CleanupExpiredSessions evicts sessions idle for longer than maxAge from
// memory. Persisted games stay on disk and are restored on their next access.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for k, sess := range m.sessions {
		if !sess.LastAccessedAt.Before(cutoff) {
			continue
		}
		delete(m.sessions, k)
		removed++
		log.WithFields(log.Fields{
			"session":       sess.ID,
			"last_accessed": sess.LastAccessedAt.Format(time.RFC3339),
		}).Debug("Expired session removed from memory")
	}
	return removed
}

// Count returns the number of sessions in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID returns a short hex id not used in memory or storage.
// Callers hold m.mu.
func (m *Manager) generateSessionID() string {
	buf := make([]byte, generatedIDBytes)
	var id string
	for attempt := 0; attempt < 8; attempt++ {
		rand.Read(buf)
		id = hex.EncodeToString(buf)
		if !m.sessionExists(id) {
			break
		}
	}
	return id
}

// sessionExists reports whether id is taken in memory or storage. Callers hold m.mu.
func (m *Manager) sessionExists(id string) bool {
	if _, ok := m.sessions[key(id)]; ok {
		return true
	}
	return m.persistence != nil && m.persistence.Exists(id)
}

// LoadPersistedSessions restores every stored game that is not already in memory.
// Files that cannot be restored are logged and skipped.
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for _, id := range ids {
		if _, ok := m.sessions[key(id)]; ok {
			continue
		}
		sess, err := m.persistence.Load(id)
		if err != nil {
			log.WithField("session", id).Warnf("Failed to load persisted session: %v", err)
			continue
		}
		m.sessions[key(id)] = sess
		loaded++
	}

	if loaded > 0 {
		log.Infof("Loaded %d persisted sessions from storage", loaded)
	}
	return nil
}

// SaveAllSessions writes every session in memory to storage
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	var errs []error
	for _, sess := range m.List() {
		if err := m.persistence.Save(sess); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", sess.ID, err))
		}
	}
	return errors.Join(errs...)
}
