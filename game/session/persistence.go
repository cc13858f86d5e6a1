package session

import (
	"time"

	"github.com/wricardo/mcp-training/froggergame/game/engine"
	"github.com/wricardo/mcp-training/froggergame/game/service"
)

// SessionPersistence stores games between server runs
type SessionPersistence interface {
	Save(session *service.Session) error
	Load(id string) (*service.Session, error)
	Delete(id string) error
	// ListAll returns the ids of every stored game
	ListAll() ([]string, error)
	Exists(id string) bool
}

// persistedVersion is written to every session file; files from another version are not restored
const persistedVersion = 1

// PersistedSessionData is the on-disk form of a session. The full game state is
// kept, so the obstacle layout and the seed it was drawn from come back as saved.
type PersistedSessionData struct {
	Version        int               `json:"version"`
	ID             string            `json:"id"`
	ConfigID       string            `json:"config_name"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
}
