package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/froggergame/game/engine"
	"github.com/wricardo/mcp-training/froggergame/game/service"
)

// ErrIncompatibleState is returned for a stored game that no longer fits its config
var ErrIncompatibleState = errors.New("stored game does not match its config")

// FilePersistence keeps one JSON file per session, named <id>.json
type FilePersistence struct {
	sessionsDir   string
	configManager service.ConfigManager
}

// NewFilePersistence stores sessions under sessionsDir, creating it when missing.
// Configs are resolved through configManager when a game is restored.
func NewFilePersistence(sessionsDir string, configManager service.ConfigManager) (*FilePersistence, error) {
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &FilePersistence{
		sessionsDir:   sessionsDir,
		configManager: configManager,
	}, nil
}

// Save writes the session through a temporary file so a crash never leaves half a board on disk
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	data := PersistedSessionData{
		Version:        persistedVersion,
		ID:             session.ID,
		ConfigID:       fp.configIDFor(session.Config),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState().Clone(),
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	tmp, err := os.CreateTemp(fp.sessionsDir, "."+session.ID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fp.path(session.ID)); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Load restores a stored game onto a fresh engine for its config
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	raw, err := os.ReadFile(fp.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	if data.Version != persistedVersion {
		return nil, fmt.Errorf("session %s: unsupported file version %d", id, data.Version)
	}
	if data.GameState == nil {
		return nil, fmt.Errorf("session %s has no game state", id)
	}

	gameConfig, err := fp.configManager.LoadConfig(data.ConfigID)
	if err != nil {
		return nil, fmt.Errorf("failed to load config '%s': %w", data.ConfigID, err)
	}
	if err := checkBoard(data.GameState, gameConfig); err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}

	gameEngine, err := engine.NewEngine(gameConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}
	// The saved layout and progress replace the freshly sampled board
	if err := gameEngine.SetState(data.GameState); err != nil {
		return nil, fmt.Errorf("failed to set game state: %w", err)
	}

	return &service.Session{
		ID:             data.ID,
		Engine:         gameEngine,
		Config:         gameConfig,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

// checkBoard rejects a saved board whose grid the config no longer describes
func checkBoard(state *engine.GameState, config *engine.GameConfig) error {
	if state.GridSize != config.GridSize {
		return fmt.Errorf("%w: grid %d, config %q has %d", ErrIncompatibleState, state.GridSize, config.Name, config.GridSize)
	}
	corner := engine.Position{X: config.GridSize - 1, Y: config.GridSize - 1}
	if state.GoalPos != corner {
		return fmt.Errorf("%w: goal at (%d,%d)", ErrIncompatibleState, state.GoalPos.X, state.GoalPos.Y)
	}
	for _, pos := range state.Obstacles {
		if !state.InBounds(pos) {
			return fmt.Errorf("%w: obstacle at (%d,%d) is off the grid", ErrIncompatibleState, pos.X, pos.Y)
		}
	}
	return nil
}

// Delete removes the session's file
func (fp *FilePersistence) Delete(id string) error {
	err := os.Remove(fp.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// ListAll returns the ids of every stored session. In-flight temporary files are skipped.
func (fp *FilePersistence) ListAll() ([]string, error) {
	if _, err := os.Stat(fp.sessionsDir); err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}
	files, err := filepath.Glob(filepath.Join(fp.sessionsDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	ids := make([]string, 0, len(files))
	for _, file := range files {
		name := filepath.Base(file)
		if strings.HasPrefix(name, ".") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}

// Exists reports whether a file is stored for id
func (fp *FilePersistence) Exists(id string) bool {
	info, err := os.Stat(fp.path(id))
	return err == nil && !info.IsDir()
}

func (fp *FilePersistence) path(id string) string {
	return filepath.Join(fp.sessionsDir, id+".json")
}

// configIDFor maps a config to the file-based id it is listed under, so a
// restore finds it even when its display name differs from the file name
func (fp *FilePersistence) configIDFor(config *engine.GameConfig) string {
	configs, err := fp.configManager.ListConfigs()
	if err != nil {
		return config.Name
	}
	for _, info := range configs {
		if info.Name == config.Name {
			return info.ConfigID
		}
	}
	return config.Name
}
