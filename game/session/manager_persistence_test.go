package session

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/froggergame/game/config"
	"github.com/wricardo/mcp-training/froggergame/game/engine"
)

type persistedGame struct {
	configs     *config.Manager
	persistence *FilePersistence
	dir         string
}

// newPersistedGame sets up a config directory holding a 5x5 "pond" board and a sessions directory
func newPersistedGame(t *testing.T, regenerate bool) *persistedGame {
	t.Helper()

	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	pond := &engine.GameConfig{
		Name:              "pond",
		Description:       "Small board for restart tests",
		GridSize:          5,
		ObstacleCount:     4,
		Seed:              11,
		RegenerateOnReset: regenerate,
		Messages:          engine.Messages{Welcome: "Hop", Victory: "Safe", GameOver: "Splat"},
	}
	if err := configs.SaveConfig("pond", pond); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	dir := t.TempDir()
	persistence, err := NewFilePersistence(dir, configs)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	return &persistedGame{configs: configs, persistence: persistence, dir: dir}
}

func (g *persistedGame) pond(t *testing.T) *engine.GameConfig {
	t.Helper()
	cfg, err := g.configs.LoadConfig("pond")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// restart simulates a server restart: a new manager over the same sessions directory
func (g *persistedGame) restart() *Manager {
	return NewManagerWithPersistence(g.persistence)
}

func TestPersistence_BoardSurvivesRestart(t *testing.T) {
	g := newPersistedGame(t, false)
	manager := g.restart()

	sess, err := manager.Create("pond1", g.pond(t))
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if !g.persistence.Exists("pond1") {
		t.Fatal("Expected new game to be written on creation")
	}
	sess.Engine.GetState().Obstacles = []engine.Position{{X: 4, Y: 0}, {X: 2, Y: 2}, {X: 2, Y: 2}}
	sess.Engine.Move(engine.Down)
	sess.Engine.Move(engine.Right)
	if err := manager.Save("pond1"); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	restored, err := g.restart().Get("pond1")
	if err != nil {
		t.Fatalf("Failed to restore session: %v", err)
	}

	state := restored.Engine.GetState()
	if state.PlayerPos != (engine.Position{X: 1, Y: 1}) {
		t.Errorf("Expected player at (1,1), got %+v", state.PlayerPos)
	}
	// Duplicate draws are part of the layout and must come back as saved
	want := []engine.Position{{X: 4, Y: 0}, {X: 2, Y: 2}, {X: 2, Y: 2}}
	if !reflect.DeepEqual(state.Obstacles, want) {
		t.Errorf("Expected obstacles %v, got %v", want, state.Obstacles)
	}
	if state.Seed != 11 || state.CurrentMovesCount != 2 {
		t.Errorf("Expected seed 11 and 2 moves, got seed %d and %d moves", state.Seed, state.CurrentMovesCount)
	}
}

func TestPersistence_FinishedGameStaysStuck(t *testing.T) {
	tests := []struct {
		name      string
		obstacles []engine.Position
		moves     []engine.Direction
		wantOver  bool
		wantWon   bool
	}{
		{
			name:      "hit obstacle",
			obstacles: []engine.Position{{X: 0, Y: 1}},
			moves:     []engine.Direction{engine.Down},
			wantOver:  true,
		},
		{
			name:    "reached goal",
			moves:   []engine.Direction{engine.Right, engine.Right, engine.Right, engine.Right, engine.Down, engine.Down, engine.Down, engine.Down},
			wantWon: true,
		},
		{
			name:      "obstacle on the goal",
			obstacles: []engine.Position{{X: 4, Y: 4}},
			moves:     []engine.Direction{engine.Down, engine.Down, engine.Down, engine.Down, engine.Right, engine.Right, engine.Right, engine.Right},
			wantOver:  true,
			wantWon:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newPersistedGame(t, false)
			manager := g.restart()

			sess, err := manager.Create("done", g.pond(t))
			if err != nil {
				t.Fatalf("Failed to create session: %v", err)
			}
			sess.Engine.GetState().Obstacles = append([]engine.Position{}, tt.obstacles...)
			sess.Engine.BulkMove(tt.moves)
			if err := manager.Save("done"); err != nil {
				t.Fatalf("Failed to save session: %v", err)
			}

			restored, err := g.restart().Get("done")
			if err != nil {
				t.Fatalf("Failed to restore session: %v", err)
			}
			eng := restored.Engine
			if eng.IsGameOver() != tt.wantOver || eng.IsGameWon() != tt.wantWon {
				t.Fatalf("Expected over=%v won=%v, got over=%v won=%v", tt.wantOver, tt.wantWon, eng.IsGameOver(), eng.IsGameWon())
			}

			before := eng.GetPlayerPosition()
			for _, dir := range engine.Directions {
				if eng.Move(dir) {
					t.Errorf("Restored finished game accepted %s", dir)
				}
			}
			if eng.GetPlayerPosition() != before {
				t.Errorf("Player moved from %+v to %+v", before, eng.GetPlayerPosition())
			}

			// Restart after restore behaves like a live restart: origin, no obstacles
			state := eng.Reset()
			if state.GameOver || state.GameWon || state.PlayerPos != (engine.Position{}) || len(state.Obstacles) != 0 {
				t.Errorf("Unexpected state after reset %+v", state)
			}
			if len(state.MoveHistory) != len(tt.moves) {
				t.Errorf("Expected cumulative history of %d moves, got %d", len(tt.moves), len(state.MoveHistory))
			}
		})
	}
}

func TestPersistence_RegeneratedLayoutContinuesAfterRestart(t *testing.T) {
	g := newPersistedGame(t, true)
	manager := g.restart()

	live, err := manager.Create("rush", g.pond(t))
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	first := append([]engine.Position{}, live.Engine.GetObstacles()...)
	live.Engine.Reset()
	if err := manager.Save("rush"); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	restored, err := g.restart().Get("rush")
	if err != nil {
		t.Fatalf("Failed to restore session: %v", err)
	}

	want := live.Engine.Reset().Obstacles
	got := restored.Engine.Reset().Obstacles
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Restored session drew %v, live session drew %v", got, want)
	}
	if reflect.DeepEqual(got, first) {
		t.Errorf("Restored session repeated its first layout %v", first)
	}
}

func TestPersistence_SessionIDs(t *testing.T) {
	g := newPersistedGame(t, false)
	manager := g.restart()

	if _, err := manager.Create("taken", g.pond(t)); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	// A fresh manager knows nothing in memory but must not overwrite the stored game
	if _, err := g.restart().Create("taken", g.pond(t)); !errors.Is(err, ErrSessionAlreadyExists) {
		t.Errorf("Expected ErrSessionAlreadyExists for a stored id, got %v", err)
	}

	for _, id := range []string{"../escape", `a\b`, ".hidden"} {
		if _, err := manager.Create(id, g.pond(t)); !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Create(%q): expected ErrInvalidSessionID, got %v", id, err)
		}
	}

	if err := manager.Delete("taken"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if g.persistence.Exists("taken") {
		t.Error("Deleted game should be removed from disk")
	}
	if _, err := g.restart().Get("taken"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after delete, got %v", err)
	}
	if _, err := manager.Create("taken", g.pond(t)); err != nil {
		t.Errorf("Expected id to be free after delete, got %v", err)
	}
}

func TestPersistence_ExpiredSessionReloads(t *testing.T) {
	g := newPersistedGame(t, false)
	manager := g.restart()

	sess, err := manager.Create("idle", g.pond(t))
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	sess.Engine.Move(engine.Right)
	if err := manager.Save("idle"); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	sess.LastAccessedAt = time.Now().Add(-2 * time.Hour)
	if removed := manager.CleanupExpiredSessions(time.Hour); removed != 1 {
		t.Fatalf("Expected 1 expired session, got %d", removed)
	}
	if manager.Count() != 0 {
		t.Errorf("Expected no sessions in memory, got %d", manager.Count())
	}

	back, err := manager.Get("idle")
	if err != nil {
		t.Fatalf("Expected expired game to reload from disk: %v", err)
	}
	if back.Engine.GetPlayerPosition() != (engine.Position{X: 1, Y: 0}) {
		t.Errorf("Expected saved position (1,0), got %+v", back.Engine.GetPlayerPosition())
	}
}

func TestPersistence_LoadPersistedSessions(t *testing.T) {
	g := newPersistedGame(t, false)
	manager := g.restart()

	for _, id := range []string{"a1", "b2", "c3"} {
		if _, err := manager.Create(id, g.pond(t)); err != nil {
			t.Fatalf("Failed to create session %s: %v", id, err)
		}
	}

	// A stray temp file and an unreadable session are skipped
	if err := os.WriteFile(filepath.Join(g.dir, ".a1-123.tmp"), []byte("{"), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(g.dir, "junk.json"), []byte("{"), 0644); err != nil {
		t.Fatalf("Failed to write junk file: %v", err)
	}

	restarted := g.restart()
	if err := restarted.LoadPersistedSessions(); err != nil {
		t.Fatalf("Failed to load persisted sessions: %v", err)
	}
	if restarted.Count() != 3 {
		t.Errorf("Expected 3 restored sessions, got %d", restarted.Count())
	}
	for _, id := range []string{"a1", "b2", "c3"} {
		if _, err := restarted.Get(id); err != nil {
			t.Errorf("Expected %s to be restored: %v", id, err)
		}
	}
}

func TestPersistence_ConfigChangedUnderSavedGame(t *testing.T) {
	g := newPersistedGame(t, false)
	if _, err := g.restart().Create("old", g.pond(t)); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	bigger := g.pond(t)
	bigger.GridSize = 8
	if err := g.configs.SaveConfig("pond", bigger); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := g.persistence.Load("old"); !errors.Is(err, ErrIncompatibleState) {
		t.Errorf("Expected ErrIncompatibleState, got %v", err)
	}

	restarted := g.restart()
	if err := restarted.LoadPersistedSessions(); err != nil {
		t.Fatalf("LoadPersistedSessions failed: %v", err)
	}
	if restarted.Count() != 0 {
		t.Errorf("Expected the stale game to be skipped, got %d sessions", restarted.Count())
	}
}
