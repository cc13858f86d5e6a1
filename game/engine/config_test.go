package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func createValidConfig() *GameConfig {
	return &GameConfig{
		Name:          "Test Config",
		Description:   "A valid test configuration",
		GridSize:      10,
		ObstacleCount: 10,
		Seed:          3,
		Messages: Messages{
			Welcome:  "Welcome to the test game!",
			Moved:    "At (%d,%d)",
			Victory:  "Won!",
			GameOver: "Lost!",
		},
	}
}

func TestValidateGameConfig_Valid(t *testing.T) {
	if err := ValidateGameConfig(createValidConfig()); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
	if err := ValidateGameConfig(DefaultConfig()); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestValidateGameConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *GameConfig)
		wantErr string
	}{
		{"missing name", func(c *GameConfig) { c.Name = "" }, "name is required"},
		{"missing description", func(c *GameConfig) { c.Description = "" }, "description is required"},
		{"grid too small", func(c *GameConfig) { c.GridSize = 1 }, "grid_size must be between"},
		{"grid too large", func(c *GameConfig) { c.GridSize = 51 }, "grid_size must be between"},
		{"negative obstacles", func(c *GameConfig) { c.ObstacleCount = -1 }, "obstacle_count"},
		{"too many obstacles", func(c *GameConfig) { c.ObstacleCount = 101 }, "obstacle_count"},
		{"negative seed", func(c *GameConfig) { c.Seed = -5 }, "seed must not be negative"},
		{"missing welcome", func(c *GameConfig) { c.Messages.Welcome = "" }, "messages.welcome"},
		{"missing victory", func(c *GameConfig) { c.Messages.Victory = "" }, "messages.victory"},
		{"missing game over", func(c *GameConfig) { c.Messages.GameOver = "" }, "messages.game_over"},
		{"bad moved format", func(c *GameConfig) { c.Messages.Moved = "Moved %d" }, "messages.moved"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := createValidConfig()
			test.mutate(config)

			err := ValidateGameConfig(config)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("Expected error containing %q, got %q", test.wantErr, err.Error())
			}
		})
	}
}

func TestValidateGameConfig_Nil(t *testing.T) {
	if err := ValidateGameConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestLoadGameConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.json")
	content := `{
		"name": "file config",
		"description": "loaded from disk",
		"grid_size": 8,
		"obstacle_count": 4,
		"seed": 11,
		"messages": {"welcome": "hi", "victory": "won", "game_over": "lost"}
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadGameConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.GridSize != 8 || config.ObstacleCount != 4 || config.Seed != 11 {
		t.Errorf("Unexpected config values: %+v", config)
	}
}

func TestLoadGameConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadGameConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}

	badJSON := filepath.Join(dir, "bad.json")
	os.WriteFile(badJSON, []byte("{not json"), 0644)
	if _, err := LoadGameConfig(badJSON); err == nil {
		t.Error("Expected error for malformed JSON")
	}

	invalid := filepath.Join(dir, "invalid.json")
	os.WriteFile(invalid, []byte(`{"name":"x","description":"y","grid_size":1}`), 0644)
	if _, err := LoadGameConfig(invalid); err == nil {
		t.Error("Expected validation error")
	}
}

func TestLoadGameConfig_ConfigDirEnv(t *testing.T) {
	dir := t.TempDir()
	content := `{"name":"env","description":"from CONFIG_DIR","grid_size":10,"obstacle_count":10,
		"messages":{"welcome":"hi","victory":"won","game_over":"lost"}}`
	os.WriteFile(filepath.Join(dir, "env.json"), []byte(content), 0644)

	t.Setenv("CONFIG_DIR", dir)

	config, err := LoadGameConfig("configs/env.json")
	if err != nil {
		t.Fatalf("Expected CONFIG_DIR lookup to succeed: %v", err)
	}
	if config.Name != "env" {
		t.Errorf("Expected env config, got %s", config.Name)
	}
}

func TestGenerateObstacles(t *testing.T) {
	a := GenerateObstacles(NewRand(5), 10, 10)
	b := GenerateObstacles(NewRand(5), 10, 10)

	if len(a) != 10 {
		t.Fatalf("Expected 10 obstacles, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Expected identical samples for the same seed at %d", i)
		}
	}

	if got := GenerateObstacles(NewRand(5), 10, 0); len(got) != 0 {
		t.Errorf("Expected no obstacles for count 0, got %d", len(got))
	}
}

func TestResolveSeed(t *testing.T) {
	if ResolveSeed(17) != 17 {
		t.Error("Expected explicit seed to be kept")
	}
	if ResolveSeed(0) <= 0 {
		t.Error("Expected positive clock-derived seed")
	}
}

func TestInitGameStateFromConfig_NilConfig(t *testing.T) {
	state := InitGameStateFromConfig(nil, NewRand(1))

	if state.GridSize != DefaultGridSize {
		t.Errorf("Expected default grid size, got %d", state.GridSize)
	}
	if len(state.Obstacles) != DefaultObstacleCount {
		t.Errorf("Expected %d obstacles, got %d", DefaultObstacleCount, len(state.Obstacles))
	}
	if state.GoalPos != (Position{9, 9}) {
		t.Errorf("Expected goal at (9,9), got %+v", state.GoalPos)
	}
}
