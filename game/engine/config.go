package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/exp/rand"
)

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate grid size
	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("config validation: grid_size must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.GridSize)
	}

	// Duplicates are allowed, so the count is bounded by the number of cells only as a sanity limit
	maxObstacles := config.GridSize * config.GridSize
	if config.ObstacleCount < 0 || config.ObstacleCount > maxObstacles {
		return fmt.Errorf("config validation: obstacle_count must be between 0 and %d, got %d", maxObstacles, config.ObstacleCount)
	}

	if config.Seed < 0 {
		return fmt.Errorf("config validation: seed must not be negative, got %d", config.Seed)
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Victory == "" {
		return fmt.Errorf("config validation: messages.victory is required")
	}
	if config.Messages.GameOver == "" {
		return fmt.Errorf("config validation: messages.game_over is required")
	}

	// Validate format strings
	if config.Messages.Moved != "" && strings.Count(config.Messages.Moved, "%d") != 2 {
		return fmt.Errorf("config validation: messages.moved must contain %%d twice for x and y")
	}

	return nil
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultConfig returns the classic 10x10 game with 10 obstacles
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:          "classic",
		Description:   "Frogger inspired 10x10 grid with 10 random obstacles",
		GridSize:      DefaultGridSize,
		ObstacleCount: DefaultObstacleCount,
		Messages:      defaultMessages(),
	}
}

func defaultMessages() Messages {
	return Messages{
		Welcome:     "Reach the flag in the bottom-right corner. Avoid the roadblocks!",
		Moved:       "Moved to (%d,%d)",
		Victory:     "You Win!",
		GameOver:    "Game Over!",
		AlreadyOver: "The game has ended. Restart to play again.",
	}
}

// messagesFor returns the config's messages with blanks filled from the defaults
func messagesFor(config *GameConfig) Messages {
	defaults := defaultMessages()
	if config == nil {
		return defaults
	}

	m := config.Messages
	if m.Welcome == "" {
		m.Welcome = defaults.Welcome
	}
	if m.Moved == "" {
		m.Moved = defaults.Moved
	}
	if m.Victory == "" {
		m.Victory = defaults.Victory
	}
	if m.GameOver == "" {
		m.GameOver = defaults.GameOver
	}
	if m.AlreadyOver == "" {
		m.AlreadyOver = defaults.AlreadyOver
	}
	return m
}

// ResolveSeed returns the configured seed, or a clock-derived one when it is zero
func ResolveSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	seed = time.Now().UnixNano()
	if seed < 0 {
		seed = -seed
	}
	if seed == 0 {
		seed = 1
	}
	return seed
}

// NewRand returns the deterministic generator used for obstacle sampling
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(uint64(seed)))
}

// GenerateObstacles performs count independent uniform draws over the grid.
// Duplicates and draws landing on the start or goal cell are kept.
func GenerateObstacles(rng *rand.Rand, gridSize, count int) []Position {
	obstacles := make([]Position, 0, count)
	for i := 0; i < count; i++ {
		obstacles = append(obstacles, Position{
			X: rng.Intn(gridSize),
			Y: rng.Intn(gridSize),
		})
	}
	return obstacles
}

// InitGameStateFromConfig creates a new game state using the provided configuration
// and samples its obstacles from rng.
func InitGameStateFromConfig(config *GameConfig, rng *rand.Rand) *GameState {
	if config == nil {
		config = DefaultConfig()
	}

	gridSize := config.GridSize

	return &GameState{
		GridSize:          gridSize,
		PlayerPos:         Position{X: 0, Y: 0},
		GoalPos:           Position{X: gridSize - 1, Y: gridSize - 1},
		Obstacles:         GenerateObstacles(rng, gridSize, config.ObstacleCount),
		Layouts:           1,
		GameOver:          false,
		GameWon:           false,
		Message:           messagesFor(config).Welcome,
		ConfigName:        config.Name,
		MoveHistory:       []MoveHistoryEntry{},
		TotalMoves:        0,
		CurrentMoves:      []MoveHistoryEntry{},
		CurrentMovesCount: 0,
	}
}
