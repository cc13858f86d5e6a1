package engine

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	Initialize() *GameState
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool
	IsGameWon() bool
	IsFinished() bool
	GetPlayerPosition() Position
	GetGoalPosition() Position
	GetObstacles() []Position
	GetSeed() int64

	// Movement operations
	Move(direction Direction) bool
	HandleKey(key string) bool
	CanMove(direction Direction) bool
	GetPossibleMoves() []Direction

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Display
	GetBoard() *Board
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state  *GameState
	config *GameConfig
	rng    *rand.Rand
	seed   int64
}

// NewEngine creates a new game engine with the provided configuration
// and samples the session's obstacles.
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	engine := &GameEngine{config: config}
	engine.Initialize()

	return engine, nil
}

// NewEngineWithDefaults creates a new game engine with the classic configuration
func NewEngineWithDefaults() *GameEngine {
	engine := &GameEngine{config: DefaultConfig()}
	engine.Initialize()
	return engine
}

// Initialize starts a new session: player at the origin, both flags cleared and a
// fresh obstacle sample drawn from the config seed.
func (e *GameEngine) Initialize() *GameState {
	e.seed = ResolveSeed(e.config.Seed)
	e.rng = NewRand(e.seed)
	e.state = InitGameStateFromConfig(e.config, e.rng)
	e.state.Seed = e.seed
	return e.state
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.GridSize < MinGridSize || state.GridSize > MaxGridSize {
		return fmt.Errorf("state has invalid grid size %d", state.GridSize)
	}
	if !state.InBounds(state.PlayerPos) {
		return fmt.Errorf("player position (%d,%d) is outside the grid", state.PlayerPos.X, state.PlayerPos.Y)
	}

	if state.Obstacles == nil {
		state.Obstacles = []Position{}
	}
	e.state = state
	if state.Seed != 0 {
		e.seed = state.Seed
		e.rng = NewRand(state.Seed)
		// Advance past the layouts already drawn so the next reset continues the stream
		if state.Layouts < 1 {
			state.Layouts = 1
		}
		for i := 0; i < state.Layouts; i++ {
			GenerateObstacles(e.rng, state.GridSize, e.config.ObstacleCount)
		}
	}
	return nil
}

// Reset returns the player to the origin and clears both flags. The obstacle
// list is emptied rather than resampled unless the config asks for regeneration.
func (e *GameEngine) Reset() *GameState {
	e.state.PlayerPos = Position{X: 0, Y: 0}
	e.state.GameOver = false
	e.state.GameWon = false
	e.state.Obstacles = []Position{}
	if e.config.RegenerateOnReset {
		e.state.Obstacles = GenerateObstacles(e.rng, e.state.GridSize, e.config.ObstacleCount)
		e.state.Layouts++
	}
	e.state.Message = messagesFor(e.config).Welcome

	// Cumulative history survives; only the current segment is cleared
	e.state.CurrentMoves = []MoveHistoryEntry{}
	e.state.CurrentMovesCount = 0

	return e.state
}

// IsGameOver returns whether the player hit an obstacle
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// IsGameWon returns whether the player reached the goal
func (e *GameEngine) IsGameWon() bool {
	return e.state.GameWon
}

// IsFinished returns whether further moves are ignored
func (e *GameEngine) IsFinished() bool {
	return e.state.GameOver || e.state.GameWon
}

// GetPlayerPosition returns the current player position
func (e *GameEngine) GetPlayerPosition() Position {
	return e.state.PlayerPos
}

// GetGoalPosition returns the goal cell
func (e *GameEngine) GetGoalPosition() Position {
	return e.state.GoalPos
}

// GetObstacles returns a copy of the obstacle list
func (e *GameEngine) GetObstacles() []Position {
	out := make([]Position, len(e.state.Obstacles))
	copy(out, e.state.Obstacles)
	return out
}

// GetSeed returns the seed the obstacles were sampled with
func (e *GameEngine) GetSeed() int64 {
	return e.seed
}

// Move attempts to move the player in the specified direction
func (e *GameEngine) Move(direction Direction) bool {
	prevPos := e.state.PlayerPos
	if !e.state.MovePlayer(direction, e.config) {
		return false
	}

	e.state.AddMoveToHistory(direction, prevPos, e.state.PlayerPos)
	return true
}

// HandleKey translates a keyboard key identifier into a move. Unknown keys are ignored.
func (e *GameEngine) HandleKey(key string) bool {
	direction, ok := DirectionForKey(key)
	if !ok {
		return false
	}
	return e.Move(direction)
}

// CanMove checks if a move in the direction would change the player's position
func (e *GameEngine) CanMove(direction Direction) bool {
	if e.IsFinished() {
		return false
	}

	next, ok := e.state.NextPosition(direction)
	return ok && next != e.state.PlayerPos
}

// GetPossibleMoves returns all directions that would change the player's position
func (e *GameEngine) GetPossibleMoves() []Direction {
	var possible []Direction

	for _, dir := range Directions {
		if e.CanMove(dir) {
			possible = append(possible, dir)
		}
	}

	return possible
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and starts a new session with it
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	e.config = config
	e.Initialize()
	return nil
}

// GetMessages returns the status texts in effect for this engine
func (e *GameEngine) GetMessages() Messages {
	return messagesFor(e.config)
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// GetBoard returns the per-cell classification for the display layer
func (e *GameEngine) GetBoard() *Board {
	return e.state.BuildBoard()
}

// BulkMove executes multiple moves in sequence, returning acceptance for each.
// It stops once the game has been won or lost.
func (e *GameEngine) BulkMove(moves []Direction) []bool {
	results := make([]bool, 0, len(moves))

	for _, direction := range moves {
		if e.IsFinished() {
			break
		}

		results = append(results, e.Move(direction))
	}

	return results
}
