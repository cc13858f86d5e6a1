package service

import (
	"time"

	"github.com/wricardo/mcp-training/froggergame/game/engine"
)

// Event types reported in move results
const (
	EventReset    = "reset"
	EventMove     = "move"
	EventClamped  = "clamped"
	EventVictory  = "victory"
	EventGameOver = "game_over"
	EventIgnored  = "ignored"
)

// Reasons a move request was ignored
const (
	IgnoredGameFinished     = "game_finished"
	IgnoredUnknownKey       = "unknown_key"
	IgnoredUnknownDirection = "unknown_direction"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success       bool               `json:"success"`
	IgnoredReason string             `json:"ignored_reason,omitempty"`
	GameState     *engine.GameState  `json:"game_state"`
	Message       string             `json:"message"`
	Events        []GameEvent        `json:"events,omitempty"`
	Step          *StepInfo          `json:"step,omitempty"`
	PossibleMoves []engine.Direction `json:"possible_moves,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // victory|hit_obstacle|game_finished|unknown_direction
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos engine.Position `json:"start_pos"`
	EndPos   engine.Position `json:"end_pos"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Final status aids
	GameOver      bool               `json:"game_over"`
	GameWon       bool               `json:"game_won"`
	Message       string             `json:"message,omitempty"`
	PossibleMoves []engine.Direction `json:"possible_moves,omitempty"`
}

// StepInfo is a compact record for each executed move
type StepInfo struct {
	Idx      int              `json:"idx"`
	Dir      engine.Direction `json:"dir"`
	From     engine.Position  `json:"from"`
	To       engine.Position  `json:"to"`
	Clamped  bool             `json:"clamped,omitempty"`
	Cell     engine.CellKind  `json:"cell"`
	GameWon  bool             `json:"game_won,omitempty"`
	GameOver bool             `json:"game_over,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename          string `json:"filename"`
	ConfigID          string `json:"config_id"` // The identifier to use for session creation
	Name              string `json:"name"`      // Display name
	Description       string `json:"description"`
	GridSize          int    `json:"grid_size"`
	ObstacleCount     int    `json:"obstacle_count"`
	Seed              int64  `json:"seed,omitempty"`
	RegenerateOnReset bool   `json:"regenerate_on_reset"`
}
