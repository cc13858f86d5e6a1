package engine

// CellKind classifies a grid cell for the display layer
type CellKind string

const (
	Empty    CellKind = "empty"
	Player   CellKind = "player"
	Goal     CellKind = "goal"
	Obstacle CellKind = "obstacle"
)

// Direction is one of the four movement directions
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

const (
	DefaultGridSize      = 10
	DefaultObstacleCount = 10

	// Validation constants
	MinGridSize  = 2
	MaxGridSize  = 50
	MaxBulkMoves = 50

	// Viewports at or below this width (logical pixels) get on-screen direction controls
	CompactViewportWidth = 768
	WebSocketBufferSize  = 256
)

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Messages holds the status texts shown for game events
type Messages struct {
	Welcome     string `json:"welcome"`
	Moved       string `json:"moved"`
	Victory     string `json:"victory"`
	GameOver    string `json:"game_over"`
	AlreadyOver string `json:"already_over"`
}

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	GridSize          int      `json:"grid_size"`
	ObstacleCount     int      `json:"obstacle_count"`
	Seed              int64    `json:"seed,omitempty"` // 0 derives a seed from the clock
	RegenerateOnReset bool     `json:"regenerate_on_reset"`
	Messages          Messages `json:"messages"`
}

// GameState represents the complete game state
type GameState struct {
	GridSize    int                `json:"grid_size"`
	PlayerPos   Position           `json:"player_pos"`
	GoalPos     Position           `json:"goal_pos"`
	Obstacles   []Position         `json:"obstacles"` // duplicates allowed
	GameOver    bool               `json:"game_over"`
	GameWon     bool               `json:"game_won"`
	Message     string             `json:"message"`
	ConfigName  string             `json:"config_name"`
	Seed        int64              `json:"seed"`
	Layouts     int                `json:"layouts"` // obstacle layouts drawn from Seed so far
	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset. It mirrors MoveHistory entries
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`
}

// MoveHistoryEntry represents a single accepted move
type MoveHistoryEntry struct {
	Action       Direction `json:"action"`
	FromPosition Position  `json:"from_position"`
	ToPosition   Position  `json:"to_position"`
	Timestamp    int64     `json:"timestamp"`
	Clamped      bool      `json:"clamped,omitempty"`
	GameOver     bool      `json:"game_over,omitempty"`
	GameWon      bool      `json:"game_won,omitempty"`
	MoveNumber   int       `json:"move_number"`
}

// BoardCell is the derived view of one grid cell
type BoardCell struct {
	X       int        `json:"x"`
	Y       int        `json:"y"`
	Kind    CellKind   `json:"kind"`
	Markers []CellKind `json:"markers,omitempty"` // every marker on the cell, in Player, Goal, Obstacle order
}

// Board is the display-facing snapshot of a game
type Board struct {
	GridSize    int           `json:"grid_size"`
	Rows        [][]BoardCell `json:"rows"`
	GameOver    bool          `json:"game_over"`
	GameWon     bool          `json:"game_won"`
	ShowRestart bool          `json:"show_restart"`
	Message     string        `json:"message,omitempty"`
}
