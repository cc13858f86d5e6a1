package engine

import (
	"fmt"
	"time"
)

// NextPosition computes the candidate position one step in the given direction,
// clamped to the grid. It returns false for an unknown direction.
func (gs *GameState) NextPosition(direction Direction) (Position, bool) {
	next := gs.PlayerPos

	switch direction {
	case Up:
		next.Y = clamp(next.Y-1, 0, gs.GridSize-1)
	case Down:
		next.Y = clamp(next.Y+1, 0, gs.GridSize-1)
	case Left:
		next.X = clamp(next.X-1, 0, gs.GridSize-1)
	case Right:
		next.X = clamp(next.X+1, 0, gs.GridSize-1)
	default:
		return gs.PlayerPos, false
	}

	return next, true
}

// MovePlayer applies a single move and reports whether it was accepted.
// Moves are ignored once the game is won or lost. The clamped candidate is
// always committed; the goal and obstacle checks both run afterwards.
func (gs *GameState) MovePlayer(direction Direction, config *GameConfig) bool {
	if gs.GameOver || gs.GameWon {
		return false
	}

	next, ok := gs.NextPosition(direction)
	if !ok {
		return false
	}

	messages := messagesFor(config)

	gs.PlayerPos = next
	gs.Message = fmt.Sprintf(messages.Moved, next.X, next.Y)

	if next == gs.GoalPos {
		gs.GameWon = true
		gs.Message = messages.Victory
	}

	if gs.IsObstacle(next) {
		gs.GameOver = true
		if gs.GameWon {
			gs.Message = messages.Victory + " " + messages.GameOver
		} else {
			gs.Message = messages.GameOver
		}
	}

	return true
}

// IsObstacle reports whether any obstacle occupies the position
func (gs *GameState) IsObstacle(pos Position) bool {
	for _, obstacle := range gs.Obstacles {
		if obstacle == pos {
			return true
		}
	}
	return false
}

// InBounds reports whether the position lies on the grid
func (gs *GameState) InBounds(pos Position) bool {
	return pos.X >= 0 && pos.X < gs.GridSize && pos.Y >= 0 && pos.Y < gs.GridSize
}

// CellAt classifies a single cell. Player wins over Goal, Goal over Obstacle.
func (gs *GameState) CellAt(x, y int) BoardCell {
	pos := Position{X: x, Y: y}
	cell := BoardCell{X: x, Y: y, Kind: Empty}

	if gs.PlayerPos == pos {
		cell.Markers = append(cell.Markers, Player)
	}
	if gs.GoalPos == pos {
		cell.Markers = append(cell.Markers, Goal)
	}
	if gs.IsObstacle(pos) {
		cell.Markers = append(cell.Markers, Obstacle)
	}
	if len(cell.Markers) > 0 {
		cell.Kind = cell.Markers[0]
	}

	return cell
}

// BuildBoard derives the display snapshot for every cell, row by row
func (gs *GameState) BuildBoard() *Board {
	rows := make([][]BoardCell, gs.GridSize)
	for y := 0; y < gs.GridSize; y++ {
		rows[y] = make([]BoardCell, gs.GridSize)
		for x := 0; x < gs.GridSize; x++ {
			rows[y][x] = gs.CellAt(x, y)
		}
	}

	return &Board{
		GridSize:    gs.GridSize,
		Rows:        rows,
		GameOver:    gs.GameOver,
		GameWon:     gs.GameWon,
		ShowRestart: gs.GameOver || gs.GameWon,
		Message:     gs.Message,
	}
}

// AddMoveToHistory adds an accepted move to the game's move history
func (gs *GameState) AddMoveToHistory(action Direction, fromPos, toPos Position) {
	entry := MoveHistoryEntry{
		Action:       action,
		FromPosition: fromPos,
		ToPosition:   toPos,
		Timestamp:    time.Now().Unix(),
		Clamped:      fromPos == toPos,
		GameOver:     gs.GameOver,
		GameWon:      gs.GameWon,
		MoveNumber:   gs.TotalMoves + 1,
	}
	// Append to cumulative history (never cleared by reset) and increment total
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++

	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
