package engine

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// DistinctObstacles returns the obstacle positions with duplicates removed, in first-seen order
func DistinctObstacles(obstacles []Position) []Position {
	seen := make(map[Position]bool, len(obstacles))
	distinct := make([]Position, 0, len(obstacles))
	for _, pos := range obstacles {
		if seen[pos] {
			continue
		}
		seen[pos] = true
		distinct = append(distinct, pos)
	}
	return distinct
}

// CountCellKind counts the cells of a board classified as kind
func CountCellKind(board *Board, kind CellKind) int {
	count := 0
	for _, row := range board.Rows {
		for _, cell := range row {
			if cell.Kind == kind {
				count++
			}
		}
	}
	return count
}

// ShortestSafePath returns the number of moves on the shortest obstacle-free path
// from the player to the goal, or -1 when no such path exists. The player's own
// cell is not checked, so a player standing on an obstacle can still be measured.
func ShortestSafePath(state *GameState) int {
	if state.PlayerPos == state.GoalPos {
		return 0
	}
	if state.IsObstacle(state.GoalPos) {
		return -1
	}

	dist := map[Position]int{state.PlayerPos: 0}
	queue := []Position{state.PlayerPos}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, d := range []Position{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
			next := Position{X: current.X + d.X, Y: current.Y + d.Y}
			if !state.InBounds(next) || state.IsObstacle(next) {
				continue
			}
			if _, visited := dist[next]; visited {
				continue
			}
			dist[next] = dist[current] + 1
			if next == state.GoalPos {
				return dist[next]
			}
			queue = append(queue, next)
		}
	}

	return -1
}

// Clone returns a copy of the state that shares no slices with the original
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	clone := *gs
	clone.Obstacles = append([]Position{}, gs.Obstacles...)
	clone.MoveHistory = append([]MoveHistoryEntry{}, gs.MoveHistory...)
	clone.CurrentMoves = append([]MoveHistoryEntry{}, gs.CurrentMoves...)
	return &clone
}
