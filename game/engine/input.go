package engine

import "strings"

// Keyboard key identifiers accepted as movement input
const (
	KeyArrowUp    = "ArrowUp"
	KeyArrowDown  = "ArrowDown"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

var keyDirections = map[string]Direction{
	KeyArrowUp:    Up,
	KeyArrowDown:  Down,
	KeyArrowLeft:  Left,
	KeyArrowRight: Right,
}

// Directions lists the movement directions in a stable order
var Directions = []Direction{Up, Down, Left, Right}

// DirectionForKey maps a key-down identifier to a direction.
// Unrecognized keys return false and must be ignored by the caller.
func DirectionForKey(key string) (Direction, bool) {
	dir, ok := keyDirections[key]
	return dir, ok
}

// ParseDirection maps an on-screen control name (up, down, left, right) to a direction
func ParseDirection(name string) (Direction, bool) {
	dir := Direction(strings.ToLower(strings.TrimSpace(name)))
	switch dir {
	case Up, Down, Left, Right:
		return dir, true
	}
	return "", false
}

// ShowDirectionControls reports whether a viewport of the given width gets
// on-screen direction buttons. It never affects game state.
func ShowDirectionControls(width int) bool {
	return width <= CompactViewportWidth
}
