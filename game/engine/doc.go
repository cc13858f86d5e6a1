// Package engine provides the core game logic for the Frogger grid game.
//
// The engine package implements the game mechanics including:
//   - Grid-based movement clamped to the board edges
//   - Obstacle collision and goal detection
//   - Seeded obstacle sampling for reproducible sessions
//   - Keyboard and on-screen control mapping
//   - Per-cell classification for the display layer
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState holds the player, goal, obstacles
// and the two end flags, while GameConfig defines grid size, obstacle
// count, seed and status messages.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Move the player
//	accepted := gameEngine.Move(engine.Right)
//	gameEngine.HandleKey("ArrowDown")
//	board := gameEngine.GetBoard()
//
// Game Rules:
//
// The player starts at (0,0) and tries to reach the goal at the opposite
// corner. Moves off the edge are clamped, never rejected. Landing on the
// goal wins; landing on an obstacle loses. Both checks run after every
// move, so a goal cell that is also an obstacle sets both flags. Once
// either flag is set further moves are ignored until Reset, which
// returns the player to the origin and clears the obstacle list.
package engine
