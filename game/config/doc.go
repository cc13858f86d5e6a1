// Package config provides configuration management for the frogger grid game.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Configuration validation
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Game configurations are stored as JSON files in the configs directory.
// Each configuration defines the grid size, how many obstacles are drawn,
// an optional fixed seed for reproducible layouts, whether a restart draws a
// fresh layout, and the status messages shown to the player.
//
// The classic 10x10 game with 10 obstacles is built in. A classic.json file in
// the config directory overrides it.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("seeded")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
package config
