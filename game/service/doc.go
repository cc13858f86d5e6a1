// Package service provides the business logic layer for the frogger grid game.
//
// The service package implements:
//   - Multi-session game management
//   - Translation of keyboard keys and on-screen controls into moves
//   - Move processing with per-step traces and events
//   - Move history pagination
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP and the
// terminal UI) and the game engine. Each session owns its own engine instance,
// so obstacles and progress never leak between sessions.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	sessionInfo, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.PressKey(ctx, sessionInfo.ID, "ArrowRight")
//
// Input that is not an arrow key, and any move after the game has been won or
// lost, comes back with Success false and an IgnoredReason instead of an error.
package service
