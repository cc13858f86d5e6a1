// Package mcp exposes the frogger grid game to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call is translated into a request
// against the REST API, so an agent plays the same sessions a browser or the
// terminal UI sees.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board drawn as text (F frog, G goal, X obstacle, . empty)
//   - move, press_key, bulk_move, reset_game
//   - move_history: paginated history
//   - list_configs, describe_cell, display_controls, game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
