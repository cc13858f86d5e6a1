// Package websocket provides WebSocket transport for the frogger grid game.
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a read and a
// write goroutine; state updates are fanned out only to clients of the same
// session.
//
// Message Protocol:
//
// Messages are JSON-encoded with the following structure:
//   - Incoming: {"action": "key", "key": "ArrowUp"}, {"action": "move", "direction": "up"} or {"action": "reset"}
//   - Outgoing: {"session_id": "ab12", "event": "state_update", "game_state": {...}}
//
// Inbound actions are passed to the ActionHandler installed with
// SetActionHandler. The sender receives an "action_result" (or an "error"),
// and every client of the session receives the resulting state.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	hub.SetActionHandler(handler)
//
//	// ?session=ab12
//	hub.ServeWS(w, r, sessionID, initialState)
package websocket
