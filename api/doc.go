// Package api provides the HTTP REST API for the frogger grid game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session (body: {"config_id": "classic"})
//   - GET /api/sessions - List sessions (query: sort, order, limit)
//   - GET /api/sessions/unified - Sessions with won/lost totals (query: sessionIds, configName)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Raw game state
//   - GET /api/sessions/{id}/board - Classified cells plus status for rendering
//   - POST /api/sessions/{id}/move - On-screen control (body: {"direction": "up", "reset": false})
//   - POST /api/sessions/{id}/key - Key-down event (body: {"key": "ArrowUp"})
//   - POST /api/sessions/{id}/bulk-move - Several moves (body: {"moves": ["down", "right"]})
//   - POST /api/sessions/{id}/reset - Restart
//   - GET /api/sessions/{id}/history - Move history (query: page, limit, order)
//
// Configuration:
//   - GET /api/configs - List configurations
//   - POST /api/configs - Save a configuration
//   - GET /api/configs/{name} - Get one configuration
//
// Display:
//   - GET /api/controls?width=N - Whether a viewport N pixels wide shows direction buttons
//   - GET /api/health
//
// WebSocket:
//
// GET /ws?session={id} upgrades to a WebSocket that receives the current state
// on connect and every change afterwards. Clients may send actions on the same
// connection ({"action": "key", "key": "ArrowLeft"}, {"action": "move",
// "direction": "up"} or {"action": "reset"}).
//
// Errors are returned as {"error": "message"}. Unknown sessions and configs
// map to 404; unrecognized keys and moves after the game has ended are not
// errors and come back with success=false and an ignored_reason.
package api
