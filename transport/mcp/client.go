package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/froggergame/game/engine"
	"github.com/wricardo/mcp-training/froggergame/game/service"
)

// Characters used to draw the board for text clients
const (
	charPlayer   = "F"
	charGoal     = "G"
	charObstacle = "X"
	charEmpty    = "."
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Frogger Grid Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Frogger Grid Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Guide the frog (F) from the top-left corner to the goal (G) in the bottom-right corner.
Landing on an obstacle (X) ends the game. Moves past the edge keep the frog on the border.

AVAILABLE TOOLS:
- create_session: Create new game session
- list_sessions: List all active sessions
- get_session: Get session details
- game_state: Get current board and status
- move: Single move (up/down/left/right) - requires intent explanation
- press_key: Send a keyboard key (ArrowUp, ArrowDown, ArrowLeft, ArrowRight)
- bulk_move: Multiple moves at once - requires intent explanation
- reset_game: Restart the current game
- move_history: View past moves
- list_configs: List available configurations
- describe_cell: Get details about a specific grid cell
- display_controls: Check whether a viewport width shows on-screen direction buttons
- game_instructions: Get game rules

NOTE: The 'intent' parameter on move/bulk_move tools serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func sessionOnlySchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"session_id": sessionIDProperty(),
		},
		Required: []string{"session_id"},
	}
}

func emptySchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: map[string]interface{}{},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use, e.g. classic, seeded, tiny (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: emptySchema(),
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: sessionOnlySchema(),
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board and game status",
		InputSchema: sessionOnlySchema(),
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the frog one cell in a direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to move",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "press_key",
		Description: "Send a key-down event. Arrow keys move the frog; other keys are ignored.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"key": map[string]interface{}{
					"type":        "string",
					"description": "Key identifier, e.g. ArrowUp",
				},
			},
			Required: []string{"session_id", "key"},
		},
	}, c.handlePressKey)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: "Execute multiple moves in sequence, stopping when the game ends",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"up", "down", "left", "right"},
					},
					"description": "Array of moves",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Restart the game: frog back to the start, status cleared",
		InputSchema: sessionOnlySchema(),
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: emptySchema(),
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe what occupies a specific cell of the grid",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column), 0-based",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row), 0-based",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "display_controls",
		Description: "Report whether a viewport of the given width shows on-screen direction buttons",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"width": map[string]interface{}{
					"type":        "integer",
					"description": "Viewport width in logical pixels",
				},
			},
			Required: []string{"width"},
		},
	}, c.handleDisplayControls)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get game instructions and rules",
		InputSchema: emptySchema(),
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// arguments returns the tool call arguments, tolerating a missing map
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s (Config: %s, Created: %s, Status: %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), statusLabel(s.GameState))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)
	reset, _ := args["reset"].(bool)

	body := map[string]interface{}{
		"direction": direction,
		"reset":     reset,
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handlePressKey(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	key, _ := args["key"].(string)

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/key"), map[string]string{"key": key}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	movesRaw, _ := args["moves"].([]interface{})
	reset, _ := args["reset"].(bool)

	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if move, ok := m.(string); ok {
			moves = append(moves, move)
		}
	}

	body := map[string]interface{}{
		"moves": moves,
		"reset": reset,
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := args["page"].(float64); ok {
		params.Set("page", fmt.Sprintf("%d", int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		params.Set("limit", fmt.Sprintf("%d", int(limit)))
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s\n  %s\n  Grid: %dx%d, Obstacles: %d",
			config.ConfigID, config.Description, config.GridSize, config.GridSize, config.ObstacleCount)
		if config.Seed != 0 {
			fmt.Fprintf(&b, ", Seed: %d", config.Seed)
		}
		b.WriteString("\n\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	xf, okX := args["x"].(float64)
	yf, okY := args["y"].(float64)
	if !okX || !okY {
		return mcp.NewToolResultError("x and y must be integers"), nil
	}
	x, y := int(xf), int(yf)

	var board engine.Board
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/board"), nil, &board); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if x < 0 || x >= board.GridSize || y < 0 || y >= board.GridSize {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d, %d) are out of bounds. Grid size is %dx%d (0-%d for both x and y)",
			x, y, board.GridSize, board.GridSize, board.GridSize-1)), nil
	}

	return mcp.NewToolResultText(describeCell(board.Rows[y][x])), nil
}

func (c *Client) handleDisplayControls(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	width, ok := arguments(request)["width"].(float64)
	if !ok {
		return mcp.NewToolResultError("width must be an integer"), nil
	}

	var response struct {
		Width            int                `json:"width"`
		ShowDirectionPad bool               `json:"show_direction_pad"`
		Breakpoint       int                `json:"breakpoint"`
		Directions       []engine.Direction `json:"directions"`
	}
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/controls?width=%d", int(width)), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if response.ShowDirectionPad {
		return mcp.NewToolResultText(fmt.Sprintf("Width %d is at or below %d: on-screen direction buttons are shown.", response.Width, response.Breakpoint)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Width %d is above %d: use the arrow keys.", response.Width, response.Breakpoint)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Frogger Grid Game - Instructions

GAME OBJECTIVE:
Move the frog from the top-left corner (0,0) to the goal in the bottom-right corner.

GRID LEGEND:
• F - Frog (your current position)
• G - Goal
• X - Obstacle
• . - Empty cell

RULES:
• Each move shifts the frog one cell up, down, left or right
• Moving past an edge leaves the frog on the border; the move still counts
• Reaching the goal wins the game
• Landing on an obstacle ends the game
• Obstacles are placed at random when a session starts and may overlap the start or goal
• Once the game is won or lost, moves are ignored until you reset

CONTROLS:
• move: up, down, left, right
• press_key: ArrowUp, ArrowDown, ArrowLeft, ArrowRight (other keys are ignored)
• bulk_move: a list of directions, stops as soon as the game ends
• reset_game: put the frog back at the start

Good luck crossing!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func cellChar(kind engine.CellKind) string {
	switch kind {
	case engine.Player:
		return charPlayer
	case engine.Goal:
		return charGoal
	case engine.Obstacle:
		return charObstacle
	default:
		return charEmpty
	}
}

func describeCell(cell engine.BoardCell) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cell at position (%d, %d):\n", cell.X, cell.Y)
	fmt.Fprintf(&b, "Character: %s\n", cellChar(cell.Kind))

	if len(cell.Markers) == 0 {
		b.WriteString("Contents: empty - safe to move here\n")
		return b.String()
	}

	names := make([]string, 0, len(cell.Markers))
	for _, m := range cell.Markers {
		names = append(names, string(m))
	}
	fmt.Fprintf(&b, "Contents: %s\n", strings.Join(names, ", "))

	for _, m := range cell.Markers {
		if m == engine.Obstacle {
			b.WriteString("Warning: landing here ends the game\n")
			break
		}
	}
	return b.String()
}

func statusLabel(state *engine.GameState) string {
	switch {
	case state == nil:
		return "unknown"
	case state.GameWon && state.GameOver:
		return "won and lost"
	case state.GameWon:
		return "won"
	case state.GameOver:
		return "lost"
	default:
		return "playing"
	}
}

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

// formatBoard draws the grid using the same precedence as the board view
func formatBoard(state *engine.GameState) string {
	var b strings.Builder
	for y := 0; y < state.GridSize; y++ {
		for x := 0; x < state.GridSize; x++ {
			b.WriteString(cellChar(state.CellAt(x, y).Kind))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	fmt.Fprintf(&result, "Position: (%d,%d) | Goal: (%d,%d) | Moves: %d\n\n",
		state.PlayerPos.X, state.PlayerPos.Y,
		state.GoalPos.X, state.GoalPos.Y,
		state.CurrentMovesCount)

	result.WriteString(formatBoard(state))

	if state.GameWon {
		result.WriteString("\n🎉 VICTORY!")
	}
	if state.GameOver {
		result.WriteString("\n💀 GAME OVER")
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Move accepted\n")
	} else {
		fmt.Fprintf(&b, "✗ Move ignored (%s)\n", result.IgnoredReason)
	}

	if s := result.Step; s != nil {
		clamped := ""
		if s.Clamped {
			clamped = " (edge)"
		}
		fmt.Fprintf(&b, "Step: %s (%d,%d)→(%d,%d) cell=%s%s\n",
			s.Dir, s.From.X, s.From.Y, s.To.X, s.To.Y, cellChar(s.Cell), clamped)
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	if len(result.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "Possible moves: %s\n", joinDirections(result.PossibleMoves))
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	gridSize := 0
	configName := ""
	if result.GameState != nil {
		gridSize = result.GameState.GridSize
		configName = result.GameState.ConfigName
	}
	fmt.Fprintf(&b, "Session: %s • Config: %s • Grid: %dx%d\n", sessionID, configName, gridSize, gridSize)

	fmt.Fprintf(&b, "Executed %d/%d moves\n", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, "Truncated to %d moves\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on move %d: %s\n", result.StoppedOnMove, result.StoppedReason)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, s := range result.Steps {
			fmt.Fprintf(&b, "%d. %s (%d,%d)→(%d,%d) cell=%s\n",
				s.Idx, s.Dir, s.From.X, s.From.Y, s.To.X, s.To.Y, cellChar(s.Cell))
		}
	}

	if len(result.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "\nPossible moves: %s\n", joinDirections(result.PossibleMoves))
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func joinDirections(dirs []engine.Direction) string {
	parts := make([]string, len(dirs))
	for i, d := range dirs {
		parts[i] = string(d)
	}
	return strings.Join(parts, ",")
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d), total %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		status := ""
		switch {
		case move.GameWon:
			status = " [goal]"
		case move.GameOver:
			status = " [obstacle]"
		case move.Clamped:
			status = " [edge]"
		}
		fmt.Fprintf(&b, "%d. %s (%d,%d)→(%d,%d)%s\n",
			move.MoveNumber, move.Action,
			move.FromPosition.X, move.FromPosition.Y,
			move.ToPosition.X, move.ToPosition.Y, status)
	}

	return b.String()
}
