package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/wricardo/mcp-training/froggergame/game/engine"
	"github.com/wricardo/mcp-training/froggergame/game/service"
	"github.com/wricardo/mcp-training/froggergame/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	if hub != nil {
		hub.SetActionHandler(s.handleClientAction)
	}
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// API routes with clean REST patterns
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	// Unified sessions for multi-session view (must be before {id} pattern)
	api.HandleFunc("/sessions/unified", s.handleUnifiedSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/board", s.handleGetBoard).Methods("GET")
	api.HandleFunc("/sessions/{id}/move", s.handleMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/key", s.handleKey).Methods("POST")
	api.HandleFunc("/sessions/{id}/bulk-move", s.handleBulkMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	// Display hints and health
	api.HandleFunc("/controls", s.handleControls).Methods("GET")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrConfigNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// broadcast pushes a state change to the session's WebSocket subscribers
func (s *Server) broadcast(sessionID string, state *engine.GameState) {
	if s.hub != nil && state != nil {
		s.hub.BroadcastToSession(sessionID, state)
	}
}

// gameEvents picks the events pushed to subscribers. Moves already arrive as state updates.
func gameEvents(events []service.GameEvent) []websocket.Event {
	var out []websocket.Event
	for _, event := range events {
		switch event.Type {
		case service.EventVictory, service.EventGameOver, service.EventReset:
			out = append(out, websocket.Event{Name: event.Type, Data: event})
		}
	}
	return out
}

func (s *Server) broadcastEvents(sessionID string, events []service.GameEvent) {
	if s.hub == nil {
		return
	}
	for _, event := range gameEvents(events) {
		s.hub.BroadcastEvent(sessionID, event.Name, event.Data)
	}
}

func resetEvents() []service.GameEvent {
	return []service.GameEvent{{
		Type:      service.EventReset,
		Message:   "Game reset to initial state",
		Timestamp: time.Now(),
	}}
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID   string `json:"config_id,omitempty"`
		ConfigName string `json:"config_name,omitempty"` // Deprecated, use config_id
	}

	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	// Support both new and old parameter names, but prefer config_id
	configID := req.ConfigID
	if configID == "" && req.ConfigName != "" {
		configID = req.ConfigName
	}

	session, err := s.service.CreateSession(r.Context(), configID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrConfigNotFound) {
			status = http.StatusBadRequest
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Parse query parameters
	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	// Set defaults
	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	// Sort sessions
	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else { // "accessed"
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj) // desc
	})

	// Apply limit if specified
	limit := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			limit = l
		}
	}
	total := len(sessions)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    limit,
		"total":    total,
		"sessions": sessions[:limit],
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	err := s.service.DeleteSession(r.Context(), sessionID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Operation Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	state, err := s.service.GetGameState(r.Context(), sessionID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	board, err := s.service.GetBoard(r.Context(), sessionID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, board)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	var req struct {
		Direction string `json:"direction"`
		Reset     bool   `json:"reset,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Move(r.Context(), sessionID, req.Direction, req.Reset)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	s.broadcast(sessionID, result.GameState)
	s.broadcastEvents(sessionID, result.Events)
	logMove(sessionID, result)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	var req struct {
		Key string `json:"key"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.PressKey(r.Context(), sessionID, req.Key)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	if result.Success {
		s.broadcast(sessionID, result.GameState)
		s.broadcastEvents(sessionID, result.Events)
	}
	logMove(sessionID, result)

	respondJSON(w, http.StatusOK, result)
}

// logMove writes a compact server log line for observability
func logMove(sessionID string, result *service.MoveResult) {
	entry := log.WithField("session", sessionID)
	if result.Step == nil {
		entry.WithField("reason", result.IgnoredReason).Debug("Move ignored")
		return
	}

	step := result.Step
	entry.WithFields(log.Fields{
		"dir":       step.Dir,
		"from":      fmt.Sprintf("(%d,%d)", step.From.X, step.From.Y),
		"to":        fmt.Sprintf("(%d,%d)", step.To.X, step.To.Y),
		"clamped":   step.Clamped,
		"game_won":  step.GameWon,
		"game_over": step.GameOver,
	}).Info("Move")
}

func (s *Server) handleBulkMove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	var req struct {
		Moves []string `json:"moves"`
		Reset bool     `json:"reset,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Moves) == 0 {
		respondError(w, http.StatusBadRequest, "moves must not be empty")
		return
	}

	result, err := s.service.BulkMove(r.Context(), sessionID, req.Moves, req.Reset)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	s.broadcast(sessionID, result.GameState)
	s.broadcastEvents(sessionID, result.Events)

	log.WithFields(log.Fields{
		"session":  sessionID,
		"executed": fmt.Sprintf("%d/%d", result.MovesExecuted, result.RequestedMoves),
		"stop":     result.StopReasonCode,
		"end":      fmt.Sprintf("(%d,%d)", result.EndPos.X, result.EndPos.Y),
	}).Info("Bulk move")

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	state, err := s.service.Reset(r.Context(), sessionID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	s.broadcast(sessionID, state)
	s.broadcastEvents(sessionID, resetEvents())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Game reset successfully",
		"state":   state,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	// Parse query parameters
	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}

	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetMoveHistory(r.Context(), sessionID, opts)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	configName := vars["name"]

	// Remove .json extension if present
	configName = strings.TrimSuffix(configName, ".json")

	config, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, config)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	// Decode directly into engine.GameConfig which has the correct structure
	var gameConfig engine.GameConfig

	if err := json.NewDecoder(r.Body).Decode(&gameConfig); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Validate required fields
	if gameConfig.Name == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}

	if err := engine.ValidateGameConfig(&gameConfig); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Save configuration
	if err := s.service.SaveConfig(r.Context(), gameConfig.Name, &gameConfig); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save config: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": gameConfig.Name,
	})
}

// Unified Sessions Handler

func (s *Server) handleUnifiedSessions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	// Get sessions based on query parameters
	var sessions []*service.SessionInfo

	if sessionIDs := query.Get("sessionIds"); sessionIDs != "" {
		// Get specific sessions by IDs
		ids := strings.Split(sessionIDs, ",")
		sessions = make([]*service.SessionInfo, 0, len(ids))
		for _, id := range ids {
			id = strings.TrimSpace(id)
			if id != "" {
				session, err := s.service.GetSession(r.Context(), id)
				if err == nil {
					sessions = append(sessions, session)
				}
			}
		}
	} else if configName := query.Get("configName"); configName != "" {
		// Get all sessions with a specific config
		allSessions, err := s.service.ListSessions(r.Context())
		if err == nil {
			sessions = make([]*service.SessionInfo, 0)
			for _, session := range allSessions {
				if session.ConfigName == configName {
					sessions = append(sessions, session)
				}
			}
		}
	} else {
		// Get all sessions
		allSessions, err := s.service.ListSessions(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		sessions = allSessions
	}

	// Prepare unified response
	configName := ""
	if len(sessions) > 0 {
		// Use the config from the first session
		configName = sessions[0].ConfigName
	}

	won, lost := 0, 0
	sessionData := make([]map[string]interface{}, 0, len(sessions))
	for _, session := range sessions {
		if session.GameState != nil {
			if session.GameState.GameWon {
				won++
			}
			if session.GameState.GameOver {
				lost++
			}
		}
		sessionData = append(sessionData, map[string]interface{}{
			"session_id":    session.ID,
			"config_name":   session.ConfigName,
			"game_state":    session.GameState,
			"created_at":    session.CreatedAt,
			"last_accessed": session.LastAccessedAt,
		})
	}

	// Format response
	response := map[string]interface{}{
		"config_name": configName,
		"won":         won,
		"lost":        lost,
		"sessions":    sessionData,
	}

	respondJSON(w, http.StatusOK, response)
}

// Display Handlers

// handleControls reports whether a viewport of the given width shows the
// on-screen direction buttons
func (s *Server) handleControls(w http.ResponseWriter, r *http.Request) {
	widthStr := r.URL.Query().Get("width")
	width, err := strconv.Atoi(widthStr)
	if err != nil || width < 0 {
		respondError(w, http.StatusBadRequest, "width must be a non-negative integer")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"width":              width,
		"show_direction_pad": engine.ShowDirectionControls(width),
		"breakpoint":         engine.CompactViewportWidth,
		"directions":         engine.Directions,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}
	if s.hub == nil {
		http.Error(w, "WebSocket updates are disabled", http.StatusServiceUnavailable)
		return
	}

	// Verify session exists and send its state on connect
	state, err := s.service.GetGameState(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	// Upgrade to WebSocket
	s.hub.ServeWS(w, r, sessionID, state)
}

// handleClientAction applies actions sent by WebSocket clients
func (s *Server) handleClientAction(ctx context.Context, sessionID string, action websocket.ClientAction) (*websocket.ActionResult, error) {
	switch action.Action {
	case "key":
		result, err := s.service.PressKey(ctx, sessionID, action.Key)
		if err != nil {
			return nil, err
		}
		return moveActionResult(result), nil
	case "move":
		result, err := s.service.Move(ctx, sessionID, action.Direction, false)
		if err != nil {
			return nil, err
		}
		return moveActionResult(result), nil
	case "reset":
		state, err := s.service.Reset(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		return &websocket.ActionResult{
			GameState: state,
			Data:      map[string]string{"message": "Game reset successfully"},
			Events:    gameEvents(resetEvents()),
		}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", action.Action)
	}
}

func moveActionResult(result *service.MoveResult) *websocket.ActionResult {
	out := &websocket.ActionResult{Data: result}
	if result.Success {
		out.GameState = result.GameState
		out.Events = gameEvents(result.Events)
	}
	return out
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
