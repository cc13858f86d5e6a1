package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/wricardo/mcp-training/froggergame/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// getSession looks up a session and refreshes its access time
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}

	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		log.WithField("session", sessionID).Debugf("Failed to update last access: %v", err)
	}
	return sess, nil
}

// persist saves a session after a state change; failures are logged, not returned
func (s *gameServiceImpl) persist(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.WithFields(log.Fields{"session": sessionID, "after": after}).Warnf("Failed to persist session: %v", err)
	}
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState().Clone(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.WithFields(log.Fields{
		"session": sess.ID,
		"config":  config.Name,
		"seed":    sess.Engine.GetSeed(),
	}).Info("Session created")

	return s.sessionInfo(sess, configName), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return s.sessionInfo(sess, ""), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, ""))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	log.WithField("session", sessionID).Info("Session deleted")
	return nil
}

// Move executes a single move named by an on-screen control (up, down, left, right)
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	var events []GameEvent
	if reset {
		sess.Engine.Reset()
		events = append(events, resetEvent())
	}

	dir, ok := engine.ParseDirection(direction)
	if !ok {
		if reset {
			s.persist(sessionID, "reset")
		}
		return s.ignored(sess, events, IgnoredUnknownDirection, fmt.Sprintf("Unknown direction %q ignored", direction)), nil
	}

	result := s.applyMove(sess, dir, events)
	s.persist(sessionID, "move")
	return result, nil
}

// PressKey handles a keyboard key-down event. Keys other than the arrow keys are ignored.
func (s *gameServiceImpl) PressKey(ctx context.Context, sessionID, key string) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	dir, ok := engine.DirectionForKey(key)
	if !ok {
		return s.ignored(sess, nil, IgnoredUnknownKey, fmt.Sprintf("Key %q ignored", key)), nil
	}

	result := s.applyMove(sess, dir, nil)
	s.persist(sessionID, "key")
	return result, nil
}

// applyMove runs one direction through the engine and builds the result
func (s *gameServiceImpl) applyMove(sess *Session, dir engine.Direction, events []GameEvent) *MoveResult {
	if sess.Engine.IsFinished() {
		return s.ignored(sess, events, IgnoredGameFinished, sess.Engine.GetMessages().AlreadyOver)
	}

	prevPos := sess.Engine.GetPlayerPosition()
	success := sess.Engine.Move(dir)
	state := sess.Engine.GetState()
	newPos := state.PlayerPos

	events = append(events, moveEvents(state, dir, prevPos, newPos)...)

	return &MoveResult{
		Success:   success,
		GameState: state.Clone(),
		Message:   state.Message,
		Events:    events,
		Step: &StepInfo{
			Idx:      1,
			Dir:      dir,
			From:     prevPos,
			To:       newPos,
			Clamped:  prevPos == newPos,
			Cell:     state.CellAt(newPos.X, newPos.Y).Kind,
			GameWon:  state.GameWon,
			GameOver: state.GameOver,
		},
		PossibleMoves: sess.Engine.GetPossibleMoves(),
	}
}

// ignored builds the result for an input that produced no state change
func (s *gameServiceImpl) ignored(sess *Session, events []GameEvent, reason, message string) *MoveResult {
	state := sess.Engine.GetState()
	events = append(events, GameEvent{
		Type:      EventIgnored,
		Message:   message,
		Timestamp: time.Now(),
		Position:  state.PlayerPos,
	})

	return &MoveResult{
		Success:       false,
		IgnoredReason: reason,
		GameState:     state.Clone(),
		Message:       message,
		Events:        events,
		PossibleMoves: sess.Engine.GetPossibleMoves(),
	}
}

// BulkMove executes multiple moves in sequence
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, resetEvent())
	}
	result.StartPos = sess.Engine.GetPlayerPosition()

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, move := range moves {
		if sess.Engine.IsFinished() {
			if result.StopReasonCode == "" {
				result.Success = false
				result.StopReasonCode = IgnoredGameFinished
				result.StoppedReason = "game already finished"
				result.StoppedOnMove = i + 1
			}
			break
		}

		dir, ok := engine.ParseDirection(move)
		if !ok {
			result.Success = false
			result.StopReasonCode = IgnoredUnknownDirection
			result.StoppedReason = fmt.Sprintf("move %d has unknown direction %q", i+1, move)
			result.StoppedOnMove = i + 1
			break
		}

		prevPos := sess.Engine.GetPlayerPosition()
		sess.Engine.Move(dir)
		state := sess.Engine.GetState()
		newPos := state.PlayerPos

		result.MovesExecuted++
		result.Events = append(result.Events, moveEvents(state, dir, prevPos, newPos)...)
		result.Steps = append(result.Steps, StepInfo{
			Idx:      i + 1,
			Dir:      dir,
			From:     prevPos,
			To:       newPos,
			Clamped:  prevPos == newPos,
			Cell:     state.CellAt(newPos.X, newPos.Y).Kind,
			GameWon:  state.GameWon,
			GameOver: state.GameOver,
		})

		if state.GameOver || state.GameWon {
			result.StoppedOnMove = i + 1
			if state.GameOver {
				result.StopReasonCode = "hit_obstacle"
				result.StoppedReason = fmt.Sprintf("move %d hit an obstacle at (%d,%d)", i+1, newPos.X, newPos.Y)
			} else {
				result.StopReasonCode = "victory"
				result.StoppedReason = fmt.Sprintf("move %d reached the goal", i+1)
			}
		}
	}

	endState := sess.Engine.GetState()
	result.GameState = endState.Clone()
	result.EndPos = endState.PlayerPos
	result.GameOver = endState.GameOver
	result.GameWon = endState.GameWon
	result.Message = endState.Message
	result.PossibleMoves = sess.Engine.GetPossibleMoves()

	s.persist(sessionID, "bulk_move")
	return result, nil
}

// Reset resets a game session
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.Reset()
	log.WithFields(log.Fields{
		"session":   sessionID,
		"obstacles": len(state.Obstacles),
	}).Info("Game reset")

	s.persist(sessionID, "reset")
	return state.Clone(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return sess.Engine.GetState().Clone(), nil
}

// GetBoard returns the per-cell classification of a session's grid
func (s *gameServiceImpl) GetBoard(ctx context.Context, sessionID string) (*engine.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return sess.Engine.GetBoard(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func resetEvent() GameEvent {
	return GameEvent{
		Type:      EventReset,
		Message:   "Game reset to initial state",
		Timestamp: time.Now(),
	}
}

// moveEvents generates events for an accepted move
func moveEvents(state *engine.GameState, dir engine.Direction, prevPos, newPos engine.Position) []GameEvent {
	now := time.Now()
	events := []GameEvent{{
		Type:      EventMove,
		Message:   fmt.Sprintf("Moved %s to (%d,%d)", dir, newPos.X, newPos.Y),
		Timestamp: now,
		Position:  newPos,
	}}

	if prevPos == newPos {
		events = append(events, GameEvent{
			Type:      EventClamped,
			Message:   fmt.Sprintf("Edge of the grid, stayed at (%d,%d)", newPos.X, newPos.Y),
			Timestamp: now,
			Position:  newPos,
		})
	}

	if state.GameWon {
		events = append(events, GameEvent{
			Type:      EventVictory,
			Message:   "Reached the goal!",
			Timestamp: now,
			Position:  newPos,
		})
	}
	if state.GameOver {
		events = append(events, GameEvent{
			Type:      EventGameOver,
			Message:   fmt.Sprintf("Hit an obstacle at (%d,%d)", newPos.X, newPos.Y),
			Timestamp: now,
			Position:  newPos,
		})
	}

	return events
}
