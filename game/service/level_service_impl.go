package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/maximaximal/ShadeChange-Level-Generator/game/config"
	"github.com/maximaximal/ShadeChange-Level-Generator/game/engine"
	"github.com/maximaximal/ShadeChange-Level-Generator/game/generator"
	"github.com/maximaximal/ShadeChange-Level-Generator/game/solver"
)

// levelServiceImpl implements the LevelService interface
type levelServiceImpl struct {
	sessions SessionManager
	presets  PresetManager
	log      zerolog.Logger
	mu       sync.RWMutex
}

// NewLevelService creates a new level service instance
func NewLevelService(sessions SessionManager, presets PresetManager, log zerolog.Logger) LevelService {
	return &levelServiceImpl{
		sessions: sessions,
		presets:  presets,
		log:      log,
	}
}

// resolvePreset loads the named preset, or the default when name is
// empty. A miss lists the available preset IDs in the error.
func (s *levelServiceImpl) resolvePreset(name string) (*config.Preset, error) {
	if name == "" {
		return s.presets.GetDefault(), nil
	}
	preset, err := s.presets.LoadPreset(name)
	if err != nil {
		if errors.Is(err, config.ErrPresetNotFound) {
			infos, listErr := s.presets.ListPresets()
			if listErr == nil && len(infos) > 0 {
				var ids []string
				for _, info := range infos {
					ids = append(ids, info.PresetID)
				}
				return nil, fmt.Errorf("preset '%s' not found. Available presets: %v", name, ids)
			}
			return nil, fmt.Errorf("preset '%s' not found. Use /api/presets to list available presets", name)
		}
		return nil, fmt.Errorf("failed to load preset %s: %w", name, err)
	}
	return preset, nil
}

// GenerateLevel generates a level from a preset. A non-zero seed
// overrides the preset's own seed.
func (s *levelServiceImpl) GenerateLevel(ctx context.Context, presetName string, seed int64) (*generator.Generated, error) {
	preset, err := s.resolvePreset(presetName)
	if err != nil {
		return nil, err
	}

	opts := &generator.Options{
		Width:        preset.Width,
		Height:       preset.Height,
		Steps:        preset.Steps,
		MoveBudget:   preset.MoveBudget,
		EnableSpiral: preset.EnableSpiral,
		EnableEnemy:  preset.EnableEnemy,
		Seed:         preset.Seed,
	}
	if seed != 0 {
		opts.Seed = seed
	}

	out, err := generator.New(opts).Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate level: %w", err)
	}

	s.log.Info().
		Str("level_id", out.ID).
		Str("preset", preset.Name).
		Str("verdict", string(out.Verdict)).
		Int("moves", len(out.Moves)).
		Msg("level generated")

	return out, nil
}

// ValidateLevel simulates a move sequence against a level and reports
// the three-way verdict.
func (s *levelServiceImpl) ValidateLevel(ctx context.Context, level *engine.Level, moves []engine.Move, budget int) (*ValidationResult, error) {
	res, err := engine.Simulate(level, moves, budget)
	if err != nil {
		return nil, fmt.Errorf("failed to validate level: %w", err)
	}
	return &ValidationResult{
		Verdict: engine.Classify(res),
		Result:  res,
	}, nil
}

// SolveLevel searches exhaustively for a solution within maxDepth moves.
func (s *levelServiceImpl) SolveLevel(ctx context.Context, level *engine.Level, maxDepth int) (*solver.Solution, error) {
	if maxDepth <= 0 {
		maxDepth = solver.DefaultMaxDepth
	}
	sol, err := solver.Solve(level, maxDepth)
	if err != nil {
		return nil, fmt.Errorf("failed to solve level: %w", err)
	}
	s.log.Debug().
		Str("verdict", string(sol.Verdict)).
		Int("explored", sol.Explored).
		Msg("solve finished")
	return sol, nil
}

// ListPresets returns all available presets
func (s *levelServiceImpl) ListPresets(ctx context.Context) ([]*config.PresetInfo, error) {
	return s.presets.ListPresets()
}

// LoadPreset loads a preset by name
func (s *levelServiceImpl) LoadPreset(ctx context.Context, name string) (*config.Preset, error) {
	return s.resolvePreset(name)
}

// SavePreset saves a preset under the given name
func (s *levelServiceImpl) SavePreset(ctx context.Context, name string, preset *config.Preset) error {
	return s.presets.SavePreset(name, preset)
}

// CreateSession generates a level from the preset and opens a playtest
// session on it.
func (s *levelServiceImpl) CreateSession(ctx context.Context, presetName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	preset, err := s.resolvePreset(presetName)
	if err != nil {
		return nil, err
	}

	out, err := generator.New(&generator.Options{
		Width:        preset.Width,
		Height:       preset.Height,
		Steps:        preset.Steps,
		MoveBudget:   preset.MoveBudget,
		EnableSpiral: preset.EnableSpiral,
		EnableEnemy:  preset.EnableEnemy,
		Seed:         preset.Seed,
	}).Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate level: %w", err)
	}

	// Let the session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", preset.Name, out.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.log.Info().
		Str("session_id", session.ID).
		Str("preset", preset.Name).
		Msg("session created")

	return s.sessionInfo(session), nil
}

// GetSession retrieves session information
func (s *levelServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *levelServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *levelServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

func (s *levelServiceImpl) sessionInfo(session *Session) *SessionInfo {
	return &SessionInfo{
		ID:             session.ID,
		PresetName:     session.PresetName,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
		Level:          session.Level,
	}
}

// Move executes a single move for a session
func (s *levelServiceImpl) Move(ctx context.Context, sessionID, move string, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if reset {
		sess.Engine.Reset()
	}

	m := engine.Move(strings.ToLower(move))
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %q", engine.ErrUnknownMove, move)
	}

	success := sess.Engine.Move(m)
	state := sess.Engine.GetState()

	result := &MoveResult{
		Success:   success,
		GameState: state,
		Message:   state.Message,
		Outcome:   state.LastOutcome,
	}
	if !state.Status.Terminal() {
		result.PossibleMoves = sess.Engine.GetPossibleMoves()
	}

	s.sessions.Save(sessionID)
	return result, nil
}

// BulkMove executes multiple moves in sequence
func (s *levelServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if reset {
		sess.Engine.Reset()
	}

	requested := len(moves)
	truncated := false
	if len(moves) > engine.MaxBulkMoves {
		moves = moves[:engine.MaxBulkMoves]
		truncated = true
	}

	result := &BulkMoveResult{
		RequestedMoves: requested,
		Truncated:      truncated,
		Limit:          engine.MaxBulkMoves,
		StartPos:       sess.Engine.GetPlayerPosition(),
		Success:        true,
	}

	for i, raw := range moves {
		m := engine.Move(strings.ToLower(raw))
		if !m.Valid() {
			return nil, fmt.Errorf("%w: %q at index %d", engine.ErrUnknownMove, raw, i)
		}

		if sess.Engine.Status().Terminal() {
			result.StoppedReason = "level finished"
			result.StoppedOnMove = i + 1
			break
		}

		from := sess.Engine.GetPlayerPosition()
		success := sess.Engine.Move(m)
		state := sess.Engine.GetState()

		result.Steps = append(result.Steps, StepInfo{
			Idx:     i + 1,
			Move:    m,
			From:    from,
			To:      state.Player,
			Field:   state.Active,
			Outcome: state.LastOutcome,
			Success: success,
		})
		result.MovesExecuted++

		if state.Status.Terminal() {
			result.StoppedReason = state.Message
			result.StoppedOnMove = i + 1
			break
		}
	}

	state := sess.Engine.GetState()
	result.GameState = state
	result.EndPos = state.Player
	result.Finished = state.Status.Terminal()
	result.Message = state.Message
	if !state.Status.Terminal() {
		result.PossibleMoves = sess.Engine.GetPossibleMoves()
	}

	s.sessions.Save(sessionID)
	return result, nil
}

// Reset resets a session to its initial state
func (s *levelServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.LevelState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	state := sess.Engine.Reset()
	s.sessions.Save(sessionID)
	return state, nil
}

// GetGameState returns the current state of a session
func (s *levelServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.LevelState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return sess.Engine.GetState(), nil
}

// GetMoveHistory returns paginated move history for a session
func (s *levelServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Page <= 0 {
		opts.Page = 1
	}

	// Default to newest first
	if opts.Order != "asc" {
		reversed := make([]engine.MoveRecord, total)
		for i, rec := range history {
			reversed[total-1-i] = rec
		}
		history = reversed
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}

	return &HistoryResponse{
		Moves:       history[start:end],
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}
