package service

import (
	"time"

	"github.com/maximaximal/ShadeChange-Level-Generator/game/engine"
)

// ValidationResult is the outcome of checking a move sequence against a
// level.
type ValidationResult struct {
	Verdict engine.Verdict `json:"verdict"`
	Result  *engine.Result `json:"result"`
}

// SessionInfo provides information about a playtest session
type SessionInfo struct {
	ID             string             `json:"id"`
	PresetName     string             `json:"preset_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.LevelState `json:"game_state"`
	Level          *engine.Level      `json:"level"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success       bool               `json:"success"`
	GameState     *engine.LevelState `json:"game_state"`
	Message       string             `json:"message"`
	Outcome       engine.MoveOutcome `json:"outcome"`
	PossibleMoves []engine.Move      `json:"possible_moves,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	MovesExecuted  int                `json:"moves_executed"`
	RequestedMoves int                `json:"requested_moves"`
	Success        bool               `json:"success"`
	GameState      *engine.LevelState `json:"game_state"`
	StoppedReason  string             `json:"stopped_reason,omitempty"`
	StoppedOnMove  int                `json:"stopped_on_move,omitempty"` // 1-based index of the move that caused the stop
	Truncated      bool               `json:"truncated,omitempty"`
	Limit          int                `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos engine.Position `json:"start_pos"`
	EndPos   engine.Position `json:"end_pos"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	Finished      bool          `json:"finished"`
	Message       string        `json:"message,omitempty"`
	PossibleMoves []engine.Move `json:"possible_moves,omitempty"`
}

// StepInfo is a compact record for each executed move in the bulk call
type StepInfo struct {
	Idx     int                `json:"idx"`
	Move    engine.Move        `json:"move"`
	From    engine.Position    `json:"from"`
	To      engine.Position    `json:"to"`
	Field   engine.Field       `json:"field"`
	Outcome engine.MoveOutcome `json:"outcome"`
	Success bool               `json:"success"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveRecord `json:"moves"`
	TotalMoves  int                 `json:"total_moves"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	TotalPages  int                 `json:"total_pages"`
	HasNext     bool                `json:"has_next"`
	HasPrevious bool                `json:"has_previous"`
}
