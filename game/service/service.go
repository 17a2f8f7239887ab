package service

import (
	"context"
	"time"

	"github.com/maximaximal/ShadeChange-Level-Generator/game/config"
	"github.com/maximaximal/ShadeChange-Level-Generator/game/engine"
	"github.com/maximaximal/ShadeChange-Level-Generator/game/generator"
	"github.com/maximaximal/ShadeChange-Level-Generator/game/solver"
)

// LevelService defines all level and playtest operations
type LevelService interface {
	// Level Operations
	GenerateLevel(ctx context.Context, presetName string, seed int64) (*generator.Generated, error)
	ValidateLevel(ctx context.Context, level *engine.Level, moves []engine.Move, budget int) (*ValidationResult, error)
	SolveLevel(ctx context.Context, level *engine.Level, maxDepth int) (*solver.Solution, error)

	// Presets
	ListPresets(ctx context.Context) ([]*config.PresetInfo, error)
	LoadPreset(ctx context.Context, name string) (*config.Preset, error)
	SavePreset(ctx context.Context, name string, preset *config.Preset) error

	// Session Management
	CreateSession(ctx context.Context, presetName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Playtest Operations
	Move(ctx context.Context, sessionID, move string, reset bool) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.LevelState, error)
	GetGameState(ctx context.Context, sessionID string) (*engine.LevelState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, presetName string, level *engine.Level) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, presetName string, level *engine.Level) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// PresetManager handles generation preset loading
type PresetManager interface {
	LoadPreset(name string) (*config.Preset, error)
	ListPresets() ([]*config.PresetInfo, error)
	GetDefault() *config.Preset
	SavePreset(name string, preset *config.Preset) error
}

// Session represents an active playtest session
type Session struct {
	ID             string
	Engine         *engine.LevelEngine
	Level          *engine.Level
	PresetName     string
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
