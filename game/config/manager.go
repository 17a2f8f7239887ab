package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/maximaximal/ShadeChange-Level-Generator/game/engine"
)

var (
	ErrPresetNotFound = errors.New("preset not found")
	ErrInvalidPreset  = errors.New("invalid preset")
)

// Preset is a named, persisted set of generation parameters.
type Preset struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Steps        int    `json:"steps"`
	MoveBudget   int    `json:"move_budget"`
	EnableSpiral bool   `json:"enable_spiral"`
	EnableEnemy  bool   `json:"enable_enemy"`
	Seed         int64  `json:"seed,omitempty"`
}

// PresetInfo summarizes one available preset for listings.
type PresetInfo struct {
	Filename    string `json:"filename"`
	PresetID    string `json:"preset_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Steps       int    `json:"steps"`
}

// ValidatePreset checks a preset's parameters against the engine limits.
func ValidatePreset(p *Preset) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPreset)
	}
	if p.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidPreset)
	}
	if p.Width < engine.MinGridSize || p.Width > engine.MaxGridSize ||
		p.Height < engine.MinGridSize || p.Height > engine.MaxGridSize {
		return fmt.Errorf("%w: dimensions %dx%d outside [%d,%d]",
			ErrInvalidPreset, p.Width, p.Height, engine.MinGridSize, engine.MaxGridSize)
	}
	if p.Steps < 1 {
		return fmt.Errorf("%w: steps must be at least 1", ErrInvalidPreset)
	}
	if p.MoveBudget != 0 && p.MoveBudget < p.Steps {
		return fmt.Errorf("%w: move budget %d below steps %d", ErrInvalidPreset, p.MoveBudget, p.Steps)
	}
	return nil
}

// Manager handles preset loading and caching
type Manager struct {
	presetDir     string
	defaultPreset *Preset
	presets       map[string]*Preset
	mu            sync.RWMutex
}

// NewManager creates a new preset manager
func NewManager(presetDir string) (*Manager, error) {
	if _, err := os.Stat(presetDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("preset directory does not exist: %s", presetDir)
	}

	m := &Manager{
		presetDir: presetDir,
		presets:   make(map[string]*Preset),
	}

	if err := m.loadDefaultPreset(); err != nil {
		return nil, fmt.Errorf("failed to load default preset: %w", err)
	}

	return m, nil
}

// LoadPreset loads a preset by name
func (m *Manager) LoadPreset(name string) (*Preset, error) {
	m.mu.RLock()
	// Check cache first
	if preset, exists := m.presets[name]; exists {
		m.mu.RUnlock()
		return preset, nil
	}
	m.mu.RUnlock()

	// Load from file
	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if preset, exists := m.presets[name]; exists {
		return preset, nil
	}

	// Add .json extension if not present
	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	presetPath := filepath.Join(m.presetDir, filename)

	data, err := os.ReadFile(presetPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrPresetNotFound
		}
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	var preset Preset
	if err := json.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("failed to parse preset: %w", err)
	}

	if err := ValidatePreset(&preset); err != nil {
		return nil, err
	}

	// Cache the preset
	m.presets[name] = &preset
	return &preset, nil
}

// ListPresets returns information about all available presets
func (m *Manager) ListPresets() ([]*PresetInfo, error) {
	entries, err := os.ReadDir(m.presetDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset directory: %w", err)
	}

	var infos []*PresetInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		// Remove .json extension for the preset name
		name := strings.TrimSuffix(entry.Name(), ".json")

		preset, err := m.LoadPreset(name)
		if err != nil {
			// Skip invalid presets
			continue
		}

		infos = append(infos, &PresetInfo{
			Filename:    entry.Name(),
			PresetID:    name, // This is the identifier to use for generation requests
			Name:        preset.Name,
			Description: preset.Description,
			Width:       preset.Width,
			Height:      preset.Height,
			Steps:       preset.Steps,
		})
	}

	return infos, nil
}

// GetDefault returns the default preset
func (m *Manager) GetDefault() *Preset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultPreset
}

// SetDefault sets the default preset by name
func (m *Manager) SetDefault(name string) error {
	preset, err := m.LoadPreset(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultPreset = preset
	return nil
}

// RefreshCache reloads all cached presets from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.presets = make(map[string]*Preset)
	m.mu.Unlock()

	// Reload outside the lock, LoadPreset takes it again.
	return m.loadDefaultPreset()
}

// loadDefaultPreset loads the default preset
func (m *Manager) loadDefaultPreset() error {
	// Try to load classic.json as default
	preset, err := m.LoadPreset("classic")
	if err != nil {
		// Try to load the first available preset
		infos, listErr := m.ListPresets()
		if listErr != nil || len(infos) == 0 {
			preset = m.createMinimalPreset()
		} else if preset, err = m.LoadPreset(strings.TrimSuffix(infos[0].Filename, ".json")); err != nil {
			preset = m.createMinimalPreset()
		}
	}

	m.mu.Lock()
	m.defaultPreset = preset
	m.mu.Unlock()
	return nil
}

// SavePreset saves a preset to disk
func (m *Manager) SavePreset(name string, preset *Preset) error {
	if err := ValidatePreset(preset); err != nil {
		return err
	}

	// Add .json extension if not present
	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	presetPath := filepath.Join(m.presetDir, filename)

	data, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}

	if err := os.WriteFile(presetPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write preset file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.presets[name] = preset
	m.mu.Unlock()

	return nil
}

// createMinimalPreset creates a minimal valid preset
func (m *Manager) createMinimalPreset() *Preset {
	return &Preset{
		Name:        "default",
		Description: "Default 4x4 level solvable in three moves",
		Width:       4,
		Height:      4,
		Steps:       3,
		MoveBudget:  9,
	}
}
