package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/froggergame/game/engine"
	"github.com/wricardo/mcp-training/froggergame/game/service"
)

var (
	// ErrConfigNotFound is shared with the service layer so callers can match it with errors.Is
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = errors.New("invalid configuration")
)

const builtinConfigName = "classic"

// Manager handles game configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}

	// Load default config
	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// LoadConfig loads a configuration by name
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	m.mu.RLock()
	// Check cache first
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	// Load from file
	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[name]; exists {
		return config, nil
	}

	// Add .json extension if not present
	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	configPath := filepath.Join(m.configDir, filename)

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// The built-in classic game is always available, even with an empty config dir
			if strings.TrimSuffix(name, ".json") == builtinConfigName {
				config := engine.DefaultConfig()
				m.configs[name] = config
				return config, nil
			}
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse config
	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Validate config
	if err := engine.ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	// Cache the config
	m.configs[name] = &config
	return &config, nil
}

// ListConfigs returns information about all available configurations
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		// Remove .json extension for config name
		name := strings.TrimSuffix(entry.Name(), ".json")

		// Try to load the config to get details
		config, err := m.LoadConfig(name)
		if err != nil {
			// Skip invalid configs
			continue
		}

		configs = append(configs, configInfo(entry.Name(), name, config))
	}

	// Built-in classic game is listed when no classic.json shadows it
	if _, err := os.Stat(filepath.Join(m.configDir, builtinConfigName+".json")); os.IsNotExist(err) {
		configs = append([]*service.ConfigInfo{configInfo("", builtinConfigName, engine.DefaultConfig())}, configs...)
	}

	return configs, nil
}

func configInfo(filename, id string, config *engine.GameConfig) *service.ConfigInfo {
	return &service.ConfigInfo{
		Filename:          filename,
		ConfigID:          id, // This is the identifier to use for session creation
		Name:              config.Name,
		Description:       config.Description,
		GridSize:          config.GridSize,
		ObstacleCount:     config.ObstacleCount,
		Seed:              config.Seed,
		RegenerateOnReset: config.RegenerateOnReset,
	}
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache reloads all cached configurations from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Clear cache
	m.configs = make(map[string]*engine.GameConfig)

	// Reload default config
	return m.loadDefaultConfig()
}

// loadDefaultConfig loads the default configuration
func (m *Manager) loadDefaultConfig() error {
	// classic.json on disk wins; otherwise the built-in classic game is used
	config, err := m.loadFromDisk(builtinConfigName)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		config = engine.DefaultConfig()
	}

	m.configs[builtinConfigName] = config
	m.defaultConfig = config
	return nil
}

// loadFromDisk reads and validates a config file without touching the cache
func (m *Manager) loadFromDisk(name string) (*engine.GameConfig, error) {
	config, err := engine.LoadGameConfig(filepath.Join(m.configDir, name+".json"))
	if err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig saves a configuration to disk
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	// Validate config before saving
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	// Add .json extension if not present
	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	configPath := filepath.Join(m.configDir, filename)

	// Marshal config to JSON with indentation
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.configs[name] = config
	m.mu.Unlock()

	return nil
}

// ReloadConfig drops a cached configuration and reads it again from disk
func (m *Manager) ReloadConfig(name string) error {
	m.mu.Lock()
	// Remove from cache to force reload
	delete(m.configs, name)
	m.mu.Unlock()

	// Load fresh from disk (without holding the lock)
	_, err := m.LoadConfig(name)
	return err
}

// ValidateConfig checks a configuration without saving it
func (m *Manager) ValidateConfig(config *engine.GameConfig) error {
	return engine.ValidateGameConfig(config)
}

// Count returns the number of cached configurations
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}
