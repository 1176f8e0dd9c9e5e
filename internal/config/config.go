package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/pelletier/go-toml/v2"

	"binfind/internal/eventbus"
)

const (
	currentVersion = 1

	defaultChunkSize       = 1 << 20
	defaultMaxPayload      = 64
	defaultMergeInterval   = 250
	defaultMinimalDuration = 300
	defaultRepaintInterval = 250
	defaultColumnMinWidth  = 10
	defaultMaxDataBytes    = 16
	defaultTheme           = "dark"
	defaultLogLevel        = "info"
)

// Config represents the application configuration
type Config struct {
	Version int            `toml:"version"`
	Search  SearchSettings `toml:"search"`
	UI      UISettings     `toml:"ui"`
	Log     LogSettings    `toml:"log"`
}

// SearchSettings configures the scanner
type SearchSettings struct {
	Workers    int `toml:"workers" comment:"parallel scan workers, 0 = number of CPUs"`
	ChunkSize  int `toml:"chunk_size" comment:"bytes scanned per work item"`
	MaxPayload int `toml:"max_payload" comment:"max bytes kept per regex match"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	MergeIntervalMS   int    `toml:"merge_interval_ms"`
	MinimalDurationMS int    `toml:"minimal_duration_ms" comment:"searches faster than this never show a progress bar"`
	RepaintIntervalMS int    `toml:"repaint_interval_ms"`
	ColumnMinWidth    int    `toml:"column_min_width"`
	Theme             string `toml:"theme" comment:"dark or light"`
	MaxDataBytes      int    `toml:"max_data_bytes"`
}

// LogSettings configures the log file
type LogSettings struct {
	Level string `toml:"level"`
	File  string `toml:"file" comment:"empty = default file in the user cache dir, - = stderr"`
}

func (u UISettings) MergeInterval() time.Duration {
	return time.Duration(u.MergeIntervalMS) * time.Millisecond
}

func (u UISettings) MinimalDuration() time.Duration {
	return time.Duration(u.MinimalDurationMS) * time.Millisecond
}

func (u UISettings) RepaintInterval() time.Duration {
	return time.Duration(u.RepaintIntervalMS) * time.Millisecond
}

// Normalize fills zero or invalid values with defaults
func (c *Config) Normalize() {
	if c.Version == 0 {
		c.Version = currentVersion
	}
	if c.Search.Workers <= 0 {
		c.Search.Workers = runtime.NumCPU()
	}
	if c.Search.ChunkSize <= 0 {
		c.Search.ChunkSize = defaultChunkSize
	}
	if c.Search.MaxPayload <= 0 {
		c.Search.MaxPayload = defaultMaxPayload
	}
	if c.UI.MergeIntervalMS <= 0 {
		c.UI.MergeIntervalMS = defaultMergeInterval
	}
	if c.UI.MinimalDurationMS <= 0 {
		c.UI.MinimalDurationMS = defaultMinimalDuration
	}
	if c.UI.RepaintIntervalMS <= 0 {
		c.UI.RepaintIntervalMS = defaultRepaintInterval
	}
	if c.UI.ColumnMinWidth <= 0 {
		c.UI.ColumnMinWidth = defaultColumnMinWidth
	}
	if c.UI.MaxDataBytes <= 0 {
		c.UI.MaxDataBytes = defaultMaxDataBytes
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		c.UI.Theme = defaultTheme
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
}

// Set changes one setting by its dotted key, as carried by ConfigChangedEvent
func (c *Config) Set(key, value string) error {
	switch key {
	case "ui.theme":
		if value != "dark" && value != "light" {
			return fmt.Errorf("invalid theme %q", value)
		}
		c.UI.Theme = value
	case "log.level":
		c.Log.Level = value
	case "log.file":
		c.Log.File = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// DefaultPath returns $XDG_CONFIG_HOME/binfind/config.toml or its platform equivalent
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "binfind", "config.toml")
}

// NewConfigService creates a config service for the default path
func NewConfigService() ConfigService {
	return &configService{filePath: DefaultPath()}
}

// NewConfigServiceAt creates a config service for path. Empty means the default path.
func NewConfigServiceAt(path string, bus eventbus.EventBus) ConfigService {
	if path == "" {
		path = DefaultPath()
	}
	return &configService{filePath: path, bus: bus}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(bus eventbus.EventBus) ConfigService {
	return NewConfigServiceAt("", bus)
}

func (cs *configService) Path() string { return cs.filePath }

// Load loads the configuration file, falling back to defaults when it does not exist
func (cs *configService) Load() (*Config, error) {
	cfg, err := cs.LoadFromPath(cs.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = DefaultConfig()
	} else if err != nil {
		return nil, err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{Path: cs.filePath})
	}
	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Version > currentVersion {
		return nil, fmt.Errorf("unsupported config version %d", cfg.Version)
	}
	cfg.Normalize()
	return &cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	cfg := &Config{Version: currentVersion}
	cfg.Normalize()
	return cfg
}
