/*
Package config manages TOML config for dexpad.

A missing file is created with defaults. A file with type errors is salvaged
section by section; keys that fail to decode keep their default value.

	[keypad]
	commit_delay_ms = 800
	long_press_ms = 500
	repeat_interval_ms = 150

	# key 10 only types a space by default; a second candidate makes zero
	# reachable with a double tap
	[keypad.keys]
	10 = [" ", "0"]

	[catalog]
	source = "data/catalog.yaml"
	format = "auto"
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/dexpad/internal/utils"
	"github.com/bastiangx/dexpad/pkg/catalog"
	"github.com/bastiangx/dexpad/pkg/keypad"
)

// FileName is the config file created in the config directory.
const FileName = "config.toml"

// Config holds the entire config structure
type Config struct {
	Keypad  KeypadConfig  `toml:"keypad"`
	Catalog CatalogConfig `toml:"catalog"`
	Server  ServerConfig  `toml:"server"`
	CLI     CliConfig     `toml:"cli"`
}

// KeypadConfig holds multi-tap timings and key overrides. Keys maps a key
// number ("1".."10") to its candidates and replaces the default list.
type KeypadConfig struct {
	CommitDelayMs    int                 `toml:"commit_delay_ms"`
	LongPressMs      int                 `toml:"long_press_ms"`
	RepeatIntervalMs int                 `toml:"repeat_interval_ms"`
	Keys             map[string][]string `toml:"keys,omitempty"`
}

// CatalogConfig points at the species data. An empty source searches the
// default data directories.
type CatalogConfig struct {
	Source string `toml:"source"`
	Format string `toml:"format"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxResults  int `toml:"max_results"`
	CacheSize   int `toml:"cache_size"`
	MaxSessions int `toml:"max_sessions"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit  int `toml:"default_limit"`
	RepeatDelayMs int `toml:"repeat_delay_ms"`
	ReleaseGapMs  int `toml:"release_gap_ms"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	t := keypad.DefaultTimings()
	return &Config{
		Keypad: KeypadConfig{
			CommitDelayMs:    int(t.CommitDelay / time.Millisecond),
			LongPressMs:      int(t.LongPress / time.Millisecond),
			RepeatIntervalMs: int(t.RepeatInterval / time.Millisecond),
		},
		Catalog: CatalogConfig{
			Format: "auto",
		},
		Server: ServerConfig{
			MaxResults:  64,
			CacheSize:   256,
			MaxSessions: 32,
		},
		CLI: CliConfig{
			DefaultLimit:  20,
			RepeatDelayMs: 600,
			ReleaseGapMs:  90,
		},
	}
}

// Timings converts the keypad section into engine timings.
func (c *Config) Timings() keypad.Timings {
	return keypad.Timings{
		CommitDelay:    time.Duration(c.Keypad.CommitDelayMs) * time.Millisecond,
		LongPress:      time.Duration(c.Keypad.LongPressMs) * time.Millisecond,
		RepeatInterval: time.Duration(c.Keypad.RepeatIntervalMs) * time.Millisecond,
	}
}

// KeyMap returns the default key map with the configured overrides applied.
func (c *Config) KeyMap() (keypad.KeyMap, error) {
	overrides := make(keypad.KeyMap, len(c.Keypad.Keys))
	for name, candidates := range c.Keypad.Keys {
		n, err := strconv.Atoi(name)
		if err != nil {
			return nil, fmt.Errorf("keypad.keys: %q is not a key number", name)
		}
		overrides[keypad.Key(n)] = candidates
	}
	m := keypad.DefaultKeyMap().Merge(overrides)
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("keypad.keys: %w", err)
	}
	return m, nil
}

// CatalogFormat parses the catalog format name.
func (c *Config) CatalogFormat() (catalog.FileFormat, error) {
	return catalog.ParseFormat(c.Catalog.Format)
}

// Validate reports the first setting that can't be used at startup.
func (c *Config) Validate() error {
	if err := c.Timings().Validate(); err != nil {
		return err
	}
	if _, err := c.KeyMap(); err != nil {
		return err
	}
	if _, err := c.CatalogFormat(); err != nil {
		return err
	}
	if c.Server.MaxResults < 1 {
		return fmt.Errorf("server.max_results must be at least 1, got %d", c.Server.MaxResults)
	}
	return nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	pr, err := utils.NewPathResolver()
	if err != nil {
		return "", err
	}
	return pr.GetConfigPath(FileName)
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/dexpad/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(ctx context.Context, customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(ctx, defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(ctx context.Context, configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(ctx, config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse salvages every section that decodes cleanly
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "keypad"); ok {
		extractKeypadConfig(section, &config.Keypad)
	}
	if section, ok := utils.ExtractSection(tempConfig, "catalog"); ok {
		extractCatalogConfig(section, &config.Catalog)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	return config, nil
}

func extractKeypadConfig(data map[string]any, kp *KeypadConfig) {
	if val, ok := utils.ExtractInt64(data, "commit_delay_ms"); ok {
		kp.CommitDelayMs = val
	}
	if val, ok := utils.ExtractInt64(data, "long_press_ms"); ok {
		kp.LongPressMs = val
	}
	if val, ok := utils.ExtractInt64(data, "repeat_interval_ms"); ok {
		kp.RepeatIntervalMs = val
	}
	if keys, ok := utils.ExtractSection(data, "keys"); ok {
		kp.Keys = make(map[string][]string, len(keys))
		for name := range keys {
			if candidates, ok := utils.ExtractStringSlice(keys, name); ok {
				kp.Keys[name] = candidates
			} else {
				log.Warnf("Ignoring keypad.keys.%s: expected a list of strings", name)
			}
		}
	}
}

func extractCatalogConfig(data map[string]any, cat *CatalogConfig) {
	if val, ok := utils.ExtractString(data, "source"); ok {
		cat.Source = val
	}
	if val, ok := utils.ExtractString(data, "format"); ok {
		cat.Format = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_results"); ok {
		server.MaxResults = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_size"); ok {
		server.CacheSize = val
	}
	if val, ok := utils.ExtractInt64(data, "max_sessions"); ok {
		server.MaxSessions = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "repeat_delay_ms"); ok {
		cli.RepeatDelayMs = val
	}
	if val, ok := utils.ExtractInt64(data, "release_gap_ms"); ok {
		cli.ReleaseGapMs = val
	}
}

// RebuildConfigFile force creates a new config.toml at the default path
func RebuildConfigFile(ctx context.Context) (string, error) {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return "", err
	}
	return defaultPath, SaveConfig(ctx, DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		return "builtin defaults"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(ctx context.Context, config *Config, configPath string) error {
	return utils.SaveTOMLFile(ctx, config, configPath)
}

// Update changes the server limits and saves to file. An empty configPath
// only updates the in-memory values.
func (c *Config) Update(ctx context.Context, configPath string, maxResults, cacheSize *int) error {
	if maxResults != nil {
		if *maxResults < 1 {
			return fmt.Errorf("max_results must be at least 1, got %d", *maxResults)
		}
		c.Server.MaxResults = *maxResults
	}
	if cacheSize != nil {
		if *cacheSize < 0 {
			return fmt.Errorf("cache_size must not be negative, got %d", *cacheSize)
		}
		c.Server.CacheSize = *cacheSize
	}
	if configPath == "" {
		return nil
	}
	return SaveConfig(ctx, c, configPath)
}
