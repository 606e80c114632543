/*
Package config manages TOML config for the speller services.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/albbas/divvunspell/internal/utils"
)

// Config holds the entire config structure
type Config struct {
	Speller  SpellerConfig  `toml:"speller"`
	Server   ServerConfig   `toml:"server"`
	UserDict UserDictConfig `toml:"userdict"`
}

// SpellerConfig bounds suggestion searches started from the CLI or server.
type SpellerConfig struct {
	NBest        int     `toml:"n_best"`
	MaxWeight    float64 `toml:"max_weight"`
	Beam         float64 `toml:"beam"`
	CaseHandling bool    `toml:"case_handling"`
	EpsilonLimit int     `toml:"epsilon_limit"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxNBest   int `toml:"max_n_best"`
	MaxWordLen int `toml:"max_word_len"`
	TimeoutMS  int `toml:"timeout_ms"`
}

// UserDictConfig holds the optional user dictionary backend.
type UserDictConfig struct {
	Enabled   bool   `toml:"enabled"`
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
	KeyPrefix string `toml:"key_prefix"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
// 4. builtin defaults
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execDir, execErr := utils.GetExecutableDir()
		if execErr != nil {
			return "", execErr
		}
		return execDir, nil
	}
	primaryPath := filepath.Join(homeDir, ".config", "divvunspell")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "divvunspell")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/divvunspell/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	var config *Config
	var err error

	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err = LoadConfig(customConfigPath)
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

	config, err = InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Speller: SpellerConfig{
			NBest:        10,
			MaxWeight:    0,
			Beam:         0,
			CaseHandling: true,
			EpsilonLimit: 512,
		},
		Server: ServerConfig{
			MaxNBest:   64,
			MaxWordLen: 128,
			TimeoutMS:  2000,
		},
		UserDict: UserDictConfig{
			Enabled:   false,
			RedisAddr: "localhost:6379",
			RedisDB:   0,
			KeyPrefix: "divvunspell:userdict",
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse attempts to parse a TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if spellerSection, ok := utils.ExtractSection(tempConfig, "speller"); ok {
		extractSpellerConfig(spellerSection, &config.Speller)
	}
	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	if userDictSection, ok := utils.ExtractSection(tempConfig, "userdict"); ok {
		extractUserDictConfig(userDictSection, &config.UserDict)
	}
	return config, nil
}

// extractSpellerConfig extracts speller configuration from a map
func extractSpellerConfig(data map[string]any, speller *SpellerConfig) {
	if val, ok := utils.ExtractInt64(data, "n_best"); ok {
		speller.NBest = val
	}
	if val, ok := utils.ExtractFloat64(data, "max_weight"); ok {
		speller.MaxWeight = val
	}
	if val, ok := utils.ExtractFloat64(data, "beam"); ok {
		speller.Beam = val
	}
	if val, ok := utils.ExtractBool(data, "case_handling"); ok {
		speller.CaseHandling = val
	}
	if val, ok := utils.ExtractInt64(data, "epsilon_limit"); ok {
		speller.EpsilonLimit = val
	}
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_n_best"); ok {
		server.MaxNBest = val
	}
	if val, ok := utils.ExtractInt64(data, "max_word_len"); ok {
		server.MaxWordLen = val
	}
	if val, ok := utils.ExtractInt64(data, "timeout_ms"); ok {
		server.TimeoutMS = val
	}
}

// extractUserDictConfig extracts user dictionary config from a map
func extractUserDictConfig(data map[string]any, userDict *UserDictConfig) {
	if val, ok := utils.ExtractBool(data, "enabled"); ok {
		userDict.Enabled = val
	}
	if val, ok := utils.ExtractString(data, "redis_addr"); ok {
		userDict.RedisAddr = val
	}
	if val, ok := utils.ExtractInt64(data, "redis_db"); ok {
		userDict.RedisDB = val
	}
	if val, ok := utils.ExtractString(data, "key_prefix"); ok {
		userDict.KeyPrefix = val
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	configDir := filepath.Dir(defaultPath)
	if err := utils.EnsureDir(configDir); err != nil {
		return err
	}
	config := DefaultConfig()
	return utils.SaveTOMLFile(config, defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the speller bounds and saves to file
func (c *Config) Update(configPath string, nBest *int, maxWeight, beam *float64, caseHandling *bool) error {
	speller := &c.Speller
	if nBest != nil {
		speller.NBest = *nBest
	}
	if maxWeight != nil {
		speller.MaxWeight = *maxWeight
	}
	if beam != nil {
		speller.Beam = *beam
	}
	if caseHandling != nil {
		speller.CaseHandling = *caseHandling
	}
	return SaveConfig(c, configPath)
}
