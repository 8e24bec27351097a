package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/academy/internal/logging"
	"github.com/mesh-intelligence/academy/internal/paths"
	"github.com/mesh-intelligence/academy/pkg/slots"
	"github.com/mesh-intelligence/academy/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "ACADEMY"
)

// Config keys in config.yaml.
const (
	cfgKeyBackend   = "backend"
	cfgKeyDataDir   = "data_dir"
	cfgKeySync      = "sync"
	cfgKeyLanguage  = "language"
	cfgKeyLanguages = "languages"
	cfgKeySlotCount = "slot_count"
	cfgKeyLogLevel  = "log_level"
	cfgKeyCartID    = "cart_id"
)

// settings is the decoded form of config.yaml. It is also what init writes.
type settings struct {
	Backend   string   `mapstructure:"backend" yaml:"backend"`
	DataDir   string   `mapstructure:"data_dir" yaml:"data_dir,omitempty"`
	Sync      string   `mapstructure:"sync" yaml:"sync"`
	Language  string   `mapstructure:"language" yaml:"language"`
	Languages []string `mapstructure:"languages" yaml:"languages,flow"`
	SlotCount int      `mapstructure:"slot_count" yaml:"slot_count"`
	LogLevel  string   `mapstructure:"log_level" yaml:"log_level"`
	CartID    string   `mapstructure:"cart_id" yaml:"cart_id"`
}

func defaultSettings() settings {
	return settings{
		Backend:   types.BackendSQLite,
		Sync:      types.SyncImmediate,
		Language:  "en",
		Languages: []string{"en", "ka"},
		SlotCount: slots.DefaultSlotCount,
		LogLevel:  logging.DefaultLevel,
		CartID:    types.DefaultCartID,
	}
}

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# Academy CLI configuration

# Storage backend and JSONL sync strategy (immediate | on_close)
backend: sqlite
sync: immediate

# Data directory (optional; overridable by --data-dir)
# data_dir:

# Display languages
language: en
languages: [en, ka]

# Related-articles grid size
slot_count: 4

# debug | info | warn | error | off
log_level: warn

# Cart used when --cart is not given
cart_id: default
`

// loadConfig reads config.yaml from configDir using Viper. It creates the
// config directory and a default config.yaml on first run, loads an optional
// .env file, and binds ACADEMY_* environment overrides. data_dir is left to
// paths.ResolveDataDir.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}
	if err := loadEnvFile(configDir); err != nil {
		return nil, err
	}

	v := viper.New()
	d := defaultSettings()
	v.SetDefault(cfgKeyBackend, d.Backend)
	v.SetDefault(cfgKeySync, d.Sync)
	v.SetDefault(cfgKeyLanguage, d.Language)
	v.SetDefault(cfgKeyLanguages, d.Languages)
	v.SetDefault(cfgKeySlotCount, d.SlotCount)
	v.SetDefault(cfgKeyLogLevel, d.LogLevel)
	v.SetDefault(cfgKeyCartID, d.CartID)

	v.SetEnvPrefix(envPrefix)
	for _, key := range []string{cfgKeyBackend, cfgKeySync, cfgKeyLanguage, cfgKeyLanguages, cfgKeySlotCount, cfgKeyLogLevel, cfgKeyCartID} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// decodeSettings unmarshals v and checks the values the CLI depends on.
func decodeSettings(v *viper.Viper) (settings, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("decode config: %w", err)
	}
	if s.SlotCount <= 0 {
		return s, fmt.Errorf("%s must be positive, got %d", cfgKeySlotCount, s.SlotCount)
	}
	cfg := types.Config{Backend: s.Backend, SyncStrategy: s.Sync}
	if err := cfg.Validate(); err != nil {
		return s, fmt.Errorf("invalid config: %w", err)
	}
	return s, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := paths.ConfigFile(configDir)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// loadEnvFile loads .env from the config directory when present. Variables
// already set in the environment win.
func loadEnvFile(configDir string) error {
	path := paths.EnvFile(configDir)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
