package config

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/qntmpulse/pulse/internal/constants"
)

// newViperInstance creates a Viper instance with standard pulse
// configuration: defaults, the PULSE_ environment prefix, and a key
// replacer so PULSE_SYNC_DEBOUNCE_DELAY maps to sync.debounce_delay.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file
// not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFound viper.ConfigFileNotFoundError
	return stderrors.As(err, &notFound)
}

// unmarshalAndValidate unmarshals viper state into a Config and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper
// precedence. Sources are applied in the following order (highest
// precedence first):
//  1. Environment variables (PULSE_* prefix)
//  2. Project config (.pulse/config.yaml)
//  3. Global config (~/.pulse/config.yaml)
//  4. Built-in defaults
//
// Missing config files are not errors; only unreadable or invalid
// configuration fails the load.
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	cfg, err := unmarshalAndValidate(v)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Dur("sync.debounce_delay", cfg.Sync.DebounceDelay).
		Dur("nudges.undo_window", cfg.Nudges.UndoWindow).
		Str("nudges.dismissal_store", cfg.Nudges.DismissalStore).
		Msg("configuration loaded")

	return cfg, nil
}

// LoadWithOverrides loads configuration and applies CLI flag overrides,
// which take the highest precedence. Only non-zero override values are
// applied, so partial overrides work.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}
	if overrides != nil {
		applyOverrides(cfg, overrides)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths, for tests.
// projectConfigPath has higher precedence than globalConfigPath; either
// may be empty to skip that level.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read global config %s: %w", globalConfigPath, err)
		}
	}
	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read project config %s: %w", projectConfigPath, err)
		}
	}

	return unmarshalAndValidate(v)
}

// loadGlobalConfig reads the global config file (~/.pulse/config.yaml).
// Missing file or undeterminable home directory is skipped silently.
func loadGlobalConfig(v *viper.Viper) error {
	path, err := GlobalConfigPath()
	if err != nil {
		return nil
	}
	if !fileExists(path) {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return fmt.Errorf("read global config: %w", err)
	}
	return nil
}

// loadProjectConfig merges the project config file (.pulse/config.yaml)
// over whatever is already loaded. Missing file is skipped silently.
func loadProjectConfig(v *viper.Viper) error {
	path := ProjectConfigPath()
	if !fileExists(path) {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return fmt.Errorf("read project config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// setDefaults configures all default values on the Viper instance.
// These match DefaultConfig(); keys must match the yaml tag names.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("workspace.id", "")

	v.SetDefault("sync.debounce_delay", def.Sync.DebounceDelay)
	v.SetDefault("sync.load_timeout", def.Sync.LoadTimeout)

	v.SetDefault("nudges.stale_decision_age", def.Nudges.StaleDecisionAge)
	v.SetDefault("nudges.low_participation_ratio", def.Nudges.LowParticipationRatio)
	v.SetDefault("nudges.expected_voters", def.Nudges.ExpectedVoters)
	v.SetDefault("nudges.undo_window", def.Nudges.UndoWindow)
	v.SetDefault("nudges.dismissal_store", def.Nudges.DismissalStore)
	v.SetDefault("nudges.redis_url", "")

	v.SetDefault("providers.timeout", def.Providers.Timeout)

	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.max_size_mb", def.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", def.Logging.MaxBackups)
}

// applyOverrides merges non-zero override values into the config.
//
// Integer and float fields with meaningful zero values (ExpectedVoters)
// cannot be cleared through this function; CLI implementations should set
// them directly when the flag was explicitly changed.
func applyOverrides(cfg, overrides *Config) {
	if overrides.Workspace.ID != "" {
		cfg.Workspace.ID = overrides.Workspace.ID
	}

	if overrides.Sync.DebounceDelay != 0 {
		cfg.Sync.DebounceDelay = overrides.Sync.DebounceDelay
	}
	if overrides.Sync.LoadTimeout != 0 {
		cfg.Sync.LoadTimeout = overrides.Sync.LoadTimeout
	}

	if overrides.Nudges.StaleDecisionAge != 0 {
		cfg.Nudges.StaleDecisionAge = overrides.Nudges.StaleDecisionAge
	}
	if overrides.Nudges.LowParticipationRatio != 0 {
		cfg.Nudges.LowParticipationRatio = overrides.Nudges.LowParticipationRatio
	}
	if overrides.Nudges.ExpectedVoters != 0 {
		cfg.Nudges.ExpectedVoters = overrides.Nudges.ExpectedVoters
	}
	if overrides.Nudges.UndoWindow != 0 {
		cfg.Nudges.UndoWindow = overrides.Nudges.UndoWindow
	}
	if overrides.Nudges.DismissalStore != "" {
		cfg.Nudges.DismissalStore = overrides.Nudges.DismissalStore
	}
	if overrides.Nudges.RedisURL != "" {
		cfg.Nudges.RedisURL = overrides.Nudges.RedisURL
	}

	if overrides.Providers.Timeout != 0 {
		cfg.Providers.Timeout = overrides.Providers.Timeout
	}

	if overrides.Logging.Level != "" {
		cfg.Logging.Level = overrides.Logging.Level
	}
}

// viperDecoderOption configures mapstructure to convert duration strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
