// Package config provides configuration loading and validation for the
// mnemonify command and its MCP server.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidAnnotator = errors.New("unknown annotator")
	ErrInvalidCacheSize = errors.New("annotator cache size must not be negative")
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("invalid log format")
)

// Annotator names accepted by codec.annotator.
const (
	AnnotatorNone      = "none"
	AnnotatorUnidecode = "unidecode"
)

// Default configuration values.
const (
	defaultAnnotator          = AnnotatorNone
	defaultAnnotatorCacheSize = 4096
	defaultLogLevel           = "info"
	defaultLogFormat          = "text"
	configName                = "mnemonify"
	envPrefix                 = "MNEMONIFY"
)

// Config holds all configuration for mnemonify.
type Config struct {
	Codec   CodecConfig   `mapstructure:"codec"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// CodecConfig selects the table, annotator, and decode mode.
type CodecConfig struct {
	// Table is the path of a custom table file. Empty means the embedded table.
	Table              string `mapstructure:"table"`
	Annotator          string `mapstructure:"annotator"`
	AnnotatorCacheSize int    `mapstructure:"annotator_cache_size"`
	Strict             bool   `mapstructure:"strict"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// ASCII escapes log messages and values with the codec.
	ASCII bool `mapstructure:"ascii"`
}

// MetricsConfig controls the Prometheus endpoint of the MCP server.
type MetricsConfig struct {
	// Listen is the address to serve /metrics on. Empty disables it.
	Listen string `mapstructure:"listen"`
}

// LoadConfig loads configuration from file and environment variables.
// With an empty configPath it looks for mnemonify.yaml in the working
// directory, ./config and $HOME/.config/mnemonify; a missing file is not an
// error. An explicit configPath must exist.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("$HOME/.config/mnemonify")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := Validate(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the configuration used when nothing is configured. It
// seeds LoadConfig, so file and environment values override it key by key.
func Default() *Config {
	return &Config{
		Codec: CodecConfig{
			Annotator:          defaultAnnotator,
			AnnotatorCacheSize: defaultAnnotatorCacheSize,
		},
		Logging: LoggingConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

// setDefaults registers every key of Default with viper, so that
// environment overrides apply to keys absent from the file.
func setDefaults(viperCfg *viper.Viper) {
	def := Default()

	viperCfg.SetDefault("codec.strict", def.Codec.Strict)
	viperCfg.SetDefault("codec.annotator", def.Codec.Annotator)
	viperCfg.SetDefault("codec.annotator_cache_size", def.Codec.AnnotatorCacheSize)
	viperCfg.SetDefault("codec.table", def.Codec.Table)

	viperCfg.SetDefault("logging.level", def.Logging.Level)
	viperCfg.SetDefault("logging.format", def.Logging.Format)
	viperCfg.SetDefault("logging.ascii", def.Logging.ASCII)

	viperCfg.SetDefault("metrics.listen", def.Metrics.Listen)
}

// Validate checks a configuration, normalizing the case of enumerated values.
func Validate(config *Config) error {
	config.Codec.Annotator = strings.ToLower(config.Codec.Annotator)

	switch config.Codec.Annotator {
	case AnnotatorNone, AnnotatorUnidecode:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAnnotator, config.Codec.Annotator)
	}

	if config.Codec.AnnotatorCacheSize < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheSize, config.Codec.AnnotatorCacheSize)
	}

	config.Logging.Level = strings.ToLower(config.Logging.Level)

	switch config.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	config.Logging.Format = strings.ToLower(config.Logging.Format)

	switch config.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	return nil
}
