// Package config loads tpo settings from tpo.config.{json,yaml,toml},
// TPO_* environment variables and DEEPL_API_KEY.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ConfigName is the config file base name searched in the working directory.
const ConfigName = "tpo.config"

// ErrMissingKey is returned when a required setting is absent.
var ErrMissingKey = errors.New("missing required config key")

// Config is the full tpo configuration.
type Config struct {
	LocalesPath  string           `mapstructure:"localesPath" json:"localesPath" yaml:"localesPath"`
	MainLanguage string           `mapstructure:"mainLanguage" json:"mainLanguage" yaml:"mainLanguage"`
	Exclude      []string         `mapstructure:"exclude" json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Log          LogConfig        `mapstructure:"log" json:"log" yaml:"log"`
	Duplicates   DuplicatesConfig `mapstructure:"duplicates" json:"duplicates" yaml:"duplicates"`
	DeepL        DeepLConfig      `mapstructure:"deepl" json:"deepl" yaml:"deepl"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level" json:"level" yaml:"level"`                      // debug, info, warn, error
	Format     string `mapstructure:"format" json:"format" yaml:"format"`                   // pretty, text, json
	Output     string `mapstructure:"output" json:"output" yaml:"output"`                   // stdout, stderr
	FilePath   string `mapstructure:"file_path" json:"file_path" yaml:"file_path"`          // rotated log file, in addition to output
	MaxSizeMB  int    `mapstructure:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`    // size before rotation
	MaxBackups int    `mapstructure:"max_backups" json:"max_backups" yaml:"max_backups"`    // rotated files kept
	MaxAgeDays int    `mapstructure:"max_age_days" json:"max_age_days" yaml:"max_age_days"` // days rotated files are kept
	NoColor    bool   `mapstructure:"no_color" json:"no_color" yaml:"no_color"`             // pretty format only
}

// DuplicatesConfig holds defaults for the duplicates command.
type DuplicatesConfig struct {
	Words      int    `mapstructure:"words" json:"words" yaml:"words"`                // 0 = exact matching only
	Similarity int    `mapstructure:"similarity" json:"similarity" yaml:"similarity"` // tolerated mismatches
	Strict     bool   `mapstructure:"strict" json:"strict" yaml:"strict"`
	Format     string `mapstructure:"format" json:"format" yaml:"format"` // text, markdown, json, yaml
}

// DeepLConfig holds translation provider settings.
type DeepLConfig struct {
	APIKey    string        `mapstructure:"api_key" json:"-" yaml:"-"`
	Endpoint  string        `mapstructure:"endpoint" json:"endpoint,omitempty" yaml:"endpoint,omitempty"` // empty = chosen from the key
	Formality string        `mapstructure:"formality" json:"formality" yaml:"formality"`
	Timeout   time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "info",
			Format:     "pretty",
			Output:     "stderr",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Duplicates: DuplicatesConfig{
			Format: "text",
		},
		DeepL: DeepLConfig{
			Formality: "default",
			Timeout:   30 * time.Second,
		},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(ConfigName)
	v.AddConfigPath(".")

	v.SetEnvPrefix("TPO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("localesPath", c.LocalesPath)
	v.SetDefault("mainLanguage", c.MainLanguage)
	v.SetDefault("exclude", c.Exclude)

	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.format", c.Log.Format)
	v.SetDefault("log.output", c.Log.Output)
	v.SetDefault("log.file_path", c.Log.FilePath)
	v.SetDefault("log.max_size_mb", c.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", c.Log.MaxBackups)
	v.SetDefault("log.max_age_days", c.Log.MaxAgeDays)
	v.SetDefault("log.no_color", c.Log.NoColor)

	v.SetDefault("duplicates.words", c.Duplicates.Words)
	v.SetDefault("duplicates.similarity", c.Duplicates.Similarity)
	v.SetDefault("duplicates.strict", c.Duplicates.Strict)
	v.SetDefault("duplicates.format", c.Duplicates.Format)

	v.SetDefault("deepl.api_key", c.DeepL.APIKey)
	v.SetDefault("deepl.endpoint", c.DeepL.Endpoint)
	v.SetDefault("deepl.formality", c.DeepL.Formality)
	v.SetDefault("deepl.timeout", c.DeepL.Timeout)
}

// Load reads the configuration. An empty cfgFile searches the working
// directory for tpo.config.*; a missing file leaves defaults and environment.
func Load(cfgFile string) (*Config, error) {
	v := newViper()
	setDefaults(v, Default())

	// The bare DeepL variable is the conventional way to pass the key.
	if err := v.BindEnv("deepl.api_key", "TPO_DEEPL_API_KEY", "DEEPL_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind DEEPL_API_KEY: %w", err)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.LocalesPath) == "" {
		errs = append(errs, fmt.Errorf("%w: localesPath", ErrMissingKey))
	}
	if strings.TrimSpace(c.MainLanguage) == "" {
		errs = append(errs, fmt.Errorf("%w: mainLanguage", ErrMissingKey))
	}
	return errors.Join(errs...)
}
