package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Column holding the patient identifier used by select-case.
	IDColumn string `mapstructure:"id_column" yaml:"id_column"`
	// Timestamps are divided by this to give the derived durations.
	DurationDivisor float64 `mapstructure:"duration_divisor" yaml:"duration_divisor"`
	// Optional YAML range table replacing the built-in one.
	RangesFile string `mapstructure:"ranges_file" yaml:"ranges_file"`

	// Input
	StrictColumns bool   `mapstructure:"strict_columns" yaml:"strict_columns"`
	Delimiter     string `mapstructure:"delimiter" yaml:"delimiter"`
	SheetName     string `mapstructure:"sheet_name" yaml:"sheet_name"`

	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
}

// Dir is ~/.casescan.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".casescan"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.casescan/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("CASESCAN")
	v.AutomaticEnv()

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("id_column", "subjectid")
	v.SetDefault("duration_divisor", 60.0)
	v.SetDefault("ranges_file", "")
	v.SetDefault("strict_columns", true)
	v.SetDefault("delimiter", "")
	v.SetDefault("sheet_name", "")
	v.SetDefault("output_dir", ".")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings no command can run with.
func (c *Global) Validate() error {
	if c.DurationDivisor <= 0 {
		return fmt.Errorf("duration_divisor must be positive, got %v", c.DurationDivisor)
	}
	if c.IDColumn == "" {
		return fmt.Errorf("id_column must not be empty")
	}
	if r := []rune(c.Delimiter); len(r) > 1 && c.Delimiter != `\t` {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	return nil
}

// DelimiterRune returns the configured delimiter, or 0 to sniff it.
func (c *Global) DelimiterRune() rune {
	if c.Delimiter == `\t` {
		return '\t'
	}
	if r := []rune(c.Delimiter); len(r) == 1 {
		return r[0]
	}
	return 0
}
