// Package config loads the workspace configuration from arrears.yaml, with
// overrides from the process environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// FileName is the config file at the workspace root.
const FileName = "arrears.yaml"

// EnvFile is the optional dotenv file next to the config.
const EnvFile = ".env"

// CurrentVersion is the config layout written by Default.
const CurrentVersion = 1

// Config represents the top-level arrears.yaml configuration.
type Config struct {
	Name    string        `yaml:"name" validate:"required"`
	Version int           `yaml:"version" validate:"min=1"`
	Store   StoreConfig   `yaml:"store"`
	Inbox   string        `yaml:"inbox" validate:"required"`
	Reports string        `yaml:"reports" validate:"required"`
	Logs    string        `yaml:"logs" validate:"required"`
	Import  ImportConfig  `yaml:"import"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// StoreConfig locates the database.
type StoreConfig struct {
	Path string `yaml:"path" env:"ARREARS_DB" validate:"required"`
}

// ImportConfig tunes the import pipeline.
type ImportConfig struct {
	HeaderScanRows int    `yaml:"header_scan_rows" env:"ARREARS_HEADER_SCAN_ROWS" validate:"min=1"`
	MaxWarnings    int    `yaml:"max_warnings" env:"ARREARS_MAX_WARNINGS" validate:"min=1"`
	Tolerance      string `yaml:"tolerance" env:"ARREARS_TOLERANCE" validate:"required,numeric"`
	StrictPeriod   bool   `yaml:"strict_period" env:"ARREARS_STRICT_PERIOD"`
	AddressPolicy  string `yaml:"address_policy" env:"ARREARS_ADDRESS_POLICY" validate:"oneof=frozen refresh"`
}

// ToleranceValue parses Tolerance.
func (c ImportConfig) ToleranceValue() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(c.Tolerance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing import.tolerance %q: %w", c.Tolerance, err)
	}
	return d, nil
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level" env:"ARREARS_LOG_LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" env:"ARREARS_LOG_FORMAT" validate:"oneof=console json"`
}

// MetricsConfig controls the optional Prometheus textfile.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty" env:"ARREARS_METRICS_FILE"`
}

// Load reads an arrears.yaml file from disk. Keys missing from the file
// keep their defaults. Environment variables, then a .env file next to the
// config, override file values before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	environ, err := environment(filepath.Join(filepath.Dir(path), EnvFile))
	if err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// environment merges a dotenv file under the process environment.
func environment(dotenv string) (map[string]string, error) {
	out := env.ToMap(os.Environ())
	vals, err := godotenv.Read(dotenv)
	if errors.Is(err, os.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dotenv, err)
	}
	for k, v := range vals {
		if _, set := out[k]; !set {
			out[k] = v
		}
	}
	return out, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Import.ToleranceValue(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace.
func Default(name string) *Config {
	return &Config{
		Name:    name,
		Version: CurrentVersion,
		Store: StoreConfig{
			Path: filepath.Join("data", "arrears.db"),
		},
		Inbox:   "inbox",
		Reports: "reports",
		Logs:    "logs",
		Import: ImportConfig{
			HeaderScanRows: 200,
			MaxWarnings:    1000,
			Tolerance:      "0.01",
			AddressPolicy:  "frozen",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Resolve returns p relative to root unless it is already absolute.
func Resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
