package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TobiSchelling/fishgrade/internal/interpret"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Cleaning Cleaning `yaml:"cleaning"`
	Grading  Grading  `yaml:"grading"`
	Output   Output   `yaml:"output"`
	Server   Server   `yaml:"server"`
	Logging  Logging  `yaml:"logging"`
}

// Cleaning holds the default text cleaning stages used by `fishgrade clean`.
type Cleaning struct {
	RemoveMarkdown      bool `yaml:"remove_markdown"`
	NormalizeWhitespace bool `yaml:"normalize_whitespace"`
	RemoveEmptyLines    bool `yaml:"remove_empty_lines"`
	RemoveArtifacts     bool `yaml:"remove_artifacts"`
	MinimumLength       int  `yaml:"minimum_length"`
}

type Grading struct {
	Workers int `yaml:"workers"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for fishgrade.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "fishgrade")
}

// DataDir returns the XDG data directory for fishgrade.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "fishgrade")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/fishgrade/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'fishgrade init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// Default returns the built-in configuration, used when no config file exists.
func Default() *Config {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded default config is invalid: %v", err))
	}
	return cfg
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Cleaning: Cleaning{
			RemoveMarkdown:      true,
			NormalizeWhitespace: true,
			RemoveEmptyLines:    true,
			RemoveArtifacts:     true,
			MinimumLength:       interpret.DefaultMinimumLength,
		},
		Grading: Grading{Workers: 4},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Grading.Workers < 0 {
		return fmt.Errorf("grading.workers must not be negative, got %d", c.Grading.Workers)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch strings.ToUpper(c.Logging.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("logging.level must be one of DEBUG, INFO, WARN, ERROR; got %q", c.Logging.Level)
	}
	return nil
}

// Options converts the cleaning section into interpret options.
func (c Cleaning) Options() interpret.CleaningOptions {
	return interpret.CleaningOptions{
		RemoveMarkdown:      c.RemoveMarkdown,
		NormalizeWhitespace: c.NormalizeWhitespace,
		RemoveEmptyLines:    c.RemoveEmptyLines,
		RemoveArtifacts:     c.RemoveArtifacts,
		MinimumLength:       c.MinimumLength,
	}
}

// Debug reports whether the configured log level asks for file/line output.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.Logging.Level, "DEBUG")
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// DBPath returns the location of the SQLite database.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), "fishgrade.db")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
