package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	// ConfigDir is the directory name under ~/.config
	ConfigDir = "codeagent"
	// ConfigFile is the config file name
	ConfigFile = "config.json"
)

// Environment variables applied after the dotfile.
const (
	EnvProducer       = "CODEAGENT_PRODUCER"
	EnvModel          = "CODEAGENT_MODEL"
	EnvAPIKey         = "CODEAGENT_API_KEY"
	EnvAPIBase        = "CODEAGENT_API_BASE"
	EnvEnableThinking = "CODEAGENT_ENABLE_THINKING"
)

// FileSystem abstracts file and environment access for testability
type FileSystem interface {
	UserHomeDir() (string, error)
	ReadFile(path string) ([]byte, error)
	LookupEnv(key string) (string, bool)
}

// ConfigFileReader implements FileSystem using the real OS for config loading
type ConfigFileReader struct{}

func (ConfigFileReader) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

func (ConfigFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (ConfigFileReader) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Loader handles configuration loading with injected dependencies
type Loader struct {
	fs FileSystem
}

// NewLoader creates a production Loader using the real filesystem
func NewLoader() *Loader {
	return &Loader{fs: ConfigFileReader{}}
}

// NewLoaderWithFS creates a Loader with a custom filesystem (for testing)
func NewLoaderWithFS(fs FileSystem) *Loader {
	return &Loader{fs: fs}
}

// Path returns the dotfile location, or "" when the home directory is unknown.
func (l *Loader) Path() string {
	homeDir, err := l.fs.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", ConfigDir, ConfigFile)
}

// Load reads configuration from ~/.config/codeagent/config.json, merges it with defaults,
// applies CODEAGENT_* environment overrides and validates the result.
// A missing dotfile is not an error.
//
// NOTE: JSON keys are unmarshalled directly over the default configuration,
// so explicit zero values in the file override defaults.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if configPath := l.Path(); configPath != "" {
		data, err := l.fs.ReadFile(configPath)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", configPath, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, err
		}
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (l *Loader) applyEnv(cfg *Config) error {
	if v, ok := l.fs.LookupEnv(EnvProducer); ok && v != "" {
		cfg.Engine.Producer = v
	}
	if v, ok := l.fs.LookupEnv(EnvModel); ok && v != "" {
		cfg.Engine.Model = v
	}
	if v, ok := l.fs.LookupEnv(EnvAPIKey); ok && v != "" {
		cfg.Engine.APIKey = v
	}
	if v, ok := l.fs.LookupEnv(EnvAPIBase); ok && v != "" {
		cfg.Engine.APIBase = v
	}
	if v, ok := l.fs.LookupEnv(EnvEnableThinking); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvEnableThinking, err)
		}
		cfg.Engine.EnableThinking = b
	}
	return nil
}

// Load is a convenience function using the default loader
func Load() (*Config, error) {
	return NewLoader().Load()
}
