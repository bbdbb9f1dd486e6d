// Package config loads learnpath settings from ~/.learnpath/config.yaml, a
// .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// HomeDirName is the directory under the user's home holding all state.
	HomeDirName = ".learnpath"

	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 60 * time.Second
)

const defaultConfigYAML = `# learnpath configuration
version: 1

storage:
  # sqlite | file | redis | memory
  backend: sqlite
  # Database file (sqlite) or directory (file). Defaults live under ~/.learnpath.
  # path: ~/.learnpath/learnpath.db
  # redis_addr: localhost:6379
  # key_prefix: "learnpath:"

llm:
  # gemini | mock
  provider: gemini
  model: gemini-2.5-flash
  # Prefer GEMINI_API_KEY in the environment or .env over storing it here.
  # api_key: ""
  timeout_seconds: 60

search:
  # Google Custom Search credentials. Leave empty to skip resource lookup.
  # api_key: ""
  # engine_id: ""

log:
  # dev | prod
  mode: prod
  # file: ~/.learnpath/logs/learnpath.log
`

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend   string `yaml:"backend"`
	Path      string `yaml:"path,omitempty"`
	RedisAddr string `yaml:"redis_addr,omitempty"`
	KeyPrefix string `yaml:"key_prefix,omitempty"`
}

// LLMConfig configures the plan generation service.
type LLMConfig struct {
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	APIKey         string `yaml:"api_key,omitempty"`
	BaseURL        string `yaml:"base_url,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the per-request timeout.
func (l LLMConfig) Timeout() time.Duration {
	if l.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// SearchConfig holds Google Custom Search credentials.
type SearchConfig struct {
	APIKey   string `yaml:"api_key,omitempty"`
	EngineID string `yaml:"engine_id,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
}

// Configured reports whether both credentials are present.
func (s SearchConfig) Configured() bool {
	return s.APIKey != "" && s.EngineID != ""
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Mode string `yaml:"mode"`
	File string `yaml:"file,omitempty"`
}

// Config is the fully resolved configuration.
type Config struct {
	// Home is the state directory, ~/.learnpath unless LEARNPATH_HOME is set.
	Home string `yaml:"-"`
	// Path is the config file that was read.
	Path string `yaml:"-"`

	Version int           `yaml:"version"`
	Storage StorageConfig `yaml:"storage"`
	LLM     LLMConfig     `yaml:"llm"`
	Search  SearchConfig  `yaml:"search"`
	Log     LogConfig     `yaml:"log"`
}

// HomeDir returns the learnpath state directory.
func HomeDir() (string, error) {
	if h := strings.TrimSpace(os.Getenv("LEARNPATH_HOME")); h != "" {
		return h, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home: %w", err)
	}
	return filepath.Join(home, HomeDirName), nil
}

// Load reads the config file at path, creating a commented default when it
// does not exist. An empty path uses <home>/config.yaml. A .env file in the
// working directory is loaded first; variables already set are kept.
func Load(path string) (*Config, error) {
	if err := LoadEnvFile(".env"); err != nil {
		return nil, err
	}

	home, err := HomeDir()
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = filepath.Join(home, "config.yaml")
	}
	if err := ensureConfig(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data, home, path)
}

// Parse resolves a config from YAML bytes plus the environment.
func Parse(data []byte, home, path string) (*Config, error) {
	cfg := &Config{Home: home, Path: path}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Default returns a config built from the environment alone. It never
// touches the filesystem.
func Default(home string) *Config {
	cfg := &Config{Home: home}
	cfg.applyEnv()
	cfg.applyDefaults()
	cfg.normalize()
	return cfg
}

// LoadEnvFile loads KEY=VALUE pairs from path into the environment without
// overriding existing variables. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

func ensureConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o600); err != nil {
		return fmt.Errorf("config: write default %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	set(&c.Storage.Backend, "LEARNPATH_BACKEND")
	set(&c.Storage.Path, "LEARNPATH_DB")
	set(&c.Storage.RedisAddr, "REDIS_ADDR")
	set(&c.LLM.APIKey, "GEMINI_API_KEY", "VITE_GEMINI_API_KEY")
	set(&c.LLM.Model, "GEMINI_MODEL")
	set(&c.Search.APIKey, "GOOGLE_API_KEY", "VITE_GOOGLE_API_KEY")
	set(&c.Search.EngineID, "GOOGLE_SEARCH_ENGINE_ID", "VITE_GOOGLE_SEARCH_ENGINE_ID")
	set(&c.Log.Mode, "LEARNPATH_LOG_MODE")
}

func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "sqlite"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "learnpath:"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "gemini"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = int(DefaultTimeout / time.Second)
	}
	if c.Log.Mode == "" {
		c.Log.Mode = "prod"
	}
	if c.Log.File == "" && c.Home != "" {
		c.Log.File = filepath.Join(c.Home, "logs", "learnpath.log")
	}
}

func (c *Config) normalize() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.Log.Mode = strings.ToLower(strings.TrimSpace(c.Log.Mode))
	c.Storage.Path = expandHome(c.Storage.Path)
	c.Log.File = expandHome(c.Log.File)

	if c.Storage.Path == "" && c.Home != "" {
		switch c.Storage.Backend {
		case "sqlite":
			c.Storage.Path = filepath.Join(c.Home, "learnpath.db")
		case "file":
			c.Storage.Path = filepath.Join(c.Home, "data")
		}
	}
}

func (c *Config) validate() error {
	if c.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	switch c.Storage.Backend {
	case "sqlite", "file":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for %s backend", c.Storage.Backend)
		}
	case "redis":
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("storage.redis_addr is required for redis backend")
		}
	case "memory":
	default:
		return fmt.Errorf("storage.backend must be one of sqlite, file, redis, memory")
	}
	switch c.LLM.Provider {
	case "gemini", "mock":
	default:
		return fmt.Errorf("llm.provider must be 'gemini' or 'mock'")
	}
	if c.LLM.TimeoutSeconds < 0 {
		return fmt.Errorf("llm.timeout_seconds must be >= 0")
	}
	switch c.Log.Mode {
	case "dev", "prod":
	default:
		return fmt.Errorf("log.mode must be 'dev' or 'prod'")
	}
	return nil
}

func expandHome(p string) string {
	p = strings.TrimSpace(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
