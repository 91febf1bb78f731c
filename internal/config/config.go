package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	EnvHome     = "PROFILER_HOME"
	EnvOrigin   = "PROFILER_ORIGIN"
	EnvAgent    = "PROFILER_AGENT"
	EnvLogLevel = "PROFILER_LOG_LEVEL"
)

type Config struct {
	Origin       string `toml:"origin"`
	DefaultAgent string `toml:"default_agent"`
	LogLevel     string `toml:"log_level"`
	ExportsDir   string `toml:"exports_dir"`
}

func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Origin:       "http://localhost:5173",
		DefaultAgent: "codex",
		LogLevel:     "info",
		ExportsDir:   filepath.Join(homeDir, "Documents", "profiler"),
	}
}

// ProfilerDir is ~/.profiler unless PROFILER_HOME points elsewhere.
func ProfilerDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return expandPath(dir), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".profiler"), nil
}

func ConfigPath() (string, error) {
	dir, err := ProfilerDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func DatabasePath() (string, error) {
	dir, err := ProfilerDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "db", "profiler.sqlite"), nil
}

func LogPath() (string, error) {
	dir, err := ProfilerDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "profiler.log"), nil
}

func EnsureDirectories() error {
	dir, err := ProfilerDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.MkdirAll(filepath.Join(dir, "db"), 0755)
}

func Load() (*Config, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := EnsureDirectories(); err != nil {
			return nil, err
		}
		if err := Save(cfg); err != nil {
			return nil, err
		}
	} else if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, err
	}

	applyEnv(cfg)
	cfg.ExportsDir = expandPath(cfg.ExportsDir)
	cfg.Origin = strings.TrimRight(cfg.Origin, "/")

	return cfg, nil
}

func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvOrigin); v != "" {
		cfg.Origin = v
	}
	if v := os.Getenv(EnvAgent); v != "" {
		cfg.DefaultAgent = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
