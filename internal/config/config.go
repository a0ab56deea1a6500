// Package config loads uigen settings from uigen.yaml, a .env file, and
// UIGEN_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where LoadConfig looks when no explicit path is given.
const DefaultPath = "uigen.yaml"

type Config struct {
	Project struct {
		Root string `yaml:"root"`
	} `yaml:"project"`
	AI struct {
		Provider   string `yaml:"provider"`
		Model      string `yaml:"model"`
		APIKey     string `yaml:"api_key"`
		BaseURL    string `yaml:"base_url"`
		MaxRetries uint64 `yaml:"max_retries"`
	} `yaml:"ai"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the configuration used when no uigen.yaml exists, so
// detection works with zero setup.
func Default() *Config {
	cfg := &Config{}
	cfg.Project.Root = "."
	cfg.AI.Provider = "gemini"
	cfg.AI.Model = "gemini-2.5-flash"
	cfg.AI.MaxRetries = 2
	cfg.Storage.Path = "uigen.db"
	cfg.Server.Addr = ":8080"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config; a missing file falls back to defaults
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	// 3. Override with Environment Variables if present
	if apiKey := os.Getenv("UIGEN_API_KEY"); apiKey != "" {
		cfg.AI.APIKey = apiKey
	}
	if provider := os.Getenv("UIGEN_AI_PROVIDER"); provider != "" {
		cfg.AI.Provider = provider
	}
	if model := os.Getenv("UIGEN_AI_MODEL"); model != "" {
		cfg.AI.Model = model
	}
	if dbPath := os.Getenv("UIGEN_DB_PATH"); dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	if addr := os.Getenv("UIGEN_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}

	return cfg, nil
}
