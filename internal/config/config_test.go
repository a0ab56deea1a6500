package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Project.Root)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, "uigen.db", cfg.Storage.Path)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uigen.yaml")
	yaml := `
project:
  root: ./web
ai:
  provider: openai
  model: gpt-4o-mini
storage:
  path: /tmp/history.db
server:
  addr: ":9090"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("UIGEN_API_KEY", "sk-from-env")
	t.Setenv("UIGEN_AI_PROVIDER", "gemini")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "./web", cfg.Project.Root)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, "/tmp/history.db", cfg.Storage.Path)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	// env wins over the file
	assert.Equal(t, "sk-from-env", cfg.AI.APIKey)
	assert.Equal(t, "gemini", cfg.AI.Provider)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uigen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("project: ["), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
