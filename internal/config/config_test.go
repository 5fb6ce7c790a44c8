package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 256, cfg.Server.HistoryLimit)
	assert.Equal(t, "auto", cfg.Render.Color)
	assert.Empty(t, cfg.SkillsDir)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `skills_dir: /opt/skills
server:
  addr: ":9090"
  history_limit: 16
render:
  color: never
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skillstream.yaml"), []byte(content), 0o644))
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/opt/skills", cfg.SkillsDir)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 16, cfg.Server.HistoryLimit)
	assert.Equal(t, "never", cfg.Render.Color)
}

func TestLoadRejectsInvalidColorMode(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skillstream.yaml"), []byte("render:\n  color: sometimes\n"), 0o644))
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render.color")
}

func TestLoadFileExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":7070\"\n"), 0o644))
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)

	_, err = LoadFile(filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skillstream.yaml"), []byte("skills_dir: /opt/skills\n"), 0o644))
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SKILLSTREAM_SKILLS_DIR", "/env/skills")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/env/skills", cfg.SkillsDir)
}
