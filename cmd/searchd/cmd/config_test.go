package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInitCmd_CreatesUserConfig(t *testing.T) {
	// Given: an empty XDG config home
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	// When: running config init
	cmd := newConfigInitCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	err := cmd.Execute()

	// Then: config.yaml is written under searchd/
	require.NoError(t, err)
	path := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "searchd", "config.yaml")
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestConfigInitCmd_WarnsWithoutForceIfExists(t *testing.T) {
	// Given: a user config that already exists
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	dir := filepath.Join(xdg, "searchd")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("daemon:\n  socket_path: /custom.sock\n"), 0o644))

	// When: running config init without --force
	cmd := newConfigInitCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	err := cmd.Execute()

	// Then: the existing file is left untouched
	require.NoError(t, err)
	contents, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Contains(t, string(contents), "/custom.sock")
}

func TestConfigPathCmd_PrintsUserConfigPath(t *testing.T) {
	// Given: a known XDG config home
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	// When: running config path
	cmd := newConfigPathCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	err := cmd.Execute()

	// Then: it prints the path under the XDG home
	require.NoError(t, err)
	assert.Contains(t, buf.String(), xdg)
}

func TestConfigShowCmd_DefaultsSource(t *testing.T) {
	// Given: no user or instance config present
	dir := chdirTemp(t)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	// When: running config show --source defaults
	cmd := newConfigShowCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--source", "defaults"})
	err := cmd.Execute()

	// Then: it prints the hardcoded defaults without error
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "defaults")
}

func TestConfigShowCmd_RejectsUnknownSource(t *testing.T) {
	// Given: the config show command
	cmd := newConfigShowCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--source", "bogus"})

	// When: run with an invalid --source value
	err := cmd.Execute()

	// Then: it reports the invalid source
	assert.Error(t, err)
}
