package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHome, home)

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, home, cfg.Home)
	assert.Equal(t, "http://localhost:8080", cfg.Server)
	assert.Equal(t, filepath.Join(home, "session.json"), cfg.SessionFile)
	assert.Equal(t, filepath.Join(home, "master.key"), cfg.KeyFile)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, 20, cfg.PageSize)
	assert.Empty(t, cfg.File())
}

func TestFileEnvAndFlagPrecedence(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHome, home)
	yaml := "server: http://file:1\nformat: yaml\npage_size: 5\ntimeout: 3s\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("CHIRP_PAGE_SIZE", "7")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("server", "", "")
	fs.String("format", "text", "")
	require.NoError(t, fs.Parse([]string{"--server", "http://flag:2"}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "http://flag:2", cfg.Server)
	assert.Equal(t, "yaml", cfg.Format, "unset flags do not override the file")
	assert.Equal(t, 7, cfg.PageSize)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, filepath.Join(home, "config.yaml"), cfg.File())
}

func TestInvalidValues(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())

	t.Setenv("CHIRP_FORMAT", "xml")
	_, err := Load(nil)
	assert.ErrorContains(t, err, "invalid format")

	t.Setenv("CHIRP_FORMAT", "json")
	t.Setenv("CHIRP_PAGE_SIZE", "0")
	_, err = Load(nil)
	assert.ErrorContains(t, err, "page_size")
}

func TestSetWritesConfigFile(t *testing.T) {
	home := filepath.Join(t.TempDir(), "nested")
	t.Setenv(EnvHome, home)

	cfg, err := Load(nil)
	require.NoError(t, err)
	require.NoError(t, cfg.Set(KeyServer, "http://saved:3"))
	assert.Equal(t, "http://saved:3", cfg.Server)

	again, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://saved:3", again.Server)
}

func TestSetKeepsFlagsAndEnvOutOfTheFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHome, home)
	t.Setenv("CHIRP_FORMAT", "json")
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("log_level: debug\n"), 0o600))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("server", "", "")
	require.NoError(t, fs.Parse([]string{"--server", "http://flag:2"}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	require.NoError(t, cfg.Set(KeyPageSize, "5"))
	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, "http://flag:2", cfg.Server)

	raw, err := os.ReadFile(cfg.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "page_size: 5")
	assert.Contains(t, string(raw), "log_level: debug")
	assert.NotContains(t, string(raw), "flag:2")
	assert.NotContains(t, string(raw), "json")
}

func TestSetRejectsBadInput(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.ErrorContains(t, cfg.Set("colour", "red"), "unknown key")
	assert.ErrorContains(t, cfg.Set(KeyFormat, "xml"), "invalid format")
	assert.ErrorContains(t, cfg.Set(KeyPageSize, "0"), "page_size")
	assert.Error(t, cfg.Set(KeyPageSize, "many"))
	assert.Error(t, cfg.Set(KeyTimeout, "soon"))
	assert.NoFileExists(t, cfg.Path())
	assert.Equal(t, "text", cfg.Format)

	require.NoError(t, cfg.Set(KeyTimeout, "30s"))
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}
