package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"text-expander/config"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("addr", "", "")
	fs.String("seed", "", "")
	fs.String("log-level", "", "")
	fs.String("log-format", "", "")
	fs.Int("session-buffer", 0, "")
	fs.Bool("unrelated", false, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

// isolate points config discovery at an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	prevWD, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prevWD) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	c, err := config.Load(newFlags(t), "")
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Addr)
	assert.Empty(t, c.Seed)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "text", c.Log.Format)
	assert.Equal(t, 256, c.Session.Buffer)
}

func TestLoadFileEnvFlagPrecedence(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "text-expander.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`addr: ":9000"
seed: rules.yaml
log:
  level: debug
  format: json
session:
  buffer: 64
`), 0o644))

	t.Setenv("EXPANDER_LOG_FORMAT", "logfmt")
	t.Setenv("EXPANDER_SESSION_BUFFER", "128")

	c, err := config.Load(newFlags(t, "--addr", ":7000"), "")
	require.NoError(t, err)
	assert.Equal(t, ":7000", c.Addr)
	assert.Equal(t, "rules.yaml", c.Seed)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "logfmt", c.Log.Format)
	assert.Equal(t, 128, c.Session.Buffer)
}

func TestLoadDashedFlags(t *testing.T) {
	isolate(t)

	c, err := config.Load(newFlags(t, "--log-level", "warn", "--session-buffer", "32"), "")
	require.NoError(t, err)
	assert.Equal(t, "warn", c.Log.Level)
	assert.Equal(t, 32, c.Session.Buffer)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	dir := isolate(t)

	_, err := config.Load(nil, filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestLoadExplicitFile(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":1234\"\n"), 0o644))

	c, err := config.Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, ":1234", c.Addr)
}

func TestLoadInvalidBuffer(t *testing.T) {
	isolate(t)

	_, err := config.Load(newFlags(t, "--session-buffer=-1"), "")
	require.Error(t, err)
}
