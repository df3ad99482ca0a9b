package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	prevWD, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prevWD) })

	seed := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(seed, []byte(`shortcuts:
  - keyword: hi
    command: "!a"
    expansion: Alpha
  - keyword: hi
    command: "!ab"
    expansion: AlphaBeta
`), 0o644))

	root := &cobra.Command{Use: "text-expander", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "")
	root.PersistentFlags().String("seed", "", "")
	root.PersistentFlags().String("log-level", "error", "")
	root.PersistentFlags().String("log-format", "text", "")
	root.AddCommand(cmd)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{cmd.Name(), "--seed", seed}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestExpandCmd(t *testing.T) {
	out, err := runCmd(t, expandCmd(), "hi!ab")
	require.NoError(t, err)
	assert.Equal(t, "Alpha\n", out)
}

func TestExpandCmdNoMatch(t *testing.T) {
	out, err := runCmd(t, expandCmd(), "hi", "!a")
	require.ErrorIs(t, err, errNoMatch)
	assert.Empty(t, out)
}

func TestListCmd(t *testing.T) {
	out, err := runCmd(t, listCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "hi!a ")
	assert.Contains(t, out, "hi!ab")
	assert.Less(t, bytes.Index([]byte(out), []byte("Alpha\n")), bytes.Index([]byte(out), []byte("AlphaBeta")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "line one...", truncate("line one\nline two", 11))
	assert.Equal(t, "héllo wö...", truncate("héllo wörld ünïcode", 11))
	assert.Equal(t, "日本語", truncate("日本語", 3))
}
