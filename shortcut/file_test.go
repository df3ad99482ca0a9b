package shortcut_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"text-expander/shortcut"
)

const seedRules = `shortcuts:
  - keyword: hello
    command: "!sc"
    expansion: Hello there!
  - id: sig
    keyword: " me "
    command: "!sig"
    expansion: |
      Regards,
        Me
`

func TestDecode(t *testing.T) {
	t.Parallel()

	r := shortcut.NewRegistry()
	n, err := shortcut.Decode(r, strings.NewReader(seedRules))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list := r.List()
	require.Len(t, list, 2)
	assert.NotEmpty(t, list[0].ID)
	assert.Equal(t, "hello!sc", list[0].Pattern())
	assert.Equal(t, shortcut.Entry{ID: "sig", Keyword: "me", Command: "!sig", ExpansionText: "Regards,\n  Me\n"}, list[1])
}

func TestDecodeEmpty(t *testing.T) {
	t.Parallel()

	r := shortcut.NewRegistry()
	n, err := shortcut.Decode(r, strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDecodeInvalidRuleLeavesRegistryUntouched(t *testing.T) {
	t.Parallel()

	r := shortcut.NewRegistry()
	_, err := r.Create(shortcut.Entry{ID: "keep", Keyword: "k", Command: "!k", ExpansionText: "K"})
	require.NoError(t, err)

	doc := `shortcuts:
  - keyword: a
    command: "!a"
    expansion: A
  - keyword: ""
    command: "!b"
    expansion: B
`
	_, err = shortcut.Decode(r, strings.NewReader(doc))
	require.ErrorIs(t, err, shortcut.ErrValidation)
	assert.Equal(t, 1, r.Len())
}

func TestDecodeDuplicateIDRollsBack(t *testing.T) {
	t.Parallel()

	r := shortcut.NewRegistry()
	doc := `shortcuts:
  - id: one
    keyword: a
    command: "!a"
    expansion: A
  - id: one
    keyword: b
    command: "!b"
    expansion: B
`
	_, err := shortcut.Decode(r, strings.NewReader(doc))
	require.ErrorIs(t, err, shortcut.ErrDuplicateID)
	assert.Zero(t, r.Len())
}

func TestDecodeUnknownField(t *testing.T) {
	t.Parallel()

	r := shortcut.NewRegistry()
	doc := `shortcuts:
  - keyword: a
    command: "!a"
    expansoin: typo
`
	_, err := shortcut.Decode(r, strings.NewReader(doc))
	require.Error(t, err)
	assert.Zero(t, r.Len())
}

func TestEncodeDecodeKeepsOrderAndText(t *testing.T) {
	t.Parallel()

	src := shortcut.NewRegistry()
	_, err := shortcut.Decode(src, strings.NewReader(seedRules))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, shortcut.Encode(&buf, src.List()))

	dst := shortcut.NewRegistry()
	_, err = shortcut.Decode(dst, &buf)
	require.NoError(t, err)
	assert.Equal(t, src.List(), dst.List())
}

func TestEncodeDecodeKeepsWhitespace(t *testing.T) {
	t.Parallel()

	tcs := map[string]string{
		"leading spaces on first line": "  leading spaces\nsecond",
		"trailing spaces on last line": "a\nb  ",
		"crlf line endings":            "line1\r\nline2",
		"trailing newlines":            "body\n\n",
		"tabs and blank lines":         "\tindented\n\n  \nend",
		"yaml-looking text":            "key: value\n- item\n# comment",
	}

	for name, text := range tcs {
		text := text
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			src := shortcut.NewRegistry()
			_, err := src.Create(shortcut.Entry{ID: "x", Keyword: "k", Command: "!x", ExpansionText: text})
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, shortcut.Encode(&buf, src.List()))

			dst := shortcut.NewRegistry()
			_, err = shortcut.Decode(dst, &buf)
			require.NoError(t, err)

			got, ok := dst.FindExpansion("k!x")
			require.True(t, ok)
			assert.Equal(t, text, got)
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedRules), 0o644))

	r := shortcut.NewRegistry()
	n, err := shortcut.LoadFile(r, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, ok := r.FindExpansion("hello!sc")
	require.True(t, ok)
	assert.Equal(t, "Hello there!", got)
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()

	_, err := shortcut.LoadFile(shortcut.NewRegistry(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
