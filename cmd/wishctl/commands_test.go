package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maruel/wishlist/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// run executes wishctl with args against dataDir and returns its output.
func run(t *testing.T, dataDir, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--data-dir", dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestGroupsCommands(t *testing.T) {
	dataDir := t.TempDir()
	groupsFile := writeFile(t, t.TempDir(), "groups.yaml", `
- slug: Xmas
  title: Christmas
- slug: secret
  hidden: true
`)
	out, err := run(t, dataDir, "", "groups", "set", groupsFile)
	require.NoError(t, err)
	assert.Contains(t, out, "3 groups")

	out, err = run(t, dataDir, "", "groups", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "xmas")
	assert.Contains(t, out, "Christmas")
	assert.Contains(t, out, storage.DefaultGroup)
	assert.NotContains(t, out, "secret")

	out, err = run(t, dataDir, "", "groups", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "secret")
	assert.Contains(t, out, "hidden")
}

func TestGroupsRename(t *testing.T) {
	dataDir := t.TempDir()
	dir := t.TempDir()
	_, err := run(t, dataDir, "", "groups", "set", writeFile(t, dir, "a.yaml", "- slug: old\n"))
	require.NoError(t, err)
	_, err = run(t, dataDir, "lego", "content", "set", "old", "Alice")
	require.NoError(t, err)

	_, err = run(t, dataDir, "", "groups", "set", writeFile(t, dir, "b.yaml", "- slug: new\n  old_slug: old\n"))
	require.NoError(t, err)

	out, err := run(t, dataDir, "", "content", "get", "new", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "lego", out)

	_, err = run(t, dataDir, "", "names", "list", "old")
	assert.ErrorContains(t, err, "unknown group")
}

func TestNamesCommands(t *testing.T) {
	dataDir := t.TempDir()
	out, err := run(t, dataDir, "", "names", "set", "default", "Alice", " Bob ", "Alice")
	require.NoError(t, err)
	assert.Contains(t, out, "default: 2 names")

	out, err = run(t, dataDir, "", "names", "list", "default")
	require.NoError(t, err)
	assert.Equal(t, "Alice\nBob\n", out)

	out, err = run(t, dataDir, "Carol\n\nDave\n", "names", "set", "default", "--file", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "default: 2 names")

	names, err := run(t, dataDir, "", "names", "list", "default")
	require.NoError(t, err)
	assert.Equal(t, "Carol\nDave\n", names)

	_, err = run(t, dataDir, "", "names", "list", "nope")
	assert.ErrorContains(t, err, `unknown group "nope"`)
}

func TestContentCommands(t *testing.T) {
	dataDir := t.TempDir()
	_, err := run(t, dataDir, "a bike\nsocks\n", "content", "set", "default", "Alice")
	require.NoError(t, err)

	out, err := run(t, dataDir, "", "content", "get", "default", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "a bike\nsocks\n", out)

	file := writeFile(t, t.TempDir(), "wish.txt", "books")
	_, err = run(t, dataDir, "", "content", "set", "default", "Alice", "--file", file)
	require.NoError(t, err)
	out, err = run(t, dataDir, "", "content", "get", "default", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "books", out)

	// The legacy layout stays readable by the server.
	s, err := storage.New(dataDir)
	require.NoError(t, err)
	content, err := s.GetContent("Alice")
	require.NoError(t, err)
	assert.Equal(t, "books", content)

	out, err = run(t, dataDir, "", "content", "get", "default", "Nobody")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestExportImport(t *testing.T) {
	src := t.TempDir()
	dir := t.TempDir()
	_, err := run(t, src, "", "groups", "set", writeFile(t, dir, "g.yaml", "- slug: xmas\n  title: Christmas\n- slug: secret\n  hidden: true\n"))
	require.NoError(t, err)
	_, err = run(t, src, "", "names", "set", "xmas", "Alice", "Bob")
	require.NoError(t, err)
	_, err = run(t, src, "lego", "content", "set", "xmas", "Alice")
	require.NoError(t, err)

	exported := filepath.Join(dir, "export.yaml")
	_, err = run(t, src, "", "export", "--out", exported)
	require.NoError(t, err)
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Contains(t, string(data), "slug: xmas")
	assert.Contains(t, string(data), "content: lego")

	dst := t.TempDir()
	out, err := run(t, dst, "", "import", exported)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 3 groups")

	s, err := storage.New(dst)
	require.NoError(t, err)
	groups, err := s.ListGroups()
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.True(t, groups[1].Hidden)
	names, err := s.GetGroupNames("xmas")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, names)
	content, err := s.GetGroupContent("xmas", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "lego", content)
}

func TestExportWriteErrors(t *testing.T) {
	dataDir := t.TempDir()
	_, err := run(t, dataDir, "", "names", "set", storage.DefaultGroup, "Alice")
	require.NoError(t, err)

	out, err := run(t, dataDir, "", "export")
	require.NoError(t, err)
	assert.Contains(t, out, "slug: "+storage.DefaultGroup)
	assert.Contains(t, out, "name: Alice")

	_, err = run(t, dataDir, "", "export", "--out", filepath.Join(t.TempDir(), "missing", "x.yaml"))
	assert.Error(t, err)

	t.Run("full device", func(t *testing.T) {
		if _, err := os.Stat("/dev/full"); err != nil {
			t.Skip("no /dev/full")
		}
		_, err := run(t, dataDir, "", "export", "--out", "/dev/full")
		assert.Error(t, err)
	})
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteArchive(t *testing.T) {
	a := &archive{Groups: []archiveGroup{{Slug: "xmas", Title: "Christmas", Entries: []archiveEntry{{Name: "Alice", Content: "lego"}}}}}
	var buf bytes.Buffer
	require.NoError(t, writeArchive(&buf, a))
	var got archive
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, a, &got)

	assert.Error(t, writeArchive(failingWriter{}, a))
}

func TestConfigFile(t *testing.T) {
	dataDir := t.TempDir()
	cfg := writeFile(t, t.TempDir(), "wishctl.yaml", "data_dir: "+dataDir+"\n")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", cfg, "names", "set", "default", "Alice"})
	require.NoError(t, cmd.Execute())

	s, err := storage.New(dataDir)
	require.NoError(t, err)
	names, err := s.GetNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice"}, names)

	_, err = loadFileConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLogCommand(t *testing.T) {
	dataDir := t.TempDir()
	_, err := run(t, dataDir, "", "names", "set", "default", "Alice", "Bob")
	require.NoError(t, err)
	_, err = run(t, dataDir, "socks", "content", "set", "default", "Alice")
	require.NoError(t, err)

	out, err := run(t, dataDir, "", "log", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "content_saved")
	assert.Contains(t, out, "Alice")
	assert.NotContains(t, out, "names_set")

	out, err = run(t, dataDir, "", "log")
	require.NoError(t, err)
	assert.Contains(t, out, "names_set")
}
