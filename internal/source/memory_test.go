package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileYAML(t *testing.T) {
	path := writeTemp(t, "data.yaml", `
people:
  - id: 1
    name: Ada
    active: true
  - id: 2
    name: Grace
`)
	m, err := LoadFile(path)
	require.NoError(t, err)
	root, err := m.Root(context.Background())
	require.NoError(t, err)

	doc, ok := root.(map[string]any)
	require.True(t, ok)
	people, ok := doc["people"].([]any)
	require.True(t, ok)
	require.Len(t, people, 2)

	first := people[0].(map[string]any)
	// YAML integers normalize to int64 for the engine's value model.
	require.Equal(t, int64(1), first["id"])
	require.Equal(t, "Ada", first["name"])
	require.Equal(t, true, first["active"])
}

func TestLoadFileJSON(t *testing.T) {
	path := writeTemp(t, "data.json", `{"users": [{"id": 7, "name": "Linus"}]}`)
	m, err := LoadFile(path)
	require.NoError(t, err)
	root, _ := m.Root(context.Background())

	users := root.(map[string]any)["users"].([]any)
	require.Equal(t, int64(7), users[0].(map[string]any)["id"])
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestNewMemoryPassthrough(t *testing.T) {
	root := map[string]any{"k": "v"}
	m := NewMemory(root)
	got, err := m.Root(context.Background())
	require.NoError(t, err)
	require.Equal(t, root, got)
}
