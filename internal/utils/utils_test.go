package utils

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeenSet(t *testing.T) {
	s := NewSeenSet("Fire")
	assert.False(t, s.Add("fire"))
	assert.True(t, s.Add("water"))
	assert.False(t, s.Add("WATER"))
	assert.True(t, s.Has("Water"))
	assert.Equal(t, 2, s.Len())
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"fire", "Water"}, Dedupe([]string{"fire", "Water", "FIRE", "water"}))
	assert.Empty(t, Dedupe(nil))
}

func TestIsOnlyNumbers(t *testing.T) {
	assert.True(t, IsOnlyNumbers("006"))
	assert.False(t, IsOnlyNumbers(""))
	assert.False(t, IsOnlyNumbers("6a"))
	assert.False(t, IsOnlyNumbers("-6"))
	assert.False(t, IsOnlyNumbers("٣"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Charizard", DisplayName("charizard"))
	assert.Equal(t, "Mr-Mime", DisplayName("mr-mime"))
	assert.Equal(t, "Tapu Koko", DisplayName("tapu koko"))
	assert.Equal(t, "", DisplayName(""))
}

func TestTrimLastRune(t *testing.T) {
	assert.Equal(t, "pik", TrimLastRune("pika"))
	assert.Equal(t, "flabé", TrimLastRune("flabéb"))
	assert.Equal(t, "flab", TrimLastRune("flabé"))
	assert.Equal(t, "", TrimLastRune(""))
}

func TestExtractors(t *testing.T) {
	data := map[string]any{
		"n":     int64(5),
		"b":     true,
		"s":     "yaml",
		"list":  []any{"a", "b"},
		"mixed": []any{"a", int64(1)},
	}

	n, ok := ExtractInt64(data, "n")
	assert.True(t, ok)
	assert.Equal(t, 5, n)

	_, ok = ExtractInt64(data, "s")
	assert.False(t, ok)

	b, ok := ExtractBool(data, "b")
	assert.True(t, ok)
	assert.True(t, b)

	s, ok := ExtractString(data, "s")
	assert.True(t, ok)
	assert.Equal(t, "yaml", s)

	list, ok := ExtractStringSlice(data, "list")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, list)

	_, ok = ExtractStringSlice(data, "mixed")
	assert.False(t, ok)
}

type sample struct {
	Name  string `toml:"name"`
	Count int    `toml:"count"`
}

func TestSaveTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.toml")
	require.NoError(t, SaveTOMLFile(context.Background(), sample{Name: "dex", Count: 3}, path))

	var got sample
	_, err := toml.DecodeFile(path, &got)
	require.NoError(t, err)
	assert.Equal(t, sample{Name: "dex", Count: 3}, got)
}

func TestSaveTOMLFileConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, SaveTOMLFile(context.Background(), sample{Name: "w", Count: i}, path))
		}(i)
	}
	wg.Wait()

	var got sample
	_, err := toml.DecodeFile(path, &got)
	require.NoError(t, err)
	assert.Equal(t, "w", got.Name)
}

func TestFindFileInPaths(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(second, "pokedex.db"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(first, "catalog.yaml"), 0o755))

	pr := &PathResolver{}
	got, err := pr.FindFileInPaths(DefaultCatalogNames, []string{first, second})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(second, "pokedex.db"), got)

	_, err = pr.FindFileInPaths([]string{"missing"}, []string{first})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindCatalogExplicit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("species: []"), 0o644))

	pr := &PathResolver{executableDir: dir}
	got, err := pr.FindCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	got, err = pr.FindCatalog("mine.yaml")
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = pr.FindCatalog(filepath.Join(dir, "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
