package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func sampleCatalog() *Catalog {
	return New([]Entity{
		{ID: 6, Name: "charizard", GenerationID: intPtr(1)},
		{ID: 4, Name: "charmander", GenerationID: intPtr(1)},
		{ID: 5, Name: "charmeleon", GenerationID: intPtr(1)},
		{ID: 1, Name: "bulbasaur", GenerationID: intPtr(1)},
		{ID: 4, Name: "duplicate", GenerationID: intPtr(9)},
	}, TypeLookup{
		6: {"Fire", "Flying"},
		4: {"fire"},
	})
}

func TestNewSortsAndDropsDuplicates(t *testing.T) {
	c := sampleCatalog()
	require.Equal(t, 4, c.Len())

	var ids []int
	for _, e := range c.Entities() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int{1, 4, 5, 6}, ids)

	e, err := c.Get(4)
	require.NoError(t, err)
	assert.Equal(t, "charmander", e.Name)
}

func TestTypesAreLowercased(t *testing.T) {
	c := sampleCatalog()
	assert.Equal(t, []string{"fire", "flying"}, c.TypesOf(6))
	assert.Nil(t, c.TypesOf(1))
	assert.Equal(t, []string{"fire"}, c.Types()[4])
}

func TestGetMissing(t *testing.T) {
	_, err := sampleCatalog().Get(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestByName(t *testing.T) {
	c := sampleCatalog()

	e, err := c.ByName("  Charizard ")
	require.NoError(t, err)
	assert.Equal(t, 6, e.ID)

	_, err = c.ByName("char")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNamesWithPrefix(t *testing.T) {
	c := sampleCatalog()

	got := c.NamesWithPrefix("char", 0)
	require.Len(t, got, 3)
	assert.Equal(t, "charmander", got[0].Name)
	assert.Equal(t, "charmeleon", got[1].Name)
	assert.Equal(t, "charizard", got[2].Name)

	assert.Len(t, c.NamesWithPrefix("CHAR", 2), 2)
	assert.Empty(t, c.NamesWithPrefix("zz", 0))
}

func TestParseYAML(t *testing.T) {
	c, err := LoadYAML(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)
	require.Equal(t, 7, c.Len())

	first := c.Entities()[0]
	assert.Equal(t, "bulbasaur", first.Name)
	require.NotNil(t, first.CaptureRate)
	assert.Equal(t, 45, *first.CaptureRate)

	hooh, err := c.Get(250)
	require.NoError(t, err)
	assert.True(t, hooh.IsLegendary)
	assert.Equal(t, []string{"fire", "flying"}, c.TypesOf(250))

	missing, err := c.Get(9999)
	require.NoError(t, err)
	assert.Nil(t, missing.GenerationID)
	assert.Nil(t, c.TypesOf(9999))
}

func TestParseYAMLInvalid(t *testing.T) {
	_, err := ParseYAML([]byte("species: [{id: nope}]"))
	assert.Error(t, err)
}

func TestYAMLRoundTrip(t *testing.T) {
	c := sampleCatalog()
	data, err := MarshalYAML(c)
	require.NoError(t, err)

	back, err := ParseYAML(data)
	require.NoError(t, err)
	assert.Equal(t, c.Entities(), back.Entities())
	assert.Equal(t, c.TypesOf(6), back.TypesOf(6))
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pokedex.db")

	src, err := LoadYAML(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, WriteDB(ctx, db, src))
	require.NoError(t, db.Close())

	format, err := DetectFileFormat(path)
	require.NoError(t, err)
	assert.Equal(t, FormatSQLite, format)

	c, err := Load(ctx, path, FormatUnknown)
	require.NoError(t, err)
	assert.Equal(t, src.Entities(), c.Entities())
	assert.Equal(t, []string{"fire", "flying"}, c.TypesOf(6))
	assert.Equal(t, []string{"grass", "poison"}, c.TypesOf(1))
	assert.Nil(t, c.TypesOf(9999))
}

func TestSQLiteSlotOrder(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "slots.db")

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, Schema)
	require.NoError(t, err)
	stmts := []string{
		`INSERT INTO pokemon_v2_pokemonspecies (id, name, is_legendary, is_mythical, capture_rate, generation_id) VALUES (6, 'charizard', 0, 0, 45, 1)`,
		`INSERT INTO pokemon_v2_type (id, name) VALUES (10, 'fire'), (3, 'flying')`,
		`INSERT INTO pokemon_v2_pokemontype (pokemon_id, type_id, slot) VALUES (6, 3, 2), (6, 10, 1), (6, 77, 3)`,
	}
	for _, s := range stmts {
		_, err := db.ExecContext(ctx, s)
		require.NoError(t, err)
	}

	c, err := LoadDB(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []string{"fire", "flying"}, c.TypesOf(6))
	e, err := c.Get(6)
	require.NoError(t, err)
	require.NotNil(t, e.CaptureRate)
	assert.Equal(t, 45, *e.CaptureRate)
}

func TestLoadSQLiteMissingTables(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "empty.db")

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE unrelated (id INTEGER)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = LoadSQLite(ctx, path)
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	cases := map[string]FileFormat{
		"":       FormatUnknown,
		"auto":   FormatUnknown,
		"YAML":   FormatYAML,
		"yml":    FormatYAML,
		"sqlite": FormatSQLite,
		"db":     FormatSQLite,
	}
	for in, want := range cases {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func TestDetectFileFormat(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "c.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("species: []"), 0o644))
	f, err := DetectFileFormat(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	fake := filepath.Join(dir, "fake.db")
	require.NoError(t, os.WriteFile(fake, make([]byte, 200), 0o644))
	_, err = DetectFileFormat(fake)
	assert.Error(t, err)

	noExt := filepath.Join(dir, "catalog")
	require.NoError(t, os.WriteFile(noExt, []byte("plain"), 0o644))
	_, err = DetectFileFormat(noExt)
	assert.Error(t, err)

	assert.Equal(t, "sqlite", FormatSQLite.String())
	assert.Equal(t, "unknown", FileFormat(42).String())
}

func TestFormatFromExtension(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromExtension("out/Catalog.YAML"))
	assert.Equal(t, FormatSQLite, FormatFromExtension("pokedex.sqlite3"))
	assert.Equal(t, FormatUnknown, FormatFromExtension("pokedex"))
}
