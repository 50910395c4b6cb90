package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver used for sqlite catalogs.
const DriverName = "sqlite"

// Table names follow the PokeAPI dump layout.
const (
	speciesTable     = "pokemon_v2_pokemonspecies"
	typeTable        = "pokemon_v2_type"
	pokemonTypeTable = "pokemon_v2_pokemontype"
)

// Schema creates the tables LoadSQLite reads. Used to build fixtures and by
// the export path.
const Schema = `
CREATE TABLE IF NOT EXISTS pokemon_v2_pokemonspecies (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	is_legendary INTEGER NOT NULL DEFAULT 0,
	is_mythical INTEGER NOT NULL DEFAULT 0,
	capture_rate INTEGER,
	generation_id INTEGER
);
CREATE TABLE IF NOT EXISTS pokemon_v2_type (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS pokemon_v2_pokemontype (
	pokemon_id INTEGER NOT NULL,
	type_id INTEGER NOT NULL,
	slot INTEGER NOT NULL
);
`

type pokemonType struct {
	pokemonID int
	typeID    int
	slot      int
}

// OpenSQLite opens a sqlite database read for catalog use.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(4)
	return db, nil
}

// LoadSQLite reads species, type names and species types from the PokeAPI
// tables at path.
func LoadSQLite(ctx context.Context, path string) (*Catalog, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	return LoadDB(ctx, db)
}

// LoadDB builds a catalog from an open database. The three tables are read
// concurrently.
func LoadDB(ctx context.Context, db *sql.DB) (*Catalog, error) {
	var (
		species   []Entity
		typeNames map[int]string
		links     []pokemonType
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		species, err = querySpecies(gctx, db)
		return err
	})
	g.Go(func() error {
		var err error
		typeNames, err = queryTypeNames(gctx, db)
		return err
	})
	g.Go(func() error {
		var err error
		links, err = queryPokemonTypes(gctx, db)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(links, func(i, j int) bool {
		if links[i].pokemonID != links[j].pokemonID {
			return links[i].pokemonID < links[j].pokemonID
		}
		return links[i].slot < links[j].slot
	})

	types := make(TypeLookup)
	for _, l := range links {
		name, ok := typeNames[l.typeID]
		if !ok {
			log.Debugf("Skipping unknown type id %d for pokemon %d", l.typeID, l.pokemonID)
			continue
		}
		types[l.pokemonID] = append(types[l.pokemonID], strings.ToLower(name))
	}

	return New(species, types), nil
}

func querySpecies(ctx context.Context, db *sql.DB) ([]Entity, error) {
	query := `
		SELECT id, name, is_legendary, is_mythical, capture_rate, generation_id
		FROM ` + speciesTable + `
		ORDER BY id
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query species: %w", err)
	}
	defer rows.Close()

	var result []Entity
	for rows.Next() {
		var (
			e           Entity
			captureRate sql.NullInt64
			generation  sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.IsLegendary, &e.IsMythical, &captureRate, &generation); err != nil {
			return nil, fmt.Errorf("failed to scan species: %w", err)
		}
		if captureRate.Valid {
			v := int(captureRate.Int64)
			e.CaptureRate = &v
		}
		if generation.Valid {
			v := int(generation.Int64)
			e.GenerationID = &v
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func queryTypeNames(ctx context.Context, db *sql.DB) (map[int]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name FROM `+typeTable)
	if err != nil {
		return nil, fmt.Errorf("failed to query types: %w", err)
	}
	defer rows.Close()

	result := make(map[int]string)
	for rows.Next() {
		var (
			id   int
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan type: %w", err)
		}
		result[id] = name
	}
	return result, rows.Err()
}

func queryPokemonTypes(ctx context.Context, db *sql.DB) ([]pokemonType, error) {
	rows, err := db.QueryContext(ctx, `SELECT pokemon_id, type_id, slot FROM `+pokemonTypeTable)
	if err != nil {
		return nil, fmt.Errorf("failed to query pokemon types: %w", err)
	}
	defer rows.Close()

	var result []pokemonType
	for rows.Next() {
		var pt pokemonType
		if err := rows.Scan(&pt.pokemonID, &pt.typeID, &pt.slot); err != nil {
			return nil, fmt.Errorf("failed to scan pokemon type: %w", err)
		}
		result = append(result, pt)
	}
	return result, rows.Err()
}

// WriteDB stores c into db using Schema. Type ids are assigned in the
// canonical order they are first seen.
func WriteDB(ctx context.Context, db *sql.DB, c *Catalog) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	typeIDs := make(map[string]int)
	for _, e := range c.Entities() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO `+speciesTable+` (id, name, is_legendary, is_mythical, capture_rate, generation_id) VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, e.Name, e.IsLegendary, e.IsMythical, nullableInt(e.CaptureRate), nullableInt(e.GenerationID)); err != nil {
			return fmt.Errorf("failed to insert species %d: %w", e.ID, err)
		}
		for slot, t := range c.TypesOf(e.ID) {
			id, ok := typeIDs[t]
			if !ok {
				id = len(typeIDs) + 1
				typeIDs[t] = id
				if _, err := tx.ExecContext(ctx, `INSERT INTO `+typeTable+` (id, name) VALUES (?, ?)`, id, t); err != nil {
					return fmt.Errorf("failed to insert type %s: %w", t, err)
				}
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO `+pokemonTypeTable+` (pokemon_id, type_id, slot) VALUES (?, ?, ?)`,
				e.ID, id, slot+1); err != nil {
				return fmt.Errorf("failed to insert type link %d/%s: %w", e.ID, t, err)
			}
		}
	}
	return tx.Commit()
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
