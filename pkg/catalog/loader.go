package catalog

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// yamlDocument is the on-disk layout of a YAML catalog:
//
//	species:
//	  - id: 6
//	    name: charizard
//	    generation_id: 1
//	    types: [fire, flying]
type yamlDocument struct {
	Species []yamlSpecies `yaml:"species"`
}

type yamlSpecies struct {
	Entity `yaml:",inline"`
	Types  []string `yaml:"types"`
}

// Load reads a catalog from path. FormatUnknown detects the format.
func Load(ctx context.Context, path string, format FileFormat) (*Catalog, error) {
	if format == FormatUnknown {
		detected, err := DetectFileFormat(path)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	start := time.Now()
	var (
		c   *Catalog
		err error
	)
	switch format {
	case FormatYAML:
		c, err = LoadYAML(path)
	case FormatSQLite:
		c, err = LoadSQLite(ctx, path)
	default:
		return nil, fmt.Errorf("unsupported catalog format: %v", format)
	}
	if err != nil {
		return nil, err
	}

	log.Debugf("Loaded %d species from %s (%s) in %v", c.Len(), path, format, time.Since(start))
	return c, nil
}

// LoadYAML reads a YAML species list.
func LoadYAML(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a YAML species document.
func ParseYAML(data []byte) (*Catalog, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml catalog: %w", err)
	}

	entities := make([]Entity, 0, len(doc.Species))
	types := make(TypeLookup, len(doc.Species))
	for _, s := range doc.Species {
		entities = append(entities, s.Entity)
		if len(s.Types) > 0 {
			types[s.ID] = s.Types
		}
	}
	return New(entities, types), nil
}

// MarshalYAML encodes a catalog in the LoadYAML layout.
func MarshalYAML(c *Catalog) ([]byte, error) {
	doc := yamlDocument{Species: make([]yamlSpecies, 0, c.Len())}
	for _, e := range c.Entities() {
		doc.Species = append(doc.Species, yamlSpecies{Entity: e, Types: c.TypesOf(e.ID)})
	}
	return yaml.Marshal(&doc)
}
