// Package catalog holds the in-memory species catalog and its loaders.
package catalog

import (
	"errors"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// ErrNotFound is returned when a species lookup has no match.
var ErrNotFound = errors.New("species not found")

// Entity is a single species entry. ID is the unique dex number.
type Entity struct {
	ID           int    `yaml:"id" json:"id" msgpack:"i"`
	Name         string `yaml:"name" json:"name" msgpack:"n"`
	GenerationID *int   `yaml:"generation_id,omitempty" json:"generation_id,omitempty" msgpack:"g,omitempty"`
	IsLegendary  bool   `yaml:"is_legendary" json:"is_legendary" msgpack:"lg"`
	IsMythical   bool   `yaml:"is_mythical" json:"is_mythical" msgpack:"my"`
	CaptureRate  *int   `yaml:"capture_rate,omitempty" json:"capture_rate,omitempty" msgpack:"cr,omitempty"`
}

// TypeLookup maps an entity id to its type names in slot order.
type TypeLookup map[int][]string

// Catalog is an immutable, id-ordered set of entities with their types.
// It is safe for concurrent readers.
type Catalog struct {
	entities  []Entity
	types     TypeLookup
	byID      map[int]int
	nameIndex *patricia.Trie
}

// New builds a catalog sorted by id. Later duplicates of an id are dropped.
func New(entities []Entity, types TypeLookup) *Catalog {
	sorted := make([]Entity, 0, len(entities))
	seen := make(map[int]bool, len(entities))
	for _, e := range entities {
		if seen[e.ID] {
			log.Warnf("Duplicate species id %d (%s), keeping first", e.ID, e.Name)
			continue
		}
		seen[e.ID] = true
		sorted = append(sorted, e)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})

	c := &Catalog{
		entities:  sorted,
		types:     make(TypeLookup, len(types)),
		byID:      make(map[int]int, len(sorted)),
		nameIndex: patricia.NewTrie(),
	}
	for id, ts := range types {
		lowered := make([]string, len(ts))
		for i, t := range ts {
			lowered[i] = strings.ToLower(t)
		}
		c.types[id] = lowered
	}
	for i, e := range sorted {
		c.byID[e.ID] = i
		c.nameIndex.Insert(patricia.Prefix(strings.ToLower(e.Name)), e.ID)
	}

	log.Debugf("Catalog built: %d species, %d typed", len(sorted), len(c.types))
	return c
}

// Len returns the number of entities.
func (c *Catalog) Len() int {
	return len(c.entities)
}

// Entities returns the entities in id order. Callers must not modify the slice.
func (c *Catalog) Entities() []Entity {
	return c.entities
}

// Types returns the per-entity type lookup. Callers must not modify it.
func (c *Catalog) Types() TypeLookup {
	return c.types
}

// TypesOf returns the types of a single entity.
func (c *Catalog) TypesOf(id int) []string {
	return c.types[id]
}

// Get returns the entity with the given dex number.
func (c *Catalog) Get(id int) (Entity, error) {
	i, ok := c.byID[id]
	if !ok {
		return Entity{}, ErrNotFound
	}
	return c.entities[i], nil
}

// ByName returns the entity whose name matches exactly, ignoring case.
func (c *Catalog) ByName(name string) (Entity, error) {
	item := c.nameIndex.Get(patricia.Prefix(strings.ToLower(strings.TrimSpace(name))))
	if item == nil {
		return Entity{}, ErrNotFound
	}
	return c.Get(item.(int))
}

// NamesWithPrefix returns up to limit entities whose name starts with prefix,
// in id order. A limit <= 0 means no limit.
func (c *Catalog) NamesWithPrefix(prefix string, limit int) []Entity {
	var ids []int
	err := c.nameIndex.VisitSubtree(patricia.Prefix(strings.ToLower(prefix)), func(p patricia.Prefix, item patricia.Item) error {
		ids = append(ids, item.(int))
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting name index: %v", err)
		return nil
	}

	sort.Ints(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	result := make([]Entity, 0, len(ids))
	for _, id := range ids {
		result = append(result, c.entities[c.byID[id]])
	}
	return result
}
