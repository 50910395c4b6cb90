package query

import (
	"strings"

	"github.com/bastiangx/dexpad/pkg/catalog"
)

// Apply returns the entities matching every predicate in f, in catalog order.
// types supplies the ordered type list per entity id; entities without an
// entry have no types.
func Apply(entities []catalog.Entity, types catalog.TypeLookup, f Filters) []catalog.Entity {
	name := strings.ToLower(strings.TrimSpace(f.NameQuery))

	result := make([]catalog.Entity, 0, len(entities))
	for _, e := range entities {
		if Match(e, types[e.ID], f, name) {
			result = append(result, e)
		}
	}
	return result
}

// Match reports whether a single entity passes f. lowerName is the trimmed,
// lowercased name query (empty for no name predicate).
func Match(e catalog.Entity, entityTypes []string, f Filters, lowerName string) bool {
	if f.DexNumber != nil && e.ID != *f.DexNumber {
		return false
	}
	if lowerName != "" && !strings.Contains(strings.ToLower(e.Name), lowerName) {
		return false
	}
	for _, want := range f.Types {
		if !containsType(entityTypes, want) {
			return false
		}
	}
	if f.GenerationID != nil && (e.GenerationID == nil || *e.GenerationID != *f.GenerationID) {
		return false
	}
	if f.Legendary != nil && *f.Legendary && !e.IsLegendary {
		return false
	}
	if f.Mythical != nil && *f.Mythical && !e.IsMythical {
		return false
	}
	return true
}

// Search parses raw and filters the catalog. Blank input returns the full
// catalog without running the filter.
func Search(raw string, entities []catalog.Entity, types catalog.TypeLookup) []catalog.Entity {
	if strings.TrimSpace(raw) == "" {
		return entities
	}
	return Apply(entities, types, Parse(raw))
}

func containsType(types []string, t string) bool {
	for _, have := range types {
		if strings.EqualFold(have, t) {
			return true
		}
	}
	return false
}
