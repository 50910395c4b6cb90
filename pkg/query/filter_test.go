package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bastiangx/dexpad/pkg/catalog"
)

func boolP(b bool) *bool { return &b }

var (
	testEntities = []catalog.Entity{
		{ID: 1, Name: "Bulbasaur", GenerationID: intPtr(1)},
		{ID: 6, Name: "Charizard", GenerationID: intPtr(1)},
		{ID: 146, Name: "Moltres", GenerationID: intPtr(1), IsLegendary: true},
		{ID: 151, Name: "Mew", GenerationID: intPtr(1), IsMythical: true},
		{ID: 250, Name: "Ho-Oh", GenerationID: intPtr(2), IsLegendary: true},
		{ID: 9999, Name: "Missingno"},
	}
	testTypes = catalog.TypeLookup{
		1:   {"grass", "poison"},
		6:   {"fire", "flying"},
		146: {"fire", "flying"},
		151: {"psychic"},
		250: {"fire", "flying"},
	}
)

func ids(es []catalog.Entity) []int {
	out := make([]int, 0, len(es))
	for _, e := range es {
		out = append(out, e.ID)
	}
	return out
}

func TestApplyConjunction(t *testing.T) {
	single := []catalog.Entity{{ID: 6, Name: "charizard", GenerationID: intPtr(1)}}
	types := catalog.TypeLookup{6: {"fire", "flying"}}

	assert.Empty(t, Apply(single, types, Filters{Types: []string{"fire"}, Legendary: boolP(true)}))
	assert.Len(t, Apply(single, types, Filters{Types: []string{"fire"}}), 1)
}

func TestApplyPredicates(t *testing.T) {
	tests := []struct {
		name string
		f    Filters
		want []int
	}{
		{"empty matches all", Filters{}, []int{1, 6, 146, 151, 250, 9999}},
		{"dex", Filters{DexNumber: intPtr(151)}, []int{151}},
		{"dex missing", Filters{DexNumber: intPtr(7)}, []int{}},
		{"name substring case insensitive", Filters{NameQuery: "AR"}, []int{6}},
		{"name blank ignored", Filters{NameQuery: "  "}, []int{1, 6, 146, 151, 250, 9999}},
		{"type superset", Filters{Types: []string{"flying"}}, []int{6, 146, 250}},
		{"all types required", Filters{Types: []string{"fire", "poison"}}, []int{}},
		{"type case insensitive", Filters{Types: []string{"Psychic"}}, []int{151}},
		{"generation", Filters{GenerationID: intPtr(2)}, []int{250}},
		{"generation excludes unknown", Filters{GenerationID: intPtr(1)}, []int{1, 6, 146, 151}},
		{"legendary", Filters{Legendary: boolP(true)}, []int{146, 250}},
		{"legendary false never excludes", Filters{Legendary: boolP(false)}, []int{1, 6, 146, 151, 250, 9999}},
		{"mythical", Filters{Mythical: boolP(true)}, []int{151}},
		{"combined", Filters{Types: []string{"fire"}, GenerationID: intPtr(1), Legendary: boolP(true)}, []int{146}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(testEntities, testTypes, tt.f)))
		})
	}
}

func TestApplyPreservesOrder(t *testing.T) {
	reversed := make([]catalog.Entity, len(testEntities))
	for i, e := range testEntities {
		reversed[len(testEntities)-1-i] = e
	}
	got := Apply(reversed, testTypes, Filters{Types: []string{"fire"}})
	assert.Equal(t, []int{250, 146, 6}, ids(got))
}

func TestSearch(t *testing.T) {
	assert.Equal(t, testEntities, Search("   ", testEntities, testTypes))
	assert.Equal(t, []int{146, 250}, ids(Search("fire legendary", testEntities, testTypes)))
	assert.Equal(t, []int{250}, ids(Search("johto", testEntities, testTypes)))
	assert.Equal(t, []int{6}, ids(Search("#006", testEntities, testTypes)))
	assert.Equal(t, []int{250}, ids(Search("ho-oh", testEntities, testTypes)))
	assert.Empty(t, Search("fire poison", testEntities, testTypes))
}
