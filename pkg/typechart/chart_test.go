package typechart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartCoversCanonicalTypes(t *testing.T) {
	require.Len(t, Types, 18)
	for attacking, row := range Chart {
		assert.True(t, IsType(attacking), "unknown attacking type %s", attacking)
		for defending, mult := range row {
			assert.True(t, IsType(defending), "unknown defending type %s", defending)
			assert.Contains(t, []float64{0, 0.5, 2}, mult, "%s -> %s", attacking, defending)
		}
	}
}

func TestDefensiveMultipliersSingleType(t *testing.T) {
	got := DefensiveMultipliers([]string{"fire"})

	want := map[string]float64{
		"water":  2,
		"ground": 2,
		"rock":   2,
		"fire":   0.5,
		"grass":  0.5,
		"ice":    0.5,
		"bug":    0.5,
		"steel":  0.5,
		"fairy":  0.5,
	}
	assert.Equal(t, want, got)
}

func TestDefensiveMultipliersDualType(t *testing.T) {
	testCases := []struct {
		types       []string
		attacking   string
		want        float64
		present     bool
		description string
	}{
		{[]string{"fire", "flying"}, "rock", 4, true, "both types weak"},
		{[]string{"fire", "flying"}, "ground", 0, true, "flying immunity wins over fire weakness"},
		{[]string{"fire", "flying"}, "water", 2, true, "single weakness"},
		{[]string{"fire", "flying"}, "grass", 0.25, true, "double resistance"},
		{[]string{"fire", "flying"}, "electric", 2, true, "flying weakness only"},
		{[]string{"water", "grass"}, "fire", 1, false, "2 * 0.5 cancels out and is dropped"},
		{[]string{"grass", "steel"}, "fire", 4, true, "steel and grass both weak to fire"},
		{[]string{"normal", "ghost"}, "fighting", 0, true, "ghost immunity"},
		{[]string{"normal", "ghost"}, "normal", 0, true, "ghost immunity to normal"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got := DefensiveMultipliers(tc.types)
			mult, ok := got[tc.attacking]
			require.Equal(t, tc.present, ok)
			if ok {
				assert.Equal(t, tc.want, mult)
			}
		})
	}
}

func TestDefensiveMultipliersNoTypes(t *testing.T) {
	assert.Empty(t, DefensiveMultipliers(nil))
	assert.Empty(t, DefensiveMultipliers([]string{"notatype"}))
}

func TestAnalyzeOrdering(t *testing.T) {
	eff := Analyze([]string{"fire", "flying"})

	require.NotEmpty(t, eff.Weaknesses)
	assert.Equal(t, Matchup{Type: "rock", Multiplier: 4}, eff.Weaknesses[0])
	for i := 1; i < len(eff.Weaknesses); i++ {
		assert.GreaterOrEqual(t, eff.Weaknesses[i-1].Multiplier, eff.Weaknesses[i].Multiplier)
	}
	for i := 1; i < len(eff.Resistances); i++ {
		assert.LessOrEqual(t, eff.Resistances[i-1].Multiplier, eff.Resistances[i].Multiplier)
	}
	for _, r := range eff.Resistances {
		assert.Greater(t, r.Multiplier, 0.0)
		assert.Less(t, r.Multiplier, 1.0)
	}
	assert.Equal(t, []Matchup{{Type: "ground", Multiplier: 0}}, eff.Immunities)
}

func TestAnalyzeFireHasNoImmunities(t *testing.T) {
	eff := Analyze([]string{"fire"})
	assert.Empty(t, eff.Immunities)
	assert.Len(t, eff.Weaknesses, 3)
	// fairy resists into fire at 0.5, making six rather than five
	assert.Len(t, eff.Resistances, 6)
	assert.Contains(t, eff.Resistances, Matchup{Type: "fairy", Multiplier: 0.5})
}

func TestMatchupLabel(t *testing.T) {
	assert.Equal(t, "x4", Matchup{Type: "rock", Multiplier: 4}.Label())
	assert.Equal(t, "x0.25", Matchup{Type: "grass", Multiplier: 0.25}.Label())
	assert.Equal(t, "x0", Matchup{Type: "ground", Multiplier: 0}.Label())
	assert.True(t, Matchup{Multiplier: 4}.IsDouble())
	assert.False(t, Matchup{Multiplier: 2}.IsDouble())
}

func TestPageCycle(t *testing.T) {
	tests := []struct {
		page     Page
		expected string
		next     Page
	}{
		{PageWeak, "WEAK", PageResist},
		{PageResist, "RESIST", PageImmune},
		{PageImmune, "IMMUNE", PageWeak},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.page.String())
			assert.Equal(t, tt.next, tt.page.Next())
		})
	}
	assert.Equal(t, "Unknown", Page(99).String())
	assert.Panics(t, func() { Page(99).Next() })
}

func TestPageEntries(t *testing.T) {
	eff := Analyze([]string{"ghost"})
	assert.Equal(t, eff.Weaknesses, PageWeak.Entries(eff))
	assert.Equal(t, eff.Resistances, PageResist.Entries(eff))
	assert.Equal(t, eff.Immunities, PageImmune.Entries(eff))
	assert.Len(t, eff.Immunities, 2)
}
