/*
Package typechart computes defensive type matchups for catalog entities.

The chart is a sparse attacking -> defending multiplier table. Pairs missing
from the chart are neutral (1x). A defender with several types takes the
product of the per-type multipliers, so a fire/flying entity hit by a rock
attack takes 2 * 2 = 4x, and an entity whose types cancel out (2 * 0.5) is
neutral again and dropped from the results.

	eff := typechart.Analyze([]string{"fire", "flying"})
	for _, m := range eff.Weaknesses {
		fmt.Println(m.Type, m.Label())
	}

Only non-neutral matchups are ever surfaced. The 4x flag is a formatting
concern; the calculator exposes the raw multiplier.
*/
package typechart

// Types lists the 18 canonical type names in chart order.
var Types = []string{
	"normal", "fire", "water", "electric", "grass", "ice", "fighting", "poison",
	"ground", "flying", "psychic", "bug", "rock", "ghost", "dragon", "dark", "steel", "fairy",
}

var typeIndex = func() map[string]int {
	idx := make(map[string]int, len(Types))
	for i, t := range Types {
		idx[t] = i
	}
	return idx
}()

// Chart maps attacking type -> defending type -> multiplier.
// Only non-neutral pairs are listed.
var Chart = map[string]map[string]float64{
	"normal":   {"rock": 0.5, "ghost": 0, "steel": 0.5},
	"fire":     {"fire": 0.5, "water": 0.5, "grass": 2, "ice": 2, "bug": 2, "rock": 0.5, "dragon": 0.5, "steel": 2},
	"water":    {"fire": 2, "water": 0.5, "grass": 0.5, "ground": 2, "rock": 2, "dragon": 0.5},
	"electric": {"water": 2, "electric": 0.5, "grass": 0.5, "ground": 0, "flying": 2, "dragon": 0.5},
	"grass":    {"fire": 0.5, "water": 2, "grass": 0.5, "poison": 0.5, "ground": 2, "flying": 0.5, "bug": 0.5, "rock": 2, "dragon": 0.5, "steel": 0.5},
	"ice":      {"fire": 0.5, "water": 0.5, "grass": 2, "ice": 0.5, "ground": 2, "flying": 2, "dragon": 2, "steel": 0.5},
	"fighting": {"normal": 2, "ice": 2, "poison": 0.5, "flying": 0.5, "psychic": 0.5, "bug": 0.5, "rock": 2, "ghost": 0, "dark": 2, "steel": 2, "fairy": 0.5},
	"poison":   {"grass": 2, "poison": 0.5, "ground": 0.5, "rock": 0.5, "ghost": 0.5, "steel": 0, "fairy": 2},
	"ground":   {"fire": 2, "electric": 2, "grass": 0.5, "poison": 2, "flying": 0, "bug": 0.5, "rock": 2, "steel": 2},
	"flying":   {"electric": 0.5, "grass": 2, "fighting": 2, "bug": 2, "rock": 0.5, "steel": 0.5},
	"psychic":  {"fighting": 2, "poison": 2, "psychic": 0.5, "dark": 0, "steel": 0.5},
	"bug":      {"fire": 0.5, "grass": 2, "fighting": 0.5, "poison": 0.5, "flying": 0.5, "psychic": 2, "ghost": 0.5, "dark": 2, "steel": 0.5, "fairy": 0.5},
	"rock":     {"fire": 2, "ice": 2, "fighting": 0.5, "ground": 0.5, "flying": 2, "bug": 2, "steel": 0.5},
	"ghost":    {"normal": 0, "psychic": 2, "ghost": 2, "dark": 0.5},
	"dragon":   {"dragon": 2, "steel": 0.5, "fairy": 0},
	"dark":     {"fighting": 0.5, "psychic": 2, "ghost": 2, "dark": 0.5, "fairy": 0.5},
	"steel":    {"fire": 0.5, "water": 0.5, "electric": 0.5, "ice": 2, "rock": 2, "steel": 0.5, "fairy": 2},
	"fairy":    {"fire": 0.5, "fighting": 2, "poison": 0.5, "dragon": 2, "dark": 2, "steel": 0.5},
}

// IsType reports whether name is one of the 18 canonical type names.
func IsType(name string) bool {
	_, ok := typeIndex[name]
	return ok
}

// Multiplier returns the chart entry for a single attacking/defending pair,
// defaulting to 1 when the chart has no entry.
func Multiplier(attacking, defending string) float64 {
	if m, ok := Chart[attacking][defending]; ok {
		return m
	}
	return 1
}

// DefensiveMultipliers folds the chart over the defending types for every
// attacking type and returns only the non-neutral results.
func DefensiveMultipliers(types []string) map[string]float64 {
	result := make(map[string]float64)
	for _, attacking := range Types {
		mult := 1.0
		for _, defending := range types {
			mult *= Multiplier(attacking, defending)
		}
		if mult != 1 {
			result[attacking] = mult
		}
	}
	return result
}
