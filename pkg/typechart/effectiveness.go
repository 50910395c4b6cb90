package typechart

import (
	"fmt"
	"sort"
	"strconv"
)

// Matchup is a single non-neutral attacking type and its combined multiplier.
type Matchup struct {
	Type       string  `msgpack:"t" json:"type"`
	Multiplier float64 `msgpack:"m" json:"multiplier"`
}

// Label formats the multiplier the way the small screens print it ("x2", "x0.5").
func (m Matchup) Label() string {
	return "x" + strconv.FormatFloat(m.Multiplier, 'f', -1, 64)
}

// IsDouble reports a 4x weakness, which front-ends flag separately from 2x.
func (m Matchup) IsDouble() bool {
	return m.Multiplier >= 4
}

// Effectiveness partitions the non-neutral matchups of a type set.
type Effectiveness struct {
	Weaknesses  []Matchup `msgpack:"w" json:"weaknesses"`
	Resistances []Matchup `msgpack:"rs" json:"resistances"`
	Immunities  []Matchup `msgpack:"im" json:"immunities"`
}

// Analyze computes the three views for the given defending types.
// Weaknesses are sorted by multiplier descending, resistances ascending;
// equal multipliers and immunities keep canonical type order.
func Analyze(types []string) Effectiveness {
	mults := DefensiveMultipliers(types)

	var eff Effectiveness
	for _, t := range Types {
		mult, ok := mults[t]
		if !ok {
			continue
		}
		m := Matchup{Type: t, Multiplier: mult}
		switch {
		case mult > 1:
			eff.Weaknesses = append(eff.Weaknesses, m)
		case mult > 0:
			eff.Resistances = append(eff.Resistances, m)
		default:
			eff.Immunities = append(eff.Immunities, m)
		}
	}

	sort.SliceStable(eff.Weaknesses, func(i, j int) bool {
		return eff.Weaknesses[i].Multiplier > eff.Weaknesses[j].Multiplier
	})
	sort.SliceStable(eff.Resistances, func(i, j int) bool {
		return eff.Resistances[i].Multiplier < eff.Resistances[j].Multiplier
	})
	return eff
}

// Page selects one of the three effectiveness views.
type Page int

const (
	PageWeak Page = iota
	PageResist
	PageImmune
)

// Pages lists every page in display order.
var Pages = []Page{PageWeak, PageResist, PageImmune}

func (p Page) String() string {
	switch p {
	case PageWeak:
		return "WEAK"
	case PageResist:
		return "RESIST"
	case PageImmune:
		return "IMMUNE"
	default:
		return "Unknown"
	}
}

// Next cycles WEAK -> RESIST -> IMMUNE -> WEAK.
func (p Page) Next() Page {
	return Pages[(p.index()+1)%len(Pages)]
}

func (p Page) index() int {
	switch p {
	case PageWeak:
		return 0
	case PageResist:
		return 1
	case PageImmune:
		return 2
	default:
		panic(fmt.Sprintf("typechart: invalid page %d", int(p)))
	}
}

// Entries returns the matchups shown on page p.
func (p Page) Entries(eff Effectiveness) []Matchup {
	switch p {
	case PageWeak:
		return eff.Weaknesses
	case PageResist:
		return eff.Resistances
	case PageImmune:
		return eff.Immunities
	default:
		panic(fmt.Sprintf("typechart: invalid page %d", int(p)))
	}
}
