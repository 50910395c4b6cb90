/*
Package query turns free-form search text into structured catalog filters.

Parse lowercases and trims the raw text, splits it on whitespace and consumes
each token with the first matching rule:

	#006 / 6        dex number
	gen1 / gen 1    generation
	kanto .. paldea generation via region name
	fire, water ..  elemental type (all listed types must match)
	legendary       legendary only
	mythical        mythical only
	anything else   name substring (tokens joined with a space)

Scalar fields are last-writer-wins: "gen1 johto" filters on generation 2.
No token is ever rejected; unrecognized text always lands in the name query.

Apply runs the resulting Filters over a catalog as a conjunction and keeps
catalog order. Search is the usual entry point and skips filtering entirely
for blank input.
*/
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bastiangx/dexpad/internal/utils"
	"github.com/bastiangx/dexpad/pkg/typechart"
)

// Regions maps region names to their generation number.
var Regions = map[string]int{
	"kanto":  1,
	"johto":  2,
	"hoenn":  3,
	"sinnoh": 4,
	"unova":  5,
	"kalos":  6,
	"alola":  7,
	"galar":  8,
	"paldea": 9,
}

// Filters is the structured form of a search query. Nil pointers mean
// "not specified" and never exclude anything.
type Filters struct {
	NameQuery    string   `msgpack:"n,omitempty" json:"name_query,omitempty"`
	DexNumber    *int     `msgpack:"d,omitempty" json:"dex_number,omitempty"`
	Types        []string `msgpack:"ty,omitempty" json:"types,omitempty"`
	GenerationID *int     `msgpack:"g,omitempty" json:"generation_id,omitempty"`
	Legendary    *bool    `msgpack:"lg,omitempty" json:"legendary,omitempty"`
	Mythical     *bool    `msgpack:"my,omitempty" json:"mythical,omitempty"`
}

// IsEmpty reports whether no predicate is set.
func (f Filters) IsEmpty() bool {
	return strings.TrimSpace(f.NameQuery) == "" && f.DexNumber == nil && len(f.Types) == 0 &&
		f.GenerationID == nil && f.Legendary == nil && f.Mythical == nil
}

// HasType reports whether t was requested.
func (f Filters) HasType(t string) bool {
	for _, ft := range f.Types {
		if ft == t {
			return true
		}
	}
	return false
}

func (f Filters) String() string {
	var parts []string
	if f.DexNumber != nil {
		parts = append(parts, fmt.Sprintf("dex=%d", *f.DexNumber))
	}
	if f.NameQuery != "" {
		parts = append(parts, fmt.Sprintf("name=%q", f.NameQuery))
	}
	if len(f.Types) > 0 {
		parts = append(parts, "types="+strings.Join(f.Types, ","))
	}
	if f.GenerationID != nil {
		parts = append(parts, fmt.Sprintf("gen=%d", *f.GenerationID))
	}
	if f.Legendary != nil {
		parts = append(parts, fmt.Sprintf("legendary=%t", *f.Legendary))
	}
	if f.Mythical != nil {
		parts = append(parts, fmt.Sprintf("mythical=%t", *f.Mythical))
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Parse tokenizes raw search text into Filters.
func Parse(raw string) Filters {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))

	var f Filters
	var name []string
	seen := utils.NewSeenSet()

	for i := 0; i < len(tokens); i++ {
		token := tokens[i]

		if digits := strings.TrimLeft(token, "#"); utils.IsOnlyNumbers(digits) {
			f.DexNumber = atoiPtr(digits)
			continue
		}

		if len(token) == 4 && strings.HasPrefix(token, "gen") && utils.IsOnlyNumbers(token[3:]) {
			f.GenerationID = atoiPtr(token[3:])
			continue
		}

		if token == "gen" && i+1 < len(tokens) {
			if n, err := strconv.Atoi(tokens[i+1]); err == nil {
				f.GenerationID = &n
				i++
				continue
			}
		}

		if gen, ok := Regions[token]; ok {
			f.GenerationID = &gen
			continue
		}

		if typechart.IsType(token) {
			if seen.Add(token) {
				f.Types = append(f.Types, token)
			}
			continue
		}

		switch token {
		case "legendary":
			f.Legendary = boolPtr(true)
			continue
		case "mythical":
			f.Mythical = boolPtr(true)
			continue
		}

		name = append(name, token)
	}

	f.NameQuery = strings.Join(name, " ")
	return f
}

// atoiPtr returns nil when s does not fit an int.
func atoiPtr(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func boolPtr(b bool) *bool {
	return &b
}
