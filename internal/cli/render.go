package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rodaine/table"

	"github.com/bastiangx/dexpad/internal/utils"
	"github.com/bastiangx/dexpad/pkg/server"
	"github.com/bastiangx/dexpad/pkg/typechart"
)

// typeColors are the badge colors used by both the line and screen front-ends.
var typeColors = map[string]string{
	"normal":   "#A8A878",
	"fire":     "#F08030",
	"water":    "#6890F0",
	"electric": "#F8D030",
	"grass":    "#78C850",
	"ice":      "#98D8D8",
	"fighting": "#C03028",
	"poison":   "#A040A0",
	"ground":   "#E0C068",
	"flying":   "#A890F0",
	"psychic":  "#F85888",
	"bug":      "#A8B820",
	"rock":     "#B8A038",
	"ghost":    "#705898",
	"dragon":   "#7038F8",
	"dark":     "#705848",
	"steel":    "#B8B8D0",
	"fairy":    "#EE99AC",
}

const unknownTypeColor = "#68A090"

var (
	boldStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75")).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#61AFEF")).Bold(true)
)

// TypeColor returns the hex color for a type name.
func TypeColor(t string) string {
	if c, ok := typeColors[strings.ToLower(t)]; ok {
		return c
	}
	return unknownTypeColor
}

// TypeBadge renders a type name as a colored label.
func TypeBadge(t string) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(TypeColor(t))).
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true).
		Padding(0, 1).
		Render(strings.ToUpper(t))
}

// TypeBadges renders every type badge on one line.
func TypeBadges(types []string) string {
	badges := make([]string, len(types))
	for i, t := range types {
		badges[i] = TypeBadge(t)
	}
	return strings.Join(badges, " ")
}

// DexNumber formats an id the way dex listings print it ("#006").
func DexNumber(id int) string {
	return fmt.Sprintf("#%03d", id)
}

// Rarity returns "legendary", "mythical" or an empty string.
func Rarity(sp server.Species) string {
	switch {
	case sp.IsMythical:
		return "mythical"
	case sp.IsLegendary:
		return "legendary"
	default:
		return ""
	}
}

func newTable(w io.Writer, headers ...interface{}) table.Table {
	tbl := table.New(headers...)
	tbl.WithWriter(w)
	tbl.WithFirstColumnFormatter(func(format string, vals ...interface{}) string {
		return boldStyle.Render(fmt.Sprintf(format, vals...))
	})
	tbl.WithPadding(2)
	tbl.WithWidthFunc(lipgloss.Width)
	return tbl
}

// RenderResults prints a result table. total is the number of matches
// before the limit was applied.
func RenderResults(w io.Writer, results []server.Species, total int) {
	if len(results) == 0 {
		fmt.Fprintln(w, warnStyle.Render("No species found"))
		return
	}

	tbl := newTable(w, "No.", "Name", "Types", "Gen", "")
	for _, sp := range results {
		gen := "-"
		if sp.GenerationID != nil {
			gen = fmt.Sprintf("%d", *sp.GenerationID)
		}
		tbl.AddRow(DexNumber(sp.ID), utils.DisplayName(sp.Name), TypeBadges(sp.Types), gen, Rarity(sp))
	}
	tbl.Print()

	if total > len(results) {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("showing %d of %d", len(results), total)))
	}
}

// RenderSpecies prints a detail header for one species.
func RenderSpecies(w io.Writer, sp server.Species) {
	fmt.Fprintf(w, "%s %s  %s\n", boldStyle.Render(DexNumber(sp.ID)), headerStyle.Render(utils.DisplayName(sp.Name)), TypeBadges(sp.Types))
	if sp.GenerationID != nil {
		fmt.Fprintf(w, "  generation %d\n", *sp.GenerationID)
	}
	if r := Rarity(sp); r != "" {
		fmt.Fprintf(w, "  %s\n", r)
	}
	if sp.CaptureRate != nil {
		fmt.Fprintf(w, "  capture rate %d\n", *sp.CaptureRate)
	}
}

// RenderEffectiveness prints every page of an effectiveness result.
func RenderEffectiveness(w io.Writer, eff typechart.Effectiveness) {
	for _, p := range typechart.Pages {
		fmt.Fprintln(w, headerStyle.Render(p.String()))
		fmt.Fprintf(w, "  %s\n", FormatMatchups(p.Entries(eff)))
	}
}

// FormatMatchups renders matchups as badge/label pairs. 4x weaknesses are
// highlighted.
func FormatMatchups(ms []typechart.Matchup) string {
	if len(ms) == 0 {
		return dimStyle.Render("none")
	}
	parts := make([]string, len(ms))
	for i, m := range ms {
		label := m.Label()
		if m.IsDouble() {
			label = warnStyle.Render(label)
		}
		parts[i] = TypeBadge(m.Type) + " " + label
	}
	return strings.Join(parts, "  ")
}
