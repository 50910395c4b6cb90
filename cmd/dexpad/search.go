package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bastiangx/dexpad/internal/cli"
	"github.com/bastiangx/dexpad/pkg/catalog"
	"github.com/bastiangx/dexpad/pkg/typechart"
)

var (
	searchLimit int
	typesDex    string
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search the catalog and print a table",
	Long: `Search parses the query into filters and lists matching species in dex order.

Tokens: #006 or 6 (dex number), gen1 / gen 1 / kanto (generation),
fire water .. (all listed types), legendary, mythical. Anything else is
matched against names.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		searcher, err := a.searcher()
		if err != nil {
			return err
		}

		limit := searchLimit
		if !cmd.Flags().Changed("limit") {
			limit = a.cfg.CLI.DefaultLimit
		}

		query := strings.Join(args, " ")
		res := searcher.Search(query, limit)
		log.Debugf("Search %q -> %s in %v", query, res.Filters, res.Elapsed)
		cli.RenderResults(os.Stdout, res.Matches, res.Total)
		return nil
	},
}

var typesCmd = &cobra.Command{
	Use:   "types [type] [type]",
	Short: "Show weaknesses, resistances and immunities",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if typesDex != "" {
			return runDexTypes(cmd, typesDex)
		}
		if len(args) == 0 {
			return errors.New("expected one or two types, or --dex")
		}

		types := make([]string, len(args))
		for i, t := range args {
			types[i] = strings.ToLower(t)
			if !typechart.IsType(types[i]) {
				return fmt.Errorf("unknown type %q (known: %s)", t, strings.Join(typechart.Types, ", "))
			}
		}
		fmt.Println(cli.TypeBadges(types))
		cli.RenderEffectiveness(os.Stdout, typechart.Analyze(types))
		return nil
	},
}

func runDexTypes(cmd *cobra.Command, ref string) error {
	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	searcher, err := a.searcher()
	if err != nil {
		return err
	}

	name, id := ref, 0
	if n, err := strconv.Atoi(strings.TrimPrefix(ref, "#")); err == nil {
		name, id = "", n
	}
	sp, err := searcher.Lookup(name, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("no species %q", ref)
	}
	if err != nil {
		return err
	}
	cli.RenderSpecies(os.Stdout, sp)
	cli.RenderEffectiveness(os.Stdout, searcher.Effectiveness(sp))
	return nil
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 20, "Maximum rows to print (0 for all; default from config)")
	typesCmd.Flags().StringVar(&typesDex, "dex", "", "Species name or dex number to analyze")
}
