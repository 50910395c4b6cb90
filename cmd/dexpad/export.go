package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bastiangx/dexpad/internal/utils"
	"github.com/bastiangx/dexpad/pkg/catalog"
	"github.com/bastiangx/dexpad/pkg/config"
)

var (
	exportTo    string
	exportForce bool
)

var exportCmd = &cobra.Command{
	Use:   "export <output>",
	Short: "Write the loaded catalog as YAML or SQLite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := args[0]
		format, err := catalog.ParseFormat(exportTo)
		if err != nil {
			return err
		}
		if format == catalog.FormatUnknown {
			if format = catalog.FormatFromExtension(out); format == catalog.FormatUnknown {
				return fmt.Errorf("cannot infer format of %s, pass --to", out)
			}
		}

		if utils.FileExists(out) {
			if !exportForce {
				return fmt.Errorf("%s already exists (use --force to overwrite)", out)
			}
			if err := os.Remove(out); err != nil {
				return err
			}
		}

		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}

		switch format {
		case catalog.FormatYAML:
			data, err := catalog.MarshalYAML(a.catalog)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
		case catalog.FormatSQLite:
			db, err := catalog.OpenSQLite(out)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			if err := catalog.WriteDB(cmd.Context(), db, a.catalog); err != nil {
				return err
			}
		}
		log.Infof("Exported %d species to %s (%s)", a.catalog.Len(), out, format)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or rebuild the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration as TOML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := config.LoadConfigWithPriority(cmd.Context(), configFlag)
		if err != nil {
			return err
		}
		fmt.Printf("# %s\n", config.GetActiveConfigPath(path))
		return toml.NewEncoder(os.Stdout).Encode(cfg)
	},
}

var configRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Overwrite the default config.toml with built-in defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.RebuildConfigFile(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to rebuild config: %w", err)
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Output format: yaml or sqlite (default: from extension)")
	exportCmd.Flags().BoolVarP(&exportForce, "force", "f", false, "Overwrite an existing output file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configRebuildCmd)
}
