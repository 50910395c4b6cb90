package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bastiangx/dexpad/internal/logger"
	"github.com/bastiangx/dexpad/internal/utils"
	"github.com/bastiangx/dexpad/pkg/catalog"
	"github.com/bastiangx/dexpad/pkg/config"
	"github.com/bastiangx/dexpad/pkg/server"
)

var (
	configFlag  string
	catalogFlag string
	formatFlag  string
	debugFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   utils.AppName,
	Short: "Species catalog search with a multi-tap keypad",
	Long: `dexpad searches a species catalog with a small query language, computes
type matchups and drives a phone-style multi-tap keypad.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Setup(debugFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config.toml (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&catalogFlag, "catalog", "", "Catalog file (.yaml or .db); overrides catalog.source")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "", "Catalog format: yaml, sqlite or auto")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "Toggle debug logging")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(keypadCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command until it returns or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// app holds what every subcommand needs after startup.
type app struct {
	cfg        *config.Config
	configPath string
	catalog    *catalog.Catalog
	catalogSrc string
}

// loadApp resolves the config and loads the catalog.
func loadApp(ctx context.Context) (*app, error) {
	cfg, configPath, err := config.LoadConfigWithPriority(ctx, configFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", config.GetActiveConfigPath(configPath), err)
	}
	log.Debugf("Using config: %s", config.GetActiveConfigPath(configPath))

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize path resolver: %w", err)
	}

	source := catalogFlag
	if source == "" {
		source = cfg.Catalog.Source
	}
	catalogPath, err := pathResolver.FindCatalog(source)
	if err != nil {
		if source == "" {
			return nil, fmt.Errorf("no catalog found; pass --catalog or set catalog.source (searched for %v)", utils.DefaultCatalogNames)
		}
		return nil, fmt.Errorf("catalog %s: %w", source, err)
	}

	format, err := cfg.CatalogFormat()
	if formatFlag != "" {
		format, err = catalog.ParseFormat(formatFlag)
	}
	if err != nil {
		return nil, err
	}

	c, err := catalog.Load(ctx, catalogPath, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", catalogPath, err)
	}

	return &app{
		cfg:        cfg,
		configPath: configPath,
		catalog:    c,
		catalogSrc: catalogPath,
	}, nil
}

func (a *app) searcher() (*server.Searcher, error) {
	return server.NewSearcher(a.catalog, a.cfg.Server.CacheSize)
}
